package security

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kbukum/httpbridge/security/tlstest"
)

func TestTLSConfig_Build_NilConfig(t *testing.T) {
	var cfg *TLSConfig
	result, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Fatal("expected nil for nil config")
	}
}

func TestTLSConfig_Build_ZeroValue(t *testing.T) {
	cfg := &TLSConfig{}
	result, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Fatal("expected nil for zero-value config")
	}
}

func TestTLSConfig_Build_SkipVerify(t *testing.T) {
	cfg := &TLSConfig{SkipVerify: true}
	result, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil tls.Config")
	}
	if !result.InsecureSkipVerify {
		t.Error("expected InsecureSkipVerify=true")
	}
	if result.MinVersion != tls.VersionTLS12 {
		t.Errorf("expected MinVersion=TLS12, got %d", result.MinVersion)
	}
}

func TestTLSConfig_Build_ServerName(t *testing.T) {
	cfg := &TLSConfig{SkipVerify: true, ServerName: "example.com"}
	result, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ServerName != "example.com" {
		t.Errorf("expected ServerName=example.com, got %s", result.ServerName)
	}
}

func TestTLSConfig_Build_CustomMinVersion(t *testing.T) {
	cfg := &TLSConfig{SkipVerify: true, MinVersion: tls.VersionTLS13}
	result, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MinVersion != tls.VersionTLS13 {
		t.Errorf("expected MinVersion=TLS13, got %d", result.MinVersion)
	}
}

func TestTLSConfig_Build_InvalidCAFile(t *testing.T) {
	cfg := &TLSConfig{CAFile: "/nonexistent/ca.pem"}
	_, err := cfg.Build()
	if err == nil {
		t.Fatal("expected error for nonexistent CA file")
	}
}

func TestTLSConfig_Build_InvalidCertFiles(t *testing.T) {
	cfg := &TLSConfig{CertFile: "/nonexistent/cert.pem", KeyFile: "/nonexistent/key.pem"}
	_, err := cfg.Build()
	if err == nil {
		t.Fatal("expected error for nonexistent cert files")
	}
}

func TestTLSConfig_Validate_Nil(t *testing.T) {
	var cfg *TLSConfig
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTLSConfig_Validate_Valid(t *testing.T) {
	cfg := &TLSConfig{CertFile: "cert.pem", KeyFile: "key.pem"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTLSConfig_Validate_MismatchedCertKey(t *testing.T) {
	cfg := &TLSConfig{CertFile: "cert.pem"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when CertFile set without KeyFile")
	}

	cfg = &TLSConfig{KeyFile: "key.pem"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when KeyFile set without CertFile")
	}
}

func TestTLSConfig_IsEnabled(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TLSConfig
		enabled bool
	}{
		{"nil", nil, false},
		{"zero", &TLSConfig{}, false},
		{"skip_verify", &TLSConfig{SkipVerify: true}, true},
		{"ca_file", &TLSConfig{CAFile: "ca.pem"}, true},
		{"cert_file", &TLSConfig{CertFile: "cert.pem"}, true},
		{"server_name", &TLSConfig{ServerName: "example.com"}, true},
		{"verify", &TLSConfig{Verify: VerifyPeer}, true},
		{"crl_check", &TLSConfig{CRLCheck: true}, true},
		{"depth", &TLSConfig{Depth: 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsEnabled(); got != tt.enabled {
				t.Errorf("IsEnabled() = %v, want %v", got, tt.enabled)
			}
		})
	}
}

func TestTLSConfig_Build_ValidCA(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	cfg := &TLSConfig{CAFile: certs.CAFile}
	result, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil tls.Config")
	}
	if result.RootCAs == nil {
		t.Error("expected RootCAs to be set")
	}
}

func TestTLSConfig_Build_ValidClientCert(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	cfg := &TLSConfig{
		CertFile: certs.CertFile,
		KeyFile:  certs.KeyFile,
	}
	result, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil tls.Config")
	}
	if len(result.Certificates) != 1 {
		t.Errorf("expected 1 certificate, got %d", len(result.Certificates))
	}
}

func TestTLSConfig_Build_FullConfig(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	cfg := &TLSConfig{
		CAFile:     certs.CAFile,
		CertFile:   certs.CertFile,
		KeyFile:    certs.KeyFile,
		ServerName: "localhost",
		MinVersion: tls.VersionTLS13,
	}
	result, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil tls.Config")
	}
	if result.RootCAs == nil {
		t.Error("expected RootCAs to be set")
	}
	if len(result.Certificates) != 1 {
		t.Error("expected 1 client certificate")
	}
	if result.ServerName != "localhost" {
		t.Errorf("expected ServerName=localhost, got %s", result.ServerName)
	}
	if result.MinVersion != tls.VersionTLS13 {
		t.Errorf("expected MinVersion=TLS13, got %d", result.MinVersion)
	}
}

func TestTLSConfig_Build_InvalidCAContent(t *testing.T) {
	caFile := tlstest.WriteInvalidPEM(t, "bad-ca.pem")
	cfg := &TLSConfig{CAFile: caFile}
	_, err := cfg.Build()
	if err == nil {
		t.Fatal("expected error for invalid CA PEM content")
	}
}

func TestTLSConfig_Build_VerifyNone(t *testing.T) {
	cfg := &TLSConfig{Verify: VerifyNone}
	result, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.InsecureSkipVerify {
		t.Error("expected verify_none to skip verification")
	}
	if result.VerifyConnection != nil {
		t.Error("expected no custom verifier for verify_none")
	}
}

func TestTLSConfig_Validate_BadVerify(t *testing.T) {
	cfg := &TLSConfig{Verify: "sometimes"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown verify mode")
	}
	if _, err := cfg.Build(); err == nil {
		t.Fatal("expected Build to reject unknown verify mode")
	}
}

func TestTLSConfig_Validate_NegativeDepth(t *testing.T) {
	cfg := &TLSConfig{Depth: -1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative depth")
	}
}

func TestDefaultVerifyConfig(t *testing.T) {
	cfg := DefaultVerifyConfig()
	if cfg.Verify != VerifyPeer {
		t.Errorf("expected verify_peer, got %q", cfg.Verify)
	}
	if !cfg.UseSystemCAs {
		t.Error("expected system CAs")
	}
	if cfg.Depth != 3 {
		t.Errorf("expected depth 3, got %d", cfg.Depth)
	}
	if cfg.SkipHostname {
		t.Error("expected hostname matching")
	}
	if !cfg.CRLCheck || cfg.CRLRefresh != DefaultCRLRefresh {
		t.Errorf("expected CRL check with %v refresh, got %v/%v", DefaultCRLRefresh, cfg.CRLCheck, cfg.CRLRefresh)
	}
}

func TestDefaultVerifyConfig_Build(t *testing.T) {
	if !SystemTrustAvailable() {
		t.Skip("system trust store not available")
	}
	cfg := DefaultVerifyConfig()
	result, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.InsecureSkipVerify {
		t.Error("expected standard verification to stay on")
	}
	if result.VerifyConnection == nil {
		t.Error("expected depth/CRL verifier")
	}
	if result.RootCAs == nil {
		t.Error("expected system roots")
	}
}

func TestTLSConfig_CheckDepth(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	leaf := certs.IssueCert(t, 10, "")
	chain := func(n int) []*x509.Certificate {
		c := []*x509.Certificate{leaf}
		for i := 0; i < n; i++ {
			c = append(c, certs.CACert)
		}
		return append(c, certs.CACert)
	}

	cfg := &TLSConfig{Depth: 1}
	if err := cfg.checkChains([][]*x509.Certificate{chain(1)}, nil); err != nil {
		t.Errorf("expected chain with 1 intermediate to pass, got %v", err)
	}
	if err := cfg.checkChains([][]*x509.Certificate{chain(2)}, nil); err == nil {
		t.Error("expected chain with 2 intermediates to fail at depth 1")
	}
	if err := cfg.checkChains([][]*x509.Certificate{chain(2), chain(0)}, nil); err != nil {
		t.Errorf("expected any fitting chain to pass, got %v", err)
	}
	if err := cfg.checkChains(nil, nil); err == nil {
		t.Error("expected error with no verified chains")
	}
}

func newTLSServer(t *testing.T, certs *tlstest.TLSCerts) *httptest.Server {
	t.Helper()
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	srv.TLS = &tls.Config{Certificates: []tls.Certificate{certs.ServerTLS}}
	srv.StartTLS()
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, cfg *TLSConfig, url string) error {
	t.Helper()
	tlsCfg, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	client := &http.Client{Transport: &http.Transport{TLSClientConfig: tlsCfg}}
	res, err := client.Get(url)
	if err != nil {
		return err
	}
	res.Body.Close()
	return nil
}

func TestTLSConfig_Handshake_HostnameMatching(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	srv := newTLSServer(t, certs)

	if err := get(t, &TLSConfig{CAFile: certs.CAFile}, srv.URL); err != nil {
		t.Fatalf("expected handshake to succeed, got %v", err)
	}

	wrongName := &TLSConfig{CAFile: certs.CAFile, ServerName: "other.example"}
	if err := get(t, wrongName, srv.URL); err == nil {
		t.Fatal("expected hostname mismatch to fail")
	}

	wrongName.SkipHostname = true
	if err := get(t, wrongName, srv.URL); err != nil {
		t.Fatalf("expected skip_hostname to accept mismatched name, got %v", err)
	}
}

func TestTLSConfig_Handshake_UnknownCA(t *testing.T) {
	serverCerts := tlstest.GenerateTLSCerts(t)
	otherCerts := tlstest.GenerateTLSCerts(t)
	srv := newTLSServer(t, serverCerts)

	cfg := &TLSConfig{CAFile: otherCerts.CAFile, SkipHostname: true}
	if err := get(t, cfg, srv.URL); err == nil {
		t.Fatal("expected unknown CA to fail even without hostname check")
	}
}
