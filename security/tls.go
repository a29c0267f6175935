package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"
)

// Peer verification modes.
const (
	VerifyPeer = "verify_peer"
	VerifyNone = "verify_none"
)

// DefaultCRLRefresh is how long a fetched revocation list stays cached.
const DefaultCRLRefresh = 1000 * time.Millisecond

// TLSConfig holds the ssl option block of a call.
type TLSConfig struct {
	// Verify is VerifyPeer (default) or VerifyNone.
	Verify string `yaml:"verify" mapstructure:"verify"`

	// SkipVerify disables server certificate verification. Same as VerifyNone.
	SkipVerify bool `yaml:"skip_verify" mapstructure:"skip_verify"`

	// UseSystemCAs loads the platform trust store as root CAs.
	UseSystemCAs bool `yaml:"use_system_cas" mapstructure:"use_system_cas"`

	// CAFile is the path to the CA certificate file for verifying the server.
	// It is added to the system pool when UseSystemCAs is set.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`

	// CertFile is the path to the client TLS certificate file (for mTLS).
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`

	// KeyFile is the path to the client TLS key file (for mTLS).
	KeyFile string `yaml:"key_file" mapstructure:"key_file"`

	// ServerName overrides the server name used for certificate verification.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`

	// Depth is the maximum number of intermediate certificates between the
	// peer certificate and a trusted root. Zero means unlimited.
	Depth int `yaml:"depth" mapstructure:"depth"`

	// SkipHostname verifies the chain but not the peer's name.
	SkipHostname bool `yaml:"skip_hostname" mapstructure:"skip_hostname"`

	// CRLCheck rejects peers whose certificate appears on the CRL named by
	// its distribution points.
	CRLCheck bool `yaml:"crl_check" mapstructure:"crl_check"`

	// CRLRefresh is the CRL cache lifetime. Defaults to DefaultCRLRefresh.
	CRLRefresh time.Duration `yaml:"crl_refresh" mapstructure:"crl_refresh"`

	// MinVersion is the minimum TLS version (e.g., tls.VersionTLS12).
	// Defaults to TLS 1.2 if not set.
	MinVersion uint16 `yaml:"min_version" mapstructure:"min_version"`
}

// DefaultVerifyConfig is the block injected when the system trust store is
// available: peer verification against system CAs, chain depth 3, hostname
// matching and cached CRL checks.
func DefaultVerifyConfig() TLSConfig {
	return TLSConfig{
		Verify:       VerifyPeer,
		UseSystemCAs: true,
		Depth:        3,
		CRLCheck:     true,
		CRLRefresh:   DefaultCRLRefresh,
	}
}

// Build creates a *tls.Config from the configuration.
// Returns nil if no TLS settings are configured (all fields are zero values).
func (c *TLSConfig) Build() (*tls.Config, error) {
	if c == nil || !c.hasSettings() {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	minVersion := c.MinVersion
	if minVersion == 0 {
		minVersion = tls.VersionTLS12
	}

	cfg := &tls.Config{
		ServerName: c.ServerName,
		MinVersion: minVersion,
	}

	if err := c.loadRoots(cfg); err != nil {
		return nil, err
	}
	if err := c.loadClientCert(cfg); err != nil {
		return nil, err
	}

	if c.skipsVerification() {
		cfg.InsecureSkipVerify = true
		return cfg, nil
	}

	var crl *CRLChecker
	if c.CRLCheck {
		crl = SharedCRLChecker(c.refresh())
	}

	switch {
	case c.SkipHostname:
		// The standard verifier always checks the name, so verify by hand.
		cfg.InsecureSkipVerify = true
		cfg.VerifyConnection = c.verifyWithoutHostname(cfg.RootCAs, crl)
	case c.Depth > 0 || crl != nil:
		cfg.VerifyConnection = func(cs tls.ConnectionState) error {
			return c.checkChains(cs.VerifiedChains, crl)
		}
	}
	return cfg, nil
}

// Validate checks that the TLS configuration is consistent.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	if (c.CertFile != "") != (c.KeyFile != "") {
		return fmt.Errorf("security/tls: both cert_file and key_file must be provided together")
	}
	switch c.Verify {
	case "", VerifyPeer, VerifyNone:
	default:
		return fmt.Errorf("security/tls: verify must be %q or %q, got %q", VerifyPeer, VerifyNone, c.Verify)
	}
	if c.Depth < 0 {
		return fmt.Errorf("security/tls: depth must not be negative")
	}
	return nil
}

// IsEnabled returns true if any TLS setting is configured.
func (c *TLSConfig) IsEnabled() bool {
	if c == nil {
		return false
	}
	return c.hasSettings()
}

func (c *TLSConfig) hasSettings() bool {
	return c.Verify != "" || c.SkipVerify || c.UseSystemCAs || c.CAFile != "" ||
		c.CertFile != "" || c.ServerName != "" || c.Depth != 0 || c.SkipHostname || c.CRLCheck
}

func (c *TLSConfig) skipsVerification() bool {
	return c.SkipVerify || c.Verify == VerifyNone
}

func (c *TLSConfig) refresh() time.Duration {
	if c.CRLRefresh > 0 {
		return c.CRLRefresh
	}
	return DefaultCRLRefresh
}

// loadRoots sets RootCAs from the system pool and/or CAFile.
// Leaving RootCAs nil makes crypto/tls use the system pool.
func (c *TLSConfig) loadRoots(cfg *tls.Config) error {
	var pool *x509.CertPool
	if c.UseSystemCAs {
		sys, err := x509.SystemCertPool()
		if err != nil {
			return fmt.Errorf("security/tls: failed to load system CAs: %w", err)
		}
		pool = sys
	}
	if c.CAFile != "" {
		ca, err := os.ReadFile(c.CAFile)
		if err != nil {
			return fmt.Errorf("security/tls: failed to read CA file: %w", err)
		}
		if pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(ca) {
			return fmt.Errorf("security/tls: failed to parse CA certificate")
		}
	}
	cfg.RootCAs = pool
	return nil
}

func (c *TLSConfig) loadClientCert(cfg *tls.Config) error {
	if c.CertFile == "" || c.KeyFile == "" {
		return nil
	}
	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return fmt.Errorf("security/tls: failed to load client certificate: %w", err)
	}
	cfg.Certificates = []tls.Certificate{cert}
	return nil
}

func (c *TLSConfig) verifyWithoutHostname(roots *x509.CertPool, crl *CRLChecker) func(tls.ConnectionState) error {
	return func(cs tls.ConnectionState) error {
		if len(cs.PeerCertificates) == 0 {
			return fmt.Errorf("security/tls: peer sent no certificate")
		}
		opts := x509.VerifyOptions{
			Roots:         roots,
			Intermediates: x509.NewCertPool(),
		}
		for _, cert := range cs.PeerCertificates[1:] {
			opts.Intermediates.AddCert(cert)
		}
		chains, err := cs.PeerCertificates[0].Verify(opts)
		if err != nil {
			return fmt.Errorf("security/tls: %w", err)
		}
		return c.checkChains(chains, crl)
	}
}

// checkChains accepts the connection when at least one verified chain fits
// within Depth and passes the CRL check.
func (c *TLSConfig) checkChains(chains [][]*x509.Certificate, crl *CRLChecker) error {
	if len(chains) == 0 {
		return fmt.Errorf("security/tls: no verified chain")
	}
	var lastErr error
	for _, chain := range chains {
		if err := c.checkDepth(chain); err != nil {
			lastErr = err
			continue
		}
		if crl != nil {
			if err := crl.CheckChain(chain); err != nil {
				lastErr = err
				continue
			}
		}
		return nil
	}
	return lastErr
}

// checkDepth counts intermediates: a chain is peer, intermediates, root.
func (c *TLSConfig) checkDepth(chain []*x509.Certificate) error {
	if c.Depth <= 0 {
		return nil
	}
	if intermediates := len(chain) - 2; intermediates > c.Depth {
		return fmt.Errorf("security/tls: chain has %d intermediates, max depth %d", intermediates, c.Depth)
	}
	return nil
}
