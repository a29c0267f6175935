// Package security provides the TLS option block used by httpbridge engines.
//
// A TLSConfig builds a *tls.Config with optional CA and client certificate
// files, a chain depth limit, hostname matching and CRL revocation checks.
// DefaultVerifyConfig returns the verification block that is injected when
// the platform trust store is available (see SystemTrustAvailable).
//
// # TLS Configuration
//
//	cfg := security.TLSConfig{
//	    Verify:       security.VerifyPeer,
//	    UseSystemCAs: true,
//	    Depth:        3,
//	    CRLCheck:     true,
//	}
//
//	tlsConfig, err := cfg.Build()
package security
