package engine

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
)

// ConnectError reports that a connection to the target could not be
// established.
type ConnectError struct {
	Engine string
	Addr   string
	Err    error
}

func (e *ConnectError) Error() string {
	if e.Addr == "" {
		return fmt.Sprintf("%s: connect: %v", e.Engine, e.Err)
	}
	return fmt.Sprintf("%s: connect %s: %v", e.Engine, e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// AsConnectError finds a *ConnectError in err's chain.
func AsConnectError(err error) (*ConnectError, bool) {
	var ce *ConnectError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// ConnectFailure reports whether err comes from establishing a connection:
// a dial or proxy connect error, a DNS failure or a TLS handshake failure.
// The address is returned when the error carries one.
func ConnectFailure(err error) (string, bool) {
	var opErr *net.OpError
	if errors.As(err, &opErr) && (opErr.Op == "dial" || opErr.Op == "proxyconnect") {
		if opErr.Addr != nil {
			return opErr.Addr.String(), true
		}
		return "", true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Name, true
	}

	var (
		certErr     *tls.CertificateVerificationError
		recordErr   tls.RecordHeaderError
		alertErr    tls.AlertError
		unknownCA   x509.UnknownAuthorityError
		hostnameErr x509.HostnameError
		invalidCert x509.CertificateInvalidError
	)
	switch {
	case errors.As(err, &certErr), errors.As(err, &recordErr), errors.As(err, &alertErr),
		errors.As(err, &unknownCA), errors.As(err, &hostnameErr), errors.As(err, &invalidCert):
		return "", true
	}
	return "", false
}
