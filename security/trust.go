package security

import (
	"crypto/x509"
	"sync"
)

var (
	trustOnce      sync.Once
	trustAvailable bool
)

// SystemTrustAvailable reports whether the platform trust store can be
// loaded. The probe runs once per process.
func SystemTrustAvailable() bool {
	trustOnce.Do(func() {
		pool, err := x509.SystemCertPool()
		trustAvailable = err == nil && pool != nil
	})
	return trustAvailable
}
