package security

import (
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const (
	crlFetchTimeout = 5 * time.Second
	crlMaxSize      = 16 << 20
)

// CRLFetcher downloads the DER bytes of a revocation list.
type CRLFetcher func(ctx context.Context, url string) ([]byte, error)

// CRLChecker verifies certificates against the revocation lists named in
// their CRL distribution points. Parsed lists are cached for the refresh
// interval and concurrent fetches of the same URL are collapsed.
type CRLChecker struct {
	cache   *gocache.Cache
	singlef singleflight.Group
	fetch   CRLFetcher
	refresh time.Duration
}

// NewCRLChecker creates a checker that caches lists for refresh and
// downloads them with fetch. A nil fetch uses an HTTP GET.
func NewCRLChecker(refresh time.Duration, fetch CRLFetcher) *CRLChecker {
	if refresh <= 0 {
		refresh = DefaultCRLRefresh
	}
	if fetch == nil {
		fetch = httpFetcher(&http.Client{Timeout: crlFetchTimeout})
	}
	return &CRLChecker{
		cache:   gocache.New(refresh, 2*refresh),
		fetch:   fetch,
		refresh: refresh,
	}
}

var sharedCheckers sync.Map // time.Duration -> *CRLChecker

// SharedCRLChecker returns the process-wide checker for a refresh interval,
// so every TLS config with the same interval shares one cache.
func SharedCRLChecker(refresh time.Duration) *CRLChecker {
	if c, ok := sharedCheckers.Load(refresh); ok {
		return c.(*CRLChecker)
	}
	c, _ := sharedCheckers.LoadOrStore(refresh, NewCRLChecker(refresh, nil))
	return c.(*CRLChecker)
}

// CheckChain checks every non-root certificate of a verified chain against
// its issuer's CRL. Certificates without distribution points pass; a list
// that cannot be fetched fails the check.
func (c *CRLChecker) CheckChain(chain []*x509.Certificate) error {
	for i := 0; i+1 < len(chain); i++ {
		if err := c.Check(chain[i], chain[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// Check verifies a single certificate against the CRLs issued by issuer.
func (c *CRLChecker) Check(cert, issuer *x509.Certificate) error {
	for _, url := range cert.CRLDistributionPoints {
		list, err := c.list(url, issuer)
		if err != nil {
			return err
		}
		for _, entry := range list.RevokedCertificateEntries {
			if entry.SerialNumber.Cmp(cert.SerialNumber) == 0 {
				return fmt.Errorf("security/crl: certificate %s revoked at %s",
					cert.SerialNumber, entry.RevocationTime.Format(time.RFC3339))
			}
		}
	}
	return nil
}

func (c *CRLChecker) list(url string, issuer *x509.Certificate) (*x509.RevocationList, error) {
	if v, ok := c.cache.Get(url); ok {
		return v.(*x509.RevocationList), nil
	}

	v, err, _ := c.singlef.Do(url, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), crlFetchTimeout)
		defer cancel()

		der, err := c.fetch(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("security/crl: fetch %s: %w", url, err)
		}
		list, err := x509.ParseRevocationList(der)
		if err != nil {
			return nil, fmt.Errorf("security/crl: parse %s: %w", url, err)
		}
		if err := list.CheckSignatureFrom(issuer); err != nil {
			return nil, fmt.Errorf("security/crl: signature %s: %w", url, err)
		}
		c.cache.Set(url, list, c.refresh)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*x509.RevocationList), nil
}

func httpFetcher(client *http.Client) CRLFetcher {
	return func(ctx context.Context, url string) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return nil, err
		}
		res, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", res.Status)
		}
		return io.ReadAll(io.LimitReader(res.Body, crlMaxSize))
	}
}
