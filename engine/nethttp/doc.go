// Package nethttp implements engine.Engine on net/http.
//
// Transports are cached per option fingerprint (connect timeout, TLS block,
// proxy credentials, protocol version) in an LRU cache; evicted transports
// close their idle connections. Redirects are not followed unless the call
// sets AutoRedirect. Version "HTTP/2" configures the transport through
// golang.org/x/net/http2.
//
// Profiles may enable retries through go-retryablehttp (retry_max). Retries
// apply only to in-memory bodies, since a streamed body cannot be replayed.
package nethttp
