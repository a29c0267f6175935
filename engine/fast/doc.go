// Package fast implements engine.Engine on top of valyala/fasthttp.
//
// Clients are cached per option fingerprint in a bounded LRU. Request header
// names are sent exactly as given. Bodies from *engine.Chunked are streamed
// with chunked transfer encoding. Responses are returned as a single
// engine.Blob.
//
// HTTP/2 is not available: any version other than HTTP/1.1 yields an
// UNSUPPORTED error. A configured proxy is reached with CONNECT through
// fasthttpproxy, carrying proxy_auth credentials when set.
package fast
