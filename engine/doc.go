// Package engine defines the contract between the adapter and an HTTP engine.
//
// An Engine executes a Call: a Request in either bodyless or with-body form,
// a typed Options record, and engine-specific extras. It returns a Response
// with a status line, raw header fields and a body that is either a list of
// chunks or a single blob.
//
// Streaming bodies are passed as *Chunked: a NextChunkFunc and its initial
// state. Engines that consume io.Reader bodies use Chunked.Reader.
//
// Engines report connection establishment failures (DNS, TCP refused, TLS
// handshake) as *ConnectError so callers can normalize them.
package engine
