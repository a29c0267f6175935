package engine

import (
	"context"
	"time"

	"github.com/kbukum/httpbridge/security"
)

// Engine executes HTTP calls.
type Engine interface {
	// Name identifies the engine kind, e.g. "nethttp".
	Name() string
	// IsAvailable reports whether the engine can accept calls.
	IsAvailable(ctx context.Context) bool
	// Execute performs the call and blocks until the response head and body
	// are read or the call fails.
	Execute(ctx context.Context, call *Call) (*Response, error)
}

// Closer is implemented by engines holding pooled resources.
type Closer interface {
	Close() error
}

// Header is one request header. Key casing is sent as given where the
// engine allows it.
type Header struct {
	Key   string
	Value string
}

// Request is the encoded request. HasBody distinguishes the bodyless form
// (target and headers only) from the form carrying a content type and body.
type Request struct {
	Method      string
	URL         string
	Headers     []Header
	HasBody     bool
	ContentType string
	Body        Payload
}

// NewBodyless builds the bodyless form.
func NewBodyless(method, url string, headers []Header) *Request {
	return &Request{Method: method, URL: url, Headers: headers}
}

// NewWithBody builds the form carrying a content type and body.
func NewWithBody(method, url string, headers []Header, contentType string, body Payload) *Request {
	return &Request{
		Method:      method,
		URL:         url,
		Headers:     headers,
		HasBody:     true,
		ContentType: contentType,
		Body:        body,
	}
}

// Payload is a request body: Bytes or *Chunked.
type Payload interface {
	payload()
}

// Bytes is an in-memory body.
type Bytes []byte

func (Bytes) payload() {}

// ProxyAuth holds proxy credentials.
type ProxyAuth struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Options is the typed engine option record.
type Options struct {
	Timeout        time.Duration       `mapstructure:"timeout"`
	ConnectTimeout time.Duration       `mapstructure:"connect_timeout"`
	TLS            *security.TLSConfig `mapstructure:"ssl"`
	AutoRedirect   bool                `mapstructure:"autoredirect"`
	ProxyAuth      *ProxyAuth          `mapstructure:"proxy_auth"`
	// Version is the protocol version, e.g. "HTTP/1.1" or "HTTP/2".
	Version   string `mapstructure:"version"`
	Relaxed   bool   `mapstructure:"relaxed"`
	URLEncode bool   `mapstructure:"url_encode"`
}

// Call is one engine invocation.
type Call struct {
	Request *Request
	Options Options
	// Extras are adapter options outside the engine allow-list. Engines may
	// read keys they know (e.g. "retry_max") and ignore the rest.
	Extras map[string]any
}

// StatusLine is the response status line.
type StatusLine struct {
	Version string
	Code    int
	Reason  string
}

// Field is one raw response header.
type Field struct {
	Key   []byte
	Value []byte
}

// ResponseBody is Chunks or Blob.
type ResponseBody interface {
	responseBody()
}

// Chunks is a body delivered as successive reads.
type Chunks [][]byte

func (Chunks) responseBody() {}

// Blob is a body delivered as one buffer.
type Blob []byte

func (Blob) responseBody() {}

// Response is the engine's raw response.
type Response struct {
	Status  StatusLine
	Headers []Field
	Body    ResponseBody
}
