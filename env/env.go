package env

import (
	"net/url"
	"strings"
)

// Method is an HTTP request method.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
	MethodConnect Method = "CONNECT"
)

// String returns the method token.
func (m Method) String() string { return string(m) }

// Valid reports whether m is one of the known methods.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch,
		MethodHead, MethodOptions, MethodTrace, MethodConnect:
		return true
	}
	return false
}

// Bodyless reports whether the method conventionally carries no body.
func (m Method) Bodyless() bool {
	switch m {
	case MethodGet, MethodOptions, MethodHead, MethodTrace:
		return true
	}
	return false
}

// Param is one query parameter.
type Param struct {
	Key   string
	Value string
}

// Query is an ordered list of query parameters.
type Query []Param

// Encode renders the query in order, percent-encoding keys and values.
func (q Query) Encode() string {
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// Env is the request environment of a single call.
type Env struct {
	Method  Method
	URL     string
	Query   Query
	Headers Headers
	Body    Body

	// Opts are adapter options provided by the environment. Caller options
	// passed to the call take precedence.
	Opts map[string]any

	// Response slot.
	Status          int
	ResponseHeaders Headers
	ResponseBody    []byte
}

// Target returns the URL with the query appended.
func (e *Env) Target() string {
	if len(e.Query) == 0 {
		return e.URL
	}
	sep := "?"
	if strings.Contains(e.URL, "?") {
		sep = "&"
		if strings.HasSuffix(e.URL, "?") || strings.HasSuffix(e.URL, "&") {
			sep = ""
		}
	}
	return e.URL + sep + e.Query.Encode()
}

// ContentType returns the request's own content-type header, or "".
func (e *Env) ContentType() string {
	v, _ := e.Headers.Get("content-type")
	return v
}
