package nethttp

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/kbukum/httpbridge/engine"
	"github.com/kbukum/httpbridge/errors"
)

// buildRequest converts the engine request into an *http.Request.
func buildRequest(ctx context.Context, call *engine.Call) (*http.Request, error) {
	r := call.Request
	target := r.URL
	if call.Options.URLEncode {
		encoded, err := engine.EncodeURL(target)
		if err != nil {
			return nil, err
		}
		target = encoded
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, nil)
	if err != nil {
		return nil, errors.InvalidInput("url", err.Error()).WithCause(err)
	}

	if r.HasBody {
		switch body := r.Body.(type) {
		case nil:
			req.Body = http.NoBody
		case engine.Bytes:
			req.Body = http.NoBody
			if len(body) > 0 {
				data := []byte(body)
				req.Body = io.NopCloser(bytes.NewReader(data))
				req.GetBody = func() (io.ReadCloser, error) {
					return io.NopCloser(bytes.NewReader(data)), nil
				}
			}
			req.ContentLength = int64(len(body))
		case *engine.Chunked:
			req.Body = body.Reader(ctx)
			req.ContentLength = -1
		default:
			return nil, errors.Internal(nil).WithDetail("body", "unknown payload type")
		}
	}

	setHeaders(req, r.Headers)
	if r.HasBody && r.ContentType != "" && !hasHeader(r.Headers, "content-type") {
		req.Header.Set("Content-Type", r.ContentType)
	}
	if pa := call.Options.ProxyAuth; pa != nil && req.URL.Scheme == "http" {
		req.Header.Set("Proxy-Authorization", basicAuth(pa))
	}
	return req, nil
}

// setHeaders assigns header keys directly so their casing reaches the wire.
func setHeaders(req *http.Request, headers []engine.Header) {
	for _, h := range headers {
		if strings.EqualFold(h.Key, "host") {
			req.Host = h.Value
			continue
		}
		req.Header[h.Key] = append(req.Header[h.Key], h.Value)
	}
}

func hasHeader(headers []engine.Header, name string) bool {
	for _, h := range headers {
		if strings.EqualFold(h.Key, name) {
			return true
		}
	}
	return false
}
