package fast

import (
	"context"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/kbukum/httpbridge/engine"
	"github.com/kbukum/httpbridge/errors"
)

// buildRequest fills req from the engine request. Header names are written
// without normalization. A streaming body fails once ctx is done.
func buildRequest(ctx context.Context, req *fasthttp.Request, call *engine.Call) error {
	r := call.Request
	target := r.URL
	if call.Options.URLEncode {
		encoded, err := engine.EncodeURL(target)
		if err != nil {
			return err
		}
		target = encoded
	}

	req.Header.DisableNormalizing()
	req.Header.SetMethod(r.Method)
	req.SetRequestURI(target)

	hasContentType := false
	for _, h := range r.Headers {
		if strings.EqualFold(h.Key, "content-type") {
			hasContentType = true
		}
		req.Header.Add(h.Key, h.Value)
	}

	if !r.HasBody {
		return nil
	}
	if !hasContentType && r.ContentType != "" {
		req.Header.SetContentType(r.ContentType)
	}

	switch body := r.Body.(type) {
	case nil:
		req.SetBody(nil)
	case engine.Bytes:
		req.SetBody(body)
	case *engine.Chunked:
		// A negative size selects chunked transfer encoding.
		req.SetBodyStream(body.Reader(ctx), -1)
	default:
		return errors.Internal(nil).WithDetail("body", "unknown payload type")
	}
	return nil
}
