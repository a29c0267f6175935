package adapter

import (
	"fmt"
	"mime"

	"github.com/kbukum/httpbridge/engine"
	"github.com/kbukum/httpbridge/env"
	"github.com/kbukum/httpbridge/errors"
)

const (
	streamChunkSize         = 32 << 10
	defaultMultipartContent = "text/plain"
)

// Encode builds the engine request form for e. The rules apply in order,
// first match wins:
//
//  1. DELETE without a body is sent with an empty body.
//  2. A request without a body is sent in the bodyless form.
//  3. GET, OPTIONS, HEAD and TRACE are sent in the bodyless form, dropping
//     any body, unless keep_bodyless_method_body is set.
//  4. A multipart body contributes its headers and becomes a producer.
//  5. A stream body becomes a producer.
//  6. A producer becomes an *engine.Chunked driven by NextChunk.
//  7. Raw bytes and chunked bodies are sent with their content type.
//
// Errors come from the multipart encoder, or from a keep_bodyless_method_body
// value that is not a bool.
func Encode(e *env.Env, r Resolved) (*engine.Request, error) {
	method := e.Method.String()
	target := e.Target()
	contentType := e.ContentType()
	keep, err := r.keepBodylessMethodBody()
	if err != nil {
		return nil, err
	}

	switch {
	case e.Body == nil && e.Method == env.MethodDelete:
		return engine.NewWithBody(method, target, engineHeaders(e.Headers), contentType, engine.Bytes{}), nil
	case e.Body == nil:
		return engine.NewBodyless(method, target, engineHeaders(e.Headers)), nil
	case e.Method.Bodyless() && !keep:
		return engine.NewBodyless(method, target, engineHeaders(e.Headers)), nil
	}
	return encodeBody(method, target, e.Headers, contentType, e.Body)
}

func encodeBody(method, target string, headers env.Headers, contentType string, body env.Body) (*engine.Request, error) {
	switch b := body.(type) {
	case env.MultipartBody:
		partHeaders, producer, err := b.Encode()
		if err != nil {
			return nil, err
		}
		headers = mergeMultipartHeaders(headers, partHeaders)
		ct, ok := headers.Get("content-type")
		if !ok {
			ct = defaultMultipartContent
		}
		return encodeBody(method, target, headers, ct, producer)
	case env.Stream:
		return encodeBody(method, target, headers, contentType, streamProducer(b.Reader))
	case env.Producer:
		chunked := &engine.Chunked{Next: NextChunk, Init: b}
		return engine.NewWithBody(method, target, engineHeaders(headers), contentType, chunked), nil
	case env.Raw:
		return engine.NewWithBody(method, target, engineHeaders(headers), contentType, engine.Bytes(b)), nil
	default:
		return nil, errors.InvalidInput("body", fmt.Sprintf("unsupported body type %T", body))
	}
}

// mergeMultipartHeaders adds the multipart headers the caller did not set.
// A caller content-type is kept and receives the multipart boundary, so the
// result holds exactly one content-type.
func mergeMultipartHeaders(headers, partHeaders env.Headers) env.Headers {
	callerType, hasType := headers.Get("content-type")
	merged := headers.Merge(partHeaders)
	if !hasType {
		return merged
	}

	partType, _ := partHeaders.Get("content-type")
	boundary := boundaryOf(partType)
	if boundary == "" {
		return merged.Set("content-type", callerType)
	}
	return merged.Set("content-type", withBoundary(callerType, boundary))
}

func boundaryOf(contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["boundary"]
}

func withBoundary(contentType, boundary string) string {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType + "; boundary=" + boundary
	}
	params["boundary"] = boundary
	return mime.FormatMediaType(mediaType, params)
}

func engineHeaders(headers env.Headers) []engine.Header {
	out := make([]engine.Header, len(headers))
	for i, h := range headers {
		out[i] = engine.Header{Key: h.Key, Value: h.Value}
	}
	return out
}
