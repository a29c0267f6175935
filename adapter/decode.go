package adapter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/kbukum/httpbridge/engine"
	"github.com/kbukum/httpbridge/env"
)

// Decode returns the status code, the headers with lower-cased keys and the
// body as one buffer. Duplicate headers are kept. A body that is neither
// engine.Chunks nor engine.Blob is an engine defect and panics.
func Decode(res *engine.Response) (int, env.Headers, []byte) {
	headers := make(env.Headers, len(res.Headers))
	for i, f := range res.Headers {
		headers[i] = env.Header{Key: strings.ToLower(string(f.Key)), Value: string(f.Value)}
	}

	var body []byte
	switch b := res.Body.(type) {
	case engine.Chunks:
		body = bytes.Join(b, nil)
	case engine.Blob:
		body = b
	default:
		panic(fmt.Sprintf("adapter: engine returned unsupported body %T", res.Body))
	}
	return res.Status.Code, headers, body
}
