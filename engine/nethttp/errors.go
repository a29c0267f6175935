package nethttp

import (
	"context"
	stderrors "errors"
	"net/url"

	"github.com/kbukum/httpbridge/engine"
	"github.com/kbukum/httpbridge/errors"
)

// classify maps transport failures onto the engine taxonomy: connection
// establishment failures become *engine.ConnectError, an expired call
// deadline becomes a TIMEOUT AppError, anything else passes through.
func classify(ctx context.Context, err error) error {
	if addr, ok := engine.ConnectFailure(err); ok {
		if addr == "" {
			addr = urlHost(err)
		}
		return &engine.ConnectError{Engine: Name, Addr: addr, Err: err}
	}
	if stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return errors.Timeout(Name + " call").WithCause(err)
	}
	return err
}

func urlHost(err error) string {
	var urlErr *url.Error
	if stderrors.As(err, &urlErr) {
		if u, perr := url.Parse(urlErr.URL); perr == nil {
			return u.Host
		}
	}
	return ""
}
