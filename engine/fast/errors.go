package fast

import (
	"context"
	stderrors "errors"

	"github.com/valyala/fasthttp"

	"github.com/kbukum/httpbridge/engine"
	"github.com/kbukum/httpbridge/errors"
)

// classify maps client failures onto the engine taxonomy. A body stream cut
// off by an expired ctx is a timeout.
func classify(ctx context.Context, req *fasthttp.Request, err error) error {
	if stderrors.Is(err, fasthttp.ErrDialTimeout) {
		return &engine.ConnectError{Engine: Name, Addr: string(req.Host()), Err: err}
	}
	if addr, ok := engine.ConnectFailure(err); ok {
		if addr == "" {
			addr = string(req.Host())
		}
		return &engine.ConnectError{Engine: Name, Addr: addr, Err: err}
	}
	if stderrors.Is(err, fasthttp.ErrTimeout) || stderrors.Is(err, context.DeadlineExceeded) ||
		ctx.Err() == context.DeadlineExceeded {
		return errors.Timeout(Name + " call").WithCause(err)
	}
	return err
}
