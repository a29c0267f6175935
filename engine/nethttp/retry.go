package nethttp

import (
	"net/http"

	"github.com/go-viper/mapstructure/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/kbukum/httpbridge/engine"
	"github.com/kbukum/httpbridge/logger"
)

// Extras keys read by this engine.
const (
	ExtraRetryMax = "retry_max"
)

// do sends req, through retryablehttp when retries are enabled and the body
// can be replayed.
func (e *Engine) do(client *http.Client, req *http.Request, call *engine.Call) (*http.Response, error) {
	retryMax := e.retryMax(call.Extras)
	if retryMax <= 0 || !replayable(call.Request) {
		return client.Do(req)
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = client
	rc.RetryMax = retryMax
	rc.RetryWaitMin = e.cfg.RetryWaitMin
	rc.RetryWaitMax = e.cfg.RetryWaitMax
	rc.Logger = retryablehttp.LeveledLogger(leveledLogger{e.log})
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	rreq, err := retryablehttp.FromRequest(req)
	if err != nil {
		return nil, err
	}
	return rc.Do(rreq)
}

// retryMax reads the per-call override from extras, falling back to config.
func (e *Engine) retryMax(extras map[string]any) int {
	v, ok := extras[ExtraRetryMax]
	if !ok {
		return e.cfg.RetryMax
	}
	var n int
	if err := mapstructure.WeakDecode(v, &n); err != nil {
		e.log.Warn("ignoring invalid retry_max", logger.Fields("value", v, logger.FieldError, err.Error()))
		return e.cfg.RetryMax
	}
	return n
}

func replayable(r *engine.Request) bool {
	if !r.HasBody {
		return true
	}
	_, chunked := r.Body.(*engine.Chunked)
	return !chunked
}

// leveledLogger adapts the logger to retryablehttp. Errors are logged as
// warnings since a failed attempt may still be retried.
type leveledLogger struct {
	log *logger.Logger
}

func (l leveledLogger) Error(msg string, kvs ...interface{}) { l.log.Warn(msg, logger.Fields(kvs...)) }
func (l leveledLogger) Warn(msg string, kvs ...interface{})  { l.log.Warn(msg, logger.Fields(kvs...)) }
func (l leveledLogger) Info(msg string, kvs ...interface{})  { l.log.Info(msg, logger.Fields(kvs...)) }
func (l leveledLogger) Debug(msg string, kvs ...interface{}) { l.log.Debug(msg, logger.Fields(kvs...)) }
