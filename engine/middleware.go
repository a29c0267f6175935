package engine

import (
	"context"
	"strconv"
	"time"

	"github.com/kbukum/httpbridge/logger"
	"github.com/kbukum/httpbridge/observability"
)

// Middleware wraps an Engine with cross-cutting behavior.
type Middleware func(Engine) Engine

// Chain composes middlewares. The first middleware is outermost:
// Chain(a, b, c)(e) is a(b(c(e))).
func Chain(middlewares ...Middleware) Middleware {
	return func(inner Engine) Engine {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// wrapped forwards everything but Execute to the inner engine.
type wrapped struct {
	inner Engine
}

func (w wrapped) Name() string                         { return w.inner.Name() }
func (w wrapped) IsAvailable(ctx context.Context) bool { return w.inner.IsAvailable(ctx) }
func (w wrapped) Unwrap() Engine                       { return w.inner }

func (w wrapped) Close() error {
	if c, ok := w.inner.(Closer); ok {
		return c.Close()
	}
	return nil
}

// WithLogging logs each call at debug level and failures at warn level.
func WithLogging(log *logger.Logger) Middleware {
	return func(inner Engine) Engine {
		return &loggingEngine{wrapped: wrapped{inner}, log: log}
	}
}

type loggingEngine struct {
	wrapped
	log *logger.Logger
}

func (l *loggingEngine) Execute(ctx context.Context, call *Call) (*Response, error) {
	start := time.Now()
	res, err := l.inner.Execute(ctx, call)

	fields := logger.MergeWithDuration(map[string]interface{}{
		logger.FieldEngine: l.inner.Name(),
		logger.FieldMethod: call.Request.Method,
		logger.FieldURL:    call.Request.URL,
	}, time.Since(start))

	if err != nil {
		fields[logger.FieldError] = err.Error()
		l.log.Warn("engine call failed", fields)
		return res, err
	}
	fields[logger.FieldStatus] = res.Status.Code
	l.log.Debug("engine call ok", fields)
	return res, nil
}

// WithTracing creates a span around each call.
func WithTracing(serviceName string) Middleware {
	return func(inner Engine) Engine {
		return &tracingEngine{wrapped: wrapped{inner}, serviceName: serviceName}
	}
}

type tracingEngine struct {
	wrapped
	serviceName string
}

func (t *tracingEngine) Execute(ctx context.Context, call *Call) (*Response, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanEngineCall)
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrServiceName, t.serviceName)
	observability.SetSpanAttribute(ctx, observability.AttrEngine, t.inner.Name())
	observability.SetSpanAttribute(ctx, observability.AttrMethod, call.Request.Method)
	observability.SetSpanAttribute(ctx, observability.AttrURL, call.Request.URL)

	res, err := t.inner.Execute(ctx, call)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return res, err
	}
	observability.SetSpanAttribute(ctx, observability.AttrStatusCode, res.Status.Code)
	return res, nil
}

// WithMetrics records call count, duration and errors.
func WithMetrics(metrics *observability.Metrics) Middleware {
	return func(inner Engine) Engine {
		return &metricsEngine{wrapped: wrapped{inner}, metrics: metrics}
	}
}

type metricsEngine struct {
	wrapped
	metrics *observability.Metrics
}

func (m *metricsEngine) Execute(ctx context.Context, call *Call) (*Response, error) {
	m.metrics.RecordCallStart(ctx)
	start := time.Now()
	res, err := m.inner.Execute(ctx, call)
	duration := time.Since(start)

	status := "error"
	if err != nil {
		errType := "execute"
		if _, ok := AsConnectError(err); ok {
			errType = "connect"
		}
		m.metrics.RecordError(ctx, errType, m.inner.Name())
	} else {
		status = strconv.Itoa(res.Status.Code)
	}
	m.metrics.RecordCallEnd(ctx, m.inner.Name(), call.Request.Method, status, duration)
	return res, err
}
