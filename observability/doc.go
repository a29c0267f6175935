// Package observability wires OpenTelemetry tracing and metrics for
// httpbridge calls.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, &cfg.Tracing)
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanEngineCall)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &cfg.Metrics)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("httpbridge"))
//	metrics.RecordCall(ctx, "default", "nethttp", "GET", "ok", duration)
package observability
