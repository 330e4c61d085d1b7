// Package observability provides OpenTelemetry tracing and metrics for the
// sandbox.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &cfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("rxlab"))
//	metrics.RecordRunEnd(ctx, "take", "completed", elapsed)
package observability
