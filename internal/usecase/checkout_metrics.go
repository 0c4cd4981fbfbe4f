package usecase

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type checkoutMetrics struct {
	attempts metric.Int64Counter
	retries  metric.Int64Counter
	duration metric.Float64Histogram
}

// 計測器が作れなくてもチェックアウトは止めない
func newCheckoutMetrics() checkoutMetrics {
	meter := otel.Meter("marketplace/checkout")
	fallback := noop.NewMeterProvider().Meter("marketplace/checkout")

	attempts, err := meter.Int64Counter("checkout.attempts",
		metric.WithDescription("Checkout requests by outcome"))
	if err != nil {
		attempts, _ = fallback.Int64Counter("checkout.attempts")
	}
	retries, err := meter.Int64Counter("checkout.conflict_retries",
		metric.WithDescription("Checkout transactions retried after a conflict"))
	if err != nil {
		retries, _ = fallback.Int64Counter("checkout.conflict_retries")
	}
	duration, err := meter.Float64Histogram("checkout.duration",
		metric.WithDescription("Checkout latency"), metric.WithUnit("s"))
	if err != nil {
		duration, _ = fallback.Float64Histogram("checkout.duration")
	}
	return checkoutMetrics{attempts: attempts, retries: retries, duration: duration}
}
