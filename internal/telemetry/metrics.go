package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/wolfeidau/sapphire-proxy"

// Metrics holds the instruments recorded by the proxy.
type Metrics struct {
	RequestsTotal       metric.Int64Counter
	RequestBytes        metric.Int64Histogram
	RequestsRejected    metric.Int64Counter
	UpstreamErrorsTotal metric.Int64Counter
	RequestDuration     metric.Float64Histogram
	Acceptors           metric.Int64UpDownCounter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the process wide instruments, creating them on first use
// against the global meter provider.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = newMetrics(otel.GetMeterProvider().Meter(meterName))
	})
	return metrics
}

func newMetrics(meter metric.Meter) *Metrics {
	m := &Metrics{}

	m.RequestsTotal, _ = meter.Int64Counter(
		"sapphire_proxy.requests.total",
		metric.WithDescription("Total number of requests received"),
		metric.WithUnit("{request}"),
	)

	m.RequestBytes, _ = meter.Int64Histogram(
		"sapphire_proxy.requests.size",
		metric.WithDescription("Size of accepted request bodies"),
		metric.WithUnit("By"),
	)

	m.RequestsRejected, _ = meter.Int64Counter(
		"sapphire_proxy.requests.rejected.total",
		metric.WithDescription("Requests rejected before reaching the upstream gateway"),
		metric.WithUnit("{request}"),
	)

	m.UpstreamErrorsTotal, _ = meter.Int64Counter(
		"sapphire_proxy.upstream.errors.total",
		metric.WithDescription("Requests that failed against the upstream gateway"),
		metric.WithUnit("{error}"),
	)

	m.RequestDuration, _ = meter.Float64Histogram(
		"sapphire_proxy.requests.duration",
		metric.WithDescription("Time to proxy a request end to end"),
		metric.WithUnit("ms"),
	)

	m.Acceptors, _ = meter.Int64UpDownCounter(
		"sapphire_proxy.acceptors.active",
		metric.WithDescription("Number of goroutines accepting connections"),
		metric.WithUnit("{acceptor}"),
	)

	return m
}
