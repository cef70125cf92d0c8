package metrics

import (
	"context"
)

// NoopMetricsSvc discards all metrics. Used when OTel is disabled.
type NoopMetricsSvc struct{}

func NewNoopMetricsSvc() *NoopMetricsSvc {
	return &NoopMetricsSvc{}
}

func (n *NoopMetricsSvc) Increment(
	metric MetricName,
	attrs map[string]string,
) {
}

func (n *NoopMetricsSvc) Shutdown(ctx context.Context) error {
	return nil
}
