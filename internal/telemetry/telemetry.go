package telemetry

import (
	"context"
	"os"

	"github.com/imagethumbs/imagethumbs/internal/telemetry/metrics"
)

type TelemetrySvc struct {
	metrics metrics.MetricsSvc
}

// NewTelemetrySvc wires the OTel metrics exporter when OTEL_ENABLED is
// "true" and a no-op implementation otherwise.
func NewTelemetrySvc(ctx context.Context) (*TelemetrySvc, error) {
	otelEnabled := os.Getenv("OTEL_ENABLED") == "true"
	var metricsSvc metrics.MetricsSvc
	var err error

	if otelEnabled {
		metricsSvc, err = metrics.NewOtelMetricsSvc(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		metricsSvc = metrics.NewNoopMetricsSvc()
	}

	return &TelemetrySvc{
		metrics: metricsSvc,
	}, nil
}

// NewNoopTelemetrySvc returns a telemetry service that discards all
// metrics, regardless of environment.
func NewNoopTelemetrySvc() *TelemetrySvc {
	return &TelemetrySvc{
		metrics: metrics.NewNoopMetricsSvc(),
	}
}

func (t *TelemetrySvc) Metrics() metrics.MetricsSvc {
	return t.metrics
}

func (t *TelemetrySvc) Shutdown(ctx context.Context) error {
	return t.metrics.Shutdown(ctx)
}
