package metrics

import (
	"context"
)

// MetricName provides a type-safe handle for metric names.
type MetricName string

const (
	ThumbRequestReceived    MetricName = "thumbnail.request.received"
	ThumbDelRequestReceived MetricName = "thumbnail.delete_request.received"
	ThumbCreated            MetricName = "thumbnail.created"
	ThumbSkipped            MetricName = "thumbnail.skipped"
	ThumbFailed             MetricName = "thumbnail.failed"
)

type MetricsSvc interface {
	Increment(metric MetricName, attrs map[string]string)
	Shutdown(ctx context.Context) error
}
