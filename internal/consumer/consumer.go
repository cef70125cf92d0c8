package consumer

import (
	"context"
)

// MessageConsumer receives thumbnail requests from a message broker
// and drives the thumbnail service.
type MessageConsumer interface {
	Start(ctx context.Context) error

	Stop()
}
