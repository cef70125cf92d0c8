package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/imagethumbs/imagethumbs/internal/models"
	"github.com/imagethumbs/imagethumbs/internal/telemetry"
	"github.com/imagethumbs/imagethumbs/internal/telemetry/metrics"
	"github.com/imagethumbs/imagethumbs/internal/thumbs"
)

// Holds the config params for the consumer
type AMQPConfig struct {
	AMQPUri  string
	Exchange string

	ThumbsGenQueueName string
	ThumbsDelQueueName string
}

type AMQPConsumer struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	config    AMQPConfig
	thumbsSvc *thumbs.Service
	telemetry *telemetry.TelemetrySvc
}

// Creates a new AMQPConsumer instance ready to connect to broker
func NewAMQPConsumer(
	config AMQPConfig,
	thumbsSvc *thumbs.Service,
	telemetry *telemetry.TelemetrySvc,
) (*AMQPConsumer, error) {

	if config.AMQPUri == "" {
		return nil, fmt.Errorf("AMQP URI cannot be empty in config")
	}
	if config.Exchange == "" {
		return nil, fmt.Errorf("AMQP exchange cannot be empty in config")
	}
	if config.ThumbsGenQueueName == "" {
		return nil, fmt.Errorf(
			"AMQP thumbs generation queue name cannot be empty in config",
		)
	}
	if config.ThumbsDelQueueName == "" {
		return nil, fmt.Errorf(
			"AMQP thumbs delete queue name cannot be empty in config",
		)
	}

	return &AMQPConsumer{
		config:    config,
		thumbsSvc: thumbsSvc,
		telemetry: telemetry,
	}, nil
}

// Connects to AMQP broker, declares exchange and queues and
// starts consuming messages
func (c *AMQPConsumer) Start(ctx context.Context) error {
	slog.Debug("AMQP - Initializing AMQP Consumer")

	var err error
	c.conn, err = amqp.Dial(c.config.AMQPUri)
	if err != nil {
		return fmt.Errorf("AMQP - Connection to broker failed: %w", err)
	}

	c.channel, err = c.conn.Channel()
	if err != nil {
		c.conn.Close()
		return fmt.Errorf("AMQP - Failed to open channel: %w", err)
	}

	err = c.channel.ExchangeDeclare(
		c.config.Exchange,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		c.channel.Close()
		c.conn.Close()
		return fmt.Errorf("AMQP - Failed to declare exchange: %w", err)
	}

	for _, queueName := range []string{
		c.config.ThumbsGenQueueName,
		c.config.ThumbsDelQueueName,
	} {
		if err := c.declareAndBind(queueName); err != nil {
			c.channel.Close()
			c.conn.Close()
			return fmt.Errorf(
				"AMQP - Failed to declare/bind queue %s: %w",
				queueName,
				err,
			)
		}
	}

	go c.consume(
		ctx,
		c.config.ThumbsGenQueueName,
		"imagethumbs-gen",
		metrics.ThumbRequestReceived,
		c.handleGenRequest,
	)
	go c.consume(
		ctx,
		c.config.ThumbsDelQueueName,
		"imagethumbs-del",
		metrics.ThumbDelRequestReceived,
		c.handleDelRequest,
	)
	return nil
}

// Gracefully stops the AMQP consumer
func (c *AMQPConsumer) Stop() {
	slog.Info("AMQP - Stopping AMQP Consumer...")

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			slog.Error("AMQP - Failed to close channel", "error", err)
		} else {
			slog.Debug("AMQP - Channel closed")
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			slog.Error("AMQP - Failed to close connection", "error", err)
		} else {
			slog.Debug("AMQP - Connection closed")
		}
	}

	slog.Info("AMQP - AMQP Consumer stopped")
}

func (c *AMQPConsumer) declareAndBind(queueName string) error {
	_, err := c.channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}

	return c.channel.QueueBind(
		queueName,         // Queue
		queueName,         // Routing key
		c.config.Exchange, // Exchange
		false,             // No-wait
		nil,               // Arguments
	)
}

// consume runs one queue's delivery loop until the channel closes or
// the context is cancelled. Failed messages are nacked without requeue.
func (c *AMQPConsumer) consume(
	ctx context.Context,
	queueName string,
	consumerTag string,
	receivedMetric metrics.MetricName,
	handle func(ctx context.Context, req models.ThumbRequest) error,
) {
	msgs, err := c.channel.Consume(
		queueName,
		consumerTag,
		false, // Auto-acknowledge
		false, // Exclusive
		false, // No-local
		false, // No-wait
		nil,   // Arguments
	)
	if err != nil {
		slog.Error(
			"AMQP - Failed to create queue consumer",
			"queue", queueName,
			"error", err,
		)
		return
	}

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				slog.Info(
					"AMQP - Message channel closed. goroutine exiting",
					"queue", queueName,
				)
				return
			}

			var request models.ThumbRequest
			if err := json.Unmarshal(msg.Body, &request); err != nil {
				slog.Error(
					"AMQP - Failed to unmarshal message",
					"queue", queueName,
					"error", err,
					"message", string(msg.Body),
				)
				c.nack(msg)
				continue
			}

			c.telemetry.Metrics().Increment(receivedMetric, nil)

			if err := handle(ctx, request); err != nil {
				slog.Error(
					"AMQP - Failed to process thumbnail request",
					"queue", queueName,
					"error", err,
					"requestId", request.ThumbRequestID,
					"filePath", request.FilePath,
				)
				c.nack(msg)
				continue
			}

			if err := msg.Ack(false); err != nil {
				slog.Error(
					"AMQP - Failed to acknowledge message",
					"queue", queueName,
					"error", err,
				)
			}

		case <-ctx.Done():
			slog.Info(
				"AMQP - Context done signal received, "+
					"stopping consumption goroutine...",
				"queue", queueName,
			)
			return
		}
	}
}

func (c *AMQPConsumer) nack(msg amqp.Delivery) {
	if err := msg.Nack(false, false); err != nil {
		slog.Error("AMQP - Failed to nack message", "error", err)
	}
}

func (c *AMQPConsumer) handleGenRequest(
	ctx context.Context,
	request models.ThumbRequest,
) error {
	return c.thumbsSvc.CreateThumbs(
		ctx,
		request.FilePath,
		request.DestDir,
		request.Overwrite,
	)
}

func (c *AMQPConsumer) handleDelRequest(
	ctx context.Context,
	request models.ThumbRequest,
) error {
	return c.thumbsSvc.DeleteThumbs(ctx, request.FilePath, request.DestDir)
}
