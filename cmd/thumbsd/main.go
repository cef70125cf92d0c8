package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/imagethumbs/imagethumbs/internal/config"
	"github.com/imagethumbs/imagethumbs/internal/consumer"
	"github.com/imagethumbs/imagethumbs/internal/storage"
	"github.com/imagethumbs/imagethumbs/internal/telemetry"
	"github.com/imagethumbs/imagethumbs/internal/thumbs"
)

const defaultConfigPath = "image_thumbs.yaml"

func setupLogging() {
	var logLevel slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "DEBUG", "debug":
		logLevel = slog.LevelDebug
	case "WARN", "warn":
		logLevel = slog.LevelWarn
	case "ERROR", "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: false,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {

			// Format time to show only the time (HH:MM:SS)
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format("15:04:05"))
			}

			return a
		},
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, handlerOpts))
	slog.SetDefault(logger)
}

func loadEnv() {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		slog.Warn("No .env file found, using environment variables directly.")
		return
	}

	err := godotenv.Load(".env")
	if err != nil {
		slog.Error("Error loading .env file", "error", err)
		os.Exit(1)
	}
}

func prepareAMQPUri() string {
	rbHost := os.Getenv("RABBITMQ_HOST")
	rbPort := os.Getenv("RABBITMQ_PORT")
	rbUser := os.Getenv("RABBITMQ_USER")
	rbPass := os.Getenv("RABBITMQ_PASS")

	return fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		rbUser,
		rbPass,
		rbHost,
		rbPort,
	)
}

// prepareStore selects the object storage backend from STORAGE_BACKEND:
// "s3", "gcs" or "local" (the default). Credentials are resolved by the
// backend itself.
func prepareStore(ctx context.Context) (storage.ObjectStore, error) {
	switch os.Getenv("STORAGE_BACKEND") {
	case "s3":
		return storage.NewS3Store()
	case "gcs":
		return storage.NewGCSStore(ctx)
	case "local", "":
		return storage.NewLocalStore(os.Getenv("DIR_IMAGES_ROOT"))
	default:
		return nil, fmt.Errorf(
			"unknown STORAGE_BACKEND %q",
			os.Getenv("STORAGE_BACKEND"),
		)
	}
}

func prepareThumbsService(
	ctx context.Context,
	telemetrySvc *telemetry.TelemetrySvc,
) (*thumbs.Service, error) {
	configPath := os.Getenv("THUMBS_CONFIG")
	if configPath == "" {
		slog.Warn(
			"THUMBS_CONFIG is not set. Using default.",
			"default", defaultConfigPath,
		)
		configPath = defaultConfigPath
	}

	specs, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	store, err := prepareStore(ctx)
	if err != nil {
		return nil, err
	}

	return thumbs.NewService(specs, store, telemetrySvc)
}

func prepareAMQPConsumer(
	ctx context.Context,
	telemetrySvc *telemetry.TelemetrySvc,
) (consumer.MessageConsumer, error) {
	var amqpCfg consumer.AMQPConfig
	amqpCfg.AMQPUri = prepareAMQPUri()
	amqpCfg.Exchange = os.Getenv("AMQP_EXCHANGE")
	amqpCfg.ThumbsGenQueueName = os.Getenv("AMQP_QUEUE_THUMB_GEN_REQUESTS")
	amqpCfg.ThumbsDelQueueName = os.Getenv("AMQP_QUEUE_THUMB_DEL_REQUESTS")

	thumbsSvc, err := prepareThumbsService(ctx, telemetrySvc)
	if err != nil {
		return nil, err
	}

	return consumer.NewAMQPConsumer(amqpCfg, thumbsSvc, telemetrySvc)
}

func main() {
	loadEnv()
	setupLogging()

	slog.Info("Starting imagethumbs service...")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init telemetry services
	telemetrySvc, err := telemetry.NewTelemetrySvc(ctx)
	if err != nil {
		slog.Error("Failed to initialize Telemetry services", "error", err)
		os.Exit(1)
	}

	amqpConsumer, err := prepareAMQPConsumer(ctx, telemetrySvc)
	if err != nil {
		slog.Error("Failed to create AMQP consumer", "error", err)
		os.Exit(1)
	}

	if err := amqpConsumer.Start(ctx); err != nil {
		slog.Error("Failed to start AMQP consumer", "error", err)
		os.Exit(1)
	}
	slog.Info("imagethumbs service is running. Press Ctrl+C to stop.")

	// Graceful shutdown (listen for OS signals)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sigChan:
		slog.Info("Received OS signal, shutting down...", "signal", s.String())
	case <-ctx.Done():
		slog.Info(
			"Parent context cancelled, shutting down...",
			"reason",
			ctx.Err(),
		)
	}

	amqpConsumer.Stop()
	if err := telemetrySvc.Shutdown(ctx); err != nil {
		slog.Error("Failed to shutdown telemetry services", "error", err)
	}

	cancel()
	slog.Info("imagethumbs service exited gracefully.")
}
