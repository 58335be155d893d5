// Command climsrv runs the climatology service: an HTTP surface for
// on-demand builds and forecast windows, plus an optional Kafka consume
// loop that turns raw observation series into published climatology
// documents.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "climatology/internal/adapter/http"
	"climatology/internal/adapter/kafka"
	"climatology/internal/config"
	"climatology/internal/observability"
	"climatology/internal/pipeline"

	"github.com/joho/godotenv"
)

func main() {
	// Local development convenience; absent .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if err := run(cfg, logger, metrics); err != nil {
		logger.Error("service exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	builder := pipeline.NewBuilder(logger, metrics)
	latest := &pipeline.Latest{}

	server := httpadapter.NewServer(cfg.HTTPAddr, builder, latest, logger, metrics, cfg.MaxUploadBytes)

	httpErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
			return
		}
		httpErr <- nil
	}()

	consumerDone := make(chan error, 1)
	var reader *kafka.Reader
	var writer *kafka.Writer
	if cfg.KafkaEnabled {
		reader = kafka.NewReader(cfg, logger)
		writer = kafka.NewWriter(cfg, logger)
		svc := pipeline.NewService(reader, builder, writer, latest, logger, metrics)
		go func() { consumerDone <- svc.Run(ctx) }()
		logger.Info("kafka ingestion enabled",
			"brokers", cfg.KafkaBrokers,
			"source_topic", cfg.KafkaSourceTopic,
			"sink_topic", cfg.KafkaSinkTopic,
		)
	} else {
		consumerDone <- nil
		logger.Info("kafka ingestion disabled, http only")
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-httpErr:
		if err != nil {
			return err
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}

	// The consume loop returns once its context is cancelled.
	if err := <-consumerDone; err != nil {
		logger.Error("consume loop failed", "error", err)
	}

	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("close kafka reader", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("close kafka writer", "error", err)
		}
	}

	logger.Info("service stopped")
	return nil
}
