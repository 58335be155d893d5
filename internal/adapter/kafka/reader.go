// Package kafka adapts the pipeline's source and sink to Kafka topics:
// raw observation blobs in, climatology documents out.
package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"climatology/internal/config"
	"climatology/internal/domain"

	kafkago "github.com/segmentio/kafka-go"
)

// Reader consumes raw observation series from the source topic.
// It implements pipeline.Extractor.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a Kafka consumer for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaSourceTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Reader{reader: r, logger: logger}
}

// Extract blocks until one message is available, then maps it to a RawSeries
// whose Commit callback acknowledges the offset.
func (r *Reader) Extract(ctx context.Context) (domain.RawSeries, error) {
	msg, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return domain.RawSeries{}, fmt.Errorf("fetch message: %w", err)
	}
	return r.mapMessage(msg), nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessage converts a Kafka message into the domain transport type.
func (r *Reader) mapMessage(msg kafkago.Message) domain.RawSeries {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}

	return domain.RawSeries{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		Commit: func(ctx context.Context) error {
			return r.reader.CommitMessages(ctx, msg)
		},
	}
}
