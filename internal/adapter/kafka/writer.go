package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"climatology/internal/config"
	"climatology/internal/pipeline"

	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces climatology documents to the sink topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes a build result and writes it to the sink topic.
func (w *Writer) Publish(ctx context.Context, res *pipeline.Result) error {
	msg, err := serializeResult(res)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeResult marshals a build result into a Kafka message keyed by run
// ID, with summary headers so consumers can filter without deserializing.
func serializeResult(res *pipeline.Result) (kafkago.Message, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize climatology: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(res.RunID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "record_count", Value: []byte(strconv.Itoa(res.RecordCount))},
			{Key: "fallback", Value: []byte(strconv.FormatBool(res.Fallback))},
			{Key: "generated_at", Value: []byte(res.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
