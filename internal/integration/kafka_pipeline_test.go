//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"climatology/internal/adapter/kafka"
	"climatology/internal/config"
	"climatology/internal/observability"
	"climatology/internal/pipeline"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const (
	testSourceTopic = "test-raw-weather-series"
	testSinkTopic   = "test-climatology-documents"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-broker Kafka container and returns its
// bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// sampleExport renders two years of synthetic observations.
func sampleExport() string {
	var sb strings.Builder
	sb.WriteString("header\n-END HEADER-\nYEAR,DOY,TEMP_RANGE,PRECTOTCORR\n")
	i := 0
	for _, span := range []struct{ year, days int }{{2019, 365}, {2020, 366}} {
		for doy := 1; doy <= span.days; doy++ {
			temp := 25 + 8*math.Sin(2*math.Pi*float64(doy)/365.25) + 0.8*math.Sin(7.3*float64(i))
			fmt.Fprintf(&sb, "%d,%d,%.4f,%.4f\n", span.year, doy, temp, 1.0)
			i++
		}
	}
	return sb.String()
}

// TestKafkaPipelineEndToEnd wires Reader → Builder → Writer against a real
// broker: a raw observation blob goes in, a complete climatology document
// comes out.
func TestKafkaPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:     []string{broker},
		KafkaSourceTopic: testSourceTopic,
		KafkaSinkTopic:   testSinkTopic,
		KafkaGroupID:     fmt.Sprintf("test-pipeline-%d", time.Now().UnixNano()),
	}

	// Publish one raw series with relocation headers.
	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("station-1"),
		Value: []byte(sampleExport()),
		Headers: []kafkago.Header{
			{Key: "base_lat", Value: []byte("30.0")},
			{Key: "target_lat", Value: []byte("48.0")},
		},
	}))

	// Wire up the consume loop.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	builder := pipeline.NewBuilder(discardLogger(), metrics)
	latest := &pipeline.Latest{}
	svc := pipeline.NewService(reader, builder, writer, latest, discardLogger(), metrics)

	svcCtx, svcCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(svcCtx) }()

	// Read the climatology document from the sink topic.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 90*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	svcCancel()
	require.NoError(t, <-errCh)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "731", headers["record_count"])
	assert.Equal(t, "false", headers["fallback"])
	_, err = time.Parse(time.RFC3339, headers["generated_at"])
	assert.NoError(t, err, "generated_at should be valid RFC3339")

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(msg.Value, &res))

	assert.Equal(t, string(msg.Key), res.RunID)
	assert.True(t, res.Relocated)
	assert.False(t, res.Fallback)
	assert.Len(t, res.Days, 366)

	// Readiness flips once the loop has processed a message.
	assert.NoError(t, latest.CheckReadiness(ctx))
}

// TestKafkaPipelinePoisonMessage verifies that an unparseable blob is
// skipped and committed while a following valid blob still flows through.
func TestKafkaPipelinePoisonMessage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:     []string{broker},
		KafkaSourceTopic: testSourceTopic,
		KafkaSinkTopic:   testSinkTopic,
		KafkaGroupID:     fmt.Sprintf("test-poison-%d", time.Now().UnixNano()),
	}

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("no header sentinel")},
		kafkago.Message{Key: []byte("good"), Value: []byte(sampleExport())},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	builder := pipeline.NewBuilder(discardLogger(), metrics)
	svc := pipeline.NewService(reader, builder, writer, &pipeline.Latest{}, discardLogger(), metrics)

	svcCtx, svcCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(svcCtx) }()

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 90*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err)

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(msg.Value, &res))
	assert.Equal(t, 731, res.RecordCount, "only the valid series should produce a document")

	// No second document arrives for the poison message.
	shortCtx, shortCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err = consumer.ReadMessage(shortCtx)
	shortCancel()
	assert.Error(t, err, "expected no document for the poison message")

	svcCancel()
	require.NoError(t, <-errCh)
}
