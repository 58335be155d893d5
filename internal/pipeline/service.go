package pipeline

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"climatology/internal/domain"
	"climatology/internal/observability"
)

// Extractor reads one raw observation series from the source, blocking until
// a message arrives or the context is cancelled.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawSeries, error)
}

// Publisher writes a build result to the sink.
type Publisher interface {
	Publish(ctx context.Context, res *Result) error
}

// Service runs the Kafka ingestion loop: extract a raw series, build its
// climatology, publish the document, commit the offset.
type Service struct {
	extractor Extractor
	builder   *Builder
	publisher Publisher
	latest    *Latest
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewService wires the consume loop stages together.
func NewService(e Extractor, b *Builder, p Publisher, latest *Latest, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		extractor: e,
		builder:   b,
		publisher: p,
		latest:    latest,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run executes the consume loop until the context is cancelled.
//
// A build failure is a bad message, not a bad pipeline: it is logged,
// counted, and committed so it is not redelivered. Extract and publish
// failures back off exponentially and retry; an uncommitted message is
// redelivered after a publish failure.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("consume loop started")
	s.metrics.ConsumerRunning.Set(1)
	defer s.metrics.ConsumerRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("consume loop stopping", "reason", ctx.Err())
			return nil
		default:
		}

		raw, err := s.extractor.Extract(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Error("extract failed", "error", err)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = 200 * time.Millisecond

		res, err := s.builder.Build(requestFromSeries(raw, s.logger))
		if err != nil {
			s.logger.Warn("build failed, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			s.metrics.IngestsTotal.WithLabelValues("kafka", "error").Inc()
			s.commitOffset(ctx, raw)
			continue
		}

		if err := s.publisher.Publish(ctx, res); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// Not committed: the message will be redelivered.
			s.logger.Error("publish failed", "error", err, "run_id", res.RunID)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}

		s.metrics.IngestsTotal.WithLabelValues("kafka", "success").Inc()
		s.latest.Set(res)
		s.commitOffset(ctx, raw)
	}
}

// requestFromSeries converts a Kafka message into a build request. A
// relocation is attached only when both latitude headers parse; a partial
// pair is logged and ignored.
func requestFromSeries(raw domain.RawSeries, logger *slog.Logger) Request {
	req := Request{Text: string(raw.Value)}

	baseStr, hasBase := raw.Headers["base_lat"]
	targetStr, hasTarget := raw.Headers["target_lat"]
	if !hasBase && !hasTarget {
		return req
	}

	base, errB := strconv.ParseFloat(baseStr, 64)
	target, errT := strconv.ParseFloat(targetStr, 64)
	if errB != nil || errT != nil {
		logger.Warn("ignoring malformed relocation headers",
			"base_lat", baseStr, "target_lat", targetStr)
		return req
	}

	req.Relocation = &Relocation{BaseLat: base, TargetLat: target}
	return req
}

// commitOffset commits the message offset if a commit function is available.
func (s *Service) commitOffset(ctx context.Context, raw domain.RawSeries) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		s.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
