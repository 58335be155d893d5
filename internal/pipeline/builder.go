package pipeline

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"climatology/internal/domain"
	"climatology/internal/engine"
	"climatology/internal/observability"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Relocation asks for the series to be perturbed from BaseLat to TargetLat
// before modeling. Rand may be nil, in which case a fresh non-deterministic
// source is drawn; tests inject a seeded one.
type Relocation struct {
	BaseLat   float64
	TargetLat float64
	Rand      *rand.Rand
}

// Request is one ingestion event: a raw observation blob plus an optional
// relocation.
type Request struct {
	Text       string
	Relocation *Relocation
}

// Result is the externally visible output of one build. Days always holds
// exactly 366 entries on success.
type Result struct {
	RunID           string                        `json:"run_id"`
	GeneratedAt     time.Time                     `json:"generated_at"`
	RecordCount     int                           `json:"record_count"`
	TrainingSamples int                           `json:"training_samples"`
	Fallback        bool                          `json:"fallback"`
	FallbackReason  string                        `json:"fallback_reason,omitempty"`
	BiasCorrected   bool                          `json:"bias_corrected"`
	Relocated       bool                          `json:"relocated"`
	Days            map[int]domain.ClimatologyDay `json:"days"`
}

// Builder runs the full climatology build for one ingestion event. It holds
// no per-build state: every Build constructs a fresh scaler, training set,
// and lag buffer, so concurrent builds never share engine state.
type Builder struct {
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// NewBuilder creates a Builder with the real clock.
func NewBuilder(logger *slog.Logger, metrics *observability.Metrics) *Builder {
	return &Builder{
		logger:  logger,
		metrics: metrics,
		clock:   clockwork.NewRealClock(),
	}
}

// SetClock swaps the time source used for GeneratedAt stamps. Tests inject a
// fake; pass nil to reset to real time.
func (b *Builder) SetClock(c clockwork.Clock) {
	if c == nil {
		b.clock = clockwork.NewRealClock()
		return
	}
	b.clock = c
}

// Build parses, optionally relocates, calibrates, trains, and forecasts.
//
// Failures follow the engine's taxonomy: no parseable records and
// too-few-records are explicit errors; a singular fit degrades to the
// flagged fallback and still succeeds with a complete climatology.
func (b *Builder) Build(req Request) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	records := domain.ParseRecords(req.Text)
	if len(records) == 0 {
		return nil, fmt.Errorf("parse input: %w", domain.ErrNoRecords)
	}
	b.metrics.ParsedRecords.Observe(float64(len(records)))
	domain.SortChronological(records)

	relocated := false
	if req.Relocation != nil {
		rng := req.Relocation.Rand
		if rng == nil {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
		records = domain.Relocate(records, req.Relocation.BaseLat, req.Relocation.TargetLat, rng)
		relocated = true
		b.metrics.Relocations.Inc()
		b.logger.Info("series relocated",
			"run_id", runID,
			"base_lat", req.Relocation.BaseLat,
			"target_lat", req.Relocation.TargetLat,
		)
	}

	temps, biasCorrected := engine.CorrectTempBias(domain.TempRanges(records))
	if biasCorrected {
		b.metrics.BiasCorrections.Inc()
		b.logger.Info("temperature bias calibration applied", "run_id", runID)
	}

	scaler := engine.FitScaler(temps)
	scaled := scaler.TransformAll(temps)

	x, y := engine.BuildTrainingSet(records, scaled)
	trained, err := engine.Train(x, y)
	if err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}
	if trained.Fallback {
		b.metrics.TrainingFallbacks.Inc()
		b.logger.Warn("training degraded to fallback weights",
			"run_id", runID,
			"reason", trained.Reason,
			"samples", trained.Samples,
		)
	}

	days := engine.Forecast(trained.Weights, scaler, engine.SeedLags(scaled), engine.AggregatePrecip(records))
	if len(days) < engine.CalendarDays {
		return nil, engine.ErrIncompleteClimatology
	}

	b.metrics.BuildDuration.Observe(time.Since(start).Seconds())
	b.logger.Info("climatology built",
		"run_id", runID,
		"records", len(records),
		"samples", trained.Samples,
		"fallback", trained.Fallback,
		"duration", time.Since(start),
	)

	return &Result{
		RunID:           runID,
		GeneratedAt:     b.clock.Now().UTC(),
		RecordCount:     len(records),
		TrainingSamples: trained.Samples,
		Fallback:        trained.Fallback,
		FallbackReason:  trained.Reason,
		BiasCorrected:   biasCorrected,
		Relocated:       relocated,
		Days:            days,
	}, nil
}
