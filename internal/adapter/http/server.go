// Package http exposes the service's HTTP surface: climatology builds,
// forecast windows, and the health/readiness/metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"climatology/internal/domain"
	"climatology/internal/engine"
	"climatology/internal/observability"
	"climatology/internal/pipeline"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// defaultWindowDays is the window length when the caller does not specify one.
const defaultWindowDays = 7

// Server exposes the build, window, health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	builder    *pipeline.Builder
	latest     *pipeline.Latest
	logger     *slog.Logger
	metrics    *observability.Metrics
	maxBody    int64
}

// NewServer creates the HTTP server. The latest holder is shared with the
// Kafka consume loop when that is enabled, so either surface can satisfy
// readiness and serve windows.
func NewServer(addr string, builder *pipeline.Builder, latest *pipeline.Latest, logger *slog.Logger, metrics *observability.Metrics, maxBody int64) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		builder: builder,
		latest:  latest,
		logger:  logger,
		metrics: metrics,
		maxBody: maxBody,
	}

	mux.HandleFunc("POST /v1/climatology", s.handleBuild)
	mux.HandleFunc("GET /v1/climatology/window", s.handleWindow)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleBuild ingests a raw observation blob and responds with the full
// climatology document. Optional base_lat/target_lat query parameters
// request a relocation; both must be present together.
func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.maxBody+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body")
		return
	}
	if int64(len(body)) > s.maxBody {
		writeError(w, http.StatusRequestEntityTooLarge, "request body exceeds limit")
		return
	}

	req := pipeline.Request{Text: string(body)}

	relocation, err := parseRelocation(r.URL.Query().Get("base_lat"), r.URL.Query().Get("target_lat"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Relocation = relocation

	res, err := s.builder.Build(req)
	if err != nil {
		s.metrics.IngestsTotal.WithLabelValues("http", "error").Inc()
		switch {
		case errors.Is(err, domain.ErrNoRecords):
			writeError(w, http.StatusUnprocessableEntity, "no valid records in input")
		case errors.Is(err, engine.ErrInsufficientData):
			writeError(w, http.StatusUnprocessableEntity, "insufficient data: need more than 7 records")
		default:
			s.logger.Error("build failed", "error", err)
			writeError(w, http.StatusInternalServerError, "climatology build failed")
		}
		return
	}

	s.metrics.IngestsTotal.WithLabelValues("http", "success").Inc()
	s.latest.Set(res)
	writeJSON(w, http.StatusOK, res)
}

// windowResponse is the window endpoint's payload.
type windowResponse struct {
	RunID    string                  `json:"run_id"`
	StartDay int                     `json:"start_day"`
	Days     []domain.ClimatologyDay `json:"days"`
}

// handleWindow serves a forward slice of the most recent climatology,
// wrapping across the year boundary. Defaults: start at today's day-of-year,
// seven days.
func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	res, ok := s.latest.Get()
	if !ok {
		writeError(w, http.StatusNotFound, "no climatology built yet")
		return
	}

	start := domain.CurrentDayOfYear()
	if v := r.URL.Query().Get("start"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > engine.CalendarDays {
			writeError(w, http.StatusBadRequest, "start must be an integer in [1, 366]")
			return
		}
		start = n
	}

	days := defaultWindowDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > engine.CalendarDays {
			writeError(w, http.StatusBadRequest, "days must be an integer in [1, 366]")
			return
		}
		days = n
	}

	writeJSON(w, http.StatusOK, windowResponse{
		RunID:    res.RunID,
		StartDay: start,
		Days:     engine.ForecastWindow(res.Days, start, days),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.latest.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// parseRelocation validates the optional latitude pair. Returns nil when
// neither parameter is set.
func parseRelocation(baseStr, targetStr string) (*pipeline.Relocation, error) {
	if baseStr == "" && targetStr == "" {
		return nil, nil
	}
	if baseStr == "" || targetStr == "" {
		return nil, errors.New("base_lat and target_lat must be provided together")
	}

	base, err := strconv.ParseFloat(baseStr, 64)
	if err != nil {
		return nil, errors.New("base_lat must be a number")
	}
	target, err := strconv.ParseFloat(targetStr, 64)
	if err != nil {
		return nil, errors.New("target_lat must be a number")
	}
	if base < -90 || base > 90 || target < -90 || target > 90 {
		return nil, errors.New("latitudes must be in [-90, 90]")
	}

	return &pipeline.Relocation{BaseLat: base, TargetLat: target}, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
