// Package httpapi exposes the stat weights session and request controller over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/huangsam/statweights/core"
	"github.com/huangsam/statweights/internal/contract"
	"github.com/huangsam/statweights/schema"
)

// Server routes HTTP calls to one controller and its session.
type Server struct {
	cfg    *contract.Config
	ctrl   *core.Controller
	router *chi.Mux

	mu       sync.Mutex
	progress schema.ProgressMetrics
	runs     sync.WaitGroup
}

// NewServer builds the router. Computations started over HTTP outlive the
// request that started them.
func NewServer(cfg *contract.Config, ctrl *core.Controller) *Server {
	s := &Server{cfg: cfg, ctrl: ctrl, router: chi.NewRouter()}
	s.router.Use(middleware.Recoverer)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/weights", s.handleGetWeights)
	s.router.Get("/status", s.handleStatus)
	s.router.Post("/compute", s.handleCompute)
	s.router.Post("/abort", s.handleAbort)
	s.router.Put("/ratios", s.handlePutRatios)
	s.router.Put("/reference/{group}", s.handlePutReference)
	s.router.Route("/active", func(r chi.Router) {
		r.Post("/copy", s.handleCopyColumn)
		r.Post("/aggregate", s.handleApplyAggregate)
		r.Post("/restore", s.handleRestoreDefaults)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Wait blocks until every computation started by POST /compute has returned.
func (s *Server) Wait() {
	s.runs.Wait()
}

// ListenAndServe serves on addr until ctx is done, then aborts any in-flight
// request and shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           middleware.Logger(s),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.ctrl.Hide(context.Background())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.Wait()
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contract.LogWarn("encode http response", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps sentinel errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, contract.ErrConfiguration):
		status = http.StatusBadRequest
	case errors.Is(err, contract.ErrMetricNotApplicable), errors.Is(err, contract.ErrNoResult):
		status = http.StatusConflict
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %w", contract.ErrConfiguration, err)
	}
	return nil
}

func parseStatsType(value string, fallback schema.StatsType) (schema.StatsType, error) {
	if value == "" {
		return fallback, nil
	}
	t := schema.StatsType(value)
	if _, ok := schema.ValidStatsTypes[t]; !ok {
		return "", fmt.Errorf("%w: invalid stats type '%s', must be ep or weight", contract.ErrConfiguration, value)
	}
	return t, nil
}

func (s *Server) handleGetWeights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	showAll := s.cfg.ShowAllStats
	if v := q.Get("show_all"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, fmt.Errorf("%w: invalid show_all '%s'", contract.ErrConfiguration, v))
			return
		}
		showAll = parsed
	}
	statsType, err := parseStatsType(q.Get("stats_type"), s.cfg.StatsType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, core.BuildWeightsTable(s.ctrl.Session(), showAll, statsType))
}

type statusResponse struct {
	State       string                 `json:"state"`
	Busy        bool                   `json:"busy"`
	LastOutcome string                 `json:"last_outcome,omitempty"`
	LastError   string                 `json:"last_error,omitempty"`
	Progress    schema.ProgressMetrics `json:"progress"`
	Iterations  int                    `json:"iterations"`
	Metrics     []schema.MetricKind    `json:"metrics,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		State:      s.ctrl.State().String(),
		Busy:       s.ctrl.Busy(),
		Iterations: s.ctrl.Session().Iterations(),
	}
	if result, ok := s.ctrl.Session().RawResult(); ok {
		resp.Metrics = result.Kinds()
	}
	// OutcomeSkipped is never recorded, so it means no run has finished yet
	if outcome, err := s.ctrl.LastOutcome(); outcome != core.OutcomeSkipped {
		resp.LastOutcome = outcome.String()
		if err != nil {
			resp.LastError = err.Error()
		}
	}
	s.mu.Lock()
	resp.Progress = s.progress
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

type computeRequest struct {
	Iterations int `json:"iterations"`
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	var req computeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Iterations != 0 {
		if err := contract.ValidateIterations(req.Iterations); err != nil {
			writeError(w, fmt.Errorf("%w: %w", contract.ErrConfiguration, err))
			return
		}
	}

	// The session and progress are only touched once the slot is ours.
	prepare := func() {
		if req.Iterations != 0 {
			_ = s.ctrl.Session().SetIterations(req.Iterations)
		}
		s.mu.Lock()
		s.progress = schema.ProgressMetrics{}
		s.mu.Unlock()
	}
	s.runs.Add(1)
	started := s.ctrl.Start(context.Background(), prepare, s.recordProgress, func(core.Outcome, error) {
		s.runs.Done()
	})
	if !started {
		s.runs.Done()
		writeJSON(w, http.StatusConflict, statusResponse{State: s.ctrl.State().String(), Busy: true})
		return
	}
	writeJSON(w, http.StatusAccepted, statusResponse{State: core.StateRequesting.String(), Busy: true})
}

func (s *Server) recordProgress(p schema.ProgressMetrics) {
	s.mu.Lock()
	s.progress = p
	s.mu.Unlock()
}

func (s *Server) handleAbort(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Abort(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePutRatios(w http.ResponseWriter, r *http.Request) {
	var body map[string]float64
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if len(body) == 0 {
		writeError(w, fmt.Errorf("%w: at least one metric ratio is required", contract.ErrConfiguration))
		return
	}
	ratios := s.ctrl.Session().EPRatios()
	for key, value := range body {
		kind, ok := schema.ParseMetricKind(key)
		if !ok {
			writeError(w, fmt.Errorf("%w: unknown metric '%s'", contract.ErrConfiguration, key))
			return
		}
		ratios[kind.Index()] = value
	}
	if err := s.ctrl.Session().SetEPRatios(ratios); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ratios)
}

type referenceRequest struct {
	Stat string `json:"stat"`
}

func (s *Server) handlePutReference(w http.ResponseWriter, r *http.Request) {
	group := schema.ReferenceGroup(chi.URLParam(r, "group"))
	var body referenceRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	var stat *schema.UnitStat
	if body.Stat != "" {
		parsed, err := schema.ParseUnitStat(body.Stat)
		if err != nil {
			writeError(w, fmt.Errorf("%w: %w", contract.ErrConfiguration, err))
			return
		}
		stat = &parsed
	}
	if err := s.ctrl.Session().SetReferenceStat(group, stat); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schema.ReferenceSelection{
		Group:    group,
		Stat:     s.ctrl.Session().EffectiveReference(group),
		Explicit: stat != nil,
	})
}

type copyRequest struct {
	Column string `json:"column"`
}

func (s *Server) handleCopyColumn(w http.ResponseWriter, r *http.Request) {
	var body copyRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	kind, statsType, err := contract.ParseMetricColumn(body.Column)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.ctrl.Session().CopyColumn(kind, statsType); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Session().ActiveWeights())
}

type aggregateRequest struct {
	StatsType string `json:"stats_type"`
}

func (s *Server) handleApplyAggregate(w http.ResponseWriter, r *http.Request) {
	var body aggregateRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	statsType, err := parseStatsType(body.StatsType, schema.EPStatsType)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.ctrl.Session().ApplyAggregate(statsType); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Session().ActiveWeights())
}

func (s *Server) handleRestoreDefaults(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.Session().RestoreDefaults()
	writeJSON(w, http.StatusOK, s.ctrl.Session().ActiveWeights())
}
