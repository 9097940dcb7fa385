// Package http exposes attack-tree sessions over REST. A session is a
// stored specification addressed by id; every analysis endpoint reads the
// stored copy, so concurrent editors always see committed state.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"canopy/internal/demo"
	"canopy/pkg/analysis"
	"canopy/pkg/decode"
	"canopy/pkg/domain"
	"canopy/pkg/ports"
	"canopy/pkg/spec"
	"canopy/pkg/viz"
)

const maxBodyBytes = 1 << 20

// Server routes spec-session requests onto a SpecStore.
type Server struct {
	store   ports.SpecStore
	log     *slog.Logger
	metrics *metrics
}

type metrics struct {
	specsParsed   *prometheus.CounterVec
	parseFailures *prometheus.CounterVec
	evaluations   prometheus.Counter
	evalDuration  prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		specsParsed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "canopy_specs_parsed_total",
			Help: "Specifications successfully parsed, by input format.",
		}, []string{"format"}),
		parseFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "canopy_parse_failures_total",
			Help: "Documents rejected during decode or normalization, by input format.",
		}, []string{"format"}),
		evaluations: factory.NewCounter(prometheus.CounterOpts{
			Name: "canopy_evaluations_total",
			Help: "Tree evaluations served, successful or not.",
		}),
		evalDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "canopy_evaluation_duration_seconds",
			Help:    "Wall time of a full analysis pass.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// NewHandler wires the REST routes, health check and metrics endpoint.
func NewHandler(store ports.SpecStore, log *slog.Logger) http.Handler {
	reg := prometheus.NewRegistry()
	s := &Server{store: store, log: log, metrics: newMetrics(reg)}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/specs", func(r chi.Router) {
		r.Post("/", s.createSpec)
		r.Get("/", s.listSpecs)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSpec)
			r.Delete("/", s.deleteSpec)
			r.Get("/analysis", s.analyze)
			r.Put("/leaves", s.editLeaves)
			r.Post("/sensitivity", s.sensitivity)
			r.Post("/sensitivity/apply", s.sensitivityApply)
			r.Get("/export", s.exportSpec)
			r.Get("/dot", s.dot)
		})
	})
	r.Post("/demo/{scenario}", s.loadDemo)

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createSpec parses the request body (format from the ?format query
// parameter, default yaml) and stores it under a fresh session id.
func (s *Server) createSpec(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "yaml"
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
		return
	}

	parsed, err := parse(body, format)
	if err != nil {
		s.metrics.parseFailures.WithLabelValues(format).Inc()
		s.writeDomainError(w, err)
		return
	}
	s.metrics.specsParsed.WithLabelValues(format).Inc()

	id := uuid.NewString()
	if err := s.store.Save(r.Context(), id, parsed); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.log.Info("spec created", "id", id, "format", format, "nodes", parsed.Len())
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    id,
		"root":  parsed.Root,
		"nodes": parsed.Len(),
	})
}

func (s *Server) loadDemo(w http.ResponseWriter, r *http.Request) {
	scenario := chi.URLParam(r, "scenario")
	parsed, err := demo.Load(scenario)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	id := uuid.NewString()
	if err := s.store.Save(r.Context(), id, parsed); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.log.Info("demo loaded", "id", id, "scenario", scenario)
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       id,
		"scenario": scenario,
		"root":     parsed.Root,
		"nodes":    parsed.Len(),
	})
}

func (s *Server) listSpecs(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"specs": ids})
}

func (s *Server) getSpec(w http.ResponseWriter, r *http.Request) {
	parsed, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, parsed)
}

func (s *Server) deleteSpec(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// opResult is one analysis operation's outcome. An incomplete tree is a
// displayable state: the operation reports available=false with the
// reason instead of failing the whole request.
type opResult struct {
	Available bool     `json:"available"`
	Value     *float64 `json:"value,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func operation(v float64, err error) opResult {
	if err != nil {
		return opResult{Error: err.Error()}
	}
	return opResult{Available: true, Value: &v}
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	parsed, ok := s.load(w, r)
	if !ok {
		return
	}

	topN := 3
	if q := r.URL.Query().Get("top"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid top parameter %q", q))
			return
		}
		topN = n
	}

	start := time.Now()
	resp := map[string]any{
		"probability":      operation(analysis.Probability(parsed)),
		"expected_loss":    operation(analysis.ExpectedLoss(parsed)),
		"top_contributors": analysis.TopContributors(parsed, topN),
	}
	s.metrics.evaluations.Inc()
	s.metrics.evalDuration.Observe(time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, resp)
}

type editRequest struct {
	Edits []spec.LeafEdit `json:"edits"`
}

// editLeaves applies leaf value edits. Valid fields are applied even when
// sibling edits fail, and every rejection comes back in the errors list.
func (s *Server) editLeaves(w http.ResponseWriter, r *http.Request) {
	parsed, ok := s.load(w, r)
	if !ok {
		return
	}

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	errs := spec.ApplyEdits(parsed, req.Edits)
	if err := s.store.Save(r.Context(), chi.URLParam(r, "id"), parsed); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"edits":  len(req.Edits),
		"errors": msgs,
	})
}

type sensitivityRequest struct {
	Leaf       string  `json:"leaf"`
	Multiplier float64 `json:"multiplier"`
}

func (s *Server) sensitivity(w http.ResponseWriter, r *http.Request) {
	parsed, ok := s.load(w, r)
	if !ok {
		return
	}

	var req sensitivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	result, err := analysis.Preview(parsed, req.Leaf, req.Multiplier)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// sensitivityApply commits the scaled probability back to the stored
// specification and returns the re-evaluated results.
func (s *Server) sensitivityApply(w http.ResponseWriter, r *http.Request) {
	parsed, ok := s.load(w, r)
	if !ok {
		return
	}

	var req sensitivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if _, err := analysis.Commit(parsed, req.Leaf, req.Multiplier); err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := s.store.Save(r.Context(), chi.URLParam(r, "id"), parsed); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	result, err := analysis.Preview(parsed, req.Leaf, 1.0)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) exportSpec(w http.ResponseWriter, r *http.Request) {
	parsed, ok := s.load(w, r)
	if !ok {
		return
	}

	data, err := spec.Export(parsed)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", parsed.Root+".yaml"))
	w.Write(data)
}

func (s *Server) dot(w http.ResponseWriter, r *http.Request) {
	parsed, ok := s.load(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	fmt.Fprint(w, viz.DOT(parsed))
}

// load fetches the session spec, writing the error response itself when
// the lookup fails.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (*domain.Specification, bool) {
	parsed, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return nil, false
	}
	return parsed, true
}

func parse(data []byte, format string) (*domain.Specification, error) {
	v, err := decode.Decode(data, format)
	if err != nil {
		return nil, err
	}
	return spec.Normalize(v)
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var formatErr *domain.FormatError
	var specErr *domain.SpecError
	var missing *domain.MissingValueError
	var notFound *domain.NotFoundError
	switch {
	case errors.Is(err, domain.ErrSpecNotFound), errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &formatErr), errors.As(err, &specErr):
		status = http.StatusBadRequest
	case errors.As(err, &missing):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	writeError(w, status, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
