package proxy

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/acheong08/neuromap/internal/generate"
	"github.com/acheong08/neuromap/internal/metrics"
)

const maxBodyBytes = 1 << 20

const (
	outcomeOK           = "ok"
	outcomeBadRequest   = "bad_request"
	outcomeUnconfigured = "unconfigured"
	outcomeUpstream     = "upstream_error"
	outcomeRejected     = "rejected"
)

var validate = validator.New()

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// BreakerConfig controls when the upstream circuit opens
type BreakerConfig struct {
	MaxRequests      uint32        `toml:"max_requests"`
	Interval         time.Duration `toml:"interval"`
	Timeout          time.Duration `toml:"timeout"`
	FailureThreshold float64       `toml:"failure_threshold"`
	MinRequests      uint32        `toml:"min_requests"`
}

// DefaultBreakerConfig trips after most of at least five requests fail
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// Handler serves POST /api/gemini. A nil backend answers every request with
// the not-configured error.
type Handler struct {
	backend Backend
	name    string
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewHandler wraps backend in a circuit breaker
func NewHandler(backend Backend, cfg BreakerConfig, collector *metrics.Collector, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.New()
	}

	name := "none"
	if backend != nil {
		name = backend.Name()
	}

	h := &Handler{
		backend: backend,
		name:    name,
		metrics: collector,
		logger:  logger,
	}
	h.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("backend", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			collector.BreakerState(name, int(to))
		},
		// Client mistakes passed through from upstream do not count against it
		IsSuccessful: func(err error) bool {
			var upstream *UpstreamError
			if errors.As(err, &upstream) {
				return upstream.StatusCode < 500
			}
			return err == nil
		},
	})
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		writeJSON(w, http.StatusOK, map[string]string{"message": "OK"})
		return
	case http.MethodPost:
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
		return
	}

	var req generate.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.reject(w, http.StatusBadRequest, outcomeBadRequest, errorBody{Error: "Invalid request body", Details: err.Error()})
		return
	}
	if err := validate.Struct(req); err != nil {
		h.reject(w, http.StatusBadRequest, outcomeBadRequest, errorBody{Error: "Invalid request body", Details: err.Error()})
		return
	}
	if req.Action != generate.ActionGenerateContent {
		h.reject(w, http.StatusBadRequest, outcomeBadRequest, errorBody{Error: "Unsupported action", Details: req.Action})
		return
	}
	if h.backend == nil {
		h.reject(w, http.StatusInternalServerError, outcomeUnconfigured, errorBody{Error: ErrNotConfigured.Error()})
		return
	}

	start := time.Now()
	out, err := h.breaker.Execute(func() (interface{}, error) {
		return h.backend.Generate(r.Context(), req.Data)
	})
	h.metrics.ProxyUpstream(h.name, time.Since(start))
	if err != nil {
		h.fail(w, err, req.Data.Model)
		return
	}

	h.metrics.ProxyRequest(h.name, outcomeOK)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(out.([]byte))
}

func (h *Handler) fail(w http.ResponseWriter, err error, model string) {
	body := errorBody{Error: "Gemini API request failed", Details: err.Error()}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		h.logger.Warn("Circuit breaker rejected request", zap.String("backend", h.name), zap.Error(err))
		h.reject(w, http.StatusServiceUnavailable, outcomeRejected, body)
		return
	}

	status := http.StatusBadGateway
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		status = upstream.StatusCode
		body.Details = upstream.Details
	}

	h.logger.Error("Upstream generation failed",
		zap.String("backend", h.name),
		zap.String("model", model),
		zap.Int("status", status),
		zap.Error(err))
	h.reject(w, status, outcomeUpstream, body)
}

func (h *Handler) reject(w http.ResponseWriter, status int, outcome string, body errorBody) {
	h.metrics.ProxyRequest(h.name, outcome)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
