package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/rulesmith/internal/logging"
	"github.com/aretw0/rulesmith/internal/presentation/graph"
	"github.com/aretw0/rulesmith/internal/validator"
	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/ports"
	"github.com/aretw0/rulesmith/pkg/query"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// GenerateFunc produces one rule. overrides carries per-request configuration
// keys and may be nil.
type GenerateFunc func(ctx context.Context, overrides map[string]any) (query.Surface, error)

// Server serves rule generation over HTTP.
type Server struct {
	Generate GenerateFunc
	Searcher ports.Searcher
	Metrics  http.Handler
	Logger   *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithSearcher makes /generate report how many sentences the rule matches.
func WithSearcher(s ports.Searcher) ServerOption {
	return func(srv *Server) {
		srv.Searcher = s
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(srv *Server) {
		srv.Metrics = h
	}
}

// WithServerLogger sets the request logger.
func WithServerLogger(l *slog.Logger) ServerOption {
	return func(srv *Server) {
		srv.Logger = l
	}
}

// GenerateRequest is the optional body of POST /generate.
type GenerateRequest struct {
	Overrides map[string]any `json:"overrides,omitempty"`
}

// GenerateResponse is the body returned by POST /generate.
type GenerateResponse struct {
	ID         string `json:"id"`
	Rule       string `json:"rule"`
	Accepted   bool   `json:"accepted"`
	Reason     string `json:"reason,omitempty"`
	TotalHits  *int   `json:"total_hits,omitempty"`
	Mermaid    string `json:"mermaid"`
	DurationMS int64  `json:"duration_ms"`
}

// NewHandler creates the HTTP handler for rule generation.
func NewHandler(generate GenerateFunc, opts ...ServerOption) http.Handler {
	s := &Server{
		Generate: generate,
		Logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Post("/generate", s.handleGenerate)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.Logger)
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body GenerateRequest
	raw, err := io.ReadAll(io.LimitReader(r.Body, int64(validator.MaxInputSize())+1))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("generate: unreadable request body", "err", err)
		return
	}
	clean, err := validator.SanitizeInput(string(raw))
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid input: %v", err), http.StatusBadRequest)
		s.Logger.Warn("generate: input rejected", "err", err, "size", len(raw))
		return
	}
	if strings.TrimSpace(clean) != "" {
		if err := json.Unmarshal([]byte(clean), &body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			s.Logger.Warn("generate: invalid request body", "err", err)
			return
		}
	}

	start := time.Now()
	rule, err := s.Generate(r.Context(), body.Overrides)
	if err != nil {
		status := statusFor(err)
		http.Error(w, err.Error(), status)
		if status >= http.StatusInternalServerError {
			s.Logger.Error("generate failed", "err", err)
		} else {
			s.Logger.Warn("generate rejected", "err", err)
		}
		return
	}

	resp := GenerateResponse{
		ID:      uuid.NewString(),
		Rule:    rule.String(),
		Mermaid: graph.GenerateMermaid(rule),
	}
	if err := validator.Accept(rule); err != nil {
		resp.Reason = err.Error()
	} else {
		resp.Accepted = true
	}

	if s.Searcher != nil {
		res, err := s.Searcher.Search(r.Context(), rule, 1)
		if err != nil {
			http.Error(w, "search failed: "+err.Error(), http.StatusBadGateway)
			s.Logger.Error("generate: search failed", "rule", resp.Rule, "err", err)
			return
		}
		resp.TotalHits = &res.TotalHits
	}
	resp.DurationMS = time.Since(start).Milliseconds()

	s.Logger.Info("rule generated", "id", resp.ID, "rule", resp.Rule, "accepted", resp.Accepted)
	writeJSON(w, http.StatusOK, resp, s.Logger)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidConfig),
		errors.Is(err, domain.ErrSpanWithoutSentence),
		errors.Is(err, domain.ErrInvalidSpan):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrSearchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
