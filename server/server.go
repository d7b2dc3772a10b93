package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jonwraymond/coachkit/auth"
	"github.com/jonwraymond/coachkit/engine"
	"github.com/jonwraymond/coachkit/feedback"
	"github.com/jonwraymond/coachkit/health"
	"github.com/jonwraymond/coachkit/observe"
	"github.com/jonwraymond/coachkit/quota"
	"github.com/jonwraymond/coachkit/tier"
)

// HistoryStore lists a user's past exchanges.
type HistoryStore interface {
	ListConversations(ctx context.Context, userID string, limit int) ([]engine.ConversationRecord, error)
}

// QuotaReader reports usage without consuming it.
type QuotaReader interface {
	Status(ctx context.Context, userID string) (quota.Decision, error)
}

// Server is the HTTP facade over the coordinator.
type Server struct {
	coordinator *engine.Coordinator
	resolver    *auth.Resolver
	scorer      *feedback.Scorer
	logger      observe.Logger

	history HistoryStore
	quotas  QuotaReader
	healthA *health.Aggregator
	metrics http.Handler

	mux *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger. Default: no-op.
func WithLogger(logger observe.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithHistory enables the conversation-history endpoint.
func WithHistory(store HistoryStore) Option {
	return func(s *Server) { s.history = store }
}

// WithQuotaStatus enables the quota-status endpoint.
func WithQuotaStatus(quotas QuotaReader) Option {
	return func(s *Server) { s.quotas = quotas }
}

// WithHealth mounts the health endpoints backed by the aggregator.
func WithHealth(agg *health.Aggregator) Option {
	return func(s *Server) { s.healthA = agg }
}

// WithMetricsHandler mounts handler at /metrics.
func WithMetricsHandler(handler http.Handler) Option {
	return func(s *Server) { s.metrics = handler }
}

// New creates the HTTP server facade.
func New(coordinator *engine.Coordinator, resolver *auth.Resolver, opts ...Option) *Server {
	s := &Server{
		coordinator: coordinator,
		resolver:    resolver,
		scorer:      feedback.NewScorer(),
		logger:      observe.NopLogger(),
		mux:         http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("POST /api/conversation", s.handleConversation)
	s.mux.HandleFunc("POST /api/feedback", s.handleFeedback)
	if s.quotas != nil {
		s.mux.HandleFunc("GET /api/quota", s.handleQuota)
	}
	if s.history != nil {
		s.mux.HandleFunc("GET /api/conversations", s.handleHistory)
	}
	if s.healthA != nil {
		health.RegisterHandlers(s.mux, s.healthA)
	}
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("coachkit API running"))
}

type conversationRequest struct {
	UserInput string `json:"user_input"`
	Category  string `json:"category"`
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identify(w, r)
	if !ok {
		return
	}

	var body conversationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "User input is required")
		return
	}

	resp, err := s.coordinator.Handle(r.Context(), &engine.Request{
		Identity: identity,
		Text:     body.UserInput,
		Category: body.Category,
	})
	if err != nil {
		s.writeDenial(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type feedbackRequest struct {
	UserInput string `json:"user_input"`
}

type feedbackAnalysis struct {
	Polarity       float64  `json:"polarity"`
	Subjectivity   float64  `json:"subjectivity"`
	WordCount      int      `json:"word_count"`
	PatternMatches []string `json:"pattern_matches"`
	Score          int      `json:"score"`
}

type feedbackResponse struct {
	Success  bool             `json:"success"`
	Feedback string           `json:"feedback"`
	Analysis feedbackAnalysis `json:"analysis"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identify(w, r)
	if !ok {
		return
	}

	var body feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.UserInput) == "" {
		writeError(w, http.StatusBadRequest, "User input is required")
		return
	}

	// Free-tier callers get the cheap affirming analysis; sentiment and
	// pattern scoring are reserved for paying tiers.
	var result feedback.Result
	if identity.Tier == tier.Free {
		result = s.scorer.Degraded(body.UserInput)
	} else {
		result = s.scorer.Analyze(body.UserInput)
	}

	writeJSON(w, http.StatusOK, feedbackResponse{
		Success:  true,
		Feedback: result.Message,
		Analysis: feedbackAnalysis{
			Polarity:       result.Polarity,
			Subjectivity:   result.Subjectivity,
			WordCount:      result.WordCount,
			PatternMatches: result.PatternMatches,
			Score:          result.Score,
		},
	})
}

type quotaResponse struct {
	Success        bool                 `json:"success"`
	Tier           string               `json:"tier"`
	ScenariosUsed  int                  `json:"scenarios_used"`
	ScenariosLimit engine.ScenarioLimit `json:"scenarios_limit"`
}

func (s *Server) handleQuota(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identify(w, r)
	if !ok {
		return
	}
	if identity.IsAnonymous() {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	d, err := s.quotas.Status(r.Context(), identity.Principal)
	if errors.Is(err, quota.ErrUserNotFound) {
		d = quota.Decision{Allowed: true, Used: 0, Limit: quota.LimitFor(identity.Tier)}
	} else if err != nil {
		s.logger.Error(r.Context(), "quota status failed", observe.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, quotaResponse{
		Success:        true,
		Tier:           identity.Tier.String(),
		ScenariosUsed:  d.Used,
		ScenariosLimit: engine.ScenarioLimit(d.Limit),
	})
}

type historyEntry struct {
	UserInput  string `json:"user_message"`
	AIResponse string `json:"ai_response"`
	Feedback   string `json:"feedback"`
	Category   string `json:"category,omitempty"`
	Timestamp  string `json:"timestamp"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identify(w, r)
	if !ok {
		return
	}
	if identity.IsAnonymous() {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	recs, err := s.history.ListConversations(r.Context(), identity.Principal, 50)
	if err != nil {
		s.logger.Error(r.Context(), "history lookup failed", observe.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	entries := make([]historyEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, historyEntry{
			UserInput:  rec.Input,
			AIResponse: rec.Response,
			Feedback:   rec.Feedback,
			Category:   rec.Category,
			Timestamp:  rec.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

// identify resolves the request's identity. A present-but-invalid
// token is a 401; no token yields an anonymous identity.
func (s *Server) identify(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	identity, err := s.resolver.Resolve(r.Header.Get("Authorization"), clientOrigin(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return nil, false
	}
	return identity, true
}

// writeDenial maps pipeline denials onto distinguishing statuses and
// bodies. Quota and tier denials carry their details.
func (s *Server) writeDenial(w http.ResponseWriter, r *http.Request, err error) {
	var tierDenial *engine.TierDenial
	if errors.As(err, &tierDenial) {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"success":       false,
			"message":       "This scenario requires a higher subscription tier",
			"tier_required": tierDenial.Required.String(),
		})
		return
	}

	var quotaDenial *engine.QuotaDenial
	if errors.As(err, &quotaDenial) {
		writeJSON(w, http.StatusPaymentRequired, map[string]any{
			"success":         false,
			"message":         "Monthly scenario limit reached",
			"scenarios_used":  quotaDenial.Used,
			"scenarios_limit": quotaDenial.Limit,
		})
		return
	}

	switch {
	case errors.Is(err, engine.ErrValidation):
		writeError(w, http.StatusBadRequest, "User input is required")
	case errors.Is(err, engine.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
	default:
		s.logger.Error(r.Context(), "conversation request failed", observe.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// clientOrigin keys anonymous actors: the first X-Forwarded-For hop
// when present, else the remote address without port.
func clientOrigin(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
