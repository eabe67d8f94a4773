package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/knots"
	"github.com/aretw0/knots/internal/logging"
	"github.com/aretw0/knots/pkg/domain"
	"github.com/aretw0/knots/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server exposes a ports.Engine over JSON/HTTP.
type Server struct {
	Engine  ports.Engine
	Streams *StreamManager

	metrics http.Handler
	logger  *slog.Logger
	newID   func() string
}

// Option configures the Server.
type Option func(*Server)

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithIDGenerator overrides how new session IDs are generated.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) {
		s.newID = fn
	}
}

// StartRequest is the body of POST /sessions.
type StartRequest struct {
	SessionID string `json:"session_id,omitempty"`
	State     any    `json:"state,omitempty"`
}

// ChooseRequest is the body of POST /sessions/{id}/choose.
type ChooseRequest struct {
	ChoiceID string `json:"choice_id"`
	State    any    `json:"state,omitempty"`
}

// DivertRequest is the body of POST /sessions/{id}/divert. Target accepts
// "knot/node" or "node"; Knot and Node take precedence when set.
type DivertRequest struct {
	Target string `json:"target,omitempty"`
	Knot   string `json:"knot,omitempty"`
	Node   string `json:"node,omitempty"`
	State  any    `json:"state,omitempty"`
}

// StepResponse wraps a step with the session it belongs to.
type StepResponse struct {
	SessionID string                             `json:"session_id"`
	Step      domain.StepResult[domain.Payload] `json:"step"`
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine: engine,
		logger: logging.NewNop(),
		newID:  knots.NewSessionID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Post("/analyze", s.Analyze)
	r.Get("/story/graph", s.GetGraph)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.StartSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/choose", s.Choose)
			r.Post("/divert", s.Divert)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "knots-http",
		"version": knots.Version,
	})
}

// Analyze handles the POST /analyze request.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Engine.Analyze())
}

// GetGraph handles the GET /story/graph request. An optional session_id query
// parameter highlights that session's trail.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	diagram, err := s.Engine.Diagram(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		s.fail(w, "GetGraph", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, diagram)
}

// StartSession handles the POST /sessions request.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if !s.decode(w, r, "StartSession", &body, true) {
		return
	}
	if body.SessionID == "" {
		body.SessionID = s.newID()
	}

	step, err := s.Engine.Start(r.Context(), body.SessionID, body.State)
	if err != nil {
		s.fail(w, "StartSession", err)
		return
	}
	writeJSON(w, http.StatusCreated, StepResponse{SessionID: body.SessionID, Step: step})
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	step, err := s.Engine.Current(r.Context(), id, nil)
	if err != nil {
		s.fail(w, "GetSession", err)
		return
	}
	writeJSON(w, http.StatusOK, StepResponse{SessionID: id, Step: step})
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.End(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Choose handles the POST /sessions/{id}/choose request.
func (s *Server) Choose(w http.ResponseWriter, r *http.Request) {
	var body ChooseRequest
	if !s.decode(w, r, "Choose", &body, false) {
		return
	}
	if body.ChoiceID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("choice_id is required"))
		return
	}

	id := chi.URLParam(r, "sessionID")
	step, err := s.Engine.Choose(r.Context(), id, body.ChoiceID, body.State)
	if err != nil {
		s.fail(w, "Choose", err)
		return
	}
	s.respondStep(w, id, step)
}

// Divert handles the POST /sessions/{id}/divert request.
func (s *Server) Divert(w http.ResponseWriter, r *http.Request) {
	var body DivertRequest
	if !s.decode(w, r, "Divert", &body, false) {
		return
	}

	target := domain.Target{Knot: body.Knot, Node: body.Node}
	if target.Node == "" {
		target = domain.ParseTarget(body.Target)
	}
	if target.Node == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("target is required"))
		return
	}

	id := chi.URLParam(r, "sessionID")
	step, err := s.Engine.Divert(r.Context(), id, target, body.State)
	if err != nil {
		s.fail(w, "Divert", err)
		return
	}
	s.respondStep(w, id, step)
}

// SubscribeEvents handles the GET /sessions/{id}/events request (SSE).
// Every committed step of the session is pushed as a JSON data line.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal", errors.New("streaming not supported"))
		return
	}

	id := chi.URLParam(r, "sessionID")
	if _, err := s.Engine.Session(r.Context(), id); err != nil {
		s.fail(w, "SubscribeEvents", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: step\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) respondStep(w http.ResponseWriter, id string, step domain.StepResult[domain.Payload]) {
	resp := StepResponse{SessionID: id, Step: step}
	if data, err := json.Marshal(resp); err == nil {
		s.Streams.Broadcast(id, string(data))
	}
	writeJSON(w, http.StatusOK, resp)
}

// decode reads a JSON body into v. An empty body is accepted when optional.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, op string, v any, optional bool) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	s.logger.Warn(op+": Invalid request body", "err", err)
	writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid request body: %w", err))
	return false
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Debug(op+" rejected", "err", err, "code", code)
	}
	writeError(w, status, code, err)
}
