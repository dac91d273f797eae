package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/aretw0/logicflow/pkg/domain"
	"github.com/aretw0/logicflow/pkg/ports"
)

//go:embed openapi.yaml
var openAPISpec []byte

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

var (
	errNotConfigured = errors.New("not configured on this server")
	errBadRequest    = errors.New("bad request")
)

// Server serves the compiler, the flow store and the session store over HTTP.
type Server struct {
	Compiler ports.Compiler
	Flows    ports.FlowStore
	Library  ports.FlowStore
	Sessions ports.ConversationStore

	metrics  http.Handler
	validate bool
	cors     bool
	version  string
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithFlowStore enables the /flows routes.
func WithFlowStore(s ports.FlowStore) Option {
	return func(srv *Server) { srv.Flows = s }
}

// WithLibrary enables the read-only /library routes.
func WithLibrary(s ports.FlowStore) Option {
	return func(srv *Server) { srv.Library = s }
}

// WithSessionStore enables GET and DELETE on /sessions/{id}.
// Pass the same store the compiler's session manager uses.
func WithSessionStore(s ports.ConversationStore) Option {
	return func(srv *Server) { srv.Sessions = s }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(srv *Server) { srv.metrics = h }
}

// WithRequestValidation checks request bodies and parameters against the
// embedded OpenAPI document before they reach a handler.
func WithRequestValidation(enabled bool) Option {
	return func(srv *Server) { srv.validate = enabled }
}

// WithCORS allows cross-origin calls from browser editors.
func WithCORS(enabled bool) Option {
	return func(srv *Server) { srv.cors = enabled }
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(srv *Server) { srv.version = v }
}

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(srv *Server) { srv.logger = l }
}

// NewHandler creates the HTTP handler for c.
func NewHandler(c ports.Compiler, opts ...Option) (http.Handler, error) {
	s := &Server{
		Compiler: c,
		version:  "dev",
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	if s.cors {
		r.Use(enableCORS)
	}
	if s.validate {
		v, err := newRequestValidator(openAPISpec)
		if err != nil {
			return nil, fmt.Errorf("load openapi document: %w", err)
		}
		r.Use(v.middleware)
	}

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(openAPISpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Get("/health", s.Health)
	r.Get("/info", s.Info)

	r.Post("/parse", s.Parse)
	r.Post("/serialize", s.Serialize)
	r.Post("/validate", s.Validate)
	r.Post("/analyze", s.Analyze)
	r.Post("/generate", s.Generate)
	r.Post("/diagram", s.Diagram)
	r.Post("/refine", s.Refine)
	r.Post("/generate-flow", s.GenerateFlow)

	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.GetSession)
		r.Delete("/", s.DeleteSession)
		r.Post("/messages", s.Chat)
	})

	r.Route("/flows", func(r chi.Router) {
		r.Get("/", s.ListFlows)
		r.Post("/", s.CreateFlow)
		r.Get("/{id}", s.GetFlow)
		r.Put("/{id}", s.UpdateFlow)
		r.Delete("/{id}", s.DeleteFlow)
		r.Get("/{id}/view", s.GetFlowView)
	})

	r.Get("/library", s.ListLibrary)
	r.Get("/library/*", s.GetLibraryFlow)

	return r, nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>logicflow API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// flowInput is accepted by every route that works on a flow: notation text
// or an already built graph. Text wins when both are present.
type flowInput struct {
	Text  *string       `json:"text,omitempty"`
	Graph *domain.Graph `json:"graph,omitempty"`
}

func (s *Server) resolve(ctx context.Context, in flowInput) (*domain.Graph, []domain.Diagnostic, error) {
	switch {
	case in.Text != nil:
		g, diags := s.Compiler.Parse(ctx, *in.Text)
		return g, diags, nil
	case in.Graph != nil:
		return in.Graph, nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: either text or graph is required", errBadRequest)
	}
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Info handles GET /info.
func (s *Server) Info(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"name":    "logicflow",
		"version": s.version,
		"features": map[string]bool{
			"flows":    s.Flows != nil,
			"library":  s.Library != nil,
			"sessions": s.Sessions != nil,
			"metrics":  s.metrics != nil,
		},
	})
}

type parseResponse struct {
	Graph       *domain.Graph       `json:"graph"`
	Diagnostics []domain.Diagnostic `json:"diagnostics"`
}

// Parse handles POST /parse.
func (s *Server) Parse(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	g, diags := s.Compiler.Parse(r.Context(), body.Text)
	if diags == nil {
		diags = []domain.Diagnostic{}
	}
	s.writeJSON(w, http.StatusOK, parseResponse{Graph: g, Diagnostics: diags})
}

// Serialize handles POST /serialize.
func (s *Server) Serialize(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Graph *domain.Graph `json:"graph"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if body.Graph == nil {
		s.writeError(w, fmt.Errorf("%w: graph is required", errBadRequest))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"text": s.Compiler.Serialize(body.Graph)})
}

// Validate handles POST /validate.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	var body flowInput
	if !s.decode(w, r, &body) {
		return
	}
	g, diags, err := s.resolve(r.Context(), body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, struct {
		domain.Report
		Diagnostics []domain.Diagnostic `json:"diagnostics,omitempty"`
	}{s.Compiler.Validate(r.Context(), g), diags})
}

// Analyze handles POST /analyze.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	var body flowInput
	if !s.decode(w, r, &body) {
		return
	}
	g, diags, err := s.resolve(r.Context(), body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, struct {
		domain.Analysis
		Diagnostics []domain.Diagnostic `json:"diagnostics,omitempty"`
	}{s.Compiler.Analyze(r.Context(), g), diags})
}

// Generate handles POST /generate.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		flowInput
		Options domain.PromptOptions `json:"options"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	g, _, err := s.resolve(r.Context(), body.flowInput)
	if err != nil {
		s.writeError(w, err)
		return
	}
	prompt, err := s.Compiler.Generate(r.Context(), g, body.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"prompt": prompt})
}

// Diagram handles POST /diagram.
func (s *Server) Diagram(w http.ResponseWriter, r *http.Request) {
	var body struct {
		flowInput
		Highlight bool `json:"highlight"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	g, _, err := s.resolve(r.Context(), body.flowInput)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"mermaid": s.Compiler.Diagram(r.Context(), g, body.Highlight)})
}

// Refine handles POST /refine.
func (s *Server) Refine(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text        string           `json:"text"`
		Instruction string           `json:"instruction"`
		History     []domain.Message `json:"history"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	ref, err := s.Compiler.Refine(r.Context(), body.Text, body.Instruction, body.History)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ref)
}

// GenerateFlow handles POST /generate-flow.
func (s *Server) GenerateFlow(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Description string           `json:"description"`
		History     []domain.Message `json:"history"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Description) == "" {
		s.writeError(w, fmt.Errorf("%w: description is required", errBadRequest))
		return
	}
	ref, err := s.Compiler.GenerateFlow(r.Context(), body.Description, body.History)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ref)
}

// Chat handles POST /sessions/{id}/messages.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		s.writeError(w, fmt.Errorf("%w: message is required", errBadRequest))
		return
	}
	ref, err := s.Compiler.Chat(r.Context(), chi.URLParam(r, "id"), body.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ref)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	if s.Sessions == nil {
		s.writeError(w, fmt.Errorf("sessions: %w", errNotConfigured))
		return
	}
	conv, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, conv)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if s.Sessions == nil {
		s.writeError(w, fmt.Errorf("sessions: %w", errNotConfigured))
		return
	}
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// flowWrite is the body of POST /flows and PUT /flows/{id}.
type flowWrite struct {
	flowInput
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Layout      domain.Layout `json:"layout"`
}

type flowResponse struct {
	*domain.Flow
	Diagnostics []domain.Diagnostic `json:"diagnostics,omitempty"`
}

func (s *Server) buildFlow(ctx context.Context, id string, body flowWrite) (*domain.Flow, []domain.Diagnostic, error) {
	g, diags, err := s.resolve(ctx, body.flowInput)
	if err != nil {
		return nil, nil, err
	}
	title := body.Title
	if title == "" {
		title = g.Title
	}
	if title == "" {
		title = "Untitled flow"
	}
	layout := body.Layout
	if layout == nil {
		layout = domain.DefaultLayout(g)
	}
	now := time.Now().UTC()
	return &domain.Flow{
		ID:          id,
		Title:       title,
		Description: body.Description,
		Graph:       *g,
		Layout:      layout,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, diags, nil
}

// ListFlows handles GET /flows.
func (s *Server) ListFlows(w http.ResponseWriter, r *http.Request) {
	if s.Flows == nil {
		s.writeError(w, fmt.Errorf("flows: %w", errNotConfigured))
		return
	}
	list, err := s.Flows.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if list == nil {
		list = []domain.FlowSummary{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

// CreateFlow handles POST /flows.
func (s *Server) CreateFlow(w http.ResponseWriter, r *http.Request) {
	if s.Flows == nil {
		s.writeError(w, fmt.Errorf("flows: %w", errNotConfigured))
		return
	}
	var body flowWrite
	if !s.decode(w, r, &body) {
		return
	}
	flow, diags, err := s.buildFlow(r.Context(), uuid.NewString(), body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.Flows.Save(r.Context(), flow); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/flows/"+flow.ID)
	s.writeJSON(w, http.StatusCreated, flowResponse{Flow: flow, Diagnostics: diags})
}

// GetFlow handles GET /flows/{id}.
func (s *Server) GetFlow(w http.ResponseWriter, r *http.Request) {
	s.getFlow(w, r, s.Flows, chi.URLParam(r, "id"))
}

// UpdateFlow handles PUT /flows/{id}. A missing flow is created.
func (s *Server) UpdateFlow(w http.ResponseWriter, r *http.Request) {
	if s.Flows == nil {
		s.writeError(w, fmt.Errorf("flows: %w", errNotConfigured))
		return
	}
	var body flowWrite
	if !s.decode(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "id")
	flow, diags, err := s.buildFlow(r.Context(), id, body)
	if err != nil {
		s.writeError(w, err)
		return
	}

	status := http.StatusOK
	existing, err := s.Flows.Get(r.Context(), id)
	switch {
	case err == nil:
		flow.CreatedAt = existing.CreatedAt
	case errors.Is(err, domain.ErrFlowNotFound):
		status = http.StatusCreated
	default:
		s.writeError(w, err)
		return
	}

	if err := s.Flows.Save(r.Context(), flow); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, status, flowResponse{Flow: flow, Diagnostics: diags})
}

// DeleteFlow handles DELETE /flows/{id}.
func (s *Server) DeleteFlow(w http.ResponseWriter, r *http.Request) {
	if s.Flows == nil {
		s.writeError(w, fmt.Errorf("flows: %w", errNotConfigured))
		return
	}
	if err := s.Flows.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetFlowView handles GET /flows/{id}/view.
func (s *Server) GetFlowView(w http.ResponseWriter, r *http.Request) {
	if s.Flows == nil {
		s.writeError(w, fmt.Errorf("flows: %w", errNotConfigured))
		return
	}
	flow, err := s.Flows.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, domain.ToView(&flow.Graph, flow.Layout))
}

// ListLibrary handles GET /library.
func (s *Server) ListLibrary(w http.ResponseWriter, r *http.Request) {
	if s.Library == nil {
		s.writeError(w, fmt.Errorf("library: %w", errNotConfigured))
		return
	}
	list, err := s.Library.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if list == nil {
		list = []domain.FlowSummary{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

// GetLibraryFlow handles GET /library/{id}. Library ids may contain slashes.
func (s *Server) GetLibraryFlow(w http.ResponseWriter, r *http.Request) {
	s.getFlow(w, r, s.Library, chi.URLParam(r, "*"))
}

func (s *Server) getFlow(w http.ResponseWriter, r *http.Request, store ports.FlowStore, id string) {
	if store == nil {
		s.writeError(w, fmt.Errorf("flows: %w", errNotConfigured))
		return
	}
	flow, err := store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, flow)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid request body: %w", errBadRequest, err))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

type errorResponse struct {
	Error  string         `json:"error"`
	Report *domain.Report `json:"report,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var invalid *domain.InvalidGraphError
	if errors.As(err, &invalid) {
		resp.Report = &invalid.Report
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "status", status, "error", err)
	}
	s.writeJSON(w, status, resp)
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFlowNotFound), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrReadOnly):
		return http.StatusMethodNotAllowed
	case errors.Is(err, domain.ErrInvalidGraph):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoAssistant), errors.Is(err, errNotConfigured):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrAssistantUnreachable), errors.Is(err, domain.ErrAssistantMalformed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
