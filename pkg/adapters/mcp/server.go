package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/logicflow/pkg/domain"
	"github.com/aretw0/logicflow/pkg/ports"
)

const (
	libraryURI  = "logicflow://library"
	flowsURI    = "logicflow://flows"
	jsonMIME    = "application/json"
	flowMIME    = "text/markdown"
	serverName  = "logicflow-mcp"
	shutdownTTL = 5 * time.Second
)

// ParseResult is the structured answer of parse_flow.
type ParseResult struct {
	Graph       *domain.Graph       `json:"graph" jsonschema_description:"The parsed flow graph"`
	Diagnostics []domain.Diagnostic `json:"diagnostics" jsonschema_description:"Lines the parser could not make sense of"`
}

// ValidateResult is the structured answer of validate_flow.
type ValidateResult struct {
	Report      domain.Report       `json:"report" jsonschema_description:"Structural validation report"`
	Diagnostics []domain.Diagnostic `json:"diagnostics" jsonschema_description:"Parser diagnostics"`
}

// TextResult wraps a single rendered artifact.
type TextResult struct {
	Text string `json:"text" jsonschema_description:"The rendered output"`
}

type flowArgs struct {
	Text string `json:"text"`
}

type serializeArgs struct {
	Graph domain.Graph `json:"graph"`
}

type promptArgs struct {
	Text       string `json:"text"`
	Target     string `json:"target"`
	Strictness string `json:"strictness"`
	Detail     string `json:"detail"`
	Diagram    bool   `json:"diagram"`
	Force      bool   `json:"force"`
}

type diagramArgs struct {
	Text      string `json:"text"`
	Highlight bool   `json:"highlight"`
}

type refineArgs struct {
	Text        string `json:"text"`
	Instruction string `json:"instruction"`
}

type generateFlowArgs struct {
	Description string `json:"description"`
}

type chatArgs struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Server exposes the compiler as MCP tools and the flow stores as resources.
type Server struct {
	compiler  ports.Compiler
	library   ports.FlowStore
	flows     ports.FlowStore
	logger    *slog.Logger
	version   string
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLibrary publishes library flows as resources.
func WithLibrary(s ports.FlowStore) Option {
	return func(srv *Server) { srv.library = s }
}

// WithFlowStore publishes saved flows as resources.
func WithFlowStore(s ports.FlowStore) Option {
	return func(srv *Server) { srv.flows = s }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(srv *Server) { srv.logger = l }
}

// WithVersion sets the version announced to clients.
func WithVersion(v string) Option {
	return func(srv *Server) { srv.version = v }
}

// NewServer creates a new MCP Server instance.
func NewServer(c ports.Compiler, opts ...Option) *Server {
	s := &Server{
		compiler: c,
		logger:   slog.Default(),
		version:  "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer(serverName, strings.TrimSpace(s.version),
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTTL)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func flowText() mcp.ToolOption {
	return mcp.WithString("text", mcp.Required(), mcp.Description("Flow in line notation (INPUT:, PROCESS:, DECISION:, OUTPUT:)"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("parse_flow",
		mcp.WithDescription("Parse a flow written in line notation into a graph. Never fails; problems are listed as diagnostics."),
		flowText(),
		mcp.WithOutputSchema[ParseResult](),
	), mcp.NewStructuredToolHandler(s.handleParse))

	s.mcpServer.AddTool(mcp.NewTool("serialize_flow",
		mcp.WithDescription("Render a graph back into line notation."),
		mcp.WithObject("graph", mcp.Required(), mcp.Description("Graph with nodes and edges")),
		mcp.WithOutputSchema[TextResult](),
	), mcp.NewStructuredToolHandler(s.handleSerialize))

	s.mcpServer.AddTool(mcp.NewTool("validate_flow",
		mcp.WithDescription("Check a flow for structural errors and warnings."),
		flowText(),
		mcp.WithOutputSchema[ValidateResult](),
	), mcp.NewStructuredToolHandler(s.handleValidate))

	s.mcpServer.AddTool(mcp.NewTool("analyze_flow",
		mcp.WithDescription("Validate a flow and report reachability, loops and complexity."),
		flowText(),
		mcp.WithOutputSchema[domain.Analysis](),
	), mcp.NewStructuredToolHandler(s.handleAnalyze))

	s.mcpServer.AddTool(mcp.NewTool("generate_prompt",
		mcp.WithDescription("Turn a valid flow into an implementation prompt for a coding assistant."),
		flowText(),
		mcp.WithString("target", mcp.Enum("code", "architecture", "refactor", "tests"), mcp.Description("What the prompt asks for")),
		mcp.WithString("strictness", mcp.Enum("low", "medium", "high")),
		mcp.WithString("detail", mcp.Enum("brief", "normal", "detailed")),
		mcp.WithBoolean("diagram", mcp.Description("Embed a Mermaid diagram")),
		mcp.WithBoolean("force", mcp.Description("Render even when the flow has validation errors")),
		mcp.WithOutputSchema[TextResult](),
	), mcp.NewStructuredToolHandler(s.handleGenerate))

	s.mcpServer.AddTool(mcp.NewTool("render_diagram",
		mcp.WithDescription("Render a flow as a Mermaid flowchart."),
		flowText(),
		mcp.WithBoolean("highlight", mcp.Description("Mark nodes with issues")),
		mcp.WithOutputSchema[TextResult](),
	), mcp.NewStructuredToolHandler(s.handleDiagram))

	s.mcpServer.AddTool(mcp.NewTool("refine_flow",
		mcp.WithDescription("Ask the configured assistant to improve a flow."),
		flowText(),
		mcp.WithString("instruction", mcp.Description("What to change; defaults to a general review")),
		mcp.WithOutputSchema[domain.Refinement](),
	), mcp.NewStructuredToolHandler(s.handleRefine))

	s.mcpServer.AddTool(mcp.NewTool("generate_flow",
		mcp.WithDescription("Ask the configured assistant to draft a flow from a description."),
		mcp.WithString("description", mcp.Required(), mcp.Description("Plain language description of the process")),
		mcp.WithOutputSchema[domain.Refinement](),
	), mcp.NewStructuredToolHandler(s.handleGenerateFlow))

	s.mcpServer.AddTool(mcp.NewTool("chat_flow",
		mcp.WithDescription("Send one message to a stored refinement session. The session is created on first use."),
		mcp.WithString("session_id", mcp.Required()),
		mcp.WithString("message", mcp.Required()),
		mcp.WithOutputSchema[domain.Refinement](),
	), mcp.NewStructuredToolHandler(s.handleChat))
}

func (s *Server) handleParse(ctx context.Context, _ mcp.CallToolRequest, args flowArgs) (ParseResult, error) {
	g, diags := s.compiler.Parse(ctx, args.Text)
	if diags == nil {
		diags = []domain.Diagnostic{}
	}
	return ParseResult{Graph: g, Diagnostics: diags}, nil
}

func (s *Server) handleSerialize(_ context.Context, _ mcp.CallToolRequest, args serializeArgs) (TextResult, error) {
	return TextResult{Text: s.compiler.Serialize(&args.Graph)}, nil
}

func (s *Server) handleValidate(ctx context.Context, _ mcp.CallToolRequest, args flowArgs) (ValidateResult, error) {
	g, diags := s.compiler.Parse(ctx, args.Text)
	if diags == nil {
		diags = []domain.Diagnostic{}
	}
	return ValidateResult{Report: s.compiler.Validate(ctx, g), Diagnostics: diags}, nil
}

func (s *Server) handleAnalyze(ctx context.Context, _ mcp.CallToolRequest, args flowArgs) (domain.Analysis, error) {
	g, _ := s.compiler.Parse(ctx, args.Text)
	return s.compiler.Analyze(ctx, g), nil
}

func (s *Server) handleGenerate(ctx context.Context, _ mcp.CallToolRequest, args promptArgs) (TextResult, error) {
	g, _ := s.compiler.Parse(ctx, args.Text)
	opts := domain.PromptOptions{
		Target:     domain.PromptTarget(args.Target),
		Strictness: domain.Strictness(args.Strictness),
		Detail:     domain.Detail(args.Detail),
		Diagram:    args.Diagram,
		Force:      args.Force,
	}
	prompt, err := s.compiler.Generate(ctx, g, opts)
	if err != nil {
		var invalid *domain.InvalidGraphError
		if errors.As(err, &invalid) {
			return TextResult{}, fmt.Errorf("%w\n%s", err, issueList(invalid.Report.Errors()))
		}
		return TextResult{}, err
	}
	return TextResult{Text: prompt}, nil
}

func issueList(issues []domain.Issue) string {
	lines := make([]string, 0, len(issues))
	for _, i := range issues {
		lines = append(lines, "- "+i.String())
	}
	return strings.Join(lines, "\n")
}

func (s *Server) handleDiagram(ctx context.Context, _ mcp.CallToolRequest, args diagramArgs) (TextResult, error) {
	g, _ := s.compiler.Parse(ctx, args.Text)
	return TextResult{Text: s.compiler.Diagram(ctx, g, args.Highlight)}, nil
}

func (s *Server) handleRefine(ctx context.Context, _ mcp.CallToolRequest, args refineArgs) (domain.Refinement, error) {
	ref, err := s.compiler.Refine(ctx, args.Text, args.Instruction, nil)
	if err != nil {
		s.logger.Warn("MCP refine failed", "error", err)
		return domain.Refinement{}, err
	}
	return *ref, nil
}

func (s *Server) handleGenerateFlow(ctx context.Context, _ mcp.CallToolRequest, args generateFlowArgs) (domain.Refinement, error) {
	ref, err := s.compiler.GenerateFlow(ctx, args.Description, nil)
	if err != nil {
		s.logger.Warn("MCP generate flow failed", "error", err)
		return domain.Refinement{}, err
	}
	return *ref, nil
}

func (s *Server) handleChat(ctx context.Context, _ mcp.CallToolRequest, args chatArgs) (domain.Refinement, error) {
	if args.SessionID == "" || strings.TrimSpace(args.Message) == "" {
		return domain.Refinement{}, errors.New("session_id and message are required")
	}
	ref, err := s.compiler.Chat(ctx, args.SessionID, args.Message)
	if err != nil {
		s.logger.Warn("MCP chat failed", "session", args.SessionID, "error", err)
		return domain.Refinement{}, err
	}
	return *ref, nil
}

func (s *Server) registerResources() {
	if s.library != nil {
		s.registerStore(libraryURI, "Flow Library", s.library)
	}
	if s.flows != nil {
		s.registerStore(flowsURI, "Saved Flows", s.flows)
	}
}

// registerStore publishes the listing at base and every flow, as notation,
// at base/{id}.
func (s *Server) registerStore(base, name string, store ports.FlowStore) {
	s.mcpServer.AddResource(mcp.NewResource(base, name,
		mcp.WithResourceDescription("Index of available flows"),
		mcp.WithMIMEType(jsonMIME),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list flows: %w", err)
		}
		data, err := json.Marshal(list)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: base, MIMEType: jsonMIME, Text: string(data)},
		}, nil
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(base+"/{id}", name+" Entry",
		mcp.WithTemplateDescription("A single flow in line notation"),
		mcp.WithTemplateMIMEType(flowMIME),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := strings.TrimPrefix(request.Params.URI, base+"/")
		flow, err := store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: flowMIME,
				Text:     s.compiler.Serialize(&flow.Graph),
			},
		}, nil
	})
}
