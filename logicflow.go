package logicflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/logicflow/internal/compiler"
	"github.com/aretw0/logicflow/internal/logging"
	"github.com/aretw0/logicflow/internal/presentation/graph"
	"github.com/aretw0/logicflow/internal/presentation/prompt"
	"github.com/aretw0/logicflow/internal/validator"
	"github.com/aretw0/logicflow/pkg/adapters/memory"
	"github.com/aretw0/logicflow/pkg/domain"
	"github.com/aretw0/logicflow/pkg/ports"
	"github.com/aretw0/logicflow/pkg/session"
)

var _ ports.Compiler = (*Compiler)(nil)

// Compiler is the high-level entry point of the library.
// It is safe for concurrent use once constructed.
type Compiler struct {
	mode      compiler.Mode
	prompt    domain.PromptOptions
	assistant ports.Assistant
	sessions  *session.Manager
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Compiler.
type Option func(*Compiler)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithMode replaces the whole parser mode.
func WithMode(mode compiler.Mode) Option {
	return func(c *Compiler) {
		c.mode = mode
	}
}

// WithAnchors makes the parser add Start and End nodes.
func WithAnchors(on bool) Option {
	return func(c *Compiler) {
		c.mode.SynthesizeAnchors = on
	}
}

// WithFallbackLines turns unreadable lines into Process nodes instead of diagnostics.
func WithFallbackLines(on bool) Option {
	return func(c *Compiler) {
		c.mode.FallbackLineAsProcess = on
	}
}

// WithAssistant enables Refine, GenerateFlow and Chat.
func WithAssistant(a ports.Assistant) Option {
	return func(c *Compiler) {
		c.assistant = a
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Compiler) {
		c.hooks = hooks
	}
}

// WithSessions sets the manager backing Chat. The default keeps
// conversations in memory.
func WithSessions(m *session.Manager) Option {
	return func(c *Compiler) {
		c.sessions = m
	}
}

// WithPromptOptions sets the options Generate falls back to for empty fields.
func WithPromptOptions(opts domain.PromptOptions) Option {
	return func(c *Compiler) {
		c.prompt = opts
	}
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{prompt: domain.DefaultPromptOptions()}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.sessions == nil {
		c.sessions = session.NewManager(memory.NewStore(), session.WithLogger(c.logger))
	}
	return c
}

// Mode reports the parser mode in use.
func (c *Compiler) Mode() compiler.Mode {
	return c.mode
}

// Sessions returns the manager backing Chat.
func (c *Compiler) Sessions() *session.Manager {
	return c.sessions
}

// Parse converts notation into a graph. Findings are returned as diagnostics.
func (c *Compiler) Parse(ctx context.Context, text string) (*domain.Graph, []domain.Diagnostic) {
	res := compiler.Parse(text, c.mode)
	for _, d := range res.Diagnostics {
		c.logger.DebugContext(ctx, "parse diagnostic", "kind", d.Kind, "line", d.Line, "message", d.Message)
	}
	if c.hooks.OnParsed != nil {
		c.hooks.OnParsed(ctx, &domain.ParseEvent{
			EventBase:   domain.EventBase{Timestamp: time.Now(), Type: domain.EventParsed},
			Nodes:       len(res.Graph.Nodes),
			Edges:       len(res.Graph.Edges),
			Diagnostics: res.Diagnostics,
		})
	}
	return res.Graph, res.Diagnostics
}

// Serialize renders g back into notation. Anchors are left out.
func (c *Compiler) Serialize(g *domain.Graph) string {
	return compiler.Serialize(g)
}

// Validate runs the structural checks.
func (c *Compiler) Validate(ctx context.Context, g *domain.Graph) domain.Report {
	report := validator.Validate(g)
	c.validated(ctx, report)
	return report
}

// Analyze runs Validate plus reachability, cycle and complexity analysis.
func (c *Compiler) Analyze(ctx context.Context, g *domain.Graph) domain.Analysis {
	a := validator.Analyze(g)
	c.validated(ctx, a.Report)
	return a
}

func (c *Compiler) validated(ctx context.Context, report domain.Report) {
	if c.hooks.OnValidated != nil {
		c.hooks.OnValidated(ctx, &domain.ValidateEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventValidated},
			Report:    report,
		})
	}
}

// Generate renders the assistant prompt for g. Empty option fields fall
// back to the compiler's prompt options. A graph with validation errors is
// refused with *domain.InvalidGraphError unless opts.Force is set.
func (c *Compiler) Generate(ctx context.Context, g *domain.Graph, opts domain.PromptOptions) (string, error) {
	opts = c.promptOptions(opts)
	if err := opts.Validate(); err != nil {
		return "", err
	}
	if !opts.Force {
		if report := c.Validate(ctx, g); !report.Valid {
			return "", &domain.InvalidGraphError{Report: report}
		}
	}

	out := prompt.Generate(g, opts)
	c.generated(ctx, "prompt", out)
	return out, nil
}

func (c *Compiler) promptOptions(opts domain.PromptOptions) domain.PromptOptions {
	if opts.Target == "" {
		opts.Target = c.prompt.Target
	}
	if opts.Strictness == "" {
		opts.Strictness = c.prompt.Strictness
	}
	if opts.Detail == "" {
		opts.Detail = c.prompt.Detail
	}
	opts.Diagram = opts.Diagram || c.prompt.Diagram
	return opts.WithDefaults()
}

// Diagram renders a Mermaid flowchart. With highlight, nodes carrying
// validation or analysis findings are styled by severity.
func (c *Compiler) Diagram(ctx context.Context, g *domain.Graph, highlight bool) string {
	var overlay *graph.Overlay
	if highlight {
		a := c.Analyze(ctx, g)
		overlay = graph.NewOverlay(a.Report.Issues, a.Deep)
	}
	out := graph.GenerateMermaid(g, overlay)
	c.generated(ctx, "mermaid", out)
	return out
}

func (c *Compiler) generated(ctx context.Context, format, out string) {
	if c.hooks.OnGenerated != nil {
		c.hooks.OnGenerated(ctx, &domain.GenerateEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventGenerated},
			Format:    format,
			Bytes:     len(out),
		})
	}
}
