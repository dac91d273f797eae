package observability

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/aretw0/logicflow/internal/logging"
	"github.com/aretw0/logicflow/pkg/domain"
)

// NewHooks returns lifecycle hooks that record into m and log each event at
// debug level (assistant failures at warn). Either argument may be nil.
func NewHooks(m *Metrics, logger *slog.Logger) domain.LifecycleHooks {
	if logger == nil {
		logger = logging.NewNop()
	}

	return domain.LifecycleHooks{
		OnParsed: func(ctx context.Context, e *domain.ParseEvent) {
			logger.DebugContext(ctx, "parsed",
				"nodes", e.Nodes,
				"edges", e.Edges,
				"diagnostics", len(e.Diagnostics),
			)
			if m == nil {
				return
			}
			m.Parses.Inc()
			m.GraphNodes.Observe(float64(e.Nodes))
			for _, d := range e.Diagnostics {
				m.ParseDiagnostics.WithLabelValues(string(d.Kind)).Inc()
			}
		},
		OnValidated: func(ctx context.Context, e *domain.ValidateEvent) {
			logger.DebugContext(ctx, "validated",
				"valid", e.Report.Valid,
				"errors", len(e.Report.Errors()),
				"warnings", len(e.Report.Warnings()),
			)
			if m == nil {
				return
			}
			m.Validations.WithLabelValues(strconv.FormatBool(e.Report.Valid)).Inc()
			for _, i := range e.Report.Issues {
				m.Issues.WithLabelValues(string(i.Rule), string(i.Severity)).Inc()
			}
		},
		OnGenerated: func(ctx context.Context, e *domain.GenerateEvent) {
			logger.DebugContext(ctx, "generated", "format", e.Format, "bytes", e.Bytes)
			if m == nil {
				return
			}
			m.Renders.WithLabelValues(e.Format).Inc()
		},
		OnAssistantCall: func(ctx context.Context, e *domain.AssistantEvent) {
			outcome := "ok"
			if e.Err != nil {
				outcome = "error"
				logger.WarnContext(ctx, "assistant call failed",
					"operation", e.Operation,
					"duration", e.Duration,
					"err", e.Err,
				)
			} else {
				logger.DebugContext(ctx, "assistant call", "operation", e.Operation, "duration", e.Duration)
			}
			if m == nil {
				return
			}
			m.AssistantCalls.WithLabelValues(e.Operation, outcome).Inc()
			m.AssistantDuration.WithLabelValues(e.Operation).Observe(e.Duration.Seconds())
		},
	}
}
