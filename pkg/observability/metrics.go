package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors fed by NewHooks.
type Metrics struct {
	gatherer prometheus.Gatherer

	Parses            prometheus.Counter
	ParseDiagnostics  *prometheus.CounterVec
	GraphNodes        prometheus.Histogram
	Validations       *prometheus.CounterVec
	Issues            *prometheus.CounterVec
	Renders           *prometheus.CounterVec
	AssistantCalls    *prometheus.CounterVec
	AssistantDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// Passing a *prometheus.Registry also makes Handler serve it.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Parses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logicflow_parses_total",
			Help: "Total number of notation texts parsed",
		}),
		ParseDiagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logicflow_parse_diagnostics_total",
			Help: "Parser diagnostics by kind",
		}, []string{"kind"}),
		GraphNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "logicflow_graph_nodes",
			Help:    "Number of nodes in parsed graphs",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 250},
		}),
		Validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logicflow_validations_total",
			Help: "Validation runs by outcome",
		}, []string{"valid"}),
		Issues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logicflow_validation_issues_total",
			Help: "Validation issues by rule and severity",
		}, []string{"rule", "severity"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logicflow_renders_total",
			Help: "Rendered prompts and diagrams by format",
		}, []string{"format"}),
		AssistantCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logicflow_assistant_calls_total",
			Help: "Assistant round trips by operation and outcome",
		}, []string{"operation", "outcome"}),
		AssistantDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "logicflow_assistant_duration_seconds",
			Help:    "Duration of assistant round trips",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"operation"}),
	}

	reg.MustRegister(
		m.Parses, m.ParseDiagnostics, m.GraphNodes,
		m.Validations, m.Issues, m.Renders,
		m.AssistantCalls, m.AssistantDuration,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}
	return m
}

// Handler serves the registry the metrics were registered on.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
