package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/aretw0/logicflow/pkg/domain"
)

// ReportPrinter writes validation findings to a terminal.
type ReportPrinter struct {
	out *termenv.Output
}

// NewReportPrinter colours output according to the terminal behind w.
// Pass color=false to force plain text (pipes, tests).
func NewReportPrinter(w io.Writer, color bool) *ReportPrinter {
	opts := []termenv.OutputOption{}
	if !color {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	return &ReportPrinter{out: termenv.NewOutput(w, opts...)}
}

// Diagnostics prints parser diagnostics, one per line.
func (p *ReportPrinter) Diagnostics(diags []domain.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(p.out, "%s %s\n", p.out.String("note").Foreground(p.out.Color("#60a5fa")), d)
	}
}

// Issues prints issues grouped by severity, errors first.
func (p *ReportPrinter) Issues(issues []domain.Issue) {
	r := domain.Report{Issues: issues}
	for _, i := range append(r.Errors(), r.Warnings()...) {
		fmt.Fprintf(p.out, "%s %s\n", p.badge(i.Severity), p.describe(i))
	}
}

// Summary prints the final verdict line.
func (p *ReportPrinter) Summary(r domain.Report) {
	errs, warns := len(r.Errors()), len(r.Warnings())
	if r.Valid {
		fmt.Fprintf(p.out, "%s (%d warnings)\n", p.out.String("✓ flow is valid").Foreground(p.out.Color("#22c55e")).Bold(), warns)
		return
	}
	fmt.Fprintf(p.out, "%s (%d errors, %d warnings)\n", p.out.String("✗ flow is invalid").Foreground(p.out.Color("#ef4444")).Bold(), errs, warns)
}

func (p *ReportPrinter) badge(s domain.Severity) termenv.Style {
	if s == domain.SeverityError {
		return p.out.String("error  ").Foreground(p.out.Color("#ef4444")).Bold()
	}
	return p.out.String("warning").Foreground(p.out.Color("#f59e0b"))
}

func (p *ReportPrinter) describe(i domain.Issue) string {
	if i.NodeID == "" {
		return fmt.Sprintf("[%s] %s", i.Rule, i.Message)
	}
	return fmt.Sprintf("[%s] %s (%s)", i.Rule, i.Message, i.NodeID)
}
