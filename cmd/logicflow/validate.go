package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/logicflow/internal/presentation/tui"
	"github.com/aretw0/logicflow/pkg/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a flow for structural problems",
	Long: `Runs the structural checks: at least one Output, complete YES/NO branches,
isolated nodes, dead ends and a missing Input. With --deep it also reports
unreachable nodes, loops and a complexity score.

Exits with status 1 when the flow has errors.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deep, _ := cmd.Flags().GetBool("deep")
		format, _ := cmd.Flags().GetString("format")

		c := newCompiler(nil, nil)
		g, _, err := parseInput(cmd, args, c)
		if err != nil {
			return err
		}

		var (
			report domain.Report
			result any
		)
		if deep {
			a := c.Analyze(cmd.Context(), g)
			report = domain.NewReport(append(append([]domain.Issue{}, a.Report.Issues...), a.Deep...))
			result = a
		} else {
			report = c.Validate(cmd.Context(), g)
			result = report
		}

		if format == "text" {
			w := cmd.OutOrStdout()
			p := tui.NewReportPrinter(w, isTerminal(w))
			p.Issues(report.Issues)
			if a, ok := result.(domain.Analysis); ok {
				printAnalysis(cmd, a)
			}
			p.Summary(report)
		} else if err := writeStructured(cmd.OutOrStdout(), format, result); err != nil {
			return err
		}

		if !report.Valid {
			return errInvalid
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().Bool("deep", false, "Also check reachability, loops and complexity")
	validateCmd.Flags().StringP("format", "f", "text", "Output format: text, json or yaml")
	rootCmd.AddCommand(validateCmd)
}

func printAnalysis(cmd *cobra.Command, a domain.Analysis) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "inputs:     %s\n", list(a.Inputs))
	fmt.Fprintf(w, "decisions:  %s\n", list(a.Decisions))
	fmt.Fprintf(w, "outputs:    %s\n", list(a.Outputs))
	fmt.Fprintf(w, "complexity: %d\n", a.Complexity)
}

func list(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
