package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/logicflow/internal/presentation/tui"
	"github.com/aretw0/logicflow/pkg/domain"
)

var promptCmd = &cobra.Command{
	Use:   "prompt [file]",
	Short: "Turn a flow into an implementation prompt",
	Long: `Renders the flow as a markdown prompt for a coding assistant. The flow must
be valid unless --force is given. On a terminal the prompt is rendered;
use --raw to print plain markdown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		raw, _ := flags.GetBool("raw")
		target, _ := flags.GetString("target")
		strictness, _ := flags.GetString("strictness")
		detail, _ := flags.GetString("detail")
		diagram, _ := flags.GetBool("diagram")
		force, _ := flags.GetBool("force")

		opts := domain.PromptOptions{
			Target:     domain.PromptTarget(target),
			Strictness: domain.Strictness(strictness),
			Detail:     domain.Detail(detail),
			Force:      force,
		}
		if flags.Changed("diagram") {
			opts.Diagram = diagram
		} else {
			opts.Diagram = settings.cfg.Prompt.Diagram
		}

		c := newCompiler(nil, nil)
		g, _, err := parseInput(cmd, args, c)
		if err != nil {
			return err
		}

		out, err := c.Generate(cmd.Context(), g, opts)
		var invalid *domain.InvalidGraphError
		if errors.As(err, &invalid) {
			w := cmd.ErrOrStderr()
			tui.NewReportPrinter(w, isTerminal(w)).Issues(invalid.Report.Errors())
			return errInvalid
		}
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if !raw && isTerminal(w) {
			if rendered, err := tui.NewRenderer()(out); err == nil {
				out = rendered
			}
		}
		_, err = io.WriteString(w, trimmed(out))
		return err
	},
}

func init() {
	flags := promptCmd.Flags()
	flags.StringP("target", "t", "", "What to ask for: code, architecture, refactor, tests")
	flags.String("strictness", "", "How literally to follow the flow: low, medium, high")
	flags.String("detail", "", "Output requirements: brief, normal, detailed")
	flags.Bool("diagram", false, "Embed a Mermaid diagram")
	flags.Bool("force", false, "Render even when the flow has validation errors")
	flags.Bool("raw", false, "Print plain markdown even on a terminal")
	rootCmd.AddCommand(promptCmd)
}
