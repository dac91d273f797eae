package main

import (
	"io"

	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [file]",
	Short: "Export the flow as a Mermaid diagram",
	Long: `Parses the flow and outputs a Mermaid diagram (graph TD).
With --highlight, nodes with validation findings are styled by severity.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		highlight, _ := cmd.Flags().GetBool("highlight")

		c := newCompiler(nil, nil)
		g, _, err := parseInput(cmd, args, c)
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), trimmed(c.Diagram(cmd.Context(), g, highlight)))
		return err
	},
}

func init() {
	graphCmd.Flags().Bool("highlight", false, "Highlight nodes with errors or warnings")
	rootCmd.AddCommand(graphCmd)
}
