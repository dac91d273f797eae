package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aretw0/logicflow/internal/presentation/tui"
	"github.com/aretw0/logicflow/pkg/domain"
)

var refineCmd = &cobra.Command{
	Use:   "refine [file]",
	Short: "Ask the assistant to improve a flow",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		instruction, _ := cmd.Flags().GetString("instruction")
		write, _ := cmd.Flags().GetBool("write")
		if write && (len(args) == 0 || args[0] == "-") {
			return fmt.Errorf("--write needs a file argument")
		}

		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		ref, err := newCompiler(nil, nil).Refine(cmd.Context(), text, instruction, nil)
		if err != nil {
			return err
		}
		if write {
			printRefinementReport(cmd, ref)
			return os.WriteFile(args[0], []byte(trimmed(ref.Text)), 0o644)
		}
		printRefinement(cmd, ref)
		return nil
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate <description>",
	Short: "Ask the assistant to draft a flow from a description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := newCompiler(nil, nil).GenerateFlow(cmd.Context(), strings.Join(args, " "), nil)
		if err != nil {
			return err
		}
		printRefinement(cmd, ref)
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Refine a flow interactively with the assistant",
	Long: `Starts an interactive refinement session. Each message is sent to the
assistant together with the current flow; the answer replaces the flow.
Sessions are stored in the configured store backend and can be resumed
with --session. Type /flow to print the current flow, /quit to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		b, err := openBackends(cmd.Context(), settings.cfg.Store)
		if err != nil {
			return err
		}
		defer b.Close()
		c := newCompiler(b, nil)

		out := cmd.OutOrStdout()
		if isTerminal(out) {
			tui.PrintBanner(out)
		}
		fmt.Fprintf(out, "session %s\n", sessionID)

		conv, err := c.Sessions().LoadOrStart(cmd.Context(), sessionID)
		if err != nil {
			return err
		}
		if conv.FlowText != "" {
			fmt.Fprint(out, trimmed(conv.FlowText))
		}
		return chatLoop(cmd.Context(), cmd.InOrStdin(), out, func(ctx context.Context, line string) error {
			if line == "/flow" {
				conv, err := c.Sessions().Load(ctx, sessionID)
				if err != nil {
					return err
				}
				fmt.Fprint(out, trimmed(conv.FlowText))
				return nil
			}
			ref, err := c.Chat(ctx, sessionID, line)
			if err != nil {
				return err
			}
			printRefinement(cmd, ref)
			return nil
		})
	},
}

// chatLoop reads lines from in until EOF or /quit. Turn errors are printed
// and the loop continues.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, turn func(context.Context, string) error) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		}
		if err := turn(ctx, line); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func init() {
	refineCmd.Flags().StringP("instruction", "i", "", "What to change (default: a general review)")
	refineCmd.Flags().BoolP("write", "w", false, "Write the refined flow back to the file")
	chatCmd.Flags().StringP("session", "s", "", "Resume the session with this id")
	rootCmd.AddCommand(refineCmd, generateCmd, chatCmd)
}

func printRefinement(cmd *cobra.Command, ref *domain.Refinement) {
	fmt.Fprint(cmd.OutOrStdout(), trimmed(ref.Text))
	printRefinementReport(cmd, ref)
}

// printRefinementReport writes diagnostics, findings and the diff to stderr.
func printRefinementReport(cmd *cobra.Command, ref *domain.Refinement) {
	w := cmd.ErrOrStderr()
	p := tui.NewReportPrinter(w, isTerminal(w))
	p.Diagnostics(ref.Diagnostics)
	p.Issues(ref.Report.Issues)
	if d := ref.Diff; d != nil {
		for _, t := range d.Added {
			fmt.Fprintf(w, "+ %s\n", t)
		}
		for _, t := range d.Removed {
			fmt.Fprintf(w, "- %s\n", t)
		}
		for _, t := range d.Changed {
			fmt.Fprintf(w, "~ %s\n", t)
		}
	}
	p.Summary(ref.Report)
}
