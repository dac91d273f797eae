package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/logicflow/internal/config"
	"github.com/aretw0/logicflow/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "logicflow",
	Short: "logicflow compiles plain-text logic flows into graphs, diagrams and prompts",
	Long: `logicflow reads flows written in a small line notation
(INPUT:, PROCESS:, DECISION: with YES/NO branches, OUTPUT:),
checks them for structural problems and turns them into Mermaid diagrams
or implementation prompts. An Ollama-compatible assistant can refine flows.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

// settings is filled once per invocation by loadSettings.
var settings struct {
	cfg    config.Config
	logger *slog.Logger
}

// errInvalid marks a command that ran but found validation errors.
var errInvalid = errors.New("flow has validation errors")

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to the configuration file (default logicflow.yaml)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("store", "", "Store backend: memory, file, redis, postgres")
	flags.Bool("anchors", false, "Add synthetic Start/End nodes around the flow")
	flags.Bool("fallback-lines", false, "Treat unrecognized lines as Process nodes")
	flags.String("endpoint", "", "Assistant endpoint (Ollama-compatible)")
	flags.String("model", "", "Assistant model")
}

func loadSettings(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := flags.GetString("store"); v != "" {
		cfg.Store.Backend = v
	}
	if flags.Changed("anchors") {
		cfg.Parser.SynthesizeAnchors, _ = flags.GetBool("anchors")
	}
	if flags.Changed("fallback-lines") {
		cfg.Parser.FallbackLineAsProcess, _ = flags.GetBool("fallback-lines")
	}
	if v, _ := flags.GetString("endpoint"); v != "" {
		cfg.Assistant.Endpoint = v
	}
	if v, _ := flags.GetString("model"); v != "" {
		cfg.Assistant.Model = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	// Logs go to stderr so stdout stays clean for notation, JSON and MCP stdio.
	settings.cfg = cfg
	settings.logger = logging.NewWithWriter(os.Stderr, level, cfg.Log.JSON)
	slog.SetDefault(settings.logger)
	return nil
}

// readInput returns the notation named by args: a file path, "-" or nothing
// for stdin.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read flow: %w", err)
		}
		return string(data), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", errors.New("no input: pass a flow file or pipe notation on stdin")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// isTerminal reports whether w is an interactive terminal, which enables
// colour and markdown rendering.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func trimmed(s string) string {
	return strings.TrimRight(s, "\n") + "\n"
}
