package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aretw0/logicflow/pkg/domain"
	"github.com/aretw0/logicflow/pkg/ports"
)

var flowsCmd = &cobra.Command{
	Use:   "flows",
	Short: "Manage saved flows",
	Long:  `List, show, save and remove flows kept in the configured store backend.`,
}

var flowsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List saved flows, most recently updated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFlowStore(cmd, func(store ports.FlowStore) error {
			return listFlows(cmd, store)
		})
	},
}

var flowsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved flow in notation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFlowStore(cmd, func(store ports.FlowStore) error {
			return showFlow(cmd, store, args[0])
		})
	},
}

var flowsSaveCmd = &cobra.Command{
	Use:   "save <file>",
	Short: "Save a flow file to the store",
	Long: `Parses the file and saves it. The id defaults to a new UUID; saving with
an existing --id replaces that flow and keeps its creation time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		title, _ := cmd.Flags().GetString("title")

		return withFlowStore(cmd, func(store ports.FlowStore) error {
			g, _, err := parseInput(cmd, args, newCompiler(nil, nil))
			if err != nil {
				return err
			}
			if id == "" {
				id = uuid.NewString()
			}
			if title == "" {
				title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			now := time.Now().UTC()
			flow := &domain.Flow{
				ID:        id,
				Title:     title,
				Graph:     *g,
				Layout:    domain.DefaultLayout(g),
				CreatedAt: now,
				UpdatedAt: now,
			}
			if existing, err := store.Get(cmd.Context(), id); err == nil {
				flow.CreatedAt = existing.CreatedAt
				flow.Layout = existing.Layout
			}
			if err := store.Save(cmd.Context(), flow); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}

var flowsRmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Remove one or more saved flows",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFlowStore(cmd, func(store ports.FlowStore) error {
			hasError := false
			for _, id := range args {
				if err := store.Delete(cmd.Context(), id); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", id, err)
					hasError = true
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed flow '%s'\n", id)
			}
			if hasError {
				return fmt.Errorf("some flows could not be removed")
			}
			return nil
		})
	},
}

func init() {
	flowsSaveCmd.Flags().String("id", "", "Flow id (default: new UUID)")
	flowsSaveCmd.Flags().String("title", "", "Flow title (default: file name)")
	flowsCmd.AddCommand(flowsLsCmd, flowsShowCmd, flowsSaveCmd, flowsRmCmd)
	rootCmd.AddCommand(flowsCmd)
}

func withFlowStore(cmd *cobra.Command, fn func(ports.FlowStore) error) error {
	if settings.cfg.Store.Backend == "memory" {
		fmt.Fprintln(cmd.ErrOrStderr(), "note: the memory backend forgets flows when the command exits; use --store file")
	}
	b, err := openBackends(cmd.Context(), settings.cfg.Store)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(b.flows)
}

func listFlows(cmd *cobra.Command, store ports.FlowStore) error {
	list, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No flows found.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tUPDATED")
	for _, s := range list {
		updated := "-"
		if !s.UpdatedAt.IsZero() {
			updated = s.UpdatedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Title, updated)
	}
	return tw.Flush()
}

func showFlow(cmd *cobra.Command, store ports.FlowStore, id string) error {
	flow, err := store.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to load flow '%s': %w", id, err)
	}
	fmt.Fprint(cmd.OutOrStdout(), trimmed(newCompiler(nil, nil).Serialize(&flow.Graph)))
	return nil
}

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Browse the read-only flow library",
	Long: `The library is a directory of markdown flow files (library.path in the
config). Front matter may set title, description, tags and anchors.`,
}

var libraryLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List library flows",
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := requireLibrary()
		if err != nil {
			return err
		}
		return listFlows(cmd, lib)
	},
}

var libraryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a library flow in notation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := requireLibrary()
		if err != nil {
			return err
		}
		return showFlow(cmd, lib, args[0])
	},
}

func init() {
	libraryCmd.PersistentFlags().String("path", "", "Library directory (overrides library.path)")
	libraryCmd.AddCommand(libraryLsCmd, libraryShowCmd)
	rootCmd.AddCommand(libraryCmd)
}

func requireLibrary() (ports.FlowStore, error) {
	cfg := settings.cfg
	if p, _ := libraryCmd.PersistentFlags().GetString("path"); p != "" {
		cfg.Library.Path = p
	}
	lib, err := openLibrary(cfg)
	if err != nil {
		return nil, err
	}
	if lib == nil {
		return nil, fmt.Errorf("library directory %q not found", cfg.Library.Path)
	}
	return lib, nil
}
