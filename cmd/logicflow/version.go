package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/logicflow"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of logicflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "logicflow version %s\n", strings.TrimSpace(logicflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
