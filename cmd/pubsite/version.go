package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print the pubsite version",
	PersistentPreRunE: skipConfig,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pubsite %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
