package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/pubsite/scaffold"
)

var newCmd = &cobra.Command{
	Use:               "new <dir>",
	Short:             "Create a new pubsite project",
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: skipConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Creating new pubsite project: %s\n\n", dir)
		if err := scaffold.Generate(dir, scaffold.NewData(dir, time.Now()), out); err != nil {
			return err
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Done! Next steps:")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  cd %s\n", dir)
		fmt.Fprintln(out, "  pubsite serve")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}
