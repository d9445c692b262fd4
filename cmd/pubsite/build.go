package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/views"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the site into the output directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		b := pubsite.New(appConfig, views.Default(), pubsite.WithLogger(logger))
		defer b.Close()

		res, err := b.Build(cmd.Context())
		if err != nil {
			printProblems(cmd, err)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Built %s: %s\n", res.OutputDir, res.Summary())
		return nil
	},
}

// printProblems lists every file-attributed indexing problem, one per line.
func printProblems(cmd *cobra.Command, err error) {
	var ie *pubsite.IndexError
	if !errors.As(err, &ie) {
		return
	}
	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "%d problem(s) found:\n", len(ie.Problems))
	for _, p := range ie.Problems {
		fmt.Fprintf(w, "  [%s] %v\n", p.Kind, p.Err)
	}
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
