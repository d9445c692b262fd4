package main

import (
	"github.com/spf13/cobra"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/views"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the output directory and the image cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		return pubsite.New(appConfig, views.Default(), pubsite.WithLogger(logger)).Clean()
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
