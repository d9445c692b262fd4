package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/logging"
)

var (
	cfgFile  string
	logLevel string

	appConfig pubsite.SiteConfig
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pubsite",
	Short: "pubsite builds a static blog from Markdown",
	Long: `pubsite turns a directory of Markdown articles into a static blog:
validated and indexed posts, reading times, responsive images, SEO metadata,
a sitemap and an RSS feed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// skipConfig replaces config loading for commands that run without a project.
func skipConfig(cmd *cobra.Command, args []string) error { return nil }

func initializeConfig(cmd *cobra.Command) error {
	cfg, err := pubsite.LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	appConfig = cfg
	logger = logging.New(cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)
	return nil
}
