package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/views"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site locally and rebuild on changes",
	Long: `serve performs an initial build, serves the output directory, and
watches the content, assets, and static directories, rebuilding after changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			appConfig.Addr = serveAddr
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		b := pubsite.New(appConfig, views.Default(), pubsite.WithLogger(logger))
		defer b.Close()
		if _, err := b.Build(ctx); err != nil {
			printProblems(cmd, err)
			return err
		}

		srv := pubsite.NewServer(appConfig.OutputDir, logger)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.Start(appConfig.Addr)
		})
		g.Go(func() error {
			return pubsite.NewWatcher(appConfig, b, logger).Run(gctx)
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":3000", "listen address")
	rootCmd.AddCommand(serveCmd)
}
