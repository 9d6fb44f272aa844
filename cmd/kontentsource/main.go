// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point of the kontentsource CLI. It loads
// content from the Kontent.ai Delivery API into a node store and serves the
// resulting graph over HTTP.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"kontentsource/internal/config"
	"kontentsource/internal/handlers"
	"kontentsource/internal/router"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "kontentsource",
		Short: "Load Kontent.ai content into a node graph",
		Long: `kontentsource pulls content items, assets and taxonomies from the
Kontent.ai Delivery API and projects them into a node graph.

Examples:
  kontentsource load --config kontentsource.yaml
  kontentsource serve --load
  KONTENT_PROJECT_ID=... kontentsource serve
`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("KONTENTSOURCE_CONFIG"), "Path to a YAML config file")

	cmd.AddCommand(loadCmd(&configPath))
	cmd.AddCommand(serveCmd(&configPath))
	cmd.AddCommand(versionCmd())

	return cmd
}

func loadCmd(configPath *string) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Run the ingestion pipeline once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if refresh {
				a.InvalidateCache(ctx)
			}
			if err := a.Load(ctx); err != nil {
				return err
			}
			return a.LogSummary(ctx)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Drop cached Delivery API responses before loading")
	return cmd
}

func serveCmd(configPath *string) *cobra.Command {
	var load bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the node graph over HTTP",
		Long: `Serve the node graph over HTTP. The in-memory store is always loaded
first; database stores serve what a previous load wrote unless --load is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if load || a.cfg.Store.Driver == config.DriverMemory {
				if err := a.Load(ctx); err != nil {
					return err
				}
			} else if err := a.source.DeclareFields(ctx, a.store); err != nil {
				return err
			}

			return serve(a)
		},
	}

	cmd.Flags().BoolVar(&load, "load", false, "Run the ingestion pipeline before serving")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "kontentsource", version)
		},
	}
}

// serve runs the HTTP server until SIGINT or SIGTERM, then drains
// connections.
func serve(a *app) error {
	api := handlers.NewAPI(a.store, a.loadRuns, a.cfg.Schema.ItemLinkTypeName, a.logger)
	r := router.New(api, a.registry, a.logger)

	// Create the HTTP server with sensible timeouts.
	srv := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	errc := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "addr", a.cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		a.logger.Info("shutdown signal received", "signal", sig)
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
	}

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	a.logger.Info("server stopped gracefully")
	return nil
}
