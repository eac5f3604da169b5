// Command wardcore runs the hospital operations API and its maintenance tasks.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wardcore/internal/adapters/exports"
	"wardcore/internal/adapters/httpapi"
	"wardcore/internal/blob"
	"wardcore/internal/config"
	"wardcore/internal/core"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wardcore",
		Short:         "Hospital operations data store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file read before the environment")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(analyticsCmd())
	rootCmd.AddCommand(exportCmd())
	return rootCmd
}

// app holds the wiring shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	blobs    blob.Store
	store    core.PersistentStore
	svc      *core.Service
	registry *prometheus.Registry
	trace    *os.File
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	logger := zerolog.New(out).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}
	return logger.Level(cfg.Level())
}

func setup(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.LoadFile(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg, os.Stderr)

	blobs, err := blob.Open(ctx, cfg.BlobOptions())
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	store, err := core.OpenPersistentStore(ctx, cfg.StorageOptions(blobs), core.NewDefaultRulesEngine())
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StorageDriver, err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := core.NewPrometheusMetricsRecorder(registry)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	opts := []core.Option{
		core.WithLogger(logger),
		core.WithMetrics(metrics),
		core.WithArchiver(core.NewBlobArchiver(blobs)),
		core.WithRetention(cfg.Retention()),
	}
	var trace *os.File
	if cfg.TraceFile != "" {
		trace, err = os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("open trace file: %w", err)
		}
		opts = append(opts, core.WithTracer(core.NewJSONTracer(trace)))
	}

	svc := core.NewService(store, opts...)
	logger.Debug().
		Str("storage", cfg.StorageDriver).
		Str("blob", cfg.BlobDriver).
		Uint64("version", svc.Version()).
		Msg("store opened")
	return &app{cfg: cfg, logger: logger, blobs: blobs, store: store, svc: svc, registry: registry, trace: trace}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error().Err(err).Msg("close store")
	}
	if a.trace != nil {
		if err := a.trace.Close(); err != nil {
			a.logger.Error().Err(err).Msg("close trace file")
		}
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if seeded, err := a.svc.SeedIfEmpty(cmd.Context()); err != nil {
				return err
			} else if seeded {
				a.logger.Info().Msg("no persisted state found, loaded sample data")
			}

			worker := exports.NewWorker(a.svc, a.blobs, exports.WithLogger(a.logger))
			worker.Start()

			e := httpapi.NewServer(httpapi.ServerOptions{
				Service:  a.svc,
				Exports:  worker,
				Logger:   a.logger,
				Gatherer: a.registry,
			})

			addr := ":" + a.cfg.Port
			go func() {
				a.logger.Info().Str("addr", addr).Msg("starting server")
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.logger.Fatal().Err(err).Msg("server failed")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			a.logger.Info().Msg("shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := e.Shutdown(ctx); err != nil {
				a.logger.Error().Err(err).Msg("server shutdown failed")
			}
			if err := worker.Stop(ctx); err != nil {
				a.logger.Error().Err(err).Msg("export worker shutdown failed")
			}
			a.logger.Info().Msg("server stopped")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the sample dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if force {
				return a.svc.Seed(cmd.Context())
			}
			seeded, err := a.svc.SeedIfEmpty(cmd.Context())
			if err != nil {
				return err
			}
			if !seeded {
				a.logger.Warn().Msg("store already holds data; use --force to replace it")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace existing state")
	return cmd
}

func analyticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Print dashboard analytics as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a.svc.GetAnalytics())
		},
	}
}

func exportCmd() *cobra.Command {
	var formats []string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a snapshot export to the blob store",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			req := exports.Request{RequestedBy: "cli"}
			for _, f := range formats {
				req.Formats = append(req.Formats, exports.Format(f))
			}
			worker := exports.NewWorker(a.svc, a.blobs, exports.WithLogger(a.logger))
			record, err := worker.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			for _, art := range record.Artifacts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d rows\t%d bytes\n", art.Key, art.Rows, art.SizeBytes)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&formats, "format", []string{"json", "csv"}, "export formats (json, csv)")
	return cmd
}
