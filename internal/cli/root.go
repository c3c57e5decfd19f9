// Package cli provides the command-line interface for procview.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/procview/internal/client"
	"github.com/raphaelgruber/procview/internal/config"
	"github.com/raphaelgruber/procview/internal/metrics"
	"github.com/raphaelgruber/procview/internal/service"
	"github.com/raphaelgruber/procview/internal/store"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Per-invocation state, set up in PersistentPreRunE
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	kv         store.Store
	collector  *metrics.Collector
	library    *service.Library
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "procview",
	Short: "Terminal viewer for branching technical procedures",
	Long: `Procview browses, searches and walks through step-by-step technical
procedures published by the procedure backend.

Procedures are made of steps and decisions; answering a decision jumps to
the step it points at. The last five opened procedures and the folder tree
are cached locally so they stay available offline.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return setup(cmd.Context(), cmd.ErrOrStderr())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if verbose && collector != nil {
			printStats(cmd.ErrOrStderr(), collector.Snapshot())
		}
		teardown()
	},
}

// setup loads configuration and opens the store, backend client and library.
func setup(ctx context.Context, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := cfg.LogLevel
	var console io.Writer
	if verbose {
		console = stderr
		level = min(level, slog.LevelDebug)
	}
	logger, logCleanup = config.SetupLogger(cfg.LogFile, level, console)
	logger.Debug("config loaded", "source", cfg.Source, "store", cfg.StoreDriver, "backend", cfg.BackendURL)

	base, err := store.Open(ctx, store.Options{
		Driver: cfg.StoreDriver,
		Path:   cfg.StorePath,
		Surreal: store.SurrealConfig{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	collector = metrics.NewCollector()
	kv = store.WithMetrics(base, collector)

	backend := client.New(cfg.BackendURL, cfg.HTTPTimeout,
		client.WithMetrics(collector),
		client.WithLogger(logger),
	)
	library = service.NewLibrary(backend, kv, logger)
	return nil
}

func teardown() {
	if kv != nil {
		if err := kv.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
		}
		kv = nil
	}
	if logCleanup != nil {
		_ = logCleanup()
		logCleanup = nil
	}
	library = nil
	collector = nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "procview %s\n", Version)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Resources are released even when a command fails, since cobra skips
// PersistentPostRun on error.
func Execute() error {
	defer teardown()
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr and print operation timings")

	// Add subcommands
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(foldersCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(barcodeCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(versionCmd)
}
