// Package app wires echo's CLI commands together: catalog import, usage
// tracking, recommendation runs, and history inspection.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/echo-systems/echo/internal/config"
	"github.com/echo-systems/echo/internal/store"
)

var (
	dbPath  string
	verbose bool

	// RootCmd is the root command for echo
	RootCmd = &cobra.Command{
		Use:   "echo",
		Short: "Package recommendations from usage, similarity, and AI signals",
		Long: `echo learns which packages you actually use and recommends new ones.

It fuses three signals into a single ranked list:
  • usage statistics (how often and how recently you run things)
  • similarity to your installed set (shared tags and dependencies)
  • AI suggestions for your described workflow

Quick Start:
  1. echo import --catalog catalog.yaml --manifest installed.yaml
  2. echo watch          # keep this running to track usage
  3. echo recommend "data analysis and plotting"

Examples:
  # Import a package catalog and your installed manifest
  echo import --catalog catalog.yaml --manifest installed.yaml

  # Get recommendations for a workflow
  echo recommend "web scraping with scheduled jobs"

  # Inspect usage-ranked packages
  echo stats

  # Review past recommendation runs
  echo history`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("echo: package recommendations from usage, similarity, and AI signals")
			fmt.Println()
			fmt.Println("Run 'echo recommend \"<workflow>\"' to get recommendations.")
			fmt.Println("Run 'echo --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: ~/.echo/echo.db)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	RootCmd.SuggestionsMinimumDistance = 2

	RootCmd.AddCommand(importCmd)
	RootCmd.AddCommand(recommendCmd)
	RootCmd.AddCommand(statsCmd)
	RootCmd.AddCommand(historyCmd)
	RootCmd.AddCommand(recordCmd)
	RootCmd.AddCommand(watchCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// getDataDir returns ~/.echo, creating it if needed.
func getDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(home, ".echo")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create echo directory: %w", err)
	}
	return dir, nil
}

// getDBPath returns the database path, using the --db flag, then the config
// file, then the default under ~/.echo.
func getDBPath(cfg *config.Config) (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if cfg != nil && cfg.DBPath != "" {
		return cfg.DBPath, nil
	}

	dir, err := getDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "echo.db"), nil
}

// openStore opens the database and ensures the schema exists.
func openStore(cfg *config.Config) (*store.Store, error) {
	path, err := getDBPath(cfg)
	if err != nil {
		return nil, err
	}

	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.CreateSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create database schema: %w", err)
	}
	return db, nil
}

// newLogger builds the CLI logger. Debug level with --verbose, warnings and
// up otherwise, always to stderr so table output stays clean on stdout.
func newLogger() *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}
