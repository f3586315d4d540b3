package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/echo-systems/echo/internal/config"
	"github.com/echo-systems/echo/internal/output"
	"github.com/echo-systems/echo/internal/recommender"
	"github.com/echo-systems/echo/internal/suggest"
)

var (
	recommendFormat string
	recommendLimit  int

	recommendCmd = &cobra.Command{
		Use:   "recommend <workflow description>",
		Short: "Recommend packages for a described workflow",
		Long: `Run the recommendation engine for a workflow description.

The engine scores candidates by similarity to your installed packages,
weighted by how much you actually use them, and asks the configured AI
backend for suggestions matching the workflow. Both signals are fused into
one ranked list. When no backend is configured (or it is unreachable), the
run falls back to similarity only.

Each run is saved with a run ID; see 'echo history'.`,
		Example: `  # Table output
  echo recommend "data analysis and plotting"

  # Machine-readable output
  echo recommend --format json "web scraping with scheduled jobs"

  # Cap the list
  echo recommend --limit 5 "testing http services"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRecommend,
	}
)

func init() {
	recommendCmd.Flags().StringVar(&recommendFormat, "format", output.FormatTable, "output format: table, json, or yaml")
	recommendCmd.Flags().IntVar(&recommendLimit, "limit", 0, "max recommendations (default from config)")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	workflow := strings.TrimSpace(strings.Join(args, " "))
	if workflow == "" {
		return fmt.Errorf("workflow description cannot be empty")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	logger := newLogger()
	defer logger.Sync() //nolint:errcheck

	rcfg := cfg.Recommender()
	if recommendLimit > 0 {
		rcfg.Limit = recommendLimit
	}

	var backend recommender.SuggestionBackend
	if cfg.BackendEnabled() {
		client, err := suggest.NewClient(cfg.Suggest(), logger)
		if err != nil {
			return fmt.Errorf("configure suggestion backend: %w", err)
		}
		backend = client
	}

	engine := recommender.NewEngine(db, backend, rcfg, logger)

	spinner := output.NewSpinner("Scoring candidates...")
	spinner.Start()
	result, err := engine.Recommend(context.Background(), workflow)
	spinner.Stop()

	saved := err == nil
	var saveErr *recommender.SaveError
	switch {
	case errors.As(err, &saveErr):
		// The run completed; only persistence failed. Show the results and
		// warn so they are not silently lost.
		fmt.Fprintf(os.Stderr, "warning: %v\n", saveErr)
	case errors.Is(err, recommender.ErrNoCatalog):
		return fmt.Errorf("no package catalog loaded; run 'echo import --catalog <file>' first")
	case err != nil:
		return err
	}

	if err := output.WriteResult(os.Stdout, result, recommendFormat); err != nil {
		return err
	}

	if recommendFormat == output.FormatTable {
		if notes := output.RenderDiagnostics(result.Diagnostics); notes != "" {
			fmt.Fprint(os.Stderr, notes)
		}
		if saved {
			fmt.Printf("\nRun %s saved. See 'echo history' for past runs.\n", result.RunID)
		}
	}

	return nil
}
