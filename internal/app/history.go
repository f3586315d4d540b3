package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/echo-systems/echo/internal/config"
	"github.com/echo-systems/echo/internal/output"
	"github.com/echo-systems/echo/internal/recommender"
)

var (
	historyRunID string
	historyLimit int

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show past recommendation runs",
		Long: `Show past recommendation runs and their output.

Runs are append-only: every 'echo recommend' invocation is stored under a
new run ID and never modified afterwards. Without flags, the most recent
runs are listed; pass --run to see the rows of one run ("latest" works).`,
		Example: `  # List recent runs
  echo history

  # Show the rows of the latest run
  echo history --run latest

  # Show a specific run
  echo history --run 6a9c2f9e-...`,
		RunE: runHistory,
	}
)

func init() {
	historyCmd.Flags().StringVar(&historyRunID, "run", "", "show one run's recommendations (\"latest\" for the most recent)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "max rows to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if historyRunID == "" {
		runs, err := db.ListRuns(historyLimit)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		fmt.Print(output.RenderRunTable(runs))
		return nil
	}

	runID := historyRunID
	if runID == "latest" {
		runID, err = db.LatestRunID()
		if err != nil {
			return fmt.Errorf("resolve latest run: %w", err)
		}
		if runID == "" {
			fmt.Println("No recommendation runs recorded.")
			return nil
		}
	}

	recs, err := db.ListRecommendations(runID, historyLimit)
	if err != nil {
		return fmt.Errorf("load run %s: %w", runID, err)
	}
	if len(recs) == 0 {
		fmt.Printf("No rows for run %s.\n", runID)
		return nil
	}

	rows := make([]recommender.Recommendation, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, *rec)
	}

	fmt.Printf("Run %s\n\n", runID)
	fmt.Print(output.RenderRecommendationTable(rows))
	return nil
}
