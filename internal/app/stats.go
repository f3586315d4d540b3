package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/echo-systems/echo/internal/catalog"
	"github.com/echo-systems/echo/internal/config"
	"github.com/echo-systems/echo/internal/output"
	"github.com/echo-systems/echo/internal/recommender"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show usage statistics ranked by importance",
	Long: `Show recorded usage patterns ranked by importance score.

Importance blends how often a package is used with how recently, decaying
over the configured half-life. Packages you use daily sort above packages
you used heavily months ago.`,
	Example: `  echo stats`,
	RunE:    runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	patterns, err := db.ListUsagePatterns()
	if err != nil {
		return fmt.Errorf("load usage patterns: %w", err)
	}

	ranks := recommender.RankUsage(patterns, time.Now(), cfg.Recommender())

	byName := make(map[string]*catalog.UsagePattern, len(patterns))
	for _, p := range patterns {
		byName[catalog.NormalizeName(p.PackageName)] = p
	}

	fmt.Print(output.RenderUsageTable(ranks, byName))
	return nil
}
