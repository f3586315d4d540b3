package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/echo-systems/echo/internal/catalog"
	"github.com/echo-systems/echo/internal/config"
	"github.com/echo-systems/echo/internal/output"
)

var (
	recordOperation string
	recordFailed    bool
	recordDetails   string
	recordShow      bool
	recordLimit     int

	recordCmd = &cobra.Command{
		Use:   "record [package]",
		Short: "Record an install or remove event",
		Long: `Record an installation event for a package.

Failed installs matter: packages that failed to install within the cooldown
window are excluded from recommendations, so recording failures keeps echo
from suggesting something that just broke for you.`,
		Example: `  # Record a successful install
  echo record numpy

  # Record a failed install
  echo record tensorflow --failed --details "no matching wheel"

  # Record a removal
  echo record flask --op remove

  # Show recent history
  echo record --show`,
		RunE: runRecord,
	}
)

func init() {
	recordCmd.Flags().StringVar(&recordOperation, "op", "install", "operation: install or remove")
	recordCmd.Flags().BoolVar(&recordFailed, "failed", false, "mark the operation as failed")
	recordCmd.Flags().StringVar(&recordDetails, "details", "", "free-form details (error message, version, ...)")
	recordCmd.Flags().BoolVar(&recordShow, "show", false, "show recent installation history instead of recording")
	recordCmd.Flags().IntVar(&recordLimit, "limit", 20, "max history rows with --show")
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if recordShow {
		pkg := ""
		if len(args) > 0 {
			pkg = args[0]
		}
		records, err := db.ListInstallationHistory(recordLimit, pkg)
		if err != nil {
			return fmt.Errorf("load installation history: %w", err)
		}
		fmt.Print(output.RenderHistoryTable(records))
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("exactly one package name is required")
	}
	if catalog.NormalizeName(args[0]) == "" {
		return fmt.Errorf("package name cannot be empty")
	}
	if recordOperation != "install" && recordOperation != "remove" {
		return fmt.Errorf("unknown operation %q (expected install or remove)", recordOperation)
	}

	rec := &catalog.InstallationRecord{
		PackageName: args[0],
		Operation:   recordOperation,
		Timestamp:   time.Now(),
		Success:     !recordFailed,
		Details:     recordDetails,
	}
	if err := db.RecordInstallation(rec); err != nil {
		return fmt.Errorf("record %s: %w", args[0], err)
	}

	status := "succeeded"
	if recordFailed {
		status = "failed"
	}
	fmt.Printf("Recorded %s of %s (%s)\n", recordOperation, args[0], status)
	return nil
}
