package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/echo-systems/echo/internal/catalog"
	"github.com/echo-systems/echo/internal/config"
)

var (
	importCatalogPath  string
	importManifestPath string

	importCmd = &cobra.Command{
		Use:   "import",
		Short: "Import a package catalog and installed manifest",
		Long: `Import package metadata into the database.

The catalog file describes the pool of known packages that recommendations
are drawn from. The manifest file lists the packages you currently have
installed. Either file can be imported alone; re-importing updates existing
entries in place.`,
		Example: `  # Import both at once
  echo import --catalog catalog.yaml --manifest installed.yaml

  # Refresh just the installed manifest
  echo import --manifest installed.yaml`,
		RunE: runImport,
	}
)

func init() {
	importCmd.Flags().StringVar(&importCatalogPath, "catalog", "", "YAML catalog of known packages")
	importCmd.Flags().StringVar(&importManifestPath, "manifest", "", "YAML manifest of installed packages")
}

func runImport(cmd *cobra.Command, args []string) error {
	if importCatalogPath == "" && importManifestPath == "" {
		return fmt.Errorf("nothing to import: pass --catalog and/or --manifest")
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

	if importCatalogPath != "" {
		packages, skipped, err := catalog.LoadCatalog(importCatalogPath)
		if err != nil {
			return err
		}
		for _, pkg := range packages {
			if err := db.UpsertPackage(pkg); err != nil {
				return fmt.Errorf("import %s: %w", pkg.Name, err)
			}
		}
		fmt.Printf("Imported %d catalog package(s)", len(packages))
		if skipped > 0 {
			fmt.Printf(" (%d entries skipped)", skipped)
		}
		fmt.Println()
	}

	if importManifestPath != "" {
		packages, skipped, err := catalog.LoadManifest(importManifestPath)
		if err != nil {
			return err
		}
		for _, pkg := range packages {
			if err := db.UpsertPackage(pkg); err != nil {
				return fmt.Errorf("import %s: %w", pkg.Name, err)
			}
		}
		fmt.Printf("Imported %d installed package(s)", len(packages))
		if skipped > 0 {
			fmt.Printf(" (%d entries skipped)", skipped)
		}
		fmt.Println()
	}

	return nil
}
