package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/spdxattr/internal/contract"
	"github.com/huangsam/spdxattr/internal/iocache"
	"github.com/huangsam/spdxattr/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsConfig reads and validates the run history backend settings.
func runsConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("runs-backend")))
	if backend == "" {
		return errors.New("run history is not configured. Set --runs-backend or SPDXATTR_RUNS_BACKEND")
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("runs-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	return nil
}

// runsSetup opens the run history store without touching the commit cache.
func runsSetup(_ *cobra.Command, _ []string) error {
	if err := runsConfig(); err != nil {
		return err
	}
	if err := iocache.InitStores("", "", cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return fmt.Errorf("failed to initialize run history: %w", err)
	}
	return nil
}

// runsMigrateSetup validates the settings only, so that migrations can run
// against a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	return runsConfig()
}

// runsDBFilePath resolves the SQLite file of the run history.
func runsDBFilePath() string {
	if cfg.RunsDBConnect != "" {
		return cfg.RunsDBConnect
	}
	return contract.GetRunsDBFilePath()
}

// runsCmd focused on run history management.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage the history of attribution runs",
	Long: `Manage the run history recorded when --runs-backend is set.

Each annotate or headers run stores its start and end time, configuration,
outcome totals, and one row per file with the headers it got.

Subcommands:
  status  - Show run history statistics
  export  - Export the run history to Parquet files
  migrate - Run database schema migrations
  clear   - Remove all run history

Examples:
  # Record runs in SQLite
  spdxattr annotate --runs-backend sqlite

  # Export for analysis in DuckDB or pandas
  spdxattr runs export --runs-backend sqlite --output-file history`,
}

// runsStatusCmd shows run history status.
var runsStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display run history statistics and connection details",
	PreRunE: runsSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		status, err := iocache.Manager.GetRunStore().GetStatus()
		if err != nil {
			return fmt.Errorf("failed to get run history status: %w", err)
		}
		iocache.PrintRunsStatus(status)
		return nil
	},
}

// runsExportCmd exports the run history to Parquet.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet files",
	Long: `Write the run history to <output-file>.runs.parquet and
<output-file>.file_outcomes.parquet.`,
	PreRunE: runsSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return iocache.ExecuteRunsExport(viper.GetString("output-file"))
	},
}

// runsMigrateCmd runs database migrations for the run history store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Apply the embedded schema migrations of the run history store.

Examples:
  # Migrate to the latest version
  spdxattr runs migrate --runs-backend sqlite

  # Roll back everything
  spdxattr runs migrate --runs-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, viper.GetInt("target-version")); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	},
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Remove all run history",
	PreRunE: runsMigrateSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := iocache.ClearRuns(cfg.RunsBackend, runsDBFilePath(), cfg.RunsDBConnect); err != nil {
			return fmt.Errorf("failed to clear run history: %w", err)
		}
		fmt.Println("Run history cleared successfully.")
		return nil
	},
}
