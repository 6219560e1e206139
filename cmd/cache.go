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

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("cache-backend")))
	connStr := viper.GetString("cache-db-connect")
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheDBFilePath resolves the SQLite file of the commit facts cache.
func cacheDBFilePath() string {
	if cfg.CacheDBConnect != "" {
		return cfg.CacheDBConnect
	}
	return contract.GetCacheDBFilePath()
}

// cacheCmd focused on cache management.
//
// Cache subcommands skip the git repository validation done by sharedSetup.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the commit facts cache",
	Long: `Manage the cache of per-commit facts (author year and pollution verdict).

Commits never change, so cached facts stay valid until the pollution rules
change. Changing the rules changes the cache key, so no manual clear is needed.

Supported backends: SQLite, MySQL, PostgreSQL, or None (default)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status
  spdxattr cache status --cache-backend sqlite

  # Clear the MySQL cache (set connection string via env variable)
  SPDXATTR_CACHE_BACKEND=mysql SPDXATTR_CACHE_DB_CONNECT="..." spdxattr cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached commit facts",
	Long: `Delete all cached commit facts from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table`,
	PreRunE: cacheSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := iocache.ClearCache(cfg.CacheBackend, cacheDBFilePath(), cfg.CacheDBConnect); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Println("Cache cleared successfully.")
		return nil
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cacheSetupWrapper(cmd, args); err != nil {
			return err
		}
		if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, "", ""); err != nil {
			return fmt.Errorf("failed to initialize cache: %w", err)
		}
		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		store := iocache.Manager.GetCommitStore()
		if store == nil {
			return errors.New("commit facts cache is not configured")
		}
		status, err := store.GetStatus()
		if err != nil {
			return fmt.Errorf("failed to get cache status: %w", err)
		}
		iocache.PrintCacheStatus(status)
		return nil
	},
}
