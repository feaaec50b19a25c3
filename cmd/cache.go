package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/statweights/internal/contract"
	"github.com/huangsam/statweights/internal/iocache"
	"github.com/huangsam/statweights/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("%w: invalid cache backend '%s'", contract.ErrConfiguration, backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by compute. This avoids engine validation for
// simple cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the simulation result cache",
	Long: `Manage the cache that stores simulator results between runs.

Repeating a request with the same stats, reference, iterations and character
config is served from the cache for up to seven days.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None

Subcommands:
  status  - Show cache statistics and connection info
  clear   - Remove all cached data
  migrate - Move the cache schema to a given version`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached simulation results",
	Long: `Delete all cached results from the configured backend.

Use this after upgrading the simulator or when results look stale.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Rolls the cache schema back, dropping the table

Examples:
  statweights cache clear
  STATWEIGHTS_CACHE_BACKEND=mysql STATWEIGHTS_CACHE_DB_CONNECT="..." statweights cache clear`,
	PreRunE: cacheSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, iocache.GetDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show the backend, connection state, entry count, newest and oldest
entry timestamps and the size of the cache.

Examples:
  statweights cache status`,
	PreRunE: cacheSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to initialize cache", err)
		}
		store := iocache.Manager.GetEngineStore()
		if store == nil {
			contract.LogFatal("Failed to get cache status", fmt.Errorf("cache is not initialized"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}

// cacheMigrateCmd moves the cache schema.
var cacheMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back cache schema migrations",
	Long: `Move the cache schema to --target-version.

-1 applies every migration, 0 rolls everything back, and any other value
migrates to that exact version.

Examples:
  statweights cache migrate
  statweights cache migrate --target-version 0`,
	PreRunE: cacheSetup,
	Run: func(_ *cobra.Command, _ []string) {
		result, err := iocache.MigrateCache(cfg.CacheBackend, cfg.CacheDBConnect, viper.GetInt("target-version"))
		if err != nil {
			contract.LogFatal("Failed to migrate cache", err)
		}
		iocache.PrintMigrationResult(os.Stdout, result)
	},
}
