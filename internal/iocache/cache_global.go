package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/spdxattr/schema"
)

// commitFactsTable is the name of the table for commit facts caching.
const commitFactsTable = "commit_facts_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with the commit facts store and
// the run history store. An empty backend leaves the matching store unset.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, runsBackend schema.DatabaseBackend, runsConnStr string) error {
	var initErr error
	initOnce.Do(func() {
		initErr = openStores(Manager, cacheBackend, cacheConnStr, runsBackend, runsConnStr)
	})
	return initErr
}

// openStores opens both stores and assigns them to mgr, closing the first
// store if the second cannot be opened.
func openStores(mgr *CacheStoreManager, cacheBackend schema.DatabaseBackend, cacheConnStr string, runsBackend schema.DatabaseBackend, runsConnStr string) error {
	var commits *CacheStoreImpl
	if cacheBackend != "" {
		store, err := NewCacheStore(commitFactsTable, cacheBackend, cacheConnStr)
		if err != nil {
			return fmt.Errorf("failed to initialize commit facts cache: %w", err)
		}
		commits = store
	}

	var runs *RunStoreImpl
	if runsBackend != "" {
		store, err := NewRunStore(runsBackend, runsConnStr)
		if err != nil {
			if commits != nil {
				_ = commits.Close()
			}
			return fmt.Errorf("failed to initialize run history: %w", err)
		}
		runs = store
	}

	mgr.Lock()
	defer mgr.Unlock()
	if commits != nil {
		mgr.commits = commits
	}
	if runs != nil {
		mgr.runs = runs
	}
	return nil
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		closeManager(Manager)
	})
}

func closeManager(mgr *CacheStoreManager) {
	mgr.Lock()
	defer mgr.Unlock()
	if mgr.commits != nil {
		_ = mgr.commits.Close()
	}
	if mgr.runs != nil {
		_ = mgr.runs.Close()
	}
}

// ClearCache clears the commit facts cache for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For NoneBackend, it does nothing.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, commitFactsTable)
}

// ClearRuns clears the run history for the specified backend.
func ClearRuns(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, runsTable, fileOutcomesTable, migrationsTable)
}

func clearBackend(backend schema.DatabaseBackend, dbFilePath, connStr string, tables ...string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		for _, table := range tables {
			if err := clearSQLTable(backend, connStr, table); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(backend schema.DatabaseBackend, connStr, tableName string) error {
	driverName := driverFor(backend)
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}

	return nil
}
