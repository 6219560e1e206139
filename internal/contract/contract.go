// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/spdxattr/schema"
)

// GitClient defines the history queries that attribution depends on.
// This allows the core attribution logic to be tested without needing a real git executable.
type GitClient interface {
	// --- Generic / Low-Level ---

	// Run executes a git command and returns its stdout.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// --- Attribution ---

	// Blame returns the raw line-porcelain blame output for a file relative to repoPath.
	Blame(ctx context.Context, repoPath string, path string) ([]byte, error)

	// GetCommitMeta returns the author year on the first line followed by the full commit message.
	GetCommitMeta(ctx context.Context, repoPath string, commitID string) ([]byte, error)

	// GetCommitDiff returns the unified diff introduced by a commit.
	GetCommitDiff(ctx context.Context, repoPath string, commitID string) ([]byte, error)
}

// HeaderTool writes attribution headers into a file through an external program.
type HeaderTool interface {
	// Command returns the argv that Annotate would execute.
	Command(path string, headers []string, license string) []string

	// Annotate runs the tool from repoRoot against path.
	Annotate(ctx context.Context, repoRoot string, path string, headers []string, license string) error
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetCommitStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking attribution runs and their file outcomes.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, dryRun bool, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error

	// RecordFileOutcome stores the outcome for a single file
	RecordFileOutcome(runID int64, result schema.FileResult) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunsStatus, error)

	// GetAllRuns returns every stored run ordered by ID
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllFileOutcomes returns every stored file outcome ordered by run and path
	GetAllFileOutcomes() ([]schema.FileOutcomeRecord, error)

	// Close closes the underlying connection
	Close() error
}
