package core

import (
	"context"

	"github.com/huangsam/spdxattr/internal/contract"
)

// Context keys for run options
type contextKey string

const (
	suppressOutputKey contextKey = "suppressOutput"
	runIDKey          contextKey = "runID"
	cacheManagerKey   contextKey = "cacheManager"
)

// WithSuppressOutput disables progress and summary printing for the run.
// The MCP server uses it because stdout carries the protocol.
func WithSuppressOutput(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressOutputKey, true)
}

// shouldSuppressOutput returns whether progress printing is disabled
func shouldSuppressOutput(ctx context.Context) bool {
	val := ctx.Value(suppressOutputKey)
	if val == nil {
		return false
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// withRunID stores the run history ID in the context
func withRunID(ctx context.Context, runID int64) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// getRunID returns the run history ID from the context
func getRunID(ctx context.Context) (int64, bool) {
	val := ctx.Value(runIDKey)
	if val == nil {
		return 0, false
	}
	id, ok := val.(int64)
	return id, ok
}

// contextWithCacheManager adds the cache manager to the context
func contextWithCacheManager(ctx context.Context, mgr contract.CacheManager) context.Context {
	return context.WithValue(ctx, cacheManagerKey, mgr)
}

// cacheManagerFromContext retrieves the cache manager from the context
func cacheManagerFromContext(ctx context.Context) contract.CacheManager {
	if mgr, ok := ctx.Value(cacheManagerKey).(contract.CacheManager); ok {
		return mgr
	}
	return nil
}
