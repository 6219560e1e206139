// Package iocache persists commit facts and run history in SQL databases.
package iocache

import (
	"sync"

	"github.com/huangsam/spdxattr/internal/contract"
)

// CacheStoreManager holds the commit facts store and the run history store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	commits      contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetCommitStore returns the commit facts store, or nil when caching is off.
func (mgr *CacheStoreManager) GetCommitStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.commits
}

// GetRunStore returns the run history store, or nil when tracking is off.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
