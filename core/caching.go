package core

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/spdxattr/core/history"
	"github.com/huangsam/spdxattr/core/pollution"
	"github.com/huangsam/spdxattr/internal/contract"
	"github.com/huangsam/spdxattr/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// factsCache persists commit facts in the configured commit store.
// Commits are immutable, so entries never go stale; the key includes the
// pollution rules so that changing them invalidates old verdicts.
type factsCache struct {
	store       contract.CacheStore
	repoRoot    string
	fingerprint string
}

var _ history.FactsCache = (*factsCache)(nil)

// newFactsCache returns nil when no commit store is configured.
func newFactsCache(mgr contract.CacheManager, repoRoot string, rules pollution.Rules) *factsCache {
	if mgr == nil {
		return nil
	}
	store := mgr.GetCommitStore()
	if store == nil {
		return nil
	}
	return &factsCache{store: store, repoRoot: repoRoot, fingerprint: rules.Fingerprint()}
}

// Load attempts to retrieve and validate a cached entry
func (c *factsCache) Load(commitID string) (schema.CommitFacts, bool) {
	data, version, _, err := c.store.Get(c.key(commitID))
	if err != nil || version != currentCacheVersion {
		return schema.CommitFacts{}, false
	}
	var facts schema.CommitFacts
	if err := json.Unmarshal(data, &facts); err != nil || facts.CommitID != commitID {
		return schema.CommitFacts{}, false
	}
	return facts, true
}

// Store writes the facts; failures only cost a recomputation next time.
func (c *factsCache) Store(facts schema.CommitFacts) {
	data, err := json.Marshal(facts)
	if err != nil {
		return
	}
	_ = c.store.Set(c.key(facts.CommitID), data, currentCacheVersion, time.Now().Unix())
}

// key creates a unique key for a commit under the current rules
func (c *factsCache) key(commitID string) string {
	key := fmt.Sprintf("%s:%s:%s", c.repoRoot, commitID, c.fingerprint)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
