package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/huangsam/spdxattr/core/pollution"
	"github.com/huangsam/spdxattr/internal/iocache"
	"github.com/huangsam/spdxattr/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestFactsCache(t *testing.T, store *iocache.MockCacheStore) *factsCache {
	t.Helper()
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetCommitStore").Return(store)
	fc := newFactsCache(mgr, "/repo", pollution.DefaultRules())
	require.NotNil(t, fc)
	return fc
}

func TestNewFactsCache_NoStore(t *testing.T) {
	assert.Nil(t, newFactsCache(nil, "/repo", pollution.DefaultRules()))

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetCommitStore").Return(nil)
	assert.Nil(t, newFactsCache(mgr, "/repo", pollution.DefaultRules()))
}

func TestFactsCache_Load(t *testing.T) {
	facts := schema.CommitFacts{CommitID: commitFeature, Year: 2022, Pollution: true}
	data, err := json.Marshal(facts)
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    []byte
		version int
		err     error
		wantHit bool
	}{
		{name: "hit", data: data, version: currentCacheVersion, wantHit: true},
		{name: "miss", err: errors.New("sql: no rows in result set")},
		{name: "old version", data: data, version: currentCacheVersion + 1},
		{name: "corrupt value", data: []byte("{"), version: currentCacheVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &iocache.MockCacheStore{}
			store.On("Get", mock.Anything).Return(tt.data, tt.version, int64(0), tt.err)
			fc := newTestFactsCache(t, store)

			got, hit := fc.Load(commitFeature)
			assert.Equal(t, tt.wantHit, hit)
			if tt.wantHit {
				assert.Equal(t, facts, got)
			}
		})
	}
}

func TestFactsCache_Store(t *testing.T) {
	store := &iocache.MockCacheStore{}
	store.On("Set", mock.Anything, mock.Anything, currentCacheVersion, mock.Anything).Return(nil)
	fc := newTestFactsCache(t, store)

	facts := schema.CommitFacts{CommitID: commitHeader, Year: 2023}
	fc.Store(facts)

	store.AssertNumberOfCalls(t, "Set", 1)
	call := store.Calls[0]
	assert.Equal(t, fc.key(commitHeader), call.Arguments.String(0))
	var stored schema.CommitFacts
	require.NoError(t, json.Unmarshal(call.Arguments.Get(1).([]byte), &stored))
	assert.Equal(t, facts, stored)
}

func TestFactsCache_KeyDependsOnRules(t *testing.T) {
	store := &iocache.MockCacheStore{}
	base := newTestFactsCache(t, store)

	rules := pollution.DefaultRules()
	rules.MaxSubstantialLines = 5
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetCommitStore").Return(store)
	tuned := newFactsCache(mgr, "/repo", rules)

	assert.Equal(t, base.key(commitFeature), base.key(commitFeature))
	assert.NotEqual(t, base.key(commitFeature), base.key(commitHeader))
	assert.NotEqual(t, base.key(commitFeature), tuned.key(commitFeature))
	assert.Len(t, base.key(commitFeature), 64)
}
