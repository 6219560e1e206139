package history

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/huangsam/spdxattr/core/pollution"
	"github.com/huangsam/spdxattr/internal/contract"
	"github.com/huangsam/spdxattr/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	commitA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	commitB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

// porcelain builds blame output where commitA authored lines 1 and 3 and commitB line 2.
func porcelain() string {
	return strings.Join([]string{
		commitA + " 1 1 1",
		"author Alice",
		"author-mail <a@phala.network>",
		"author-time 1646128800",
		"author-tz +0000",
		"committer Alice",
		"committer-mail <a@phala.network>",
		"summary add feature",
		"filename foo.ts",
		"\texport const a = 1;",
		commitB + " 2 2 1",
		"author Alice",
		"author-mail <a@phala.network>",
		"summary update SPDX header",
		"previous " + commitA + " foo.ts",
		"filename foo.ts",
		"\t// SPDX-FileCopyrightText: © 2023 Phala Network <dstack@phala.network>",
		commitA + " 3 3",
		"filename foo.ts",
		"\tauthor-mail <evil@example.com>",
		"",
	}, "\n")
}

type memoryCache struct {
	mu     sync.Mutex
	facts  map[string]schema.CommitFacts
	stores int
}

func (m *memoryCache) Load(commitID string) (schema.CommitFacts, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.facts[commitID]
	return f, ok
}

func (m *memoryCache) Store(facts schema.CommitFacts) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.facts[facts.CommitID] = facts
	m.stores++
}

func TestParseBlamePorcelain(t *testing.T) {
	lines := ParseBlamePorcelain([]byte(porcelain()))
	require.Len(t, lines, 2)
	assert.Equal(t, schema.BlameLine{CommitID: commitA, AuthorName: "Alice", AuthorEmail: "a@phala.network"}, lines[0])
	assert.Equal(t, commitB, lines[1].CommitID)
}

func TestParseBlamePorcelain_EdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []schema.BlameLine
	}{
		{
			name:   "empty output",
			input:  "",
			expect: []schema.BlameLine{},
		},
		{
			name: "uncommitted lines are skipped",
			input: schema.ZeroCommitID + " 1 1 1\n" +
				"author Not Committed Yet\n" +
				"author-mail <not.committed.yet>\n" +
				"filename foo.ts\n" +
				"\tnew line\n",
			expect: []schema.BlameLine{},
		},
		{
			name: "empty author mail is skipped",
			input: commitA + " 1 1 1\n" +
				"author Ghost\n" +
				"author-mail <>\n" +
				"\tx\n",
			expect: []schema.BlameLine{},
		},
		{
			name: "content that looks like a header is ignored",
			input: commitA + " 1 1 1\n" +
				"author Bob\n" +
				"author-mail <bob@x.io>\n" +
				"\t" + commitB + " 1 1 1\n",
			expect: []schema.BlameLine{{CommitID: commitA, AuthorName: "Bob", AuthorEmail: "bob@x.io"}},
		},
		{
			name: "uppercase hash is not a header",
			input: strings.ToUpper(commitA) + " 1 1 1\n" +
				"author Bob\n" +
				"author-mail <bob@x.io>\n",
			expect: []schema.BlameLine{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, ParseBlamePorcelain([]byte(tt.input)))
		})
	}
}

func TestIsCommitHeader(t *testing.T) {
	assert.True(t, isCommitHeader(commitA+" 1 1 1"))
	assert.True(t, isCommitHeader(commitA+" 10 12"))
	assert.False(t, isCommitHeader(commitA))
	assert.False(t, isCommitHeader(commitA+" x y"))
	assert.False(t, isCommitHeader(commitA+" 1 2 3 4"))
	assert.False(t, isCommitHeader("author "+commitA))
}

func TestAdapterContributions(t *testing.T) {
	ctx := context.Background()
	client := new(contract.MockGitClient)
	client.On("Blame", ctx, "/repo", "foo.ts").Return([]byte(porcelain()), nil)
	client.On("GetCommitMeta", ctx, "/repo", commitA).Return([]byte("2022\nadd feature\n\n"), nil).Once()
	client.On("GetCommitMeta", ctx, "/repo", commitB).Return([]byte("2023\nupdate SPDX header\n\n"), nil).Once()
	client.On("GetCommitDiff", ctx, "/repo", commitB).Return([]byte(strings.Join([]string{
		"diff --git a/foo.ts b/foo.ts",
		"--- a/foo.ts",
		"+++ b/foo.ts",
		"@@ -1,2 +1,2 @@",
		"-// SPDX-FileCopyrightText: © 2022 Phala Network <dstack@phala.network>",
		"+// SPDX-FileCopyrightText: © 2023 Phala Network <dstack@phala.network>",
		" export const a = 1;",
		"",
	}, "\n")), nil).Once()

	adapter := NewAdapter(client, "/repo", pollution.DefaultRules(), nil)
	records, err := adapter.Contributions(ctx, "foo.ts")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, schema.ContributionRecord{
		ContributorEmail: "a@phala.network",
		ContributorName:  "Alice",
		CommitID:         commitA,
		Year:             2022,
	}, records[0])

	// Second pass hits the in-memory facts, so Once() expectations hold
	_, err = adapter.Contributions(ctx, "foo.ts")
	require.NoError(t, err)
	client.AssertExpectations(t)
	client.AssertNotCalled(t, "GetCommitDiff", ctx, "/repo", commitA)
}

func TestAdapterContributions_BlameFailure(t *testing.T) {
	ctx := context.Background()
	client := new(contract.MockGitClient)
	client.On("Blame", ctx, "/repo", "untracked.go").Return(nil, errors.New("no such path"))

	adapter := NewAdapter(client, "/repo", pollution.DefaultRules(), nil)
	_, err := adapter.Contributions(ctx, "untracked.go")

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "untracked.go", qe.Path)
	assert.Contains(t, err.Error(), "no such path")
}

func TestAdapterContributions_SkipsUnreadableCommit(t *testing.T) {
	ctx := context.Background()
	client := new(contract.MockGitClient)
	client.On("Blame", ctx, "/repo", "foo.ts").Return([]byte(porcelain()), nil)
	client.On("GetCommitMeta", ctx, "/repo", commitA).Return([]byte("not-a-year\nmsg\n"), nil)
	client.On("GetCommitMeta", ctx, "/repo", commitB).Return(nil, errors.New("bad object"))

	adapter := NewAdapter(client, "/repo", pollution.DefaultRules(), nil)
	records, err := adapter.Contributions(ctx, "foo.ts")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAdapterCommitFacts_DiffFailureIsNotPollution(t *testing.T) {
	ctx := context.Background()
	client := new(contract.MockGitClient)
	client.On("GetCommitMeta", ctx, "/repo", commitB).Return([]byte("2023\nadd spdx\n"), nil)
	client.On("GetCommitDiff", ctx, "/repo", commitB).Return(nil, errors.New("boom"))

	adapter := NewAdapter(client, "/repo", pollution.DefaultRules(), nil)
	facts, err := adapter.CommitFacts(ctx, commitB)
	require.NoError(t, err)
	assert.False(t, facts.Pollution)
	assert.Equal(t, 2023, facts.Year)
}

func TestAdapterCommitFacts_PersistentCache(t *testing.T) {
	ctx := context.Background()
	cache := &memoryCache{facts: map[string]schema.CommitFacts{
		commitA: {CommitID: commitA, Year: 2021},
	}}
	client := new(contract.MockGitClient)
	client.On("GetCommitMeta", ctx, "/repo", commitB).Return([]byte("2024\nrefactor\n"), nil).Once()

	adapter := NewAdapter(client, "/repo", pollution.DefaultRules(), cache)

	facts, err := adapter.CommitFacts(ctx, commitA)
	require.NoError(t, err)
	assert.Equal(t, 2021, facts.Year)
	client.AssertNotCalled(t, "GetCommitMeta", ctx, "/repo", commitA)

	facts, err = adapter.CommitFacts(ctx, commitB)
	require.NoError(t, err)
	assert.Equal(t, 2024, facts.Year)
	assert.Equal(t, 1, cache.stores)

	_, err = adapter.CommitFacts(ctx, commitB)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.stores, "memoized facts are not stored twice")
	client.AssertExpectations(t)
}

func TestAdapterConcurrentUse(t *testing.T) {
	ctx := context.Background()
	client := new(contract.MockGitClient)
	client.On("GetCommitMeta", mock.Anything, "/repo", commitA).Return([]byte("2022\nfeature\n"), nil)

	adapter := NewAdapter(client, "/repo", pollution.DefaultRules(), nil)
	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			facts, err := adapter.CommitFacts(ctx, commitA)
			assert.NoError(t, err)
			assert.Equal(t, 2022, facts.Year)
		})
	}
	wg.Wait()
}

func TestParseCommitMeta(t *testing.T) {
	year, msg, err := parseCommitMeta([]byte("2023\nupdate SPDX header\nbody line\n"))
	require.NoError(t, err)
	assert.Equal(t, 2023, year)
	assert.Equal(t, "update SPDX header\nbody line\n", msg)

	_, _, err = parseCommitMeta([]byte(""))
	assert.Error(t, err)
}
