// Package history answers the revision-history questions attribution needs:
// who authored each line of a file, and when and why each commit was made.
package history

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/huangsam/spdxattr/core/pollution"
	"github.com/huangsam/spdxattr/internal/contract"
	"github.com/huangsam/spdxattr/schema"
)

// QueryError reports that a history query for a file failed.
// Callers treat it as "no contributors found" for that file.
type QueryError struct {
	Path string
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("history query failed for %s: %v", e.Path, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// FactsCache persists commit facts across runs.
type FactsCache interface {
	Load(commitID string) (schema.CommitFacts, bool)
	Store(facts schema.CommitFacts)
}

// Adapter runs history queries against one repository.
// Commit facts are memoized for the lifetime of the adapter, which is safe
// because a commit never changes. It is safe for concurrent use.
type Adapter struct {
	client   contract.GitClient
	repoRoot string
	rules    pollution.Rules
	cache    FactsCache

	mu    sync.Mutex
	facts map[string]schema.CommitFacts
}

// NewAdapter creates an adapter. cache may be nil.
func NewAdapter(client contract.GitClient, repoRoot string, rules pollution.Rules, cache FactsCache) *Adapter {
	return &Adapter{
		client:   client,
		repoRoot: repoRoot,
		rules:    rules,
		cache:    cache,
		facts:    make(map[string]schema.CommitFacts),
	}
}

// Blame returns the distinct authoring commits of a repo-relative file.
func (a *Adapter) Blame(ctx context.Context, path string) ([]schema.BlameLine, error) {
	out, err := a.client.Blame(ctx, a.repoRoot, path)
	if err != nil {
		return nil, &QueryError{Path: path, Err: err}
	}
	return ParseBlamePorcelain(out), nil
}

// CommitFacts returns the year and pollution verdict of a commit.
func (a *Adapter) CommitFacts(ctx context.Context, commitID string) (schema.CommitFacts, error) {
	a.mu.Lock()
	facts, ok := a.facts[commitID]
	a.mu.Unlock()
	if ok {
		return facts, nil
	}
	if a.cache != nil {
		if cached, hit := a.cache.Load(commitID); hit {
			a.remember(cached)
			return cached, nil
		}
	}

	out, err := a.client.GetCommitMeta(ctx, a.repoRoot, commitID)
	if err != nil {
		return schema.CommitFacts{}, err
	}
	year, message, err := parseCommitMeta(out)
	if err != nil {
		return schema.CommitFacts{}, fmt.Errorf("commit %s: %w", commitID, err)
	}
	facts = schema.CommitFacts{
		CommitID: commitID,
		Year:     year,
		Pollution: a.rules.IsPollution(message, func() ([]byte, error) {
			return a.client.GetCommitDiff(ctx, a.repoRoot, commitID)
		}),
	}

	a.remember(facts)
	if a.cache != nil {
		a.cache.Store(facts)
	}
	return facts, nil
}

// Contributions returns the non-pollution contribution records of a file.
// Commits whose facts cannot be read are skipped.
func (a *Adapter) Contributions(ctx context.Context, path string) ([]schema.ContributionRecord, error) {
	lines, err := a.Blame(ctx, path)
	if err != nil {
		return nil, err
	}
	records := make([]schema.ContributionRecord, 0, len(lines))
	for _, bl := range lines {
		facts, err := a.CommitFacts(ctx, bl.CommitID)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Skipping commit %s in %s", shortID(bl.CommitID), path), err)
			continue
		}
		if facts.Pollution {
			continue
		}
		records = append(records, schema.ContributionRecord{
			ContributorEmail: bl.AuthorEmail,
			ContributorName:  bl.AuthorName,
			CommitID:         bl.CommitID,
			Year:             facts.Year,
		})
	}
	return records, nil
}

func (a *Adapter) remember(facts schema.CommitFacts) {
	a.mu.Lock()
	a.facts[facts.CommitID] = facts
	a.mu.Unlock()
}

// parseCommitMeta splits "%ad%n%s%n%b" output into the year and the message.
func parseCommitMeta(out []byte) (int, string, error) {
	yearLine, message, _ := strings.Cut(string(out), "\n")
	year, err := strconv.Atoi(strings.TrimSpace(yearLine))
	if err != nil {
		return 0, "", fmt.Errorf("unexpected commit year %q", strings.TrimSpace(yearLine))
	}
	return year, message, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
