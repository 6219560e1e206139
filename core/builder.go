package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/spdxattr/core/agg"
	"github.com/huangsam/spdxattr/core/header"
	"github.com/huangsam/spdxattr/core/history"
	"github.com/huangsam/spdxattr/internal/contract"
	"github.com/huangsam/spdxattr/schema"
)

// FileResultBuilder attributes a single file. Each step is a no-op once an
// earlier step has settled the file's status.
type FileResultBuilder struct {
	ctx    context.Context
	cfg    *contract.Config
	deps   *Pipeline
	result *schema.FileResult
	done   bool

	// Internal data collected during the build process
	records []schema.ContributionRecord
	buckets agg.Result
	plan    *header.Plan
}

// NewFileResultBuilder is the starting point for attributing a file.
func NewFileResultBuilder(ctx context.Context, cfg *contract.Config, deps *Pipeline, path string) *FileResultBuilder {
	return &FileResultBuilder{
		ctx:    ctx,
		cfg:    cfg,
		deps:   deps,
		result: &schema.FileResult{Path: path},
	}
}

// CheckExcluded stops the chain for files matched by an exclusion pattern.
func (b *FileResultBuilder) CheckExcluded() *FileResultBuilder {
	if b.done {
		return b
	}
	if contract.ShouldIgnore(b.result.Path, b.cfg.Excludes) {
		b.settle(schema.ExcludedStatus, "")
	}
	return b
}

// FetchContributions blames the file and drops pollution commits.
// A failed history query means the file has no contributors.
func (b *FileResultBuilder) FetchContributions() *FileResultBuilder {
	if b.done {
		return b
	}
	records, err := b.deps.history.Contributions(b.ctx, b.result.Path)
	if err != nil {
		var qe *history.QueryError
		if errors.As(err, &qe) {
			b.settle(schema.NoContributorsStatus, qe.Err.Error())
			return b
		}
		b.settle(schema.FailedStatus, err.Error())
		return b
	}
	if len(records) == 0 {
		b.settle(schema.NoContributorsStatus, "")
		return b
	}
	b.records = records
	return b
}

// Aggregate groups the contribution years by bucket and reports identities
// that have no alias entry.
func (b *FileResultBuilder) Aggregate() *FileResultBuilder {
	if b.done {
		return b
	}
	b.buckets = b.deps.aggregator.Aggregate(b.records)
	b.result.Unresolved = b.buckets.Unresolved
	for _, email := range b.buckets.Unresolved {
		contract.LogWarn(fmt.Sprintf("No alias entry for %s in %s", email, b.result.Path), errors.New("unresolved identity"))
	}
	if b.cfg.RequireAliases && len(b.buckets.Unresolved) > 0 {
		b.settle(schema.FailedStatus, "unresolved identities: "+strings.Join(b.buckets.Unresolved, ", "))
	}
	return b
}

// FormatHeaders renders the buckets as sorted attribution headers.
func (b *FileResultBuilder) FormatHeaders() *FileResultBuilder {
	if b.done {
		return b
	}
	b.result.Headers = agg.FormatHeaders(b.buckets.Buckets, b.deps.orgs)
	if len(b.result.Headers) == 0 {
		b.settle(schema.NoContributorsStatus, "")
	}
	return b
}

// PlanHeaders reads the file and computes the rewrite without touching it.
func (b *FileResultBuilder) PlanHeaders() *FileResultBuilder {
	if b.done {
		return b
	}
	plan, err := b.deps.applier.Plan(b.result.Path, b.result.Headers)
	if err != nil {
		b.settle(schema.FailedStatus, err.Error())
		return b
	}
	b.plan = plan
	b.result.License = plan.License
	b.result.Stripped = plan.Stripped
	b.result.Command = plan.Command
	return b
}

// Apply writes the headers, or records the plan when running dry.
func (b *FileResultBuilder) Apply() *FileResultBuilder {
	if b.done {
		return b
	}
	if b.cfg.DryRun {
		b.settle(schema.PlannedStatus, "")
		return b
	}
	if err := b.deps.applier.Apply(b.ctx, b.plan); err != nil {
		b.settle(schema.FailedStatus, err.Error())
		return b
	}
	b.settle(schema.UpdatedStatus, "")
	return b
}

// Build returns the final result.
func (b *FileResultBuilder) Build() schema.FileResult {
	return *b.result
}

func (b *FileResultBuilder) settle(status schema.FileStatus, detail string) {
	b.result.Status = status
	b.result.Detail = detail
	b.done = true
}
