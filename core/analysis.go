package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/huangsam/spdxattr/core/agg"
	"github.com/huangsam/spdxattr/core/header"
	"github.com/huangsam/spdxattr/core/history"
	"github.com/huangsam/spdxattr/core/identity"
	"github.com/huangsam/spdxattr/core/pollution"
	"github.com/huangsam/spdxattr/internal/contract"
	"github.com/huangsam/spdxattr/internal/outwriter"
	"github.com/huangsam/spdxattr/schema"
	"golang.org/x/sync/errgroup"
)

// Pipeline holds the components shared by every file of a run.
// All of them are immutable or safe for concurrent use.
type Pipeline struct {
	history    *history.Adapter
	aggregator *agg.Aggregator
	orgs       *identity.OrgTable
	applier    *header.Applier
}

// NewPipeline wires the attribution components for one repository.
// mgr may be nil, in which case commit facts are only memoized in memory.
func NewPipeline(cfg *contract.Config, client contract.GitClient, tool contract.HeaderTool, mgr contract.CacheManager) *Pipeline {
	rules := pollution.RulesFromConfig(cfg)
	var cache history.FactsCache
	if fc := newFactsCache(mgr, cfg.RepoPath, rules); fc != nil {
		cache = fc
	}
	orgs := identity.OrgTableFromConfig(cfg)
	return &Pipeline{
		history:    history.NewAdapter(client, cfg.RepoPath, rules, cache),
		aggregator: agg.NewAggregator(loadAliases(cfg.MailmapPath), orgs),
		orgs:       orgs,
		applier:    header.NewApplier(tool, cfg.RepoPath, cfg.DefaultLicense),
	}
}

// loadAliases reads the alias table, falling back to an empty one.
func loadAliases(path string) *identity.AliasTable {
	table, err := identity.LoadAliasTable(path)
	if err == nil {
		return table
	}
	if errors.Is(err, fs.ErrNotExist) {
		contract.LogWarn(fmt.Sprintf("Alias file %s not found, raw emails will be used", path), err)
	} else {
		contract.LogWarn(fmt.Sprintf("Alias file %s could not be read, raw emails will be used", path), err)
	}
	return identity.NewAliasTable(nil)
}

// runOutput is everything a run produced.
type runOutput struct {
	Results []schema.FileResult
	Summary schema.RunSummary
}

// runAttributionCore performs discovery, per-file attribution and run tracking.
func runAttributionCore(ctx context.Context, cfg *contract.Config, client contract.GitClient, tool contract.HeaderTool, mgr contract.CacheManager) (*runOutput, error) {
	start := time.Now()
	ctx = contextWithCacheManager(ctx, mgr)

	// --- 1. File Selection ---
	files, excluded, err := selectFiles(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.TargetFile == "" && cfg.DryRun && !shouldSuppressOutput(ctx) {
		outwriter.PrintDiscovery(cfg, len(files))
	}

	// --- 2. Begin Run Tracking (if configured) ---
	ctx = beginRunTracking(ctx, cfg, mgr, start)

	// --- 3. Attribution ---
	results := make([]schema.FileResult, 0, len(excluded)+len(files))
	for _, path := range excluded {
		r := schema.FileResult{Path: path, Status: schema.ExcludedStatus}
		reportFile(ctx, cfg, r)
		results = append(results, r)
	}
	deps := NewPipeline(cfg, client, tool, mgr)
	results = append(results, attributeFiles(ctx, cfg, deps, files)...)

	summary := schema.Summarize(results, cfg.DryRun)
	summary.Duration = time.Since(start)

	// --- 4. End Run Tracking ---
	endRunTracking(ctx, mgr, summary)

	return &runOutput{Results: results, Summary: summary}, nil
}

// selectFiles returns the files to attribute and the excluded paths.
// Single-file mode defers the exclusion check to the builder.
func selectFiles(cfg *contract.Config) ([]string, []string, error) {
	if cfg.TargetFile != "" {
		return []string{cfg.TargetFile}, nil, nil
	}
	return discoverFiles(cfg)
}

// discoverFiles walks the repository for source files. Directories matched by
// a directory pattern are pruned and reported once with a trailing slash.
func discoverFiles(cfg *contract.Config) ([]string, []string, error) {
	var dirPatterns []string
	for _, pat := range cfg.Excludes {
		if contract.IsDirPattern(pat) {
			dirPatterns = append(dirPatterns, pat)
		}
	}

	var files, excluded []string
	err := filepath.WalkDir(cfg.RepoPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(cfg.RepoPath, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			switch {
			case rel == ".":
				return nil
			case d.Name() == ".git":
				return filepath.SkipDir
			case contract.ShouldIgnore(rel+"/", dirPatterns):
				excluded = append(excluded, rel+"/")
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !cfg.HasExtension(rel) {
			return nil
		}
		if contract.ShouldIgnore(rel, cfg.Excludes) {
			excluded = append(excluded, rel)
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk %s: %w", cfg.RepoPath, err)
	}

	slices.Sort(files)
	slices.Sort(excluded)
	return files, excluded, nil
}

// attributeFiles processes the files with a bounded worker pool.
// Results keep the input order regardless of completion order.
func attributeFiles(ctx context.Context, cfg *contract.Config, deps *Pipeline, files []string) []schema.FileResult {
	results := make([]schema.FileResult, len(files))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(max(cfg.Workers, 1))
	for i, path := range files {
		g.Go(func() error {
			r := attributeFile(ctx, cfg, deps, path)
			results[i] = r

			mu.Lock()
			reportFile(ctx, cfg, r)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// attributeFile runs the builder chain for a single file and records the outcome.
func attributeFile(ctx context.Context, cfg *contract.Config, deps *Pipeline, path string) schema.FileResult {
	// 1. Initialize the builder
	builder := NewFileResultBuilder(ctx, cfg, deps, path)

	// 2. Execute the required steps in order (Method Chaining)
	builder.
		CheckExcluded().      // Skips excluded files
		FetchContributions(). // Blames the file and filters pollution
		Aggregate().          // Buckets contributors and collects years
		FormatHeaders().      // Renders the attribution lines
		PlanHeaders().        // Reads the file, scans the license
		Apply()               // Runs the header tool unless dry-run

	// 3. Build the final result
	result := builder.Build()

	// 4. Record the outcome (if run tracking is enabled)
	if runID, ok := getRunID(ctx); ok && runID > 0 {
		recordFileOutcome(ctx, runID, result)
	}

	return result
}

// reportFile prints the progress line for one file.
func reportFile(ctx context.Context, cfg *contract.Config, result schema.FileResult) {
	if shouldSuppressOutput(ctx) {
		return
	}
	outwriter.PrintFileProgress(cfg, result)
}

// beginRunTracking opens a run history entry and stores its ID in the context.
func beginRunTracking(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, start time.Time) context.Context {
	if mgr == nil {
		return ctx
	}
	runStore := mgr.GetRunStore()
	if runStore == nil {
		return ctx
	}
	configParams := map[string]any{
		"repo_path":       cfg.RepoPath,
		"target_file":     cfg.TargetFile,
		"workers":         cfg.Workers,
		"default_license": cfg.DefaultLicense,
		"require_aliases": cfg.RequireAliases,
		"extensions":      cfg.Extensions,
	}
	runID, err := runStore.BeginRun(start, cfg.DryRun, configParams)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return ctx
	}
	if runID > 0 {
		ctx = withRunID(ctx, runID)
	}
	return ctx
}

// endRunTracking finalizes the run history entry.
func endRunTracking(ctx context.Context, mgr contract.CacheManager, summary schema.RunSummary) {
	runID, ok := getRunID(ctx)
	if !ok || runID <= 0 || mgr == nil {
		return
	}
	runStore := mgr.GetRunStore()
	if runStore == nil {
		return
	}
	if err := runStore.EndRun(runID, time.Now(), summary); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// recordFileOutcome stores the outcome of one file in the run history.
func recordFileOutcome(ctx context.Context, runID int64, result schema.FileResult) {
	mgr := cacheManagerFromContext(ctx)
	if mgr == nil {
		return
	}
	runStore := mgr.GetRunStore()
	if runStore == nil {
		return
	}
	if err := runStore.RecordFileOutcome(runID, result); err != nil {
		logTrackingError("RecordFileOutcome", result.Path, err)
	}
}

// logTrackingError logs database tracking errors to stderr without disrupting the run.
func logTrackingError(operation, path string, err error) {
	contract.LogWarn(fmt.Sprintf("Run tracking failed for %s on %s", operation, path), err)
}
