// Package core has the orchestration logic for attribution runs.
package core

import (
	"context"

	"github.com/huangsam/spdxattr/internal/contract"
	"github.com/huangsam/spdxattr/internal/outwriter"
	"github.com/huangsam/spdxattr/internal/reuse"
	"github.com/huangsam/spdxattr/schema"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteAnnotate attributes the tree or the single target file and prints
// progress and a summary to stdout. It serves as the main entry point for
// the 'annotate' command.
func ExecuteAnnotate(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	client := contract.NewLocalGitClient()
	tool := reuse.NewTool(cfg.HeaderTool)
	output, err := runAttributionCore(ctx, cfg, client, tool, mgr)
	if err != nil {
		return err
	}
	if !shouldSuppressOutput(ctx) {
		outwriter.PrintRunSummary(cfg, output.Summary)
	}
	return nil
}

// ExecuteHeaders computes attribution without mutating any file and renders
// the results in the configured output format.
func ExecuteHeaders(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	client := contract.NewLocalGitClient()
	tool := reuse.NewTool(cfg.HeaderTool)
	dryCfg := cfg.CloneForFile(cfg.TargetFile, true)
	output, err := runAttributionCore(WithSuppressOutput(ctx), dryCfg, client, tool, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintAttributionResults(output.Results, output.Summary, dryCfg)
}

// GetAttributionResults runs a silent dry-run and returns the per-file results.
// The MCP server uses it so that no file is ever mutated through that surface.
func GetAttributionResults(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) ([]schema.FileResult, schema.RunSummary, error) {
	dryCfg := cfg.CloneForFile(cfg.TargetFile, true)
	tool := reuse.NewTool(cfg.HeaderTool)
	output, err := runAttributionCore(WithSuppressOutput(ctx), dryCfg, client, tool, mgr)
	if err != nil {
		return nil, schema.RunSummary{}, err
	}
	return output.Results, output.Summary, nil
}
