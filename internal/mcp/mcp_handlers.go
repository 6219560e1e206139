package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/huangsam/spdxattr/core"
	"github.com/huangsam/spdxattr/internal/contract"
	"github.com/huangsam/spdxattr/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.GitClient
	mgr     contract.CacheManager
}

// fileView is a file result with its rendered SPDX lines.
type fileView struct {
	schema.FileResult
	Lines []string `json:"lines,omitempty"`
}

// repoView is the payload of get_repo_attribution.
type repoView struct {
	Files   []fileView        `json:"files"`
	Summary schema.RunSummary `json:"summary"`
}

func newFileView(r schema.FileResult) fileView {
	return fileView{FileResult: r, Lines: schema.RenderHeaders(r.Headers)}
}

func (h *toolHandler) handleGetFileAttribution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rel, err := cleanRelPath(request.GetString("path", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid path: %v", err)), nil
	}

	cfg := h.baseCfg.CloneForFile(rel, true)
	results, _, err := core.GetAttributionResults(ctx, cfg, h.client, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("attribution failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no result for %s", rel)), nil
	}

	jsonData, _ := json.MarshalIndent(newFileView(results[0]), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetRepoAttribution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 0)
	if limit < 0 {
		return mcp.NewToolResultError("limit must not be negative"), nil
	}

	cfg := h.baseCfg.CloneForFile("", true)
	results, summary, err := core.GetAttributionResults(ctx, cfg, h.client, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("attribution failed: %v", err)), nil
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	view := repoView{Files: make([]fileView, len(results)), Summary: summary}
	for i, r := range results {
		view.Files[i] = newFileView(r)
	}
	jsonData, _ := json.MarshalIndent(view, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// cleanRelPath accepts only paths that stay inside the repository.
func cleanRelPath(p string) (string, error) {
	p = strings.TrimSpace(contract.ToSlash(p))
	if p == "" {
		return "", fmt.Errorf("path is required")
	}
	if path.IsAbs(p) {
		return "", fmt.Errorf("%s must be relative to the repository root", p)
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%s is outside the repository", p)
	}
	return cleaned, nil
}
