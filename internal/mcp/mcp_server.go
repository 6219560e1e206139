// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/spdxattr/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the attribution MCP server without starting it.
// Every tool computes attribution in dry-run mode, so no file is ever mutated.
func NewMCPServer(baseCfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"SPDX Attribution Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		client:  client,
		mgr:     mgr,
	}

	// --- 1. Tool: get_file_attribution ---
	s.AddTool(mcp.NewTool("get_file_attribution",
		mcp.WithDescription("Derive the SPDX-FileCopyrightText headers for one file from its git history."),
		mcp.WithString("path", mcp.Description("Repository-relative path of the file."), mcp.Required()),
	), h.handleGetFileAttribution)

	// --- 2. Tool: get_repo_attribution ---
	s.AddTool(mcp.NewTool("get_repo_attribution",
		mcp.WithDescription("Derive SPDX-FileCopyrightText headers for every source file in the repository."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of files returned. The summary always covers the whole run.")),
	), h.handleGetRepoAttribution)

	return s
}

// StartMCPServer serves the attribution tools over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, contract.NewLocalGitClient(), mgr)
	return server.ServeStdio(s)
}
