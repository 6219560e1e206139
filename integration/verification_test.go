//go:build basic

// Package integration contains end-to-end tests for the spdxattr binary.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type headersPayload struct {
	Files []struct {
		Path    string   `json:"path"`
		Status  string   `json:"status"`
		License string   `json:"license"`
		Lines   []string `json:"lines"`
	} `json:"files"`
	Summary struct {
		Total     int  `json:"total"`
		Succeeded int  `json:"succeeded"`
		DryRun    bool `json:"dry_run"`
	} `json:"summary"`
}

// TestHeadersMatchHistory runs headers against a fixture repository and
// compares the computed lines with what the commit history implies.
func TestHeadersMatchHistory(t *testing.T) {
	repo := newFixtureRepo(t, standardHistory()...)

	out, err := runBinary(t, repo, "headers", "--output", "json", "--cache-backend", "none", repo)
	require.NoError(t, err)

	var payload headersPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload), out)

	byPath := map[string][]string{}
	licenses := map[string]string{}
	for _, f := range payload.Files {
		assert.Equal(t, "planned", f.Status, f.Path)
		byPath[f.Path] = f.Lines
		licenses[f.Path] = f.License
	}

	assert.Equal(t, []string{"SPDX-FileCopyrightText: © 2022-2023 Alice <alice@example.org>"}, byPath["src/main.go"])
	assert.Equal(t, []string{"SPDX-FileCopyrightText: © 2024 Phala Network <dstack@phala.network>"}, byPath["src/util.go"],
		"the header-only commit must not be attributed")
	assert.Equal(t, "Apache-2.0", licenses["src/main.go"])
	assert.Equal(t, "MIT", licenses["src/util.go"])
	assert.Equal(t, 2, payload.Summary.Total)
	assert.True(t, payload.Summary.DryRun)
}

// TestHeadersSingleFile restricts the run to one file.
func TestHeadersSingleFile(t *testing.T) {
	repo := newFixtureRepo(t, standardHistory()...)

	out, err := runBinary(t, repo, "headers", "--output", "json", "--file", "src/util.go", repo)
	require.NoError(t, err)

	var payload headersPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload), out)
	require.Len(t, payload.Files, 1)
	assert.Equal(t, "src/util.go", payload.Files[0].Path)
}

// TestAnnotateDryRunLeavesFilesAlone checks the plan output and that no
// file content changes.
func TestAnnotateDryRunLeavesFilesAlone(t *testing.T) {
	repo := newFixtureRepo(t, standardHistory()...)
	before, err := os.ReadFile(filepath.Join(repo, "src", "util.go"))
	require.NoError(t, err)

	out, err := runBinary(t, repo, "annotate", "--dry-run", repo)
	require.NoError(t, err)

	assert.Contains(t, out, "Found 2 source files to process")
	assert.Contains(t, out, "Would strip: 1 existing SPDX lines")
	assert.Contains(t, out, "Would run:")
	assert.Contains(t, out, "Processed 2/2 files successfully")

	after, err := os.ReadFile(filepath.Join(repo, "src", "util.go"))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

// TestExcludedFileIsNotAttributed uses the exclusion file.
func TestExcludedFileIsNotAttributed(t *testing.T) {
	history := standardHistory()
	history[0].files[".spdx-exclude"] = "src/util.go\n"
	repo := newFixtureRepo(t, history...)

	out, err := runBinary(t, repo, "headers", "--output", "json", repo)
	require.NoError(t, err)

	var payload headersPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload), out)
	for _, f := range payload.Files {
		if f.Path == "src/util.go" {
			assert.Equal(t, "excluded", f.Status)
			assert.Empty(t, f.Lines)
		}
	}
}

// TestNotAGitRepository fails before any file is touched.
func TestNotAGitRepository(t *testing.T) {
	_ = getBinary()
	dir := t.TempDir()
	_, err := runBinary(t, dir, "headers", dir)
	assert.Error(t, err)
}
