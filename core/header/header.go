// Package header rewrites the attribution block of a source file: it strips
// stale SPDX lines, keeps the declared license and delegates insertion to an
// external header tool.
package header

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/huangsam/spdxattr/internal/contract"
	"github.com/huangsam/spdxattr/schema"
)

// licenseScanLines is how many leading lines are searched for a license tag.
const licenseScanLines = 20

// stripPrefixes are the comment forms of an SPDX line, matched after left-trimming.
var stripPrefixes = []string{"// SPDX-", "# SPDX-", "/* SPDX-", "* SPDX-"}

// ErrNotText is returned for files that are not valid UTF-8.
var ErrNotText = errors.New("file is not valid UTF-8 text")

// ToolError reports that the header tool failed for a file.
type ToolError struct {
	Path       string
	Err        error
	RolledBack bool
}

func (e *ToolError) Error() string {
	if e.RolledBack {
		return fmt.Sprintf("header tool failed for %s (original content restored): %v", e.Path, e.Err)
	}
	return fmt.Sprintf("header tool failed for %s: %v", e.Path, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// StripAttributionLines removes every SPDX comment line and returns the
// remaining content with line order and endings intact, plus the number of
// removed lines.
func StripAttributionLines(content []byte) ([]byte, int) {
	lines := bytes.SplitAfter(content, []byte("\n"))
	out := make([]byte, 0, len(content))
	removed := 0
	for _, line := range lines {
		if isAttributionLine(line) {
			removed++
			continue
		}
		out = append(out, line...)
	}
	return out, removed
}

func isAttributionLine(line []byte) bool {
	trimmed := strings.TrimLeft(string(line), " \t")
	for _, p := range stripPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

// ScanLicense returns the license expression declared in the first lines of
// content, or fallback when none is declared.
func ScanLicense(content []byte, fallback string) string {
	lines := strings.SplitN(string(content), "\n", licenseScanLines+1)
	if len(lines) > licenseScanLines {
		lines = lines[:licenseScanLines]
	}
	for _, line := range lines {
		_, after, ok := strings.Cut(line, schema.LicenseTag)
		if !ok {
			continue
		}
		license := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(after), "*/"))
		if license != "" {
			return license
		}
	}
	return fallback
}

// Plan is everything an application would do to one file.
type Plan struct {
	Path     string // repo-relative
	Headers  []string
	License  string
	Stripped int
	Command  []string

	original []byte
	stripped []byte
}

// Applier plans and applies header rewrites inside one repository.
type Applier struct {
	tool           contract.HeaderTool
	repoRoot       string
	defaultLicense string
}

// NewApplier creates an applier.
func NewApplier(tool contract.HeaderTool, repoRoot, defaultLicense string) *Applier {
	if defaultLicense == "" {
		defaultLicense = schema.DefaultLicense
	}
	return &Applier{tool: tool, repoRoot: repoRoot, defaultLicense: defaultLicense}
}

// Plan reads the file and computes the rewrite without touching it.
// The license is scanned before stripping so a declared license survives.
func (a *Applier) Plan(path string, headers []schema.AttributionHeader) (*Plan, error) {
	content, err := os.ReadFile(filepath.Join(a.repoRoot, filepath.FromSlash(path)))
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotText)
	}

	lines := schema.RenderHeaders(headers)
	license := ScanLicense(content, a.defaultLicense)
	stripped, removed := StripAttributionLines(content)
	return &Plan{
		Path:     path,
		Headers:  lines,
		License:  license,
		Stripped: removed,
		Command:  a.tool.Command(path, lines, license),
		original: content,
		stripped: stripped,
	}, nil
}

// Apply strips stale lines and runs the header tool. When the tool fails
// the original bytes are written back.
func (a *Applier) Apply(ctx context.Context, plan *Plan) error {
	abs := filepath.Join(a.repoRoot, filepath.FromSlash(plan.Path))
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()

	if plan.Stripped > 0 {
		if err := os.WriteFile(abs, plan.stripped, mode); err != nil {
			return fmt.Errorf("writing %s: %w", plan.Path, err)
		}
	}

	toolErr := a.tool.Annotate(ctx, a.repoRoot, plan.Path, plan.Headers, plan.License)
	if toolErr == nil {
		return nil
	}
	if err := os.WriteFile(abs, plan.original, mode); err != nil {
		contract.LogWarn(fmt.Sprintf("Could not restore %s", plan.Path), err)
		return &ToolError{Path: plan.Path, Err: toolErr}
	}
	return &ToolError{Path: plan.Path, Err: toolErr, RolledBack: true}
}

// FormatCommand renders argv for display, quoting arguments that contain spaces.
func FormatCommand(argv []string) string {
	parts := make([]string, len(argv))
	for i, arg := range argv {
		if arg == "" || strings.ContainsAny(arg, " \t'\"") {
			parts[i] = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
		} else {
			parts[i] = arg
		}
	}
	return strings.Join(parts, " ")
}
