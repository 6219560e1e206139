// Package reuse adapts the REUSE command-line tool as the header writer.
package reuse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path"
	"strings"

	"github.com/huangsam/spdxattr/internal/contract"
)

// Tool runs "reuse annotate" (or a compatible executable).
type Tool struct {
	Executable string
}

var _ contract.HeaderTool = &Tool{} // Compile-time check

// NewTool creates a tool for the given executable, defaulting to "reuse".
func NewTool(executable string) *Tool {
	if executable == "" {
		executable = contract.DefaultHeaderTool
	}
	return &Tool{Executable: executable}
}

// Command implements the HeaderTool interface.
// Solidity sources get an explicit C comment style since reuse cannot infer it.
func (t *Tool) Command(filePath string, headers []string, license string) []string {
	argv := []string{t.Executable, "annotate"}
	for _, h := range headers {
		argv = append(argv, "--copyright", h)
	}
	argv = append(argv, "--license", license)
	if path.Ext(filePath) == ".sol" {
		argv = append(argv, "--style", "c")
	}
	return append(argv, filePath)
}

// Annotate implements the HeaderTool interface.
func (t *Tool) Annotate(ctx context.Context, repoRoot string, filePath string, headers []string, license string) error {
	argv := t.Command(filePath, headers, license)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = repoRoot
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%s exited with status %d: %s", t.Executable, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
	} else if err != nil {
		return fmt.Errorf("could not run %s: %w. Ensure it is installed and available on your PATH", t.Executable, err)
	}
	return nil
}
