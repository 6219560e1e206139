package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git %s failed in %q: %s", args[0], repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Blame implements the GitClient interface.
func (c *LocalGitClient) Blame(ctx context.Context, repoPath string, path string) ([]byte, error) {
	return c.Run(ctx, repoPath, "blame", "--porcelain", "--", path)
}

// GetCommitMeta implements the GitClient interface.
func (c *LocalGitClient) GetCommitMeta(ctx context.Context, repoPath string, commitID string) ([]byte, error) {
	args := []string{
		"show", "-s",
		"--format=%ad%n%s%n%b",
		"--date=format:%Y",
		commitID,
	}
	return c.Run(ctx, repoPath, args...)
}

// GetCommitDiff implements the GitClient interface.
func (c *LocalGitClient) GetCommitDiff(ctx context.Context, repoPath string, commitID string) ([]byte, error) {
	return c.Run(ctx, repoPath, "show", "--format=", commitID)
}
