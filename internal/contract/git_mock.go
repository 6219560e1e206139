package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGitClient is a testify mock for the GitClient interface.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	var mockArgs []any
	mockArgs = append(mockArgs, ctx, repoPath)
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	root, _ := ret.Get(0).(string)
	return root, ret.Error(1)
}

// Blame implements the GitClient interface.
func (m *MockGitClient) Blame(ctx context.Context, repoPath string, path string) ([]byte, error) {
	ret := m.Called(ctx, repoPath, path)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetCommitMeta implements the GitClient interface.
func (m *MockGitClient) GetCommitMeta(ctx context.Context, repoPath string, commitID string) ([]byte, error) {
	ret := m.Called(ctx, repoPath, commitID)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetCommitDiff implements the GitClient interface.
func (m *MockGitClient) GetCommitDiff(ctx context.Context, repoPath string, commitID string) ([]byte, error) {
	ret := m.Called(ctx, repoPath, commitID)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}
