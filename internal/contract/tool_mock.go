package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockHeaderTool is a testify mock for the HeaderTool interface.
type MockHeaderTool struct {
	mock.Mock
}

var _ HeaderTool = &MockHeaderTool{} // Compile-time check

// Command implements the HeaderTool interface.
func (m *MockHeaderTool) Command(path string, headers []string, license string) []string {
	ret := m.Called(path, headers, license)
	argv, _ := ret.Get(0).([]string)
	return argv
}

// Annotate implements the HeaderTool interface.
func (m *MockHeaderTool) Annotate(ctx context.Context, repoRoot string, path string, headers []string, license string) error {
	ret := m.Called(ctx, repoRoot, path, headers, license)
	return ret.Error(0)
}
