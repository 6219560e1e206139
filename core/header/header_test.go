package header

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/spdxattr/internal/contract"
	"github.com/huangsam/spdxattr/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const sampleSource = `// SPDX-FileCopyrightText: © 2021 Old Holder <old@example.com>
// SPDX-License-Identifier: MIT

package foo

/* SPDX-FileCopyrightText: © 2020 Block <b@x.io> */
 * SPDX-FileContributor: someone
# SPDX-License-Identifier: MIT
var s = "// SPDX- inside a string stays"
func main() {}
`

var phalaHeader = schema.AttributionHeader{
	Kind:         schema.OrganizationBucket,
	HolderLabel:  "Phala Network",
	ContactEmail: "dstack@phala.network",
	YearSpan:     "2022",
}

func TestStripAttributionLines(t *testing.T) {
	out, removed := StripAttributionLines([]byte(sampleSource))
	assert.Equal(t, 5, removed)
	assert.Equal(t, "\npackage foo\n\nvar s = \"// SPDX- inside a string stays\"\nfunc main() {}\n", string(out))
}

func TestStripAttributionLines_PreservesEndings(t *testing.T) {
	in := "a\r\n  // SPDX-License-Identifier: MIT\r\nb"
	out, removed := StripAttributionLines([]byte(in))
	assert.Equal(t, 1, removed)
	assert.Equal(t, "a\r\nb", string(out))

	untouched, removed := StripAttributionLines([]byte("x\ny\n"))
	assert.Zero(t, removed)
	assert.Equal(t, "x\ny\n", string(untouched))
}

func TestScanLicense(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"line comment", "// SPDX-License-Identifier: MIT\n", "MIT"},
		{"block comment", "/* SPDX-License-Identifier: GPL-3.0-or-later */\n", "GPL-3.0-or-later"},
		{"expression", "# SPDX-License-Identifier: Apache-2.0 OR MIT\n", "Apache-2.0 OR MIT"},
		{"no tag", "package foo\n", "Apache-2.0"},
		{"empty value", "// SPDX-License-Identifier:   \n", "Apache-2.0"},
		{"beyond line 20", repeatLines(20) + "// SPDX-License-Identifier: MIT\n", "Apache-2.0"},
		{"on line 20", repeatLines(19) + "// SPDX-License-Identifier: MIT\n", "MIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScanLicense([]byte(tt.content), schema.DefaultLicense))
		})
	}
}

func repeatLines(n int) string {
	s := ""
	for range n {
		s += "x\n"
	}
	return s
}

func writeRepoFile(t *testing.T, repo, rel, content string) string {
	t.Helper()
	abs := filepath.Join(repo, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	return abs
}

func TestApplierPlan(t *testing.T) {
	repo := t.TempDir()
	abs := writeRepoFile(t, repo, "src/foo.ts", sampleSource)

	tool := new(contract.MockHeaderTool)
	lines := []string{phalaHeader.String()}
	tool.On("Command", "src/foo.ts", lines, "MIT").Return([]string{"reuse", "annotate"})

	plan, err := NewApplier(tool, repo, "").Plan("src/foo.ts", []schema.AttributionHeader{phalaHeader})
	require.NoError(t, err)

	// License is read before stripping removes its line
	assert.Equal(t, "MIT", plan.License)
	assert.Equal(t, 5, plan.Stripped)
	assert.Equal(t, lines, plan.Headers)
	assert.Equal(t, []string{"reuse", "annotate"}, plan.Command)

	// Planning never mutates
	content, err := os.ReadFile(abs)
	require.NoError(t, err)
	assert.Equal(t, sampleSource, string(content))
	tool.AssertExpectations(t)
}

func TestApplierPlan_Errors(t *testing.T) {
	repo := t.TempDir()
	writeRepoFile(t, repo, "bin.c", "\xff\xfe\x00binary")
	applier := NewApplier(new(contract.MockHeaderTool), repo, "MIT")

	_, err := applier.Plan("missing.go", nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = applier.Plan("bin.c", nil)
	assert.ErrorIs(t, err, ErrNotText)
}

func TestApplierApply(t *testing.T) {
	ctx := context.Background()

	t.Run("strips then annotates", func(t *testing.T) {
		repo := t.TempDir()
		abs := writeRepoFile(t, repo, "foo.go", sampleSource)
		tool := new(contract.MockHeaderTool)
		tool.On("Command", "foo.go", mock.Anything, "MIT").Return([]string{"reuse"})
		tool.On("Annotate", ctx, repo, "foo.go", []string{phalaHeader.String()}, "MIT").
			Run(func(args mock.Arguments) {
				// The tool sees the stripped file
				content, err := os.ReadFile(abs)
				require.NoError(t, err)
				assert.NotContains(t, string(content), "SPDX-")
			}).
			Return(nil)

		applier := NewApplier(tool, repo, "")
		plan, err := applier.Plan("foo.go", []schema.AttributionHeader{phalaHeader})
		require.NoError(t, err)
		require.NoError(t, applier.Apply(ctx, plan))
		tool.AssertExpectations(t)
	})

	t.Run("tool failure restores original bytes", func(t *testing.T) {
		repo := t.TempDir()
		abs := writeRepoFile(t, repo, "foo.go", sampleSource)
		tool := new(contract.MockHeaderTool)
		tool.On("Command", "foo.go", mock.Anything, "MIT").Return([]string{"reuse"})
		tool.On("Annotate", ctx, repo, "foo.go", mock.Anything, "MIT").Return(errors.New("exit status 1"))

		applier := NewApplier(tool, repo, "")
		plan, err := applier.Plan("foo.go", []schema.AttributionHeader{phalaHeader})
		require.NoError(t, err)

		err = applier.Apply(ctx, plan)
		var toolErr *ToolError
		require.ErrorAs(t, err, &toolErr)
		assert.True(t, toolErr.RolledBack)
		assert.Equal(t, "foo.go", toolErr.Path)

		content, err := os.ReadFile(abs)
		require.NoError(t, err)
		assert.Equal(t, sampleSource, string(content))
	})
}

func TestFormatCommand(t *testing.T) {
	argv := []string{"reuse", "annotate", "--copyright", "SPDX-FileCopyrightText: © 2022 A <a@x.io>", "--license", "MIT", "it's.ts"}
	assert.Equal(t,
		`reuse annotate --copyright 'SPDX-FileCopyrightText: © 2022 A <a@x.io>' --license MIT 'it'\''s.ts'`,
		FormatCommand(argv))
}
