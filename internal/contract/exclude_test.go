package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		patterns   []string
		wantIgnore bool
	}{
		{"no patterns", "src/main.go", nil, false},
		{"directory prefix", "vendor/lib/file.go", []string{"vendor/"}, true},
		{"nested directory segment", "crates/x/vendor/file.go", []string{"vendor/"}, true},
		{"directory name is not a substring match", "myvendor/file.go", []string{"vendor/"}, false},
		{"multi-segment directory", "a/gen/proto/x.go", []string{"gen/proto/"}, true},
		{"star crosses slashes", "src/deep/file.pb.go", []string{"*.pb.go"}, true},
		{"star anchored at both ends", "src/file.pb.go.bak", []string{"*.pb.go"}, false},
		{"literal full path", "src/main.rs", []string{"src/main.rs"}, true},
		{"literal does not match basename", "src/main.rs", []string{"main.rs"}, false},
		{"question mark", "src/a1.c", []string{"src/a?.c"}, true},
		{"character class", "src/b.h", []string{"src/[ab].h"}, true},
		{"negated class", "src/c.h", []string{"src/[!ab].h"}, true},
		{"negated class miss", "src/a.h", []string{"src/[!ab].h"}, false},
		{"unterminated class is literal", "src/[x.go", []string{"src/[x.go"}, true},
		{"regex metacharacters are literal", "a+b.go", []string{"a+b.go"}, true},
		{"dot is literal", "aXgo", []string{"a.go"}, false},
		{"any of several", "third_party/x.go", []string{"*.rs", "third_party/*"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantIgnore, ShouldIgnore(tt.path, tt.patterns))
		})
	}
}

func TestParseExcludePatterns(t *testing.T) {
	input := `
# generated code
vendor/

  *.pb.go  
#comment
src/legacy.rs
`
	patterns, err := ParseExcludePatterns(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"vendor/", "*.pb.go", "src/legacy.rs"}, patterns)
}

func TestLoadExcludeFile(t *testing.T) {
	t.Run("missing file yields no patterns", func(t *testing.T) {
		patterns, err := LoadExcludeFile(filepath.Join(t.TempDir(), ".spdx-exclude"))
		assert.NoError(t, err)
		assert.Empty(t, patterns)
	})

	t.Run("reads patterns", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".spdx-exclude")
		require.NoError(t, os.WriteFile(path, []byte("dist/\n*.min.js\n"), 0o644))
		patterns, err := LoadExcludeFile(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"dist/", "*.min.js"}, patterns)
	})
}

func TestIsDirPattern(t *testing.T) {
	assert.True(t, IsDirPattern("vendor/"))
	assert.False(t, IsDirPattern("*.go"))
}
