package pollution

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/huangsam/spdxattr/internal/contract"
	"github.com/stretchr/testify/assert"
)

// buildDiff renders a single-file unified diff adding the given lines.
func buildDiff(added ...string) string {
	var sb strings.Builder
	sb.WriteString("diff --git a/foo.ts b/foo.ts\n")
	sb.WriteString("index 1111111..2222222 100644\n")
	sb.WriteString("--- a/foo.ts\n")
	sb.WriteString("+++ b/foo.ts\n")
	fmt.Fprintf(&sb, "@@ -1,1 +1,%d @@\n", len(added)+1)
	for _, l := range added {
		sb.WriteString("+" + l + "\n")
	}
	sb.WriteString(" export const a = 1;\n")
	return sb.String()
}

func staticDiff(s string) DiffFunc {
	return func() ([]byte, error) { return []byte(s), nil }
}

func TestMentionsLicense(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		message string
		want    bool
	}{
		{"update SPDX header", true},
		{"Add License Header to sources", true},
		{"chore: reuse annotate", true},
		{"fix copyright attribution for vendored code", true},
		{"add feature flag", false},
		{"licensing discussion", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.MentionsLicense(tt.message))
		})
	}
}

func TestCountSubstantialLines(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		name string
		diff string
		want int
	}{
		{
			name: "marker lines only",
			diff: buildDiff(
				"// SPDX-FileCopyrightText: © 2023 Phala Network <dstack@phala.network>",
				"// SPDX-License-Identifier: Apache-2.0",
				"/* Copyright (c) 2023 */",
			),
			want: 0,
		},
		{
			name: "blank lines are not substantial",
			diff: buildDiff("", "   ", "// copyright notice"),
			want: 0,
		},
		{
			name: "mixed lines",
			diff: buildDiff("// All Rights Reserved", "import x from 'y';", "const z = 2;"),
			want: 2,
		},
		{
			name: "typo marker counts as attribution",
			diff: buildDiff("// SPDX-FilepyrightText: 2023 Someone"),
			want: 0,
		},
		{
			name: "content starting with dashes is still counted",
			diff: buildDiff("-- sql comment", "++counter;"),
			want: 2,
		},
		{
			name: "empty diff",
			diff: "",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.CountSubstantialLines([]byte(tt.diff)))
		})
	}
}

func TestCountSubstantialLines_RawFallback(t *testing.T) {
	rules := DefaultRules()
	// Combined merge diff headers are not a plain unified diff
	combined := strings.Join([]string{
		"diff --cc foo.ts",
		"index 1111111,2222222..3333333",
		"--- a/foo.ts",
		"+++ b/foo.ts",
		"@@@ -1,1 -1,1 +1,2 @@@",
		"++const merged = true;",
		"+ // SPDX-License-Identifier: MIT",
		"  export const a = 1;",
		"",
	}, "\n")

	// Raw scan: "++const" counts, SPDX line is a marker, headers skipped
	assert.Equal(t, 1, rules.countRawLines([]byte(combined)))
}

func TestIsPollution(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name    string
		message string
		diff    string
		want    bool
	}{
		{
			name:    "keyword with marker-only diff",
			message: "update SPDX header",
			diff:    buildDiff("// SPDX-FileCopyrightText: © 2023 A <a@x.io>"),
			want:    true,
		},
		{
			name:    "exactly two substantial lines is pollution",
			message: "add license header",
			diff:    buildDiff("// SPDX-License-Identifier: MIT", "package foo", "import \"fmt\""),
			want:    true,
		},
		{
			name:    "three substantial lines is not pollution",
			message: "add license header",
			diff:    buildDiff("package foo", "import \"fmt\"", "var x = 1"),
			want:    false,
		},
		{
			name:    "large feature commit mentioning license",
			message: "feature: new parser (also update license headers)",
			diff:    buildDiff("a()", "b()", "c()", "d()"),
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.IsPollution(tt.message, staticDiff(tt.diff)))
		})
	}
}

func TestIsPollution_DiffNotFetchedWithoutKeyword(t *testing.T) {
	fetched := false
	got := DefaultRules().IsPollution("add feature", func() ([]byte, error) {
		fetched = true
		return nil, nil
	})
	assert.False(t, got)
	assert.False(t, fetched)
}

func TestIsPollution_DiffFailureKeepsCommit(t *testing.T) {
	got := DefaultRules().IsPollution("update spdx", func() ([]byte, error) {
		return nil, errors.New("git show failed")
	})
	assert.False(t, got)
}

func TestRulesFromConfig(t *testing.T) {
	cfg := &contract.Config{
		PollutionKeywords:   []string{"relicense"},
		MaxSubstantialLines: 0,
	}
	rules := RulesFromConfig(cfg)
	assert.Equal(t, []string{"relicense"}, rules.Keywords)
	assert.Equal(t, contract.DefaultPollutionMarkers, rules.Markers)
	assert.Equal(t, contract.DefaultMaxSubstantialLines, rules.MaxSubstantialLines)

	assert.True(t, rules.IsPollution("Relicense to MIT", staticDiff(buildDiff("// SPDX-License-Identifier: MIT"))))
	assert.False(t, rules.IsPollution("update spdx", staticDiff("")))
}

func TestFingerprint(t *testing.T) {
	a := DefaultRules()
	b := DefaultRules()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.MaxSubstantialLines = 3
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	c := DefaultRules()
	c.Markers = append(c.Markers, "license:")
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}
