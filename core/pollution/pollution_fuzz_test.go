package pollution

import "testing"

// FuzzCountSubstantialLines checks that arbitrary diff text never panics and
// that the count never exceeds the number of lines.
func FuzzCountSubstantialLines(f *testing.F) {
	f.Add(buildDiff("x", "// SPDX-License-Identifier: MIT"))
	f.Add("diff --cc a\n@@@ -1 -1 +1 @@@\n++x\n")
	f.Add("+\n-\n+++\n---\n")
	f.Add("")

	rules := DefaultRules()
	f.Fuzz(func(t *testing.T, input string) {
		n := rules.CountSubstantialLines([]byte(input))
		lines := 1
		for _, c := range input {
			if c == '\n' {
				lines++
			}
		}
		if n < 0 || n > lines {
			t.Fatalf("count %d out of range for %d lines", n, lines)
		}
	})
}
