// Package pollution detects commits whose only substantive effect was
// editing copyright or license text. Blame lines from such commits are
// dropped so that repeated attribution runs never credit themselves.
//
// The predicate is a heuristic: a keyword match on the commit message,
// confirmed by a diff that changes at most a handful of lines that do not
// look like attribution markers.
package pollution

import (
	"bufio"
	"crypto/sha256"
	"fmt"
	"slices"
	"strings"

	"github.com/huangsam/spdxattr/internal/contract"
	"github.com/sourcegraph/go-diff/diff"
)

// Rules is the tunable pollution predicate.
type Rules struct {
	Keywords            []string // lowercase fragments matched against the commit message
	Markers             []string // lowercase fragments that make a changed line attribution text
	MaxSubstantialLines int      // a keyword commit with at most this many substantial lines is pollution
}

// DiffFunc fetches the diff of the commit being classified.
type DiffFunc func() ([]byte, error)

// DefaultRules returns the built-in heuristic.
func DefaultRules() Rules {
	return Rules{
		Keywords:            slices.Clone(contract.DefaultPollutionKeywords),
		Markers:             slices.Clone(contract.DefaultPollutionMarkers),
		MaxSubstantialLines: contract.DefaultMaxSubstantialLines,
	}
}

// RulesFromConfig builds the predicate from validated configuration.
func RulesFromConfig(cfg *contract.Config) Rules {
	rules := DefaultRules()
	if len(cfg.PollutionKeywords) > 0 {
		rules.Keywords = slices.Clone(cfg.PollutionKeywords)
	}
	if len(cfg.PollutionMarkers) > 0 {
		rules.Markers = slices.Clone(cfg.PollutionMarkers)
	}
	if cfg.MaxSubstantialLines > 0 {
		rules.MaxSubstantialLines = cfg.MaxSubstantialLines
	}
	return rules
}

// MentionsLicense reports whether the message contains any keyword, case-insensitively.
func (r Rules) MentionsLicense(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// IsMarkerLine reports whether changed content looks like attribution text.
func (r Rules) IsMarkerLine(content string) bool {
	lower := strings.ToLower(content)
	for _, m := range r.Markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// CountSubstantialLines counts added or removed lines whose trimmed content is
// non-empty and carries no attribution marker. Diff metadata is never counted.
func (r Rules) CountSubstantialLines(rawDiff []byte) int {
	fileDiffs, err := diff.ParseMultiFileDiff(rawDiff)
	if err != nil {
		// Combined merge diffs and other shapes go-diff rejects
		return r.countRawLines(rawDiff)
	}
	count := 0
	for _, fd := range fileDiffs {
		for _, hunk := range fd.Hunks {
			count += r.countLines(hunk.Body, false)
		}
	}
	return count
}

// countRawLines applies the line rule to unparsed diff text, skipping file headers.
func (r Rules) countRawLines(rawDiff []byte) int {
	return r.countLines(rawDiff, true)
}

func (r Rules) countLines(body []byte, skipHeaders bool) int {
	count := 0
	scanner := bufio.NewScanner(strings.NewReader(string(body)))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || (line[0] != '+' && line[0] != '-') {
			continue
		}
		if skipHeaders && (strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---")) {
			continue
		}
		content := strings.TrimSpace(line[1:])
		if content == "" || r.IsMarkerLine(content) {
			continue
		}
		count++
	}
	return count
}

// IsPollution classifies a commit. The diff is only fetched when the message
// mentions a keyword; a diff that cannot be fetched means the commit is kept.
func (r Rules) IsPollution(message string, fetchDiff DiffFunc) bool {
	if !r.MentionsLicense(message) {
		return false
	}
	rawDiff, err := fetchDiff()
	if err != nil {
		return false
	}
	return r.CountSubstantialLines(rawDiff) <= r.MaxSubstantialLines
}

// Fingerprint identifies the rule set, so cached verdicts are never reused
// under different rules.
func (r Rules) Fingerprint() string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%d\x00", r.MaxSubstantialLines)
	_, _ = fmt.Fprintf(h, "%s\x00", strings.Join(r.Keywords, "\x1f"))
	_, _ = fmt.Fprintf(h, "%s", strings.Join(r.Markers, "\x1f"))
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}
