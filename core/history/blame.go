package history

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/huangsam/spdxattr/schema"
)

// isCommitHeader reports whether a porcelain line opens a blame block:
// "<40 hex> <orig-line> <final-line> [<group-size>]".
func isCommitHeader(line string) bool {
	if len(line) < 41 || line[40] != ' ' {
		return false
	}
	for i := range 40 {
		c := line[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	fields := strings.Fields(line[41:])
	if len(fields) < 2 || len(fields) > 3 {
		return false
	}
	for _, f := range fields {
		for _, c := range f {
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}

// ParseBlamePorcelain extracts one BlameLine per distinct commit from
// git blame --porcelain output, in order of first appearance.
// Author fields only follow the first block of each commit; content lines
// are TAB-prefixed and never interpreted. Uncommitted lines are skipped.
func ParseBlamePorcelain(out []byte) []schema.BlameLine {
	var (
		order   []string
		authors = make(map[string]*schema.BlameLine)
		current *schema.BlameLine
	)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "\t") {
			current = nil // content ends the header block
			continue
		}
		if isCommitHeader(line) {
			id := line[:40]
			if existing, ok := authors[id]; ok {
				current = existing
				continue
			}
			current = &schema.BlameLine{CommitID: id}
			authors[id] = current
			order = append(order, id)
			continue
		}
		if current == nil {
			continue
		}
		if name, ok := strings.CutPrefix(line, "author "); ok {
			current.AuthorName = strings.TrimSpace(name)
		} else if mail, ok := strings.CutPrefix(line, "author-mail "); ok {
			current.AuthorEmail = strings.Trim(strings.TrimSpace(mail), "<>")
		}
	}

	lines := make([]schema.BlameLine, 0, len(order))
	for _, id := range order {
		bl := authors[id]
		if bl.CommitID == schema.ZeroCommitID || bl.AuthorEmail == "" {
			continue
		}
		lines = append(lines, *bl)
	}
	return lines
}
