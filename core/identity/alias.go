// Package identity canonicalizes contributor identities and classifies
// them as organizations or individuals.
package identity

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/huangsam/spdxattr/schema"
)

// Alias is the canonical name and email an alias entry maps to.
// An empty Name keeps the name recorded in history.
type Alias struct {
	Name  string
	Email string
}

// AliasTable maps raw commit emails to canonical identities.
// It is immutable once built.
type AliasTable struct {
	entries map[string]Alias
}

// NewAliasTable builds a table from raw email to alias.
func NewAliasTable(entries map[string]Alias) *AliasTable {
	t := &AliasTable{entries: make(map[string]Alias, len(entries))}
	for raw, alias := range entries {
		t.entries[raw] = alias
	}
	return t
}

// LoadAliasTable reads a mailmap-style alias file.
// The returned error wraps fs.ErrNotExist when the file is missing.
func LoadAliasTable(path string) (*AliasTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ParseAliasTable(f)
}

// ParseAliasTable parses mailmap lines of the forms
//
//	Proper Name <proper@email> <commit@email>
//	Proper Name <proper@email> Commit Name <commit@email>
//	Proper Name <email>
//
// Blank lines, '#' comments and lines without a proper email are ignored.
func ParseAliasTable(r io.Reader) (*AliasTable, error) {
	t := &AliasTable{entries: make(map[string]Alias)}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if raw, alias, ok := parseAliasLine(line); ok {
			t.entries[raw] = alias
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// parseAliasLine returns the raw email key and its alias.
func parseAliasLine(line string) (string, Alias, bool) {
	// Trailing comments are allowed after the last address
	if i := strings.LastIndex(line, ">"); i >= 0 {
		line = line[:i+1]
	}

	properName, rest, ok := strings.Cut(line, "<")
	if !ok {
		return "", Alias{}, false
	}
	properEmail, rest, ok := strings.Cut(rest, ">")
	if !ok {
		return "", Alias{}, false
	}
	alias := Alias{Name: strings.TrimSpace(properName), Email: strings.TrimSpace(properEmail)}
	if alias.Email == "" {
		return "", Alias{}, false
	}

	// Second address, optionally preceded by the commit name
	if _, after, found := strings.Cut(rest, "<"); found {
		commitEmail, _, _ := strings.Cut(after, ">")
		commitEmail = strings.TrimSpace(commitEmail)
		if commitEmail == "" {
			return "", Alias{}, false
		}
		return commitEmail, alias, true
	}
	return alias.Email, alias, true
}

// Len returns the number of entries.
func (t *AliasTable) Len() int {
	return len(t.entries)
}

// Canonicalize resolves a raw email by exact key match. Without a match the
// identity keeps the raw email, takes rawName (or the placeholder when it is
// empty) and is marked unresolved.
func (t *AliasTable) Canonicalize(email, rawName string) schema.CanonicalIdentity {
	email = strings.TrimSpace(email)
	rawName = strings.TrimSpace(rawName)
	if alias, ok := t.entries[email]; ok {
		name := alias.Name
		if name == "" {
			name = rawName
		}
		if name == "" {
			name = schema.UnknownName
		}
		return schema.CanonicalIdentity{DisplayName: name, Email: alias.Email, Resolved: true}
	}
	if rawName == "" {
		rawName = schema.UnknownName
	}
	return schema.CanonicalIdentity{DisplayName: rawName, Email: email, Resolved: false}
}
