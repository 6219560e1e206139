package contract

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"sync"
)

// globCache memoizes translated glob patterns, since every discovered file
// is checked against every pattern.
var globCache sync.Map // map[string]*regexp.Regexp

// LoadExcludeFile reads exclusion patterns from path.
// A missing file yields no patterns and no error.
func LoadExcludeFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ParseExcludePatterns(f)
}

// ParseExcludePatterns returns the trimmed, non-empty, non-comment lines of r.
func ParseExcludePatterns(r io.Reader) ([]string, error) {
	var patterns []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

// ShouldIgnore returns true if the repo-relative path matches any exclusion pattern.
// A pattern ending with '/' matches a directory prefix or a directory of that name
// at any depth. Any other pattern is a shell glob over the whole relative path
// where '*' also matches '/'.
func ShouldIgnore(path string, patterns []string) bool {
	for _, pat := range patterns {
		if pat == "" {
			continue
		}
		if strings.HasSuffix(pat, "/") {
			if strings.HasPrefix(path, pat) || strings.Contains("/"+path+"/", "/"+pat) {
				return true
			}
			continue
		}
		if globMatch(pat, path) {
			return true
		}
	}
	return false
}

// IsDirPattern reports whether a pattern excludes a whole directory.
func IsDirPattern(pat string) bool {
	return strings.HasSuffix(pat, "/")
}

func globMatch(pattern, name string) bool {
	if cached, ok := globCache.Load(pattern); ok {
		return cached.(*regexp.Regexp).MatchString(name)
	}
	re, err := regexp.Compile(globToRegexp(pattern))
	if err != nil {
		// Malformed classes such as [z-a] fall back to a literal comparison.
		re = regexp.MustCompile(`^` + regexp.QuoteMeta(pattern) + `$`)
	}
	globCache.Store(pattern, re)
	return re.MatchString(name)
}

// globToRegexp translates a shell glob into an anchored regular expression.
func globToRegexp(pattern string) string {
	var sb strings.Builder
	sb.WriteString(`(?s)^`)
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch c := runes[i]; c {
		case '*':
			sb.WriteString(`.*`)
		case '?':
			sb.WriteString(`.`)
		case '[':
			j := i + 1
			if j < len(runes) && runes[j] == '!' {
				j++
			}
			if j < len(runes) && runes[j] == ']' {
				j++
			}
			for j < len(runes) && runes[j] != ']' {
				j++
			}
			if j >= len(runes) {
				// Unterminated class is a literal bracket.
				sb.WriteString(`\[`)
				continue
			}
			class := runes[i+1 : j]
			sb.WriteByte('[')
			if len(class) > 0 && class[0] == '!' {
				sb.WriteByte('^')
				class = class[1:]
			}
			for _, r := range class {
				if r == '\\' || r == '[' || r == ']' || r == '^' {
					sb.WriteByte('\\')
				}
				sb.WriteRune(r)
			}
			sb.WriteByte(']')
			i = j
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	sb.WriteString(`$`)
	return sb.String()
}
