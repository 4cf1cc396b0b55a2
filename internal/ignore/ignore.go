// Package ignore matches dataset paths against .bidsignore-style patterns.
package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileName is the ignore file read from the dataset root.
const FileName = ".bidsignore"

// ErrInvalidPattern is returned for a pattern that cannot be compiled.
var ErrInvalidPattern = errors.New("invalid ignore pattern")

type rule struct {
	pattern string
	dirOnly bool
}

// Matcher decides whether a dataset path is ignored. The zero value ignores
// nothing.
type Matcher struct {
	rules []rule
}

// New compiles patterns into a Matcher. Patterns follow gitignore
// conventions: a trailing slash restricts the pattern to directories, a
// leading slash anchors it at the dataset root, and a pattern without any
// other slash matches at every depth. Negated patterns are not supported.
func New(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		if strings.HasPrefix(p, "!") {
			return nil, fmt.Errorf("%w: negation is not supported: %q", ErrInvalidPattern, p)
		}

		r := rule{}
		if strings.HasSuffix(p, "/") {
			r.dirOnly = true
			p = strings.TrimRight(p, "/")
		}
		if p == "" {
			return nil, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
		}
		switch {
		case strings.HasPrefix(p, "/"):
			p = strings.TrimLeft(p, "/")
		case !strings.Contains(p, "/"):
			p = "**/" + p
		}
		if p == "" || !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, p)
		}
		r.pattern = p
		m.rules = append(m.rules, r)
	}
	return m, nil
}

// Parse reads an ignore file body, one pattern per line.
func Parse(content string) ([]string, error) {
	var patterns []string
	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}
	return patterns, nil
}

// Ignored reports whether the slash-separated path relative to the dataset
// root is excluded from validation.
func (m *Matcher) Ignored(path string, isDir bool) bool {
	if m == nil {
		return false
	}
	for _, r := range m.rules {
		if r.dirOnly && !isDir {
			continue
		}
		if ok, _ := doublestar.Match(r.pattern, path); ok {
			return true
		}
	}
	return false
}

// Len returns the number of compiled patterns.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}
