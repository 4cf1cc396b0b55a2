// Package naming classifies dataset entry names and derives the filename
// prefix expected inside a session.
//
// All comparisons use one canonical fold: NFC normalization followed by
// Unicode case folding. Directly under a session directory only allowed
// modality directories may appear; any other directory and any stray file
// there is reported as unexpected.
package naming

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	// SubjectPrefix starts every subject directory name.
	SubjectPrefix = "sub-"
	// SessionPrefix starts every session directory name.
	SessionPrefix = "ses-"
)

// DefaultModalities lists the modality directory names allowed under a session.
var DefaultModalities = []string{
	"func", "dwi", "fmap", "anat", "perf", "meg", "eeg",
	"ieeg", "beh", "pet", "micr", "nirs", "motion",
}

// Fold returns the canonical folded form of s.
func Fold(s string) string {
	// A Caser keeps state between calls, so one is built per call.
	return cases.Fold().String(norm.NFC.String(s))
}

// EqualFold reports whether a and b are equal under the canonical fold.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// HasPrefixFold reports whether s starts with prefix under the canonical fold.
func HasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(Fold(s), Fold(prefix))
}

// HasSuffixFold reports whether s ends with suffix under the canonical fold.
func HasSuffixFold(s, suffix string) bool {
	return strings.HasSuffix(Fold(s), Fold(suffix))
}

// IsSubjectDir reports whether name is a subject directory name.
func IsSubjectDir(name string) bool {
	return HasPrefixFold(name, SubjectPrefix)
}

// IsSessionDir reports whether name is a session directory name.
func IsSessionDir(name string) bool {
	return HasPrefixFold(name, SessionPrefix)
}

// SubjectLabel returns the part of a subject directory name after "sub-".
func SubjectLabel(dir string) string {
	return label(dir, SubjectPrefix)
}

// SessionLabel returns the part of a session directory name after "ses-".
func SessionLabel(dir string) string {
	return label(dir, SessionPrefix)
}

// label strips prefix from dir. The prefix is located by folding rune by
// rune because a folded rune may be shorter than its original encoding.
func label(dir, prefix string) string {
	dir = norm.NFC.String(dir)
	want := Fold(prefix)
	for i := range dir {
		if i > 0 && Fold(dir[:i]) == want {
			return dir[i:]
		}
	}
	if Fold(dir) == want {
		return ""
	}
	return dir
}

// Rules holds the set of allowed modality directory names.
type Rules struct {
	modalities map[string]struct{}
}

// DefaultRules returns Rules allowing DefaultModalities.
func DefaultRules() *Rules {
	return NewRules(DefaultModalities)
}

// NewRules returns Rules allowing exactly the given modality names.
func NewRules(modalities []string) *Rules {
	r := &Rules{modalities: make(map[string]struct{}, len(modalities))}
	for _, m := range modalities {
		r.modalities[Fold(m)] = struct{}{}
	}
	return r
}

// WithModalities returns a copy of r that also allows extra.
func (r *Rules) WithModalities(extra ...string) *Rules {
	out := &Rules{modalities: make(map[string]struct{}, len(r.modalities)+len(extra))}
	for m := range r.modalities {
		out.modalities[m] = struct{}{}
	}
	for _, m := range extra {
		out.modalities[Fold(m)] = struct{}{}
	}
	return out
}

// IsAllowedModality reports whether name is an allowed modality directory.
func (r *Rules) IsAllowedModality(name string) bool {
	_, ok := r.modalities[Fold(name)]
	return ok
}

// FilePattern matches filenames against the prefix expected for one
// subject/session pair.
type FilePattern struct {
	folded  string
	display string
}

// ExpectedFilePrefix builds the prefix sub-<subject>_ses-<session> for the
// given directory names. Labels are taken literally.
func ExpectedFilePrefix(subjectDir, sessionDir string) *FilePattern {
	display := SubjectPrefix + SubjectLabel(subjectDir) + "_" + SessionPrefix + SessionLabel(sessionDir)
	return &FilePattern{
		folded:  Fold(display),
		display: display,
	}
}

// Match reports whether filename starts with the expected prefix under the
// canonical fold.
func (p *FilePattern) Match(filename string) bool {
	return strings.HasPrefix(Fold(filename), p.folded)
}

// String returns the expected prefix as written in messages.
func (p *FilePattern) String() string {
	return p.display
}
