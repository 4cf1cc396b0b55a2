package validate

import (
	"context"
	"fmt"
	"path"
	"sort"

	"github.com/eykd/bidscheck/internal/domain"
	"github.com/eykd/bidscheck/internal/ignore"
	"github.com/eykd/bidscheck/internal/naming"
)

// walker runs the structural pass: root, subjects, sessions, modality
// directories, files. It is built for a single run.
type walker struct {
	reader       DatasetReader
	rules        *naming.Rules
	requirements []domain.RootRequirement
	mode         domain.Mode
	ignore       *ignore.Matcher
	logger       Logger

	findings []domain.Finding
}

func (w *walker) add(f domain.Finding) {
	if w.mode.Reports(f.Category) {
		w.findings = append(w.findings, f)
	}
}

func (w *walker) walk(ctx context.Context, rootEntries []domain.Entry) ([]domain.Finding, error) {
	entries := visible(w.ignore, ".", rootEntries, w.logger)

	present := make(map[string]bool)
	for _, e := range entries {
		if !e.IsDir {
			present[naming.Fold(e.Name)] = true
		}
	}
	known := make(map[string]bool, len(w.requirements))
	for _, req := range w.requirements {
		folded := naming.Fold(req.Name)
		known[folded] = true
		if !req.Optional && !present[folded] {
			w.add(domain.Missing(req.Name, fmt.Sprintf("missing required file '%s'", req.Name)))
		}
	}

	var subjects []string
	for _, e := range entries {
		switch {
		case e.IsDir && naming.IsSubjectDir(e.Name):
			subjects = append(subjects, e.Name)
		case e.IsDir:
			w.add(domain.Unexpected(e.Name, fmt.Sprintf("non-subject directory '%s' found in the root directory", e.Name)))
		case !known[naming.Fold(e.Name)]:
			w.add(domain.Unexpected(e.Name, fmt.Sprintf("unexpected file '%s' found in the root directory", e.Name)))
		}
	}

	if len(subjects) == 0 {
		w.add(domain.Missing("", fmt.Sprintf("no subject directories (%s*) found", naming.SubjectPrefix)))
		return w.findings, nil
	}

	for _, sub := range subjects {
		if err := w.walkSubject(ctx, sub); err != nil {
			return nil, err
		}
	}
	return w.findings, nil
}

func (w *walker) walkSubject(ctx context.Context, sub string) error {
	entries, err := w.list(ctx, sub)
	if err != nil {
		return err
	}

	var sessions []string
	for _, e := range entries {
		p := path.Join(sub, e.Name)
		switch {
		case e.IsDir && naming.IsSessionDir(e.Name):
			sessions = append(sessions, e.Name)
		case e.IsDir:
			w.add(domain.Unexpected(p, fmt.Sprintf("non-session directory '%s' found in '%s'", e.Name, sub)))
		default:
			w.add(domain.Unexpected(p, fmt.Sprintf("file '%s' found in '%s'", e.Name, sub)))
		}
	}

	if len(sessions) == 0 {
		w.add(domain.Missing(sub, fmt.Sprintf("no session directories (%s*) found in '%s'", naming.SessionPrefix, sub)))
		return nil
	}

	for _, ses := range sessions {
		if err := w.walkSession(ctx, sub, ses); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walkSession(ctx context.Context, sub, ses string) error {
	dir := path.Join(sub, ses)
	entries, err := w.list(ctx, dir)
	if err != nil {
		return err
	}

	var modalities []string
	for _, e := range entries {
		p := path.Join(dir, e.Name)
		switch {
		case e.IsDir && w.rules.IsAllowedModality(e.Name):
			modalities = append(modalities, e.Name)
		case e.IsDir:
			w.add(domain.Unexpected(p, fmt.Sprintf("non-modality directory '%s' found in '%s'", e.Name, dir)))
		default:
			w.add(domain.Unexpected(p, fmt.Sprintf("file '%s' found in '%s'", e.Name, dir)))
		}
	}

	if len(modalities) == 0 {
		w.add(domain.Missing(dir, fmt.Sprintf("no modality directories found in '%s'", dir)))
		return nil
	}

	pattern := naming.ExpectedFilePrefix(sub, ses)
	for _, mod := range modalities {
		if err := w.walkModality(ctx, path.Join(dir, mod), pattern); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walkModality(ctx context.Context, dir string, pattern *naming.FilePattern) error {
	entries, err := w.list(ctx, dir)
	if err != nil {
		return err
	}

	for _, e := range entries {
		p := path.Join(dir, e.Name)
		if e.IsDir {
			w.logger.Debugw("not descending into directory below modality", "path", p)
			continue
		}
		if !pattern.Match(e.Name) {
			w.add(domain.Unexpected(p, fmt.Sprintf("file '%s' in '%s' does not start with '%s'", e.Name, dir, pattern)))
		}
	}
	return nil
}

func (w *walker) list(ctx context.Context, dir string) ([]domain.Entry, error) {
	return listVisible(ctx, w.reader, w.ignore, dir, w.logger)
}

// listVisible lists dir, drops ignored entries and sorts the rest by name.
func listVisible(ctx context.Context, r DatasetReader, m *ignore.Matcher, dir string, logger Logger) ([]domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := r.ListEntries(ctx, dir)
	if err != nil {
		return nil, &EnvironmentError{Op: "listing directory", Path: dir, Err: err}
	}
	return visible(m, dir, entries, logger), nil
}

func visible(m *ignore.Matcher, dir string, entries []domain.Entry, logger Logger) []domain.Entry {
	out := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		p := path.Join(dir, e.Name)
		if m.Ignored(p, e.IsDir) {
			logger.Debugw("ignoring entry", "path", p)
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
