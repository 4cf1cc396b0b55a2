// Package report renders a validation result as a JSON document, either to
// a stream or to a file shared between runs.
package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/eykd/bidscheck/internal/domain"
	"github.com/eykd/bidscheck/internal/lock"
	"github.com/eykd/bidscheck/internal/validate"
)

// Finding is the JSON form of a domain.Finding.
type Finding struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Path     string `json:"path,omitempty"`
}

// Summary counts findings per category and records how much content was
// checked.
type Summary struct {
	Missing            int `json:"missing"`
	Unexpected         int `json:"unexpected"`
	InvalidJSON        int `json:"invalid_json"`
	SchemasLoaded      int `json:"schemas_loaded"`
	DocumentsValidated int `json:"documents_validated"`
}

// Document is the report written by --json and --report.
type Document struct {
	RunID    string    `json:"run_id"`
	Root     string    `json:"root"`
	Passed   bool      `json:"passed"`
	Summary  Summary   `json:"summary"`
	Findings []Finding `json:"findings"`
}

// Build converts a run result into a Document with a fresh run id.
func Build(root string, res *validate.Result) Document {
	r := res.Report
	doc := Document{
		RunID:  uuid.NewString(),
		Root:   root,
		Passed: r.Passed(),
		Summary: Summary{
			Missing:            r.Count(domain.CategoryMissing),
			Unexpected:         r.Count(domain.CategoryUnexpected),
			InvalidJSON:        r.Count(domain.CategoryInvalidJSON),
			SchemasLoaded:      res.SchemasLoaded,
			DocumentsValidated: res.DocumentsValidated,
		},
		Findings: make([]Finding, 0, r.Len()),
	}
	for _, f := range r.Findings() {
		doc.Findings = append(doc.Findings, Finding{
			Category: string(f.Category),
			Message:  f.Message,
			Path:     f.Path,
		})
	}
	return doc
}

// Encode writes doc to w as indented JSON followed by a newline.
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// WriteFile replaces the file at path with doc. The write happens under the
// path's advisory lock and goes through a temporary file in the same
// directory, so readers never observe a partial report.
func WriteFile(ctx context.Context, path string, doc Document) error {
	return lock.ForFile(path).Do(ctx, func() error {
		return writeAtomic(path, doc)
	})
}

func writeAtomic(path string, doc Document) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temporary report: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := Encode(tmp, doc); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temporary report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing report: %w", err)
	}
	return nil
}
