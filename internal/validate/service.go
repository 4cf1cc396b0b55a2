// Package validate provides the application service that checks a dataset
// tree against the layout rules and the JSON schemas bound to its metadata
// files.
package validate

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"

	"github.com/eykd/bidscheck/internal/domain"
	"github.com/eykd/bidscheck/internal/ignore"
	"github.com/eykd/bidscheck/internal/naming"
)

// ErrNoParser is returned when schemas are loaded but no DocumentParser was
// configured to read JSON files with.
var ErrNoParser = errors.New("no document parser configured")

// DatasetReader abstracts read access to the dataset tree. Paths are
// slash-separated and relative to the dataset root; "." is the root.
type DatasetReader interface {
	ListEntries(ctx context.Context, dir string) ([]domain.Entry, error)
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// SchemaRegistry resolves filenames to schemas and validates documents.
type SchemaRegistry interface {
	Len() int
	Resolve(filename string, atRoot bool) (string, bool)
	Validate(id string, doc any) ([]string, error)
}

// SchemaLoader builds the registry for a run. A loader whose source does not
// exist returns an error wrapping fs.ErrNotExist.
type SchemaLoader interface {
	Load(ctx context.Context) (SchemaRegistry, error)
}

// DocumentParser parses JSON documents and checks version strings.
type DocumentParser interface {
	Parse(data []byte) (any, error)
	StringField(doc any, key string) (string, bool)
	CheckVersion(v string) error
}

// Logger is the subset of a structured logger the service writes to.
type Logger interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
}

type nopLogger struct{}

func (nopLogger) Debugw(string, ...any) {}
func (nopLogger) Infow(string, ...any)  {}
func (nopLogger) Warnw(string, ...any)  {}

// Option configures a Service.
type Option func(*Service)

// WithSchemaLoader sets the source of JSON schemas. Without one, content
// validation is skipped.
func WithSchemaLoader(l SchemaLoader) Option {
	return func(s *Service) { s.schemas = l }
}

// WithParser sets the JSON document parser.
func WithParser(p DocumentParser) Option {
	return func(s *Service) { s.parser = p }
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRules replaces the naming rules.
func WithRules(r *naming.Rules) Option {
	return func(s *Service) {
		if r != nil {
			s.rules = r
		}
	}
}

// WithRootRequirements replaces the set of known root files.
func WithRootRequirements(reqs []domain.RootRequirement) Option {
	return func(s *Service) { s.requirements = reqs }
}

// WithMode selects which structural findings are reported.
func WithMode(m domain.Mode) Option {
	return func(s *Service) { s.mode = m }
}

// WithIgnorePatterns adds patterns to those read from the dataset's
// .bidsignore file.
func WithIgnorePatterns(patterns []string) Option {
	return func(s *Service) { s.ignorePatterns = patterns }
}

// Result is the outcome of a completed run.
type Result struct {
	Report             domain.Report
	SchemasLoaded      int
	DocumentsValidated int
}

// Service validates one dataset. It keeps no state between runs, so Run may
// be called any number of times.
type Service struct {
	reader         DatasetReader
	schemas        SchemaLoader
	parser         DocumentParser
	logger         Logger
	rules          *naming.Rules
	requirements   []domain.RootRequirement
	mode           domain.Mode
	ignorePatterns []string
}

// NewService creates a Service reading the dataset through reader.
func NewService(reader DatasetReader, opts ...Option) *Service {
	s := &Service{
		reader:       reader,
		logger:       nopLogger{},
		rules:        naming.DefaultRules(),
		requirements: domain.DefaultRootRequirements(),
		mode:         domain.ModeStrict,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run validates the dataset: the structural pass first, then the JSON
// content pass, merged into one Report. Problems with the dataset's content
// become findings; failures to read the dataset abort the run with an
// *EnvironmentError and no Report.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rootEntries, err := s.reader.ListEntries(ctx, ".")
	if err != nil {
		return nil, &EnvironmentError{Op: "reading dataset root", Err: err}
	}

	matcher, err := s.loadIgnore(ctx, rootEntries)
	if err != nil {
		return nil, err
	}

	registry, err := s.loadSchemas(ctx)
	if err != nil {
		return nil, err
	}

	w := &walker{
		reader:       s.reader,
		rules:        s.rules,
		requirements: s.requirements,
		mode:         s.mode,
		ignore:       matcher,
		logger:       s.logger,
	}
	structural, err := w.walk(ctx, rootEntries)
	if err != nil {
		return nil, err
	}

	c := &contentChecker{
		reader:   s.reader,
		registry: registry,
		parser:   s.parser,
		ignore:   matcher,
		logger:   s.logger,
	}
	content, err := c.check(ctx, rootEntries)
	if err != nil {
		return nil, err
	}

	report := domain.Aggregate(structural, content)
	s.logger.Infow("validation finished",
		"passed", report.Passed(),
		"missing", report.Count(domain.CategoryMissing),
		"unexpected", report.Count(domain.CategoryUnexpected),
		"invalid_json", report.Count(domain.CategoryInvalidJSON),
	)

	result := &Result{Report: report, DocumentsValidated: c.documents}
	if registry != nil {
		result.SchemasLoaded = registry.Len()
	}
	return result, nil
}

// loadSchemas returns nil when content validation has to be skipped.
func (s *Service) loadSchemas(ctx context.Context) (SchemaRegistry, error) {
	if s.schemas == nil {
		s.logger.Debugw("no schema source configured; skipping JSON content validation")
		return nil, nil
	}
	registry, err := s.schemas.Load(ctx)
	if errors.Is(err, iofs.ErrNotExist) {
		s.logger.Warnw("schema source not found; proceeding without schema", "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading schemas: %w", err)
	}
	s.logger.Infow("schemas loaded", "count", registry.Len())
	return registry, nil
}

func (s *Service) loadIgnore(ctx context.Context, rootEntries []domain.Entry) (*ignore.Matcher, error) {
	patterns := append([]string(nil), s.ignorePatterns...)
	for _, e := range rootEntries {
		if e.IsDir || !naming.EqualFold(e.Name, ignore.FileName) {
			continue
		}
		data, err := s.reader.ReadFile(ctx, e.Name)
		if err != nil {
			return nil, &EnvironmentError{Op: "reading ignore file", Path: e.Name, Err: err}
		}
		filePatterns, err := ignore.Parse(string(data))
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, filePatterns...)
	}

	m, err := ignore.New(patterns)
	if err != nil {
		return nil, fmt.Errorf("compiling ignore patterns: %w", err)
	}
	if m.Len() > 0 {
		s.logger.Debugw("ignore patterns compiled", "count", m.Len())
	}
	return m, nil
}
