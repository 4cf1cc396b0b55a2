package schema

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"path"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"

	"github.com/eykd/bidscheck/internal/jsondoc"
)

// DefaultBundle is the schema bundle looked up when none is configured.
const DefaultBundle = "bids_schema.json"

// ErrInvalidBundle is returned when a bundle exists but is not a mapping of
// schema identifiers to schema documents.
var ErrInvalidBundle = errors.New("invalid schema bundle")

// Source fetches the raw bytes of a schema bundle. A source that does not
// exist reports an error wrapping fs.ErrNotExist.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	Name() string
}

// FileSource reads a bundle from a file.
type FileSource struct {
	Path string
	// FS overrides the filesystem Path is resolved in. Nil means the local disk.
	FS billy.Filesystem
}

// Fetch reads the bundle file.
func (s *FileSource) Fetch(_ context.Context) ([]byte, error) {
	fsys, name := s.FS, s.Path
	if fsys == nil {
		fsys, name = osfs.New(filepath.Dir(s.Path)), filepath.Base(s.Path)
	}
	data, err := util.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading schema bundle %s: %w", s.Path, err)
	}
	return data, nil
}

// Name returns the file path.
func (s *FileSource) Name() string {
	return s.Path
}

const objectScheme = "s3://"

// IsObjectLocation reports whether location names an object in a bucket
// rather than a file.
func IsObjectLocation(location string) bool {
	return strings.HasPrefix(location, objectScheme)
}

// ParseSource interprets a bundle location. Locations of the form
// s3://bucket/key are read through store, which may be nil when no object
// store is configured; anything else is a file path.
func ParseSource(location string, store ObjectReader) (Source, error) {
	rest, ok := strings.CutPrefix(location, objectScheme)
	if !ok {
		return &FileSource{Path: location}, nil
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("%w: object location %q needs a bucket and a key", ErrInvalidBundle, location)
	}
	if store == nil {
		return nil, fmt.Errorf("object location %q requires an object store endpoint", location)
	}
	return &ObjectSource{Reader: store, Bucket: bucket, Key: key}, nil
}

// Loader builds a Registry from a Source.
type Loader struct {
	Source Source
}

// Load fetches, decodes and compiles the bundle.
func (l *Loader) Load(ctx context.Context) (*Registry, error) {
	if l.Source == nil {
		return nil, fmt.Errorf("no schema source configured: %w", iofs.ErrNotExist)
	}
	data, err := l.Source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := Decode(l.Source.Name(), data)
	if err != nil {
		return nil, err
	}
	return NewRegistry(docs)
}

// Decode parses a bundle. Names ending in .yaml or .yml are decoded as YAML,
// everything else as JSON.
func Decode(name string, data []byte) (map[string]any, error) {
	var raw any
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		var m map[string]any
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidBundle, name, err)
		}
		raw = m
	default:
		doc, err := jsondoc.Parser{}.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidBundle, name, err)
		}
		raw = doc
	}

	bundle, ok := raw.(map[string]any)
	if !ok || bundle == nil {
		return nil, fmt.Errorf("%w: %s: top level must be an object keyed by schema id", ErrInvalidBundle, name)
	}
	for id, doc := range bundle {
		if _, ok := doc.(map[string]any); !ok {
			return nil, fmt.Errorf("%w: %s: schema %q must be an object", ErrInvalidBundle, name, id)
		}
	}
	return bundle, nil
}
