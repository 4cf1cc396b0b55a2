// Package schema holds the named JSON schemas a dataset's metadata files are
// checked against, and decides which schema applies to a given filename.
package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/eykd/bidscheck/internal/naming"
)

// Schema identifiers bound by default.
const (
	IDDatasetDescription = "dataset_description"
	IDParticipants       = "participants"
	IDTaskBeh            = "task_beh"
	IDTaskEvents         = "task_events"
	IDTaskPhysio         = "task_physio"
)

// Binding associates a filename with a schema identifier. Exact bindings
// compare the folded filename; pattern bindings use a regular expression.
type Binding struct {
	SchemaID string
	Exact    string
	Pattern  *regexp.Regexp
	RootOnly bool
}

func (b Binding) matches(filename string, atRoot bool) bool {
	if b.RootOnly && !atRoot {
		return false
	}
	if b.Exact != "" {
		return naming.EqualFold(filename, b.Exact)
	}
	return b.Pattern != nil && b.Pattern.MatchString(filename)
}

// Template compiles a filename template into an anchored, case-insensitive
// expression. Each * stands for one or more characters other than a slash.
func Template(tmpl string) *regexp.Regexp {
	parts := strings.Split(tmpl, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)^` + strings.Join(parts, `[^/]+`) + `$`)
}

// DefaultBindings returns the bindings in priority order. The first match
// wins.
func DefaultBindings() []Binding {
	return []Binding{
		{SchemaID: IDDatasetDescription, Exact: "dataset_description.json", RootOnly: true},
		{SchemaID: IDParticipants, Exact: "participants.json", RootOnly: true},
		{SchemaID: IDTaskBeh, Pattern: Template("sub-*_ses-*_task-*_beh.json")},
		{SchemaID: IDTaskEvents, Pattern: Template("sub-*_ses-*_task-*_events.json")},
		{SchemaID: IDTaskPhysio, Pattern: Template("sub-*_ses-*_task-*_recording-*_physio.json")},
	}
}

// Registry implements validate.SchemaRegistry.
type Registry struct {
	schemas  map[string]*gojsonschema.Schema
	bindings []Binding
}

// Empty returns a registry holding no schemas. Every lookup resolves to none.
func Empty() *Registry {
	return &Registry{schemas: map[string]*gojsonschema.Schema{}, bindings: DefaultBindings()}
}

// NewRegistry compiles the given schema documents, keyed by identifier.
func NewRegistry(docs map[string]any) (*Registry, error) {
	r := Empty()
	for id, doc := range docs {
		s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
		if err != nil {
			return nil, fmt.Errorf("compiling schema %q: %w", id, err)
		}
		r.schemas[id] = s
	}
	return r, nil
}

// Len returns the number of loaded schemas.
func (r *Registry) Len() int {
	return len(r.schemas)
}

// IDs returns the loaded schema identifiers in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.schemas))
	for id := range r.schemas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Get returns the compiled schema for id.
func (r *Registry) Get(id string) (*gojsonschema.Schema, bool) {
	s, ok := r.schemas[id]
	return s, ok
}

// Resolve returns the identifier of the schema that applies to filename.
// atRoot tells whether the file sits directly in the dataset root. A binding
// whose schema was not loaded resolves to none.
func (r *Registry) Resolve(filename string, atRoot bool) (string, bool) {
	for _, b := range r.bindings {
		if !b.matches(filename, atRoot) {
			continue
		}
		if _, ok := r.schemas[b.SchemaID]; !ok {
			return "", false
		}
		return b.SchemaID, true
	}
	return "", false
}

// Validate checks doc against the schema id and returns one message per
// violation, in the order the schema library reports them.
func (r *Registry) Validate(id string, doc any) ([]string, error) {
	s, ok := r.schemas[id]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", id)
	}
	result, err := s.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validating against schema %q: %w", id, err)
	}
	if result.Valid() {
		return nil, nil
	}
	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, e.String())
	}
	return violations, nil
}
