// Package jsondoc parses JSON metadata documents and checks the version
// fields they carry.
package jsondoc

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/ohler55/ojg/oj"
)

// ErrInvalidVersion is returned when a version field is not a semantic version.
var ErrInvalidVersion = errors.New("not a valid semantic version")

// ErrEmptyDocument is returned for input holding no JSON value at all.
var ErrEmptyDocument = errors.New("empty document")

// Parser implements validate.DocumentParser.
type Parser struct{}

// Parse decodes data into generic JSON values (maps, slices, strings,
// numbers, booleans and nil).
func (Parser) Parse(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("parsing JSON: %w", ErrEmptyDocument)
	}
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return doc, nil
}

// CheckVersion verifies that v is a semantic version such as "1.8.0".
func (Parser) CheckVersion(v string) error {
	if _, err := semver.StrictNewVersion(v); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}
	return nil
}

// StringField returns the string value of key when doc is an object holding
// a string there.
func (Parser) StringField(doc any, key string) (string, bool) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := obj[key].(string)
	return s, ok
}
