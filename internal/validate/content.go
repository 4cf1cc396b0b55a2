package validate

import (
	"context"
	"fmt"
	"path"

	"github.com/eykd/bidscheck/internal/domain"
	"github.com/eykd/bidscheck/internal/ignore"
	"github.com/eykd/bidscheck/internal/naming"
)

const (
	datasetDescription  = "dataset_description.json"
	participantsSidecar = "participants.json"
	versionField        = "BIDSVersion"

	// maxContentDepth bounds the recursive pass against symlink cycles.
	maxContentDepth = 32
)

// contentChecker runs the JSON content pass. It is built for a single run.
type contentChecker struct {
	reader   DatasetReader
	registry SchemaRegistry
	parser   DocumentParser
	ignore   *ignore.Matcher
	logger   Logger

	findings  []domain.Finding
	documents int
}

func (c *contentChecker) check(ctx context.Context, rootEntries []domain.Entry) ([]domain.Finding, error) {
	if c.registry == nil || c.registry.Len() == 0 {
		return nil, nil
	}
	if c.parser == nil {
		return nil, ErrNoParser
	}

	entries := visible(c.ignore, ".", rootEntries, c.logger)
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		if naming.EqualFold(e.Name, datasetDescription) || naming.EqualFold(e.Name, participantsSidecar) {
			if err := c.checkRootFile(ctx, e.Name); err != nil {
				return nil, err
			}
			continue
		}
		if err := c.checkFile(ctx, e.Name, true); err != nil {
			return nil, err
		}
	}

	for _, e := range entries {
		if !e.IsDir {
			continue
		}
		if err := c.checkDir(ctx, e.Name, 1); err != nil {
			return nil, err
		}
	}
	return c.findings, nil
}

func (c *contentChecker) checkRootFile(ctx context.Context, name string) error {
	doc, ok, err := c.parse(ctx, name)
	if err != nil || !ok {
		return err
	}
	if id, bound := c.registry.Resolve(name, true); bound {
		if err := c.validate(name, id, doc); err != nil {
			return err
		}
	}
	if naming.EqualFold(name, datasetDescription) {
		c.checkVersion(name, doc)
	}
	return nil
}

func (c *contentChecker) checkDir(ctx context.Context, dir string, depth int) error {
	if depth > maxContentDepth {
		c.logger.Warnw("maximum directory depth reached; not descending", "path", dir, "depth", depth)
		return nil
	}
	entries, err := listVisible(ctx, c.reader, c.ignore, dir, c.logger)
	if err != nil {
		return err
	}

	for _, e := range entries {
		p := path.Join(dir, e.Name)
		if e.IsDir {
			if err := c.checkDir(ctx, p, depth+1); err != nil {
				return err
			}
			continue
		}
		if err := c.checkFile(ctx, p, false); err != nil {
			return err
		}
	}
	return nil
}

// checkFile parses and validates p when it is a JSON file bound to a
// schema. Unbound files are never read.
func (c *contentChecker) checkFile(ctx context.Context, p string, atRoot bool) error {
	name := path.Base(p)
	if !naming.HasSuffixFold(name, ".json") {
		return nil
	}
	id, bound := c.registry.Resolve(name, atRoot)
	if !bound {
		return nil
	}
	doc, ok, err := c.parse(ctx, p)
	if err != nil || !ok {
		return err
	}
	return c.validate(p, id, doc)
}

// parse reads and parses the document at p. A document that does not parse
// is recorded as a finding and reported with ok == false.
func (c *contentChecker) parse(ctx context.Context, p string) (doc any, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, err := c.reader.ReadFile(ctx, p)
	if err != nil {
		return nil, false, &EnvironmentError{Op: "reading file", Path: p, Err: err}
	}
	c.documents++
	doc, perr := c.parser.Parse(data)
	if perr != nil {
		c.logger.Debugw("document does not parse", "path", p, "error", perr)
		c.findings = append(c.findings, domain.InvalidJSON(p, fmt.Sprintf("%s: invalid JSON", path.Base(p))))
		return nil, false, nil
	}
	return doc, true, nil
}

func (c *contentChecker) validate(p, id string, doc any) error {
	violations, err := c.registry.Validate(id, doc)
	if err != nil {
		return fmt.Errorf("validating %s against %s: %w", p, id, err)
	}
	name := path.Base(p)
	for _, v := range violations {
		c.findings = append(c.findings, domain.InvalidJSON(p, fmt.Sprintf("%s: %s", name, v)))
	}
	return nil
}

func (c *contentChecker) checkVersion(name string, doc any) {
	v, ok := c.parser.StringField(doc, versionField)
	if !ok {
		return
	}
	if err := c.parser.CheckVersion(v); err != nil {
		c.findings = append(c.findings, domain.InvalidJSON(name,
			fmt.Sprintf("%s: %s '%s' is not a valid semantic version", name, versionField, v)))
	}
}
