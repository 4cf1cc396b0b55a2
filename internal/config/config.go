// Package config loads the optional bidscheck configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eykd/bidscheck/internal/domain"
	"github.com/eykd/bidscheck/internal/schema"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = ".bidscheck.yaml"

// ErrInvalidConfig is returned when a configuration file is well-formed YAML
// but holds values that cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// ObjectStore configures access to S3-compatible storage for schema bundles.
type ObjectStore struct {
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`
	Secure   *bool  `yaml:"secure"`
}

// Config holds the settings a validation run is wired from.
type Config struct {
	Mode              string      `yaml:"mode"`
	Schema            string      `yaml:"schema"`
	Modalities        []string    `yaml:"modalities"`
	OptionalRootFiles []string    `yaml:"optional_root_files"`
	Ignore            []string    `yaml:"ignore"`
	ObjectStore       ObjectStore `yaml:"object_store"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Mode:   string(domain.ModeStrict),
		Schema: schema.DefaultBundle,
	}
}

// Parse decodes YAML configuration on top of the defaults. Unknown keys are
// rejected.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the configuration file at path. When required is false a
// missing file yields the defaults.
func Load(path string, required bool) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, iofs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every value is usable.
func (c Config) Validate() error {
	if _, err := domain.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for _, m := range c.Modalities {
		if strings.TrimSpace(m) == "" || strings.ContainsAny(m, `/\`) {
			return fmt.Errorf("%w: modality %q is not a directory name", ErrInvalidConfig, m)
		}
	}
	for _, f := range c.OptionalRootFiles {
		if strings.TrimSpace(f) == "" || strings.ContainsAny(f, `/\`) {
			return fmt.Errorf("%w: optional root file %q is not a file name", ErrInvalidConfig, f)
		}
	}
	if schema.IsObjectLocation(c.Schema) && c.ObjectStore.Endpoint == "" {
		return fmt.Errorf("%w: schema %q needs object_store.endpoint", ErrInvalidConfig, c.Schema)
	}
	return nil
}

// ParsedMode returns the validated mode.
func (c Config) ParsedMode() domain.Mode {
	m, err := domain.ParseMode(c.Mode)
	if err != nil {
		return domain.ModeStrict
	}
	return m
}

// RootRequirements returns the default root requirements followed by the
// configured optional files.
func (c Config) RootRequirements() []domain.RootRequirement {
	reqs := domain.DefaultRootRequirements()
	for _, f := range c.OptionalRootFiles {
		reqs = append(reqs, domain.RootRequirement{Name: f, Optional: true})
	}
	return reqs
}

// ObjectStoreOptions converts the object store section for the schema
// package. Secure defaults to true.
func (c Config) ObjectStoreOptions() schema.ObjectStoreOptions {
	secure := true
	if c.ObjectStore.Secure != nil {
		secure = *c.ObjectStore.Secure
	}
	return schema.ObjectStoreOptions{
		Endpoint: c.ObjectStore.Endpoint,
		Region:   c.ObjectStore.Region,
		Secure:   secure,
	}
}
