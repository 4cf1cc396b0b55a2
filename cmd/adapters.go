package cmd

import (
	"context"

	"github.com/eykd/bidscheck/internal/config"
	"github.com/eykd/bidscheck/internal/domain"
	"github.com/eykd/bidscheck/internal/fs"
	"github.com/eykd/bidscheck/internal/jsondoc"
	"github.com/eykd/bidscheck/internal/naming"
	"github.com/eykd/bidscheck/internal/schema"
	"github.com/eykd/bidscheck/internal/validate"
)

// --- schemaLoaderAdapter ---

// schemaLoaderAdapter exposes schema.Loader as a validate.SchemaLoader.
type schemaLoaderAdapter struct {
	loader *schema.Loader
}

func (a *schemaLoaderAdapter) Load(ctx context.Context) (validate.SchemaRegistry, error) {
	reg, err := a.loader.Load(ctx)
	if err != nil {
		// A typed nil would not compare equal to nil in the service.
		return nil, err
	}
	return reg, nil
}

// loadConfig reads the configuration file and applies flag overrides. An
// explicit --config file must exist; the default one is optional.
func loadConfig(opts RunOptions) (config.Config, error) {
	path, required := config.DefaultFile, false
	if opts.ConfigPath != "" {
		path, required = opts.ConfigPath, true
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return config.Config{}, err
	}

	if opts.Schema != "" {
		cfg.Schema = opts.Schema
	}
	if opts.MissingOnly {
		cfg.Mode = string(domain.ModeMissingOnly)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newSchemaSource resolves the configured bundle location. An object store
// client is only created for s3:// locations.
func newSchemaSource(cfg config.Config) (schema.Source, error) {
	var store schema.ObjectReader
	if schema.IsObjectLocation(cfg.Schema) {
		r, err := schema.NewMinioReader(cfg.ObjectStoreOptions())
		if err != nil {
			return nil, err
		}
		store = r
	}
	return schema.ParseSource(cfg.Schema, store)
}

// newService wires the validate service from a configuration.
func newService(reader validate.DatasetReader, cfg config.Config, source schema.Source, logger validate.Logger) *validate.Service {
	return validate.NewService(reader,
		validate.WithSchemaLoader(&schemaLoaderAdapter{loader: &schema.Loader{Source: source}}),
		validate.WithParser(jsondoc.Parser{}),
		validate.WithLogger(logger),
		validate.WithRules(naming.DefaultRules().WithModalities(cfg.Modalities...)),
		validate.WithRootRequirements(cfg.RootRequirements()),
		validate.WithMode(cfg.ParsedMode()),
		validate.WithIgnorePatterns(cfg.Ignore),
	)
}

// buildRunner is the production RunnerFactory: the dataset is read from the
// local disk.
func buildRunner(opts RunOptions, logger validate.Logger) (Runner, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, &ContextError{Op: "loading config", Err: err}
	}
	source, err := newSchemaSource(cfg)
	if err != nil {
		return nil, &ContextError{Op: "opening schema source", Path: cfg.Schema, Err: err}
	}
	dataset := fs.NewOS(opts.Root)
	logger.Debugw("configuration resolved", "mode", cfg.Mode, "schema", cfg.Schema, "root", dataset.Root())
	return newService(dataset, cfg, source, logger), nil
}
