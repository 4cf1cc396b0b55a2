package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/eykd/bidscheck/internal/domain"
	"github.com/eykd/bidscheck/internal/logging"
	"github.com/eykd/bidscheck/internal/metrics"
	"github.com/eykd/bidscheck/internal/report"
	"github.com/eykd/bidscheck/internal/validate"
)

// RunOptions carries the flag values of one invocation.
type RunOptions struct {
	Root        string
	JSON        bool
	MissingOnly bool
	ConfigPath  string
	Schema      string
	ReportPath  string
	MetricsPath string
}

// Runner performs one validation run.
type Runner interface {
	Run(ctx context.Context) (*validate.Result, error)
}

// RunnerFactory builds the Runner for one invocation.
type RunnerFactory func(opts RunOptions, logger validate.Logger) (Runner, error)

// runCheckAndReport validates the dataset and prints the report as JSON or
// human-readable text. It returns a FindingsDetectedError if any findings
// are present.
func runCheckAndReport(cmd *cobra.Command, factory RunnerFactory, opts RunOptions) error {
	logger := logging.New(logging.Options{Verbose: GetVerbose(), Writer: cmd.ErrOrStderr()})
	defer func() { _ = logger.Sync() }()

	runner, err := factory(opts, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	doc := report.Build(opts.Root, result)
	if opts.JSON {
		writeJSON(cmd.OutOrStdout(), doc)
	} else {
		formatHuman(cmd.OutOrStdout(), result.Report)
	}

	if opts.ReportPath != "" {
		if err := report.WriteFile(cmd.Context(), opts.ReportPath, doc); err != nil {
			return &ContextError{Op: "writing report", Path: opts.ReportPath, Err: err}
		}
	}
	if opts.MetricsPath != "" {
		run := metrics.Run{Report: result.Report, Duration: elapsed, DocumentsValidated: result.DocumentsValidated}
		if err := metrics.WriteTextfile(opts.MetricsPath, run); err != nil {
			return err
		}
	}

	if !result.Report.Passed() {
		r := result.Report
		return &FindingsDetectedError{
			Missing:     r.Count(domain.CategoryMissing),
			Unexpected:  r.Count(domain.CategoryUnexpected),
			InvalidJSON: r.Count(domain.CategoryInvalidJSON),
		}
	}
	return nil
}
