// Package cmd contains the command line interface of bidscheck.
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd *cobra.Command

// verbose holds the global --verbose flag state.
var verbose bool

func init() {
	rootCmd = NewRootCmd()
}

// GetVerbose returns the current verbose flag state.
func GetVerbose() bool {
	return verbose
}

// NewRootCmd creates a root command wired to the local filesystem, the
// configuration file and the configured schema source.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWith(buildRunner)
}

// NewRootCmdWith creates a root command that asks factory for the Runner of
// each invocation. Tests use it to substitute the validation service.
func NewRootCmdWith(factory RunnerFactory) *cobra.Command {
	var opts RunOptions

	cmd := &cobra.Command{
		Use:   "bidscheck [flags] <dataset-root>",
		Short: "Validate the directory layout and metadata of a BIDS-style dataset",
		Long: "bidscheck walks a neuroimaging dataset and reports missing required entries,\n" +
			"entries the layout does not allow, and JSON metadata files that do not parse\n" +
			"or violate their schema. It exits 0 when the dataset passes, 2 when findings\n" +
			"were reported, and 1 when the dataset could not be read.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Root = args[0]
			return runCheckAndReport(cmd, factory, opts)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to stderr")

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output the report as JSON")
	cmd.Flags().BoolVar(&opts.MissingOnly, "missing-only", false, "Report missing entries only, not unexpected ones")
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "Configuration file (default .bidscheck.yaml when present)")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "Schema bundle: a file path or s3://bucket/key")
	cmd.Flags().StringVar(&opts.ReportPath, "report", "", "Also write the JSON report to this file")
	cmd.Flags().StringVar(&opts.MetricsPath, "metrics-file", "", "Write Prometheus textfile metrics to this file")

	return cmd
}

// ExecuteContext runs the root command with os.Args and the given context
// and returns the process exit code. Errors are printed to stderr.
func ExecuteContext(ctx context.Context) int {
	rootCmd.SetContext(ctx)
	return RunCLI(rootCmd, os.Args[1:], os.Stdout, os.Stderr)
}
