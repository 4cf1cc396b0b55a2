// Package metrics exports the outcome of a run as a Prometheus textfile,
// suitable for the node_exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/eykd/bidscheck/internal/domain"
)

const namespace = "bidscheck"

// Run summarizes one validation run.
type Run struct {
	Report             domain.Report
	Duration           time.Duration
	DocumentsValidated int
}

// Registry builds a fresh registry holding the gauges for run.
func Registry(run Run) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	findings := factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "findings",
			Help:      "Number of findings by category",
		},
		[]string{"category"},
	)
	passed := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "passed",
		Help:      "Whether the dataset passed validation (1) or not (0)",
	})
	duration := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of the validation run in seconds",
	})
	documents := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "json_documents_validated",
		Help:      "Number of JSON documents read during the content pass",
	})

	for _, c := range domain.Categories {
		findings.WithLabelValues(string(c)).Set(float64(run.Report.Count(c)))
	}
	if run.Report.Passed() {
		passed.Set(1)
	}
	duration.Set(run.Duration.Seconds())
	documents.Set(float64(run.DocumentsValidated))

	return reg
}

// WriteTextfile writes the gauges for run to path, replacing it atomically.
func WriteTextfile(path string, run Run) error {
	if err := prometheus.WriteToTextfile(path, Registry(run)); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
