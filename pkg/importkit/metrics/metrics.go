// Package metrics exports import statistics as Prometheus metrics.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arthur-debert/importkit/pkg/importkit/core"
	"github.com/arthur-debert/importkit/pkg/importkit/process"
)

const unknownStage = "unknown"

// Observer counts imported and failed records per stage. Processes of a
// pipeline run one after the other, so records are attributed to the stage
// that started last.
type Observer struct {
	registry *prometheus.Registry

	imported *prometheus.CounterVec
	failed   *prometheus.CounterVec
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec

	mu    sync.Mutex
	stage string
}

var (
	_ core.ProcessObserver                            = (*Observer)(nil)
	_ core.ImporterObserver[core.Record, core.Record] = (*Observer)(nil)
)

// NewObserver creates an observer with its own registry.
func NewObserver() *Observer {
	o := &Observer{
		registry: prometheus.NewRegistry(),
		imported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "importkit_records_imported_total",
			Help: "Total number of records imported",
		}, []string{"stage"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "importkit_records_failed_total",
			Help: "Total number of records that failed to import",
		}, []string{"stage"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "importkit_runs_total",
			Help: "Total number of import runs",
		}, []string{"stage"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "importkit_run_duration_seconds",
			Help:    "Duration of import runs in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		stage: unknownStage,
	}
	o.registry.MustRegister(o.imported, o.failed, o.runs, o.duration)
	return o
}

// Registry returns the registry holding the import metrics.
func (o *Observer) Registry() *prometheus.Registry { return o.registry }

// Imported returns the counter of imported records for a stage.
func (o *Observer) Imported(stage string) prometheus.Counter {
	return o.imported.WithLabelValues(stage)
}

// Failed returns the counter of failed records for a stage.
func (o *Observer) Failed(stage string) prometheus.Counter {
	return o.failed.WithLabelValues(stage)
}

// Runs returns the counter of runs for a stage.
func (o *Observer) Runs(stage string) prometheus.Counter {
	return o.runs.WithLabelValues(stage)
}

// BeforeImportStart implements core.ProcessObserver.
func (o *Observer) BeforeImportStart(p core.ImportProcess) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stage = stageOf(p)
}

// AfterImportFinish implements core.ProcessObserver.
func (o *Observer) AfterImportFinish(p core.ImportProcess) {
	stage := stageOf(p)
	o.runs.WithLabelValues(stage).Inc()
	if r, ok := p.(process.Reporter); ok {
		res := r.Result()
		o.failed.WithLabelValues(stage).Add(float64(res.Failed))
		o.duration.WithLabelValues(stage).Observe(res.Duration.Seconds())
	}

	o.mu.Lock()
	o.stage = unknownStage
	o.mu.Unlock()
}

// AfterModelImported implements core.ImporterObserver.
func (o *Observer) AfterModelImported(core.Importer[core.Record, core.Record]) {
	o.mu.Lock()
	stage := o.stage
	o.mu.Unlock()
	o.imported.WithLabelValues(stage).Inc()
}

// WriteTextfile writes the metrics in the node exporter textfile format.
func (o *Observer) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, o.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func stageOf(p core.ImportProcess) string {
	if d, ok := p.(process.Describer); ok {
		return d.ID()
	}
	return unknownStage
}
