package metrics

import (
	"fmt"
	"time"

	"github.com/jenian/envcheck/internal/analyzer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the findings of the latest audit on a private registry,
// ready to be written in the node_exporter textfile format
type Recorder struct {
	registry *prometheus.Registry

	Missing   *prometheus.GaugeVec
	Unused    prometheus.Gauge
	Ignored   *prometheus.GaugeVec
	Variables prometheus.Gauge
	Files     prometheus.Gauge
	Runs      prometheus.Counter
	Duration  prometheus.Histogram
}

// NewRecorder creates a recorder with its own registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		Missing: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "envcheck_missing_variables",
			Help: "Variables read in code but not available, by severity (hard: no in-code default).",
		}, []string{"severity"}),
		Unused: factory.NewGauge(prometheus.GaugeOpts{
			Name: "envcheck_unused_variables",
			Help: "Variables declared in the descriptor but never read in code.",
		}),
		Ignored: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "envcheck_ignored_variables",
			Help: "Findings suppressed by the project configuration.",
		}, []string{"finding"}),
		Variables: factory.NewGauge(prometheus.GaugeOpts{
			Name: "envcheck_discovered_variables",
			Help: "Distinct variables read in code.",
		}),
		Files: factory.NewGauge(prometheus.GaugeOpts{
			Name: "envcheck_files_with_reads",
			Help: "Files reading at least one variable.",
		}),
		Runs: factory.NewCounter(prometheus.CounterOpts{
			Name: "envcheck_runs_total",
			Help: "Audits completed by this process.",
		}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "envcheck_run_seconds",
			Help:    "Time spent on one audit.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Observe records the findings of one audit
func (r *Recorder) Observe(result analyzer.ScanResult, elapsed time.Duration) {
	r.Missing.WithLabelValues("hard").Set(float64(len(result.HardMisses())))
	r.Missing.WithLabelValues("soft").Set(float64(len(result.SoftMisses())))
	r.Unused.Set(float64(len(result.Unused)))
	r.Ignored.WithLabelValues("missing").Set(float64(result.IgnoredMissing))
	r.Ignored.WithLabelValues("unused").Set(float64(result.IgnoredUnused))
	r.Variables.Set(float64(len(result.Needed)))
	r.Files.Set(float64(len(result.Index)))
	r.Runs.Inc()
	r.Duration.Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile atomically writes the registry to path
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
