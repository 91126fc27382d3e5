package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements core.Metrics on a Prometheus registry.
type Recorder struct {
	registry       *prometheus.Registry
	scanPasses     prometheus.Counter
	scanFailures   prometheus.Counter
	sourceFailures prometheus.Counter
	codesFound     prometheus.Counter
	codesCached    prometheus.Gauge
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Recorder{
		registry: registry,
		scanPasses: factory.NewCounter(prometheus.CounterOpts{
			Name: "scan_passes_total",
			Help: "Scan passes started.",
		}),
		scanFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "scan_pass_failures_total",
			Help: "Scan passes where every source failed.",
		}),
		sourceFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "scan_source_failures_total",
			Help: "Individual source scans that failed.",
		}),
		codesFound: factory.NewCounter(prometheus.CounterOpts{
			Name: "codes_discovered_total",
			Help: "New codes discovered across all passes.",
		}),
		codesCached: factory.NewGauge(prometheus.GaugeOpts{
			Name: "codes_cached",
			Help: "Entries currently held in the result store.",
		}),
	}
}

func (r *Recorder) ScanStarted() {
	r.scanPasses.Inc()
}

func (r *Recorder) ScanFinished(newCodes int, err error) {
	r.codesFound.Add(float64(newCodes))
	if err != nil {
		r.scanFailures.Inc()
	}
}

func (r *Recorder) SourceFailed() {
	r.sourceFailures.Inc()
}

func (r *Recorder) SetCodesCached(n int) {
	r.codesCached.Set(float64(n))
}

// Handler exposes the registry in Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
