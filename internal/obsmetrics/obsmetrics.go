// Package obsmetrics exposes Prometheus counters and histograms for jn's
// discovery, cache, and pipeline subsystems: a lazily-initialized singleton
// guarded by sync.Once, registered against its own registry only when a
// caller actually wants metrics exposed (jn serve-metrics).
package obsmetrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	once sync.Once

	discoveryProbesTotal   *prometheus.CounterVec
	discoveryDuration      prometheus.Histogram
	cacheHitsTotal         prometheus.Counter
	cacheMissesTotal       prometheus.Counter
	pipelineRunsTotal      prometheus.Counter
	pipelineStagesTotal    prometheus.Counter
	pipelineExitCodesTotal *prometheus.CounterVec
}

var m metrics

func (mm *metrics) init() {
	mm.once.Do(func() {
		mm.discoveryProbesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jn_discovery_probes_total",
			Help: "Plugin discovery probe outcomes by result.",
		}, []string{"result"})
		mm.discoveryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "jn_discovery_duration_seconds",
			Help: "Time spent scanning all plugin tiers.",
		})
		mm.cacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jn_cache_hits_total",
			Help: "Plugin cache loads that were valid.",
		})
		mm.cacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jn_cache_misses_total",
			Help: "Plugin cache loads that were invalid or absent.",
		})
		mm.pipelineRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jn_pipeline_runs_total",
			Help: "Pipelines assembled and spawned.",
		})
		mm.pipelineStagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jn_pipeline_stages_total",
			Help: "Total plugin process stages spawned across all pipelines.",
		})
		mm.pipelineExitCodesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jn_pipeline_exit_codes_total",
			Help: "Final pipeline exit codes observed by the orchestrator.",
		}, []string{"code"})
	})
}

// Registry returns a fresh *prometheus.Registry with jn's collectors
// registered, for "jn serve-metrics" to expose via promhttp.
func Registry() *prometheus.Registry {
	m.init()
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		m.discoveryProbesTotal,
		m.discoveryDuration,
		m.cacheHitsTotal,
		m.cacheMissesTotal,
		m.pipelineRunsTotal,
		m.pipelineStagesTotal,
		m.pipelineExitCodesTotal,
	)
	return reg
}

// DiscoveryProbe records one probe outcome ("ok", "timeout_or_error", "skipped", "malformed").
func DiscoveryProbe(result string) {
	m.init()
	m.discoveryProbesTotal.WithLabelValues(result).Inc()
}

// DiscoveryDuration observes the wall-clock time of a full discovery pass.
func DiscoveryDuration(seconds float64) {
	m.init()
	m.discoveryDuration.Observe(seconds)
}

// CacheHit records a valid cache load.
func CacheHit() {
	m.init()
	m.cacheHitsTotal.Inc()
}

// CacheMiss records an invalid or absent cache load.
func CacheMiss() {
	m.init()
	m.cacheMissesTotal.Inc()
}

// PipelineRun records one orchestrated pipeline invocation and its stage count.
func PipelineRun(stageCount int) {
	m.init()
	m.pipelineRunsTotal.Inc()
	m.pipelineStagesTotal.Add(float64(stageCount))
}

// PipelineExit records the orchestrator's final mapped exit code.
func PipelineExit(code int) {
	m.init()
	m.pipelineExitCodesTotal.WithLabelValues(strconv.Itoa(code)).Inc()
}
