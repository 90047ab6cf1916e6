package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hookdeps_parse_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hookdeps_analysis_seconds",
		Help:    "Time spent analyzing a single call site.",
		Buckets: prometheus.DefBuckets,
	}, []string{"call_site"})

	CallSitesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hookdeps_call_sites_total",
		Help: "Total number of reactive-callback call sites analyzed.",
	})

	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hookdeps_diagnostics_total",
		Help: "Total number of diagnostics emitted, by code.",
	}, []string{"code"})

	BudgetExceededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hookdeps_budget_exceeded_total",
		Help: "Total number of call sites abandoned due to the resource budget.",
	})

	FilesScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hookdeps_files_scanned_total",
		Help: "Total number of source files scanned.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hookdeps_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
