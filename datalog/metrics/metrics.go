// Package metrics turns engine annotation events into Prometheus metrics.
package metrics

import (
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/wbrown/bottomup-datalog/datalog/annotations"
)

// Recorder accumulates metrics for every build and query it observes.
// It owns its registry so several recorders can coexist in one process.
type Recorder struct {
	registry *prometheus.Registry

	// Counters
	builds           *prometheus.CounterVec
	passes           prometheus.Counter
	ruleApplications *prometheus.CounterVec
	factsDerived     prometheus.Counter
	queries          prometheus.Counter
	bindings         prometheus.Counter

	// Latency
	buildLatency prometheus.Summary
	queryLatency prometheus.Summary

	mu sync.Mutex
}

// NewRecorder creates a recorder with all metrics registered
func NewRecorder() *Recorder {
	r := &Recorder{
		builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datalog_builds_total",
				Help: "database builds by outcome",
			},
			[]string{"result"},
		),
		passes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "datalog_passes_total",
				Help: "fixpoint passes run across all builds",
			},
		),
		ruleApplications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datalog_rule_applications_total",
				Help: "rule applications by head relation",
			},
			[]string{"relation"},
		),
		factsDerived: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "datalog_facts_derived_total",
				Help: "new facts added by rule applications",
			},
		),
		queries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "datalog_queries_total",
				Help: "queries answered",
			},
		),
		bindings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "datalog_bindings_returned_total",
				Help: "bindings returned by queries",
			},
		),
		buildLatency: prometheus.NewSummary(
			prometheus.SummaryOpts{
				Name: "datalog_build_latency_ns",
				Help: "latency to materialize a database",
			},
		),
		queryLatency: prometheus.NewSummary(
			prometheus.SummaryOpts{
				Name: "datalog_query_latency_ns",
				Help: "latency to answer a query against a materialized database",
			},
		),
	}

	r.registry = prometheus.NewPedanticRegistry()
	reg := r.registry
	reg.MustRegister(r.builds)
	reg.MustRegister(r.passes)
	reg.MustRegister(r.ruleApplications)
	reg.MustRegister(r.factsDerived)
	reg.MustRegister(r.queries)
	reg.MustRegister(r.bindings)
	reg.MustRegister(r.buildLatency)
	reg.MustRegister(r.queryLatency)
	return r
}

// Registry exposes the underlying registry, e.g. for an HTTP handler
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns an annotation handler feeding this recorder
func (r *Recorder) Handler() annotations.Handler {
	return r.Observe
}

// Observe records one event
func (r *Recorder) Observe(event annotations.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Name {
	case annotations.BuildComplete:
		result := "error"
		if ok, _ := event.Data["success"].(bool); ok {
			result = "success"
		}
		r.builds.WithLabelValues(result).Inc()
		r.buildLatency.Observe(float64(event.Latency.Nanoseconds()))

	case annotations.PassComplete:
		r.passes.Inc()

	case annotations.RuleApplied:
		head, _ := event.Data["head"].(string)
		r.ruleApplications.WithLabelValues(head).Inc()
		if added, ok := event.Data["fact.added"].(int); ok {
			r.factsDerived.Add(float64(added))
		}

	case annotations.QueryComplete:
		r.queries.Inc()
		if n, ok := event.Data["binding.count"].(int); ok {
			r.bindings.Add(float64(n))
		}
		r.queryLatency.Observe(float64(event.Latency.Nanoseconds()))
	}
}

// WriteText writes every metric in the Prometheus text exposition format
func (r *Recorder) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
