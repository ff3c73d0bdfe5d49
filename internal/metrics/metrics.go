// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics counts batch outcomes with Prometheus collectors and
// writes them as a node-exporter textfile once the batch is over.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/nbo-sop/pkg/types"
)

const namespace = "nbo_sop"

// Report outcomes.
const (
	StatusAnalyzed = "analyzed"
	StatusFailed   = "failed"
)

// Recorder holds the batch collectors on a private registry.
type Recorder struct {
	reg          *prometheus.Registry
	reports      *prometheus.CounterVec
	interactions *prometheus.CounterVec
	unrecognized prometheus.Counter
	missing      prometheus.Counter
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Reports processed, by outcome.",
		}, []string{"status"}),
		interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interactions_total",
			Help:      "Classified bond interactions, by classification.",
		}, []string{"classification"}),
		unrecognized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unrecognized_lines_total",
			Help:      "Table rows that matched neither row grammar.",
		}),
		missing: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missing_sections_total",
			Help:      "Reports without a second order perturbation table.",
		}),
	}
	r.reg.MustRegister(r.reports, r.interactions, r.unrecognized, r.missing)
	return r
}

// Analyzed records a successfully analyzed report.
func (r *Recorder) Analyzed(rep types.Report) {
	if r == nil {
		return
	}
	r.reports.WithLabelValues(StatusAnalyzed).Inc()
	for c, n := range rep.Counts() {
		r.interactions.WithLabelValues(string(c)).Add(float64(n))
	}
	if !rep.SectionFound {
		r.missing.Inc()
		return
	}
	r.unrecognized.Add(float64(len(rep.Warnings)))
}

// Failed records a report that could not be read or written.
func (r *Recorder) Failed() {
	if r == nil {
		return
	}
	r.reports.WithLabelValues(StatusFailed).Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// WriteTextfile writes all collectors to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
