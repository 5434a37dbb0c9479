// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package snoop

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "apisnoop"

// Event outcomes.
const (
	OutcomeResolved = "resolved"
	OutcomeIgnored  = "ignored"
	OutcomeFailed   = "failed"
)

// Metrics records processing counters on a dedicated registry so that several
// runs in one process do not collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	eventsProcessed    *prometheus.CounterVec
	resolutionFailures *prometheus.CounterVec
	indexBuilds        prometheus.Counter
	indexBuildDuration prometheus.Histogram
	malformedLines     prometheus.Counter
}

// NewMetrics creates and registers the processing metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		eventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_processed_total",
			Help:      "Audit events processed, by outcome.",
		}, []string{"outcome"}),
		resolutionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolution_failures_total",
			Help:      "Audit events that could not be resolved to an operation, by reason.",
		}, []string{"reason"}),
		indexBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_builds_total",
			Help:      "Specification indexes built.",
		}),
		indexBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_build_duration_seconds",
			Help:      "Time spent loading and indexing a specification.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		malformedLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_lines_total",
			Help:      "Audit log lines skipped because they could not be parsed.",
		}),
	}
	m.registry.MustRegister(
		m.eventsProcessed,
		m.resolutionFailures,
		m.indexBuilds,
		m.indexBuildDuration,
		m.malformedLines,
	)
	return m
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
