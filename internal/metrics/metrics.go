// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics exposes Prometheus instruments for the ingestion pipeline.
// All recording methods are safe to call on a nil *Metrics, so components can
// run without metrics in tests and when embedded in a host pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kontentsource"

// Anomaly kinds recorded for data-quality conditions that do not abort a load.
const (
	AnomalyInvalidNumber     = "invalid_number"
	AnomalyInvalidDate       = "invalid_date"
	AnomalyMixedLinkedTypes  = "mixed_linked_item_types"
	AnomalyReferenceConflict = "reference_conflict"
	AnomalyMissingLinkedItem = "missing_linked_item"
)

// Metrics groups the pipeline's counters and histograms.
type Metrics struct {
	nodesInserted *prometheus.CounterVec
	nodesSkipped  *prometheus.CounterVec
	anomalies     *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
}

// New registers the pipeline instruments with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		nodesInserted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_inserted_total",
			Help:      "Nodes inserted into the store, by collection type name.",
		}, []string{"collection"}),
		nodesSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_skipped_total",
			Help:      "Nodes skipped because a node with the same id already existed.",
		}, []string{"collection"}),
		anomalies: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomalies_total",
			Help:      "Data-quality conditions logged during ingestion.",
		}, []string{"kind"}),
		fetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Delivery API request duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "outcome"}),
	}
}

// NodeInserted counts a node inserted into a collection.
func (m *Metrics) NodeInserted(collection string) {
	if m == nil {
		return
	}
	m.nodesInserted.WithLabelValues(collection).Inc()
}

// NodeSkipped counts a duplicate node that was not re-inserted.
func (m *Metrics) NodeSkipped(collection string) {
	if m == nil {
		return
	}
	m.nodesSkipped.WithLabelValues(collection).Inc()
}

// Anomaly counts a data-quality condition.
func (m *Metrics) Anomaly(kind string) {
	if m == nil {
		return
	}
	m.anomalies.WithLabelValues(kind).Inc()
}

// ObserveFetch records the duration of one delivery request.
func (m *Metrics) ObserveFetch(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.WithLabelValues(endpoint, outcome).Observe(d.Seconds())
}
