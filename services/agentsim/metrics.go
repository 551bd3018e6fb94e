// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "trialtalk"
	metricsSubsystem = "agentsim"
)

// simulatorMetrics holds the Prometheus metrics for the simulator.
//
// # Thread Safety
//
// All operations are thread-safe via Prometheus's internal locking.
type simulatorMetrics struct {
	// RequestsTotal counts requests by endpoint and outcome.
	// Labels: endpoint (query, get_session, delete_session),
	// status (success, bad_request, not_found)
	RequestsTotal *prometheus.CounterVec

	// QueryDurationSeconds measures query handling latency.
	QueryDurationSeconds prometheus.Histogram
}

// newSimulatorMetrics registers the metrics with reg. Tests pass a
// fresh prometheus.NewRegistry() to avoid duplicate registration.
func newSimulatorMetrics(reg prometheus.Registerer) *simulatorMetrics {
	factory := promauto.With(reg)
	return &simulatorMetrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "requests_total",
			Help:      "Requests handled, by endpoint and status.",
		}, []string{"endpoint", "status"}),

		QueryDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "query_duration_seconds",
			Help:      "Time spent answering a query.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
