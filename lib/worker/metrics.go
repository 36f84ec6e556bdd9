// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// All worker metrics are labelled by panel type.
var (
	commandsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robodash_worker_commands_sent_total",
		Help: "Commands queued for a worker context",
	}, []string{"panel_type", "command"})

	responsesDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robodash_worker_responses_delivered_total",
		Help: "Responses delivered to an active panel",
	}, []string{"panel_type"})

	lateResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robodash_worker_late_responses_total",
		Help: "Responses dropped because their panel or context was gone",
	}, []string{"panel_type"})

	errorResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robodash_worker_error_responses_total",
		Help: "ERROR responses produced by processors",
	}, []string{"panel_type"})

	inboxEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robodash_worker_inbox_evictions_total",
		Help: "Queued telemetry commands evicted from a full inbox",
	}, []string{"panel_type"})

	contextStarts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robodash_worker_context_starts_total",
		Help: "Worker execution contexts started",
	}, []string{"panel_type"})

	contextFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robodash_worker_context_failures_total",
		Help: "Worker execution contexts that failed to start",
	}, []string{"panel_type"})

	processorPanics = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robodash_worker_processor_panics_total",
		Help: "Processor panics recovered into ERROR responses",
	}, []string{"panel_type"})
)
