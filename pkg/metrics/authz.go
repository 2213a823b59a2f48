// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// PermissionChecksTotal counts permission checks by outcome
	PermissionChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcade_permission_checks_total",
			Help: "Total number of permission checks",
		},
		[]string{"result"},
	)

	// PermissionLoadErrorsTotal counts permission computations that failed closed
	PermissionLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "arcade_permission_load_errors_total",
			Help: "Total number of permission set computations that failed and resolved to an empty set",
		},
	)

	// DataScopeDecisionsTotal counts intercepted operations by outcome
	DataScopeDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcade_datascope_decisions_total",
			Help: "Total number of data scope decisions per operation",
		},
		[]string{"operation", "outcome"},
	)

	// DataScopeFailuresTotal counts predicate computations that failed
	DataScopeFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcade_datascope_failures_total",
			Help: "Total number of data scope computations that failed",
		},
		[]string{"operation", "policy"},
	)

	authzMetricsOnce sync.Once
)

// RegisterAuthzMetrics registers all authorization metrics
func RegisterAuthzMetrics(registry *prometheus.Registry) {
	authzMetricsOnce.Do(func() {
		registry.MustRegister(
			PermissionChecksTotal,
			PermissionLoadErrorsTotal,
			DataScopeDecisionsTotal,
			DataScopeFailuresTotal,
		)
	})
}

// RecordPermissionCheck records a single permission decision
func RecordPermissionCheck(granted bool) {
	if granted {
		PermissionChecksTotal.WithLabelValues("granted").Inc()
		return
	}
	PermissionChecksTotal.WithLabelValues("denied").Inc()
}

// RecordPermissionLoadError records a fail-closed permission computation
func RecordPermissionLoadError() {
	PermissionLoadErrorsTotal.Inc()
}

// RecordDataScopeDecision records how an intercepted operation was scoped
func RecordDataScopeDecision(operation, outcome string) {
	DataScopeDecisionsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordDataScopeFailure records a failed predicate computation
func RecordDataScopeFailure(operation, policy string) {
	DataScopeFailuresTotal.WithLabelValues(operation, policy).Inc()
}
