/*
Copyright 2020 the Velero contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricNamespace = "velero_ui"

	operationTotal      = "operation_total"
	logRetrievalTotal   = "log_retrieval_total"
	logRetrievalSeconds = "log_retrieval_duration_seconds"
	httpRequestSeconds  = "http_request_duration_seconds"

	kindLabel      = "kind"
	operationLabel = "operation"
	resultLabel    = "result"
	stateLabel     = "state"
	routeLabel     = "route"
	methodLabel    = "method"
	codeLabel      = "code"

	resultSuccess = "success"
	resultFailure = "failure"
)

// ServerMetrics holds the prometheus collectors of the server.
type ServerMetrics struct {
	metrics map[string]prometheus.Collector
}

func NewServerMetrics() *ServerMetrics {
	return &ServerMetrics{
		metrics: map[string]prometheus.Collector{
			operationTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricNamespace,
					Name:      operationTotal,
					Help:      "Total number of create and delete operations on Velero resources",
				},
				[]string{kindLabel, operationLabel, resultLabel},
			),
			logRetrievalTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricNamespace,
					Name:      logRetrievalTotal,
					Help:      "Total number of log retrievals by outcome",
				},
				[]string{kindLabel, stateLabel},
			),
			logRetrievalSeconds: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: metricNamespace,
					Name:      logRetrievalSeconds,
					Help:      "Time taken to retrieve a log, in seconds",
					Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
				},
				[]string{kindLabel},
			),
			httpRequestSeconds: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: metricNamespace,
					Name:      httpRequestSeconds,
					Help:      "Time taken to serve an API request, in seconds",
					Buckets:   prometheus.DefBuckets,
				},
				[]string{routeLabel, methodLabel, codeLabel},
			),
		},
	}
}

// RegisterAllMetrics registers every collector with the registerer.
func (m *ServerMetrics) RegisterAllMetrics(registerer prometheus.Registerer) error {
	for _, pm := range m.metrics {
		if err := registerer.Register(pm); err != nil {
			return err
		}
	}
	return nil
}

// RecordOperation counts a create or delete of a resource kind.
func (m *ServerMetrics) RecordOperation(kind, operation string, success bool) {
	result := resultFailure
	if success {
		result = resultSuccess
	}
	if c, ok := m.metrics[operationTotal].(*prometheus.CounterVec); ok {
		c.WithLabelValues(kind, operation, result).Inc()
	}
}

// RecordLogRetrieval counts a log retrieval by outcome state and observes its duration.
func (m *ServerMetrics) RecordLogRetrieval(kind, state string, duration time.Duration) {
	if c, ok := m.metrics[logRetrievalTotal].(*prometheus.CounterVec); ok {
		c.WithLabelValues(kind, state).Inc()
	}
	if h, ok := m.metrics[logRetrievalSeconds].(*prometheus.HistogramVec); ok {
		h.WithLabelValues(kind).Observe(duration.Seconds())
	}
}

// ObserveRequest observes the duration of an API request.
func (m *ServerMetrics) ObserveRequest(route, method string, code int, duration time.Duration) {
	if h, ok := m.metrics[httpRequestSeconds].(*prometheus.HistogramVec); ok {
		h.WithLabelValues(route, method, strconv.Itoa(code)).Observe(duration.Seconds())
	}
}
