// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package observability exposes the Prometheus metrics of the server.
// A nil *Metrics is valid and records nothing.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "salesforce_mcp"

// UnknownLabel stands in for tool and method names the server does not
// register, so client input cannot grow the label space.
const UnknownLabel = "unknown"

// Metrics holds every collector on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests  *prometheus.CounterVec
	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	schemaCache  *prometheus.CounterVec
	sessionReady prometheus.Gauge
}

// NewMetrics creates and registers the collectors, including the Go runtime
// and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "JSON-RPC messages handled, by method.",
		}, []string{"method"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool invocations, by tool and outcome.",
		}, []string{"tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Tool invocation latency, including the upstream call.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		schemaCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schema_cache_lookups_total",
			Help:      "Schema cache lookups, by result (hit or miss).",
		}, []string{"result"}),
		sessionReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_ready",
			Help:      "1 when the Salesforce session is established, 0 otherwise.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rpcRequests,
		m.toolCalls,
		m.toolDuration,
		m.schemaCache,
		m.sessionReady,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RPCRequest counts one JSON-RPC message.
func (m *Metrics) RPCRequest(method string) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(method).Inc()
}

// ToolCall records one tool invocation. outcome is "ok" or an error kind.
func (m *Metrics) ToolCall(tool, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// SchemaCacheHit counts a cache hit.
func (m *Metrics) SchemaCacheHit() {
	if m == nil {
		return
	}
	m.schemaCache.WithLabelValues("hit").Inc()
}

// SchemaCacheMiss counts a cache miss.
func (m *Metrics) SchemaCacheMiss() {
	if m == nil {
		return
	}
	m.schemaCache.WithLabelValues("miss").Inc()
}

// SetSessionReady updates the session gauge.
func (m *Metrics) SetSessionReady(ready bool) {
	if m == nil {
		return
	}
	if ready {
		m.sessionReady.Set(1)
		return
	}
	m.sessionReady.Set(0)
}
