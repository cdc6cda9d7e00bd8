// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics exposes Prometheus instrumentation for the content store
// and the HTTP server.
package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "iptvsite"

// Recorder owns every collector the site exports.
type Recorder struct {
	reg *prom.Registry

	storeOps      *prom.CounterVec
	storeDuration *prom.HistogramVec
	httpRequests  *prom.CounterVec
	httpDuration  *prom.HistogramVec
}

// NewRecorder registers the site collectors, plus the Go runtime and
// process collectors, on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{reg: prom.NewRegistry()}

	r.storeOps = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Content store operations by backend, operation and result",
	}, []string{"backend", "op", "result"})
	r.storeDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "operation_duration_seconds",
		Help:      "Latency of content store operations",
		Buckets:   prom.DefBuckets,
	}, []string{"backend", "op"})
	r.httpRequests = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route pattern and status",
	}, []string{"method", "route", "status"})
	r.httpDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route pattern",
		Buckets:   prom.DefBuckets,
	}, []string{"method", "route"})

	r.reg.MustRegister(
		r.storeOps, r.storeDuration, r.httpRequests, r.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the registry the collectors live in.
func (r *Recorder) Registry() *prom.Registry {
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
