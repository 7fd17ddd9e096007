// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package caching

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation labels of the backend metrics.
const (
	opCreate = "create"
	opGet    = "get"
	opList   = "list"
	opUpdate = "update"
	opDelete = "delete"
)

// Metrics holds the collectors recorded by [InstrumentedBackend].
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	CachedTokenCount prometheus.Counter
}

// NewMetrics creates the backend collectors and registers them with reg.
//
// A nil reg registers with [prometheus.DefaultRegisterer].
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contextcache_backend_requests_total",
				Help: "Total number of cache backend requests",
			},
			[]string{"operation", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "contextcache_backend_request_duration_seconds",
				Help:    "Cache backend request duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
		CachedTokenCount: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "contextcache_cached_tokens_total",
				Help: "Total number of tokens stored in created caches",
			},
		),
	}
}

// InstrumentedBackend decorates a [Backend] with prometheus metrics.
type InstrumentedBackend struct {
	next    Backend
	metrics *Metrics
}

var _ Backend = (*InstrumentedBackend)(nil)

// NewInstrumentedBackend returns next recording into metrics.
func NewInstrumentedBackend(next Backend, metrics *Metrics) *InstrumentedBackend {
	return &InstrumentedBackend{
		next:    next,
		metrics: metrics,
	}
}

func (b *InstrumentedBackend) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	b.metrics.RequestsTotal.WithLabelValues(op, status).Inc()
	b.metrics.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Create implements [Backend].
func (b *InstrumentedBackend) Create(ctx context.Context, req *Request) (*CachedContent, error) {
	start := time.Now()
	cc, err := b.next.Create(ctx, req)
	b.observe(opCreate, start, err)
	if err == nil && cc.UsageMetadata != nil {
		b.metrics.CachedTokenCount.Add(float64(cc.UsageMetadata.TotalTokenCount))
	}
	return cc, err
}

// Get implements [Backend].
func (b *InstrumentedBackend) Get(ctx context.Context, name string) (*CachedContent, error) {
	start := time.Now()
	cc, err := b.next.Get(ctx, name)
	b.observe(opGet, start, err)
	return cc, err
}

// List implements [Backend].
func (b *InstrumentedBackend) List(ctx context.Context, opts *ListOptions) (*ListResponse, error) {
	start := time.Now()
	resp, err := b.next.List(ctx, opts)
	b.observe(opList, start, err)
	return resp, err
}

// Update implements [Backend].
func (b *InstrumentedBackend) Update(ctx context.Context, name string, exp Expiration) (*CachedContent, error) {
	start := time.Now()
	cc, err := b.next.Update(ctx, name, exp)
	b.observe(opUpdate, start, err)
	return cc, err
}

// Delete implements [Backend].
func (b *InstrumentedBackend) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := b.next.Delete(ctx, name)
	b.observe(opDelete, start, err)
	return err
}

// Close closes the decorated backend if it holds resources.
func (b *InstrumentedBackend) Close() error {
	if c, ok := b.next.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
