// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-a2a/contextcache/caching"
	"github.com/go-a2a/contextcache/internal/config"
	"github.com/go-a2a/contextcache/pkg/logging"
)

var (
	memoryMu       sync.Mutex
	memoryBackends = make(map[string]*caching.InMemoryBackend)
)

// memoryBackend returns the in-memory backend of project and location, shared by every
// command run in this process.
func memoryBackend(project, location string) *caching.InMemoryBackend {
	memoryMu.Lock()
	defer memoryMu.Unlock()

	key := project + "/" + location
	backend, ok := memoryBackends[key]
	if !ok {
		backend = caching.NewInMemoryBackend(project, location)
		memoryBackends[key] = backend
	}
	return backend
}

// newBackend connects to the backend selected by c. The returned close function releases
// it and flushes metrics when a metrics file is configured.
func newBackend(ctx context.Context, c *config.Config) (caching.Backend, func() error, error) {
	var (
		backend caching.Backend
		err     error
	)
	switch c.Backend {
	case config.BackendGenAI:
		var opts []caching.GenAIOption
		if c.AccessToken != "" {
			opts = append(opts, caching.WithAccessToken(c.AccessToken))
		}
		backend, err = caching.NewGenAIBackend(ctx, c.Project, c.Location, opts...)

	case config.BackendAIPlatform:
		var opts []caching.AIPlatformOption
		if c.AccessToken != "" {
			opts = append(opts, caching.WithAIPlatformAccessToken(c.AccessToken))
		}
		backend, err = caching.NewAIPlatformBackend(ctx, c.Project, c.Location, opts...)

	case config.BackendMemory:
		backend = memoryBackend(c.Project, c.Location)

	default:
		err = fmt.Errorf("unknown backend %q", c.Backend)
	}
	if err != nil {
		return nil, nil, err
	}

	registry := prometheus.NewRegistry()
	instrumented := caching.NewInstrumentedBackend(backend, caching.NewMetrics(registry))

	closeFn := func() error {
		err := instrumented.Close()
		if c.MetricsFile != "" {
			if werr := prometheus.WriteToTextfile(c.MetricsFile, registry); werr != nil {
				err = errors.Join(err, fmt.Errorf("write metrics: %w", werr))
			} else {
				logging.FromContext(ctx).DebugContext(ctx, "Wrote metrics", slog.String("path", c.MetricsFile))
			}
		}
		return err
	}
	return instrumented, closeFn, nil
}
