// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package caching

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/go-a2a/contextcache/internal/xiter"
	"github.com/go-a2a/contextcache/pkg/logging"
)

// defaultPageSize is the page size used by [Manager.All].
const defaultPageSize = 50

// Manager manages the lifecycle of existing cached content entries.
type Manager struct {
	backend Backend
}

// NewManager returns a Manager operating on backend.
func NewManager(backend Backend) (*Manager, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return &Manager{backend: backend}, nil
}

// Get retrieves cached content by name.
func (m *Manager) Get(ctx context.Context, name string) (*CachedContent, error) {
	if name == "" {
		return nil, fmt.Errorf("cache name cannot be empty")
	}

	logging.FromContext(ctx).DebugContext(ctx, "Retrieving cached content",
		slog.String("cache_name", name),
	)

	cc, err := m.backend.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get cached content %s: %w", name, err)
	}
	return cc, nil
}

// List returns one page of cached content entries.
func (m *Manager) List(ctx context.Context, opts *ListOptions) (*ListResponse, error) {
	if opts == nil {
		opts = &ListOptions{PageSize: defaultPageSize}
	}

	logging.FromContext(ctx).DebugContext(ctx, "Listing cached content",
		slog.Int("page_size", int(opts.PageSize)),
		slog.String("page_token", opts.PageToken),
	)

	resp, err := m.backend.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list cached contents: %w", err)
	}
	return resp, nil
}

// All iterates over every cached content entry, fetching pages as needed.
func (m *Manager) All(ctx context.Context) iter.Seq2[*CachedContent, error] {
	return xiter.Paginate(func(token string) ([]*CachedContent, string, error) {
		resp, err := m.List(ctx, &ListOptions{PageSize: defaultPageSize, PageToken: token})
		if err != nil {
			return nil, "", err
		}
		return resp.CachedContents, resp.NextPageToken, nil
	})
}

// UpdateExpiration changes the expiration of the named entry.
//
// exp must set exactly one of TTL and ExpireTime.
func (m *Manager) UpdateExpiration(ctx context.Context, name string, exp Expiration) (*CachedContent, error) {
	if name == "" {
		return nil, fmt.Errorf("cache name cannot be empty")
	}
	if err := exp.validate(); err != nil {
		return nil, fmt.Errorf("invalid expiration: %w", err)
	}

	cc, err := m.backend.Update(ctx, name, exp)
	if err != nil {
		return nil, fmt.Errorf("update cached content %s: %w", name, err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "Cached content expiration updated",
		slog.String("cache_name", name),
		slog.Time("expire_time", cc.ExpireTime),
	)

	return cc, nil
}

// Delete deletes the named entry.
func (m *Manager) Delete(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("cache name cannot be empty")
	}

	if err := m.backend.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete cached content %s: %w", name, err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "Cached content deleted",
		slog.String("cache_name", name),
	)

	return nil
}
