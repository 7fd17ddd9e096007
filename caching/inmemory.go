// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package caching

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tiendc/go-deepcopy"
	"google.golang.org/genai"

	"github.com/go-a2a/contextcache/model"
	"github.com/go-a2a/contextcache/pkg/logging"
)

// DefaultTTL is the TTL applied by the service when a request sets no expiration.
const DefaultTTL = time.Hour

// InMemoryBackend is an in-memory implementation of [Backend].
//
// Entries expire like they do on the service: an expired entry is no longer returned and is
// removed on the next access.
type InMemoryBackend struct {
	project  string
	location string
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*inMemoryEntry
}

type inMemoryEntry struct {
	meta CachedContent
	req  Request
}

var _ Backend = (*InMemoryBackend)(nil)

// InMemoryOption is a functional option for configuring an [InMemoryBackend].
type InMemoryOption func(*InMemoryBackend)

// WithClock sets the function returning the current time.
func WithClock(now func() time.Time) InMemoryOption {
	return func(b *InMemoryBackend) {
		b.now = now
	}
}

// NewInMemoryBackend creates a new [InMemoryBackend] naming entries under project and location.
func NewInMemoryBackend(project, location string, opts ...InMemoryOption) *InMemoryBackend {
	b := &InMemoryBackend{
		project:  project,
		location: location,
		now:      time.Now,
		entries:  make(map[string]*inMemoryEntry),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Create implements [Backend].
func (b *InMemoryBackend) Create(ctx context.Context, req *Request) (*CachedContent, error) {
	if req.TTL != 0 && !req.ExpireTime.IsZero() {
		return nil, ErrConflictingExpiration
	}
	if req.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	stored, err := copyRequest(req)
	if err != nil {
		return nil, err
	}

	now := b.now()
	expireTime := req.ExpireTime
	switch {
	case req.TTL != 0:
		expireTime = now.Add(req.TTL)
	case expireTime.IsZero():
		expireTime = now.Add(DefaultTTL)
	}

	name := model.Parent(b.project, b.location) + "/cachedContents/" + uuid.NewString()
	entry := &inMemoryEntry{
		meta: CachedContent{
			Name:          name,
			DisplayName:   req.DisplayName,
			Model:         req.Model,
			CreateTime:    now,
			UpdateTime:    now,
			ExpireTime:    expireTime,
			UsageMetadata: usage(stored),
		},
		req: *stored,
	}

	b.mu.Lock()
	b.entries[name] = entry
	b.mu.Unlock()

	logging.FromContext(ctx).DebugContext(ctx, "Stored cached content in memory",
		slog.String("cache_name", name),
		slog.Time("expire_time", expireTime),
	)

	meta := entry.meta
	return &meta, nil
}

// Get implements [Backend].
func (b *InMemoryBackend) Get(ctx context.Context, name string) (*CachedContent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, err := b.lookup(name)
	if err != nil {
		return nil, err
	}
	meta := entry.meta
	return &meta, nil
}

// Request returns a copy of the request the named entry was created from.
func (b *InMemoryBackend) Request(name string) (*Request, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, err := b.lookup(name)
	if err != nil {
		return nil, err
	}
	return copyRequest(&entry.req)
}

// List implements [Backend].
//
// Entries are ordered by creation time. Page tokens are opaque offsets.
func (b *InMemoryBackend) List(ctx context.Context, opts *ListOptions) (*ListResponse, error) {
	if opts == nil {
		opts = &ListOptions{}
	}

	offset := 0
	if opts.PageToken != "" {
		n, err := strconv.Atoi(opts.PageToken)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid page token %q", opts.PageToken)
		}
		offset = n
	}

	b.mu.Lock()
	b.evictExpired()
	all := make([]CachedContent, 0, len(b.entries))
	for _, entry := range b.entries {
		all = append(all, entry.meta)
	}
	b.mu.Unlock()

	slices.SortFunc(all, func(x, y CachedContent) int {
		if c := x.CreateTime.Compare(y.CreateTime); c != 0 {
			return c
		}
		return cmp.Compare(x.Name, y.Name)
	})

	resp := &ListResponse{}
	if offset >= len(all) {
		return resp, nil
	}
	end := len(all)
	if opts.PageSize > 0 && offset+int(opts.PageSize) < end {
		end = offset + int(opts.PageSize)
		resp.NextPageToken = strconv.Itoa(end)
	}
	for i := offset; i < end; i++ {
		resp.CachedContents = append(resp.CachedContents, &all[i])
	}
	return resp, nil
}

// Update implements [Backend].
func (b *InMemoryBackend) Update(ctx context.Context, name string, exp Expiration) (*CachedContent, error) {
	if err := exp.validate(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	entry, err := b.lookup(name)
	if err != nil {
		return nil, err
	}

	now := b.now()
	if exp.TTL != 0 {
		entry.meta.ExpireTime = now.Add(exp.TTL)
	} else {
		entry.meta.ExpireTime = exp.ExpireTime
	}
	entry.meta.UpdateTime = now

	meta := entry.meta
	return &meta, nil
}

// Delete implements [Backend].
func (b *InMemoryBackend) Delete(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.lookup(name); err != nil {
		return err
	}
	delete(b.entries, name)
	return nil
}

// lookup returns the live entry for name. b.mu must be held.
func (b *InMemoryBackend) lookup(name string) (*inMemoryEntry, error) {
	entry, ok := b.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if !b.now().Before(entry.meta.ExpireTime) {
		delete(b.entries, name)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return entry, nil
}

// evictExpired removes expired entries. b.mu must be held.
func (b *InMemoryBackend) evictExpired() {
	now := b.now()
	for name, entry := range b.entries {
		if !now.Before(entry.meta.ExpireTime) {
			delete(b.entries, name)
		}
	}
}

// copyRequest returns a copy of req sharing no memory with it.
func copyRequest(req *Request) (*Request, error) {
	out := &Request{
		Model:       req.Model,
		DisplayName: req.DisplayName,
		TTL:         req.TTL,
		ExpireTime:  req.ExpireTime,
	}
	if req.SystemInstruction != nil {
		out.SystemInstruction = new(genai.Content)
		if err := deepcopy.Copy(out.SystemInstruction, req.SystemInstruction); err != nil {
			return nil, fmt.Errorf("copy system instruction: %w", err)
		}
	}
	if req.Contents != nil {
		if err := deepcopy.Copy(&out.Contents, &req.Contents); err != nil {
			return nil, fmt.Errorf("copy contents: %w", err)
		}
	}
	if req.Tools != nil {
		if err := deepcopy.Copy(&out.Tools, &req.Tools); err != nil {
			return nil, fmt.Errorf("copy tools: %w", err)
		}
	}
	if req.ToolConfig != nil {
		out.ToolConfig = new(genai.ToolConfig)
		if err := deepcopy.Copy(out.ToolConfig, req.ToolConfig); err != nil {
			return nil, fmt.Errorf("copy tool config: %w", err)
		}
	}
	return out, nil
}

// usage approximates the usage metadata reported by the service.
func usage(req *Request) *UsageMetadata {
	um := &UsageMetadata{}
	count := func(c *genai.Content) {
		if c == nil {
			return
		}
		for _, p := range c.Parts {
			switch {
			case p == nil:
			case p.Text != "":
				um.TextCount += int32(len([]rune(p.Text)))
			case p.InlineData != nil && isImage(p.InlineData.MIMEType):
				um.ImageCount++
			case p.FileData != nil && isImage(p.FileData.MIMEType):
				um.ImageCount++
			}
		}
	}
	count(req.SystemInstruction)
	for _, c := range req.Contents {
		count(c)
	}
	// roughly four characters per token
	um.TotalTokenCount = (um.TextCount + 3) / 4
	return um
}

func isImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}
