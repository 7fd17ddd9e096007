// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package caching

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/go-a2a/contextcache/history"
	"github.com/go-a2a/contextcache/model"
	"github.com/go-a2a/contextcache/pkg/logging"
	"github.com/go-a2a/contextcache/tool"
	"github.com/go-a2a/contextcache/types"
)

// Creator creates context caches from a chat history.
//
// A Creator holds no mutable state and is safe for concurrent use.
type Creator struct {
	backend Backend
	loader  history.MediaLoader
}

// CreatorOption is a functional option for configuring a [Creator].
type CreatorOption func(*Creator)

// WithMediaLoader sets the loader used for image_url content blocks.
func WithMediaLoader(loader history.MediaLoader) CreatorOption {
	return func(c *Creator) {
		c.loader = loader
	}
}

// NewCreator returns a Creator issuing requests to backend.
func NewCreator(backend Backend, opts ...CreatorOption) (*Creator, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}

	c := &Creator{
		backend: backend,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type createOptions struct {
	expireTime  time.Time
	ttl         time.Duration
	tools       []any
	hasTools    bool
	toolConfig  *types.ToolConfig
	displayName string
}

// CreateOption configures a single [Creator.Create] call.
type CreateOption func(*createOptions)

// WithExpireTime sets the timestamp when the cache expires.
//
// At most one of WithExpireTime and [WithTTL] should be used. If neither is set, the service
// applies its default TTL.
func WithExpireTime(t time.Time) CreateOption {
	return func(o *createOptions) {
		o.expireTime = t
	}
}

// WithTTL sets the time-to-live of the cache, counted from its creation.
func WithTTL(ttl time.Duration) CreateOption {
	return func(o *createOptions) {
		o.ttl = ttl
	}
}

// WithTools sets the tool definitions to bind to the cache.
//
// Each definition may be of any shape accepted by [tool.Format]. All definitions are
// aggregated into a single tool.
func WithTools(tools ...any) CreateOption {
	return func(o *createOptions) {
		o.tools = append(o.tools, tools...)
		o.hasTools = true
	}
}

// WithToolConfig sets the tool config shared by all tools.
func WithToolConfig(cfg *types.ToolConfig) CreateOption {
	return func(o *createOptions) {
		o.toolConfig = cfg
	}
}

// WithDisplayName sets the display name of the cache.
func WithDisplayName(name string) CreateOption {
	return func(o *createOptions) {
		o.displayName = name
	}
}

// Create caches messages for ref and returns the resource name of the created cache.
//
// It returns a [*types.UnsupportedModelError] without contacting the backend if the model
// family does not support context caching. Errors from the history parser, the tool
// formatters and the backend are returned unchanged.
func (c *Creator) Create(ctx context.Context, ref types.ModelReference, messages []*types.Message, opts ...CreateOption) (string, error) {
	var o createOptions
	for _, opt := range opts {
		opt(&o)
	}

	modelName := model.FormatName(ref.ModelName(), ref.Project(), ref.Location())
	if !model.IsGeminiAdvanced(ref.Family()) {
		return "", &types.UnsupportedModelError{Model: modelName}
	}

	systemInstruction, contents, err := history.Parse(ctx, messages, c.loader)
	if err != nil {
		return "", err
	}

	var toolConfig *genai.ToolConfig
	if o.toolConfig != nil {
		toolConfig, err = tool.FormatConfig(o.toolConfig)
		if err != nil {
			return "", err
		}
	}

	var tools []*genai.Tool
	if o.hasTools {
		formatted, err := tool.Format(o.tools...)
		if err != nil {
			return "", err
		}
		tools = []*genai.Tool{formatted}
	}

	req := &Request{
		Model:             modelName,
		DisplayName:       o.displayName,
		SystemInstruction: systemInstruction,
		Contents:          contents,
		TTL:               o.ttl,
		ExpireTime:        o.expireTime,
		ToolConfig:        toolConfig,
		Tools:             tools,
	}

	logger := logging.FromContext(ctx)
	logger.DebugContext(ctx, "Creating context cache",
		slog.String("model", modelName),
		slog.Int("contents", len(contents)),
		slog.Bool("system_instruction", systemInstruction != nil),
		slog.Int("tools", len(tools)),
	)

	cc, err := c.backend.Create(ctx, req)
	if err != nil {
		return "", err
	}

	logger.InfoContext(ctx, "Context cache created",
		slog.String("model", modelName),
		slog.String("cache_name", cc.Name),
	)

	return cc.Name, nil
}

// CreateContextCache creates a cache for messages on backend with a default [Creator] and
// returns the resource name of the created cache.
func CreateContextCache(ctx context.Context, backend Backend, ref types.ModelReference, messages []*types.Message, opts ...CreateOption) (string, error) {
	c, err := NewCreator(backend)
	if err != nil {
		return "", err
	}
	return c.Create(ctx, ref, messages, opts...)
}
