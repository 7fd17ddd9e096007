// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package caching

import (
	"context"
	"errors"
	"time"

	"google.golang.org/genai"

	"github.com/go-a2a/contextcache/internal/aiconv"
)

var (
	// ErrNotFound is returned when a cached content entry does not exist.
	ErrNotFound = errors.New("cached content not found")

	// ErrConflictingExpiration is returned by backends that cannot send both an expire time and a TTL.
	ErrConflictingExpiration = aiconv.ErrConflictingExpiration
)

// CacheState represents the state of a cached content entry.
type CacheState string

const (
	// CacheStateUnspecified indicates the cache state is not known.
	CacheStateUnspecified CacheState = "CACHE_STATE_UNSPECIFIED"

	// CacheStateActive indicates the cache is active and usable.
	CacheStateActive CacheState = "ACTIVE"

	// CacheStateExpired indicates the cache has expired.
	CacheStateExpired CacheState = "EXPIRED"
)

// Request is a request to create cached content.
//
// Zero values mean absent: a zero TTL or ExpireTime leaves the expiration to the service
// default, and nil Tools or ToolConfig are not sent.
type Request struct {
	// Model is the fully qualified model name.
	// Format: projects/{project}/locations/{location}/publishers/google/models/{model}
	Model string `json:"model"`

	// DisplayName is the user-provided display name for the cached content.
	DisplayName string `json:"display_name,omitempty"`

	// SystemInstruction is the system instruction to cache along with the contents.
	SystemInstruction *genai.Content `json:"system_instruction,omitempty"`

	// Contents are the content pieces to cache.
	Contents []*genai.Content `json:"contents,omitempty"`

	// TTL is the time-to-live of the cached content, counted from its creation.
	TTL time.Duration `json:"ttl,omitempty"`

	// ExpireTime is the timestamp when the cached content expires.
	ExpireTime time.Time `json:"expire_time,omitzero"`

	// ToolConfig is the tool configuration to cache along with the contents.
	ToolConfig *genai.ToolConfig `json:"tool_config,omitempty"`

	// Tools are the tools available to the model when using the cached content.
	Tools []*genai.Tool `json:"tools,omitempty"`
}

// config converts r to the genai SDK create config.
func (r *Request) config() *genai.CreateCachedContentConfig {
	return &genai.CreateCachedContentConfig{
		TTL:               r.TTL,
		ExpireTime:        r.ExpireTime,
		DisplayName:       r.DisplayName,
		Contents:          r.Contents,
		SystemInstruction: r.SystemInstruction,
		Tools:             r.Tools,
		ToolConfig:        r.ToolConfig,
	}
}

// CachedContent represents the metadata of a cached content entry.
//
// The cached contents themselves are never returned by the service.
type CachedContent struct {
	// Name is the resource name of the cached content.
	// Format: projects/{project}/locations/{location}/cachedContents/{cached_content}
	Name string `json:"name"`

	// DisplayName is the user-provided display name for the cached content.
	DisplayName string `json:"display_name,omitempty"`

	// Model is the name of the model for which this content is cached.
	Model string `json:"model,omitempty"`

	// CreateTime is the timestamp when the cached content was created.
	CreateTime time.Time `json:"create_time,omitzero"`

	// UpdateTime is the timestamp when the cached content was last updated.
	UpdateTime time.Time `json:"update_time,omitzero"`

	// ExpireTime is the timestamp when the cached content will expire.
	ExpireTime time.Time `json:"expire_time,omitzero"`

	// UsageMetadata contains usage statistics for the cached content.
	UsageMetadata *UsageMetadata `json:"usage_metadata,omitempty"`
}

// State reports whether c is still usable at now.
func (c *CachedContent) State(now time.Time) CacheState {
	if c.ExpireTime.IsZero() {
		return CacheStateUnspecified
	}
	if now.Before(c.ExpireTime) {
		return CacheStateActive
	}
	return CacheStateExpired
}

// UsageMetadata contains usage statistics for cached content.
type UsageMetadata struct {
	// TotalTokenCount is the total number of tokens in the cached content.
	TotalTokenCount int32 `json:"total_token_count,omitempty"`

	// TextCount is the number of text characters.
	TextCount int32 `json:"text_count,omitempty"`

	// ImageCount is the number of images.
	ImageCount int32 `json:"image_count,omitempty"`

	// VideoDurationSeconds is the duration of video content in seconds.
	VideoDurationSeconds int32 `json:"video_duration_seconds,omitempty"`

	// AudioDurationSeconds is the duration of audio content in seconds.
	AudioDurationSeconds int32 `json:"audio_duration_seconds,omitempty"`
}

// fromGenAI converts the genai SDK representation.
func fromGenAI(cc *genai.CachedContent) *CachedContent {
	if cc == nil {
		return nil
	}
	result := &CachedContent{
		Name:        cc.Name,
		DisplayName: cc.DisplayName,
		Model:       cc.Model,
		CreateTime:  cc.CreateTime,
		UpdateTime:  cc.UpdateTime,
		ExpireTime:  cc.ExpireTime,
	}
	if um := cc.UsageMetadata; um != nil {
		result.UsageMetadata = &UsageMetadata{
			TotalTokenCount:      um.TotalTokenCount,
			TextCount:            um.TextCount,
			ImageCount:           um.ImageCount,
			VideoDurationSeconds: um.VideoDurationSeconds,
			AudioDurationSeconds: um.AudioDurationSeconds,
		}
	}
	return result
}

// Expiration is the new expiration of a cached content entry.
//
// Exactly one of TTL and ExpireTime must be set.
type Expiration struct {
	// TTL extends the cache to now + TTL.
	TTL time.Duration `json:"ttl,omitempty"`

	// ExpireTime sets an absolute expiration.
	ExpireTime time.Time `json:"expire_time,omitzero"`
}

// validate reports whether e sets exactly one field.
func (e Expiration) validate() error {
	switch {
	case e.TTL != 0 && !e.ExpireTime.IsZero():
		return ErrConflictingExpiration
	case e.TTL < 0:
		return errors.New("ttl must be positive")
	case e.TTL == 0 && e.ExpireTime.IsZero():
		return errors.New("either ttl or expire time is required")
	}
	return nil
}

// ListOptions provides options for listing cached content.
type ListOptions struct {
	// PageSize is the maximum number of cached content entries to return per page.
	PageSize int32 `json:"page_size,omitempty"`

	// PageToken is the token for retrieving a specific page of results.
	PageToken string `json:"page_token,omitempty"`
}

// ListResponse represents a page of cached content entries.
type ListResponse struct {
	// CachedContents are the cached content entries.
	CachedContents []*CachedContent `json:"cached_contents,omitempty"`

	// NextPageToken is the token for retrieving the next page of results.
	NextPageToken string `json:"next_page_token,omitempty"`
}

// Backend is the remote cache service.
//
// Implementations must be safe for concurrent use.
type Backend interface {
	// Create creates a new cached content entry.
	Create(ctx context.Context, req *Request) (*CachedContent, error)

	// Get returns the metadata of the named entry.
	Get(ctx context.Context, name string) (*CachedContent, error)

	// List returns one page of entries.
	List(ctx context.Context, opts *ListOptions) (*ListResponse, error)

	// Update changes the expiration of the named entry.
	Update(ctx context.Context, name string, exp Expiration) (*CachedContent, error)

	// Delete deletes the named entry.
	Delete(ctx context.Context, name string) error
}
