// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package caching_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"

	"github.com/go-a2a/contextcache/caching"
	"github.com/go-a2a/contextcache/history"
	"github.com/go-a2a/contextcache/model"
	"github.com/go-a2a/contextcache/tool"
	"github.com/go-a2a/contextcache/types"
)

const (
	testProject  = "p"
	testLocation = "l"
	testName     = "projects/p/locations/l/cachedContents/123"
)

// recordingBackend records create requests. Other operations are not expected.
type recordingBackend struct {
	caching.Backend

	requests []*caching.Request
	name     string
	err      error
}

func (b *recordingBackend) Create(ctx context.Context, req *caching.Request) (*caching.CachedContent, error) {
	b.requests = append(b.requests, req)
	if b.err != nil {
		return nil, b.err
	}
	return &caching.CachedContent{Name: b.name, Model: req.Model}, nil
}

func helpfulHistory() []*types.Message {
	return []*types.Message{
		types.NewSystemMessage("You are helpful"),
		types.NewHumanMessage(types.TextBlock("Hi")),
	}
}

type GetWeather struct {
	City string `json:"city" jsonschema:"description=City name"`
}

func (GetWeather) Description() string { return "Returns the weather of a city" }

func TestCreatorCreate(t *testing.T) {
	ctx := context.Background()
	advanced := model.NewVertex("gemini-1.5-pro-001", testProject, testLocation)
	wantModel := "projects/p/locations/l/publishers/google/models/gemini-1.5-pro-001"

	wantSystem := &genai.Content{Parts: []*genai.Part{{Text: "You are helpful"}}}
	wantContents := []*genai.Content{{Role: genai.RoleUser, Parts: []*genai.Part{{Text: "Hi"}}}}

	weatherTool, err := tool.Format(GetWeather{})
	if err != nil {
		t.Fatalf("tool.Format() error = %v", err)
	}

	tests := map[string]struct {
		opts []caching.CreateOption
		want *caching.Request
	}{
		"no expiration or tools": {
			want: &caching.Request{
				Model:             wantModel,
				SystemInstruction: wantSystem,
				Contents:          wantContents,
			},
		},
		"ttl": {
			opts: []caching.CreateOption{caching.WithTTL(30 * time.Minute)},
			want: &caching.Request{
				Model:             wantModel,
				SystemInstruction: wantSystem,
				Contents:          wantContents,
				TTL:               30 * time.Minute,
			},
		},
		"expire time": {
			opts: []caching.CreateOption{caching.WithExpireTime(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))},
			want: &caching.Request{
				Model:             wantModel,
				SystemInstruction: wantSystem,
				Contents:          wantContents,
				ExpireTime:        time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		"one tool": {
			opts: []caching.CreateOption{caching.WithTools(GetWeather{})},
			want: &caching.Request{
				Model:             wantModel,
				SystemInstruction: wantSystem,
				Contents:          wantContents,
				Tools:             []*genai.Tool{weatherTool},
			},
		},
		"tool config": {
			opts: []caching.CreateOption{
				caching.WithTools(GetWeather{}),
				caching.WithToolConfig(&types.ToolConfig{
					FunctionCallingConfig: &types.FunctionCallingConfig{
						Mode:                 "any",
						AllowedFunctionNames: []string{"get_weather"},
					},
				}),
			},
			want: &caching.Request{
				Model:             wantModel,
				SystemInstruction: wantSystem,
				Contents:          wantContents,
				Tools:             []*genai.Tool{weatherTool},
				ToolConfig: &genai.ToolConfig{
					FunctionCallingConfig: &genai.FunctionCallingConfig{
						Mode:                 genai.FunctionCallingConfigModeAny,
						AllowedFunctionNames: []string{"get_weather"},
					},
				},
			},
		},
		"display name": {
			opts: []caching.CreateOption{caching.WithDisplayName("support-bot")},
			want: &caching.Request{
				Model:             wantModel,
				DisplayName:       "support-bot",
				SystemInstruction: wantSystem,
				Contents:          wantContents,
			},
		},
		"both expirations are passed through": {
			opts: []caching.CreateOption{
				caching.WithTTL(time.Hour),
				caching.WithExpireTime(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)),
			},
			want: &caching.Request{
				Model:             wantModel,
				SystemInstruction: wantSystem,
				Contents:          wantContents,
				TTL:               time.Hour,
				ExpireTime:        time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			backend := &recordingBackend{name: testName}
			creator, err := caching.NewCreator(backend)
			if err != nil {
				t.Fatalf("NewCreator() error = %v", err)
			}

			got, err := creator.Create(ctx, advanced, helpfulHistory(), tt.opts...)
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if got != testName {
				t.Errorf("Create() = %q, want %q", got, testName)
			}

			if len(backend.requests) != 1 {
				t.Fatalf("backend received %d requests, want 1", len(backend.requests))
			}
			if diff := cmp.Diff(tt.want, backend.requests[0]); diff != "" {
				t.Errorf("request mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCreatorCreateUnsupportedModel(t *testing.T) {
	tests := map[string]types.ModelReference{
		"palm":         model.NewVertex("text-bison@002", testProject, testLocation),
		"gemini 1.0":   model.NewVertex("gemini-1.0-pro", testProject, testLocation),
		"codey":        model.NewVertex("code-bison", testProject, testLocation),
		"forced basic": model.NewVertex("gemini-1.5-pro-001", testProject, testLocation, model.WithFamily(types.ModelFamilyGemini)),
	}

	for name, ref := range tests {
		t.Run(name, func(t *testing.T) {
			backend := &recordingBackend{name: testName}

			_, err := caching.CreateContextCache(context.Background(), backend, ref, helpfulHistory())

			var unsupported *types.UnsupportedModelError
			if !errors.As(err, &unsupported) {
				t.Fatalf("CreateContextCache() error = %v, want *types.UnsupportedModelError", err)
			}
			wantModel := model.FormatName(ref.ModelName(), ref.Project(), ref.Location())
			if unsupported.Model != wantModel {
				t.Errorf("UnsupportedModelError.Model = %q, want %q", unsupported.Model, wantModel)
			}
			if len(backend.requests) != 0 {
				t.Errorf("backend received %d requests, want 0", len(backend.requests))
			}
		})
	}
}

func TestCreatorCreateErrors(t *testing.T) {
	ctx := context.Background()
	ref := model.NewVertex("gemini-2.0-flash-001", testProject, testLocation)
	remoteErr := errors.New("quota exceeded")

	tests := map[string]struct {
		messages []*types.Message
		opts     []caching.CreateOption
		backend  *recordingBackend
		wantErr  error
		wantSent int
	}{
		"misplaced system message": {
			messages: []*types.Message{
				types.NewHumanMessage(types.TextBlock("Hi")),
				types.NewSystemMessage("You are helpful"),
			},
			backend: &recordingBackend{name: testName},
			wantErr: history.ErrSystemMessagePosition,
		},
		"unsupported tool": {
			messages: helpfulHistory(),
			opts:     []caching.CreateOption{caching.WithTools(42)},
			backend:  &recordingBackend{name: testName},
			wantErr:  tool.ErrUnsupportedTool,
		},
		"invalid tool config": {
			messages: helpfulHistory(),
			opts: []caching.CreateOption{caching.WithToolConfig(&types.ToolConfig{
				FunctionCallingConfig: &types.FunctionCallingConfig{Mode: "sometimes"},
			})},
			backend: &recordingBackend{name: testName},
			wantErr: tool.ErrInvalidToolConfig,
		},
		"remote failure": {
			messages: helpfulHistory(),
			backend:  &recordingBackend{err: remoteErr},
			wantErr:  remoteErr,
			wantSent: 1,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			creator, err := caching.NewCreator(tt.backend)
			if err != nil {
				t.Fatalf("NewCreator() error = %v", err)
			}

			got, err := creator.Create(ctx, ref, tt.messages, tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if got != "" {
				t.Errorf("Create() = %q, want empty name", got)
			}
			if len(tt.backend.requests) != tt.wantSent {
				t.Errorf("backend received %d requests, want %d", len(tt.backend.requests), tt.wantSent)
			}
		})
	}
}

func TestCreatorCreateRemoteErrorUnchanged(t *testing.T) {
	remoteErr := genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}
	backend := &recordingBackend{err: remoteErr}

	_, err := caching.CreateContextCache(context.Background(), backend,
		model.NewVertex("gemini-1.5-flash-002", testProject, testLocation), helpfulHistory())

	apiErr, ok := err.(genai.APIError)
	if !ok {
		t.Fatalf("CreateContextCache() error = %#v, want the unwrapped backend error", err)
	}
	if diff := cmp.Diff(remoteErr, apiErr); diff != "" {
		t.Errorf("error mismatch (-want +got):\n%s", diff)
	}
}

func TestCreatorEmptyToolsOption(t *testing.T) {
	backend := &recordingBackend{name: testName}

	if _, err := caching.CreateContextCache(context.Background(), backend,
		model.NewVertex("gemini-1.5-pro-002", testProject, testLocation), helpfulHistory(),
		caching.WithTools(),
	); err != nil {
		t.Fatalf("CreateContextCache() error = %v", err)
	}

	want := []*genai.Tool{{}}
	if diff := cmp.Diff(want, backend.requests[0].Tools); diff != "" {
		t.Errorf("tools mismatch (-want +got):\n%s", diff)
	}
}

func TestNewCreatorNilBackend(t *testing.T) {
	if _, err := caching.NewCreator(nil); err == nil {
		t.Fatal("NewCreator(nil) error = nil, want error")
	}
}

func TestCreatorWithInMemoryBackend(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	backend := caching.NewInMemoryBackend(testProject, testLocation, caching.WithClock(func() time.Time { return now }))

	creator, err := caching.NewCreator(backend)
	if err != nil {
		t.Fatalf("NewCreator() error = %v", err)
	}

	name, err := creator.Create(ctx, model.NewVertex("gemini-1.5-pro-001", testProject, testLocation), helpfulHistory(),
		caching.WithTTL(30*time.Minute),
	)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	cc, err := backend.Get(ctx, name)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if want := now.Add(30 * time.Minute); !cc.ExpireTime.Equal(want) {
		t.Errorf("ExpireTime = %v, want %v", cc.ExpireTime, want)
	}

	req, err := backend.Request(name)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	want := &genai.Content{Parts: []*genai.Part{{Text: "You are helpful"}}}
	if diff := cmp.Diff(want, req.SystemInstruction); diff != "" {
		t.Errorf("system instruction mismatch (-want +got):\n%s", diff)
	}
}
