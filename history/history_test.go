// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package history_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"

	"github.com/go-a2a/contextcache/history"
	"github.com/go-a2a/contextcache/media"
	"github.com/go-a2a/contextcache/types"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		messages   []*types.Message
		wantSystem *genai.Content
		want       []*genai.Content
	}{
		"empty": {},
		"system only": {
			messages:   []*types.Message{types.NewSystemMessage("You are helpful")},
			wantSystem: &genai.Content{Parts: []*genai.Part{{Text: "You are helpful"}}},
		},
		"human and ai": {
			messages: []*types.Message{
				types.NewSystemMessage("You are helpful"),
				types.NewHumanMessage(types.TextBlock("Hi")),
				types.NewAIMessage("Hello!"),
			},
			wantSystem: &genai.Content{Parts: []*genai.Part{{Text: "You are helpful"}}},
			want: []*genai.Content{
				{Role: genai.RoleUser, Parts: []*genai.Part{{Text: "Hi"}}},
				{Role: genai.RoleModel, Parts: []*genai.Part{{Text: "Hello!"}}},
			},
		},
		"tool calls and merged responses": {
			messages: []*types.Message{
				types.NewHumanMessage(types.TextBlock("Weather in Paris and Rome?")),
				types.NewAIMessage("",
					types.ToolCall{ID: "1", Name: "get_weather", Args: map[string]any{"city": "Paris"}},
					types.ToolCall{ID: "2", Name: "get_weather", Args: map[string]any{"city": "Rome"}},
				),
				types.NewToolMessage("1", "", `{"temperature": 21}`),
				types.NewToolMessage("2", "get_weather", "sunny"),
			},
			want: []*genai.Content{
				{Role: genai.RoleUser, Parts: []*genai.Part{{Text: "Weather in Paris and Rome?"}}},
				{Role: genai.RoleModel, Parts: []*genai.Part{
					{FunctionCall: &genai.FunctionCall{Name: "get_weather", Args: map[string]any{"city": "Paris"}}},
					{FunctionCall: &genai.FunctionCall{Name: "get_weather", Args: map[string]any{"city": "Rome"}}},
				}},
				{Role: history.RoleFunction, Parts: []*genai.Part{
					{FunctionResponse: &genai.FunctionResponse{Name: "get_weather", Response: map[string]any{"temperature": float64(21)}}},
					{FunctionResponse: &genai.FunctionResponse{Name: "get_weather", Response: map[string]any{"content": "sunny"}}},
				}},
			},
		},
		"inline image and media": {
			messages: []*types.Message{
				types.NewHumanMessage(
					types.TextBlock("Describe"),
					types.ImageURLBlock("data:image/png;base64,iVBORw0KGgo="),
					types.ContentBlock{Type: types.ContentBlockMedia, MIMEType: "video/mp4", FileURI: "gs://bucket/clip.mp4"},
					types.ContentBlock{Type: types.ContentBlockMedia, MIMEType: "audio/wav", Data: []byte("RIFF")},
				),
			},
			want: []*genai.Content{
				{Role: genai.RoleUser, Parts: []*genai.Part{
					{Text: "Describe"},
					{InlineData: &genai.Blob{Data: []byte("\x89PNG\r\n\x1a\n"), MIMEType: "image/png"}},
					{FileData: &genai.FileData{FileURI: "gs://bucket/clip.mp4", MIMEType: "video/mp4"}},
					{InlineData: &genai.Blob{Data: []byte("RIFF"), MIMEType: "audio/wav"}},
				}},
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			system, contents, err := history.Parse(context.Background(), tt.messages, nil)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if diff := cmp.Diff(tt.wantSystem, system); diff != "" {
				t.Errorf("system instruction mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.want, contents); diff != "" {
				t.Errorf("contents mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := map[string]struct {
		messages []*types.Message
		wantErr  error
	}{
		"system message not first": {
			messages: []*types.Message{
				types.NewHumanMessage(types.TextBlock("Hi")),
				types.NewSystemMessage("You are helpful"),
			},
			wantErr: history.ErrSystemMessagePosition,
		},
		"two system messages": {
			messages: []*types.Message{
				types.NewSystemMessage("You are helpful"),
				types.NewSystemMessage("You are terse"),
			},
			wantErr: history.ErrSystemMessagePosition,
		},
		"unknown role": {
			messages: []*types.Message{{Role: "narrator"}},
			wantErr:  history.ErrUnknownRole,
		},
		"unknown block": {
			messages: []*types.Message{{Role: types.RoleHuman, Content: []types.ContentBlock{{Type: "audio_url"}}}},
			wantErr:  history.ErrUnsupportedContent,
		},
		"media without mime type": {
			messages: []*types.Message{types.NewHumanMessage(types.ContentBlock{Type: types.ContentBlockMedia, Data: []byte("x")})},
			wantErr:  history.ErrUnsupportedContent,
		},
		"unsupported image url": {
			messages: []*types.Message{types.NewHumanMessage(types.ImageURLBlock("ftp://host/cat.png"))},
			wantErr:  media.ErrUnsupportedURL,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := history.Parse(context.Background(), tt.messages, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("tool message without name", func(t *testing.T) {
		_, _, err := history.Parse(context.Background(), []*types.Message{types.NewToolMessage("unknown", "", "42")}, nil)
		if err == nil {
			t.Error("Parse() error = nil, want error")
		}
	})
}

// stubLoader returns a fixed part for every url.
type stubLoader struct {
	urls []string
}

func (l *stubLoader) Load(_ context.Context, url, mimeType string) (*genai.Part, error) {
	l.urls = append(l.urls, url)
	return genai.NewPartFromURI(url, "image/jpeg"), nil
}

func TestParseCustomLoader(t *testing.T) {
	loader := &stubLoader{}
	messages := []*types.Message{types.NewHumanMessage(types.ImageURLBlock("https://example.com/cat.jpg"))}

	_, contents, err := history.Parse(context.Background(), messages, loader)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if diff := cmp.Diff([]string{"https://example.com/cat.jpg"}, loader.urls); diff != "" {
		t.Errorf("loaded urls mismatch (-want +got):\n%s", diff)
	}
	want := []*genai.Content{{Role: genai.RoleUser, Parts: []*genai.Part{
		{FileData: &genai.FileData{FileURI: "https://example.com/cat.jpg", MIMEType: "image/jpeg"}},
	}}}
	if diff := cmp.Diff(want, contents); diff != "" {
		t.Errorf("contents mismatch (-want +got):\n%s", diff)
	}
}
