// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package aiconv_test

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/go-a2a/contextcache/internal/aiconv"
	"github.com/go-a2a/contextcache/types"
)

func TestToAIPlatformContent(t *testing.T) {
	t.Run("nil handling", func(t *testing.T) {
		got, err := aiconv.ToAIPlatformContent(nil)
		if err != nil || got != nil {
			t.Errorf("ToAIPlatformContent(nil) = %v, %v; want nil, nil", got, err)
		}
	})

	t.Run("parts", func(t *testing.T) {
		content := &genai.Content{
			Role: genai.RoleModel,
			Parts: []*genai.Part{
				{Text: "Hello, world!"},
				{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("fake-image-data")}},
				{FileData: &genai.FileData{MIMEType: "application/pdf", FileURI: "gs://bucket/doc.pdf"}},
				genai.NewPartFromFunctionCall("get_weather", map[string]any{"city": "Tokyo"}),
			},
		}

		got, err := aiconv.ToAIPlatformContent(content)
		if err != nil {
			t.Fatalf("ToAIPlatformContent() error = %v", err)
		}

		args, _ := structpb.NewStruct(map[string]any{"city": "Tokyo"})
		want := &aiplatformpb.Content{
			Role: "model",
			Parts: []*aiplatformpb.Part{
				{Data: &aiplatformpb.Part_Text{Text: "Hello, world!"}},
				{Data: &aiplatformpb.Part_InlineData{InlineData: &aiplatformpb.Blob{MimeType: "image/png", Data: []byte("fake-image-data")}}},
				{Data: &aiplatformpb.Part_FileData{FileData: &aiplatformpb.FileData{MimeType: "application/pdf", FileUri: "gs://bucket/doc.pdf"}}},
				{Data: &aiplatformpb.Part_FunctionCall{FunctionCall: &aiplatformpb.FunctionCall{Name: "get_weather", Args: args}}},
			},
		}
		if diff := cmp.Diff(want, got, protocmp.Transform()); diff != "" {
			t.Errorf("ToAIPlatformContent() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty part", func(t *testing.T) {
		_, err := aiconv.ToAIPlatformContent(&genai.Content{Parts: []*genai.Part{{}}})
		if err == nil {
			t.Fatal("expected error for empty part")
		}
	})

	t.Run("unencodable args", func(t *testing.T) {
		content := genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromFunctionCall("f", map[string]any{"ch": make(chan int)}),
		}, genai.RoleModel)
		if _, err := aiconv.ToAIPlatformContent(content); err == nil {
			t.Fatal("expected error for unencodable args")
		}
	})
}

func TestToAIPlatformSchema(t *testing.T) {
	schema := &genai.Schema{
		Type:        genai.TypeObject,
		Description: "weather query",
		Properties: map[string]*genai.Schema{
			"city": {Type: genai.TypeString, Nullable: types.ToPtr(true)},
			"days": {Type: genai.TypeInteger, Minimum: types.ToPtr(1.0), Maximum: types.ToPtr(7.0)},
			"tags": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, MaxItems: types.ToPtr[int64](3)},
		},
		PropertyOrdering: []string{"city", "days", "tags"},
		Required:         []string{"city"},
	}

	got, err := aiconv.ToAIPlatformSchema(schema)
	if err != nil {
		t.Fatalf("ToAIPlatformSchema() error = %v", err)
	}

	want := &aiplatformpb.Schema{
		Type:        aiplatformpb.Type_OBJECT,
		Description: "weather query",
		Properties: map[string]*aiplatformpb.Schema{
			"city": {Type: aiplatformpb.Type_STRING, Nullable: true},
			"days": {Type: aiplatformpb.Type_INTEGER, Minimum: 1, Maximum: 7},
			"tags": {Type: aiplatformpb.Type_ARRAY, Items: &aiplatformpb.Schema{Type: aiplatformpb.Type_STRING}, MaxItems: 3},
		},
		PropertyOrdering: []string{"city", "days", "tags"},
		Required:         []string{"city"},
	}
	if diff := cmp.Diff(want, got, protocmp.Transform()); diff != "" {
		t.Errorf("ToAIPlatformSchema() mismatch (-want +got):\n%s", diff)
	}

	if _, err := aiconv.ToAIPlatformSchema(&genai.Schema{Type: "TUPLE"}); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestToAIPlatformToolConfig(t *testing.T) {
	tests := map[string]struct {
		in      *genai.ToolConfig
		want    *aiplatformpb.ToolConfig
		wantErr bool
	}{
		"nil": {},
		"any with names": {
			in: &genai.ToolConfig{
				FunctionCallingConfig: &genai.FunctionCallingConfig{
					Mode:                 genai.FunctionCallingConfigModeAny,
					AllowedFunctionNames: []string{"get_weather"},
				},
			},
			want: &aiplatformpb.ToolConfig{
				FunctionCallingConfig: &aiplatformpb.FunctionCallingConfig{
					Mode:                 aiplatformpb.FunctionCallingConfig_ANY,
					AllowedFunctionNames: []string{"get_weather"},
				},
			},
		},
		"none": {
			in: &genai.ToolConfig{
				FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeNone},
			},
			want: &aiplatformpb.ToolConfig{
				FunctionCallingConfig: &aiplatformpb.FunctionCallingConfig{Mode: aiplatformpb.FunctionCallingConfig_NONE},
			},
		},
		"unknown mode": {
			in: &genai.ToolConfig{
				FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: "SOMETIMES"},
			},
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := aiconv.ToAIPlatformToolConfig(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToAIPlatformToolConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got, protocmp.Transform()); diff != "" {
				t.Errorf("ToAIPlatformToolConfig() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToAIPlatformCachedContent(t *testing.T) {
	const model = "projects/p/locations/us-central1/publishers/google/models/gemini-1.5-pro-001"
	expire := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	t.Run("ttl", func(t *testing.T) {
		got, err := aiconv.ToAIPlatformCachedContent(model, &genai.CreateCachedContentConfig{
			TTL:               time.Hour,
			DisplayName:       "docs",
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: "be brief"}}},
			Contents:          []*genai.Content{genai.NewContentFromText("hello", genai.RoleUser)},
		})
		if err != nil {
			t.Fatalf("ToAIPlatformCachedContent() error = %v", err)
		}
		want := &aiplatformpb.CachedContent{
			Model:             model,
			DisplayName:       "docs",
			Expiration:        &aiplatformpb.CachedContent_Ttl{Ttl: durationpb.New(time.Hour)},
			SystemInstruction: &aiplatformpb.Content{Parts: []*aiplatformpb.Part{{Data: &aiplatformpb.Part_Text{Text: "be brief"}}}},
			Contents: []*aiplatformpb.Content{
				{Role: "user", Parts: []*aiplatformpb.Part{{Data: &aiplatformpb.Part_Text{Text: "hello"}}}},
			},
		}
		if diff := cmp.Diff(want, got, protocmp.Transform()); diff != "" {
			t.Errorf("ToAIPlatformCachedContent() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("expire time", func(t *testing.T) {
		got, err := aiconv.ToAIPlatformCachedContent(model, &genai.CreateCachedContentConfig{ExpireTime: expire})
		if err != nil {
			t.Fatalf("ToAIPlatformCachedContent() error = %v", err)
		}
		want := &aiplatformpb.CachedContent{
			Model:      model,
			Expiration: &aiplatformpb.CachedContent_ExpireTime{ExpireTime: timestamppb.New(expire)},
		}
		if diff := cmp.Diff(want, got, protocmp.Transform()); diff != "" {
			t.Errorf("ToAIPlatformCachedContent() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("both expirations", func(t *testing.T) {
		_, err := aiconv.ToAIPlatformCachedContent(model, &genai.CreateCachedContentConfig{TTL: time.Hour, ExpireTime: expire})
		if !errors.Is(err, aiconv.ErrConflictingExpiration) {
			t.Fatalf("ToAIPlatformCachedContent() error = %v, want %v", err, aiconv.ErrConflictingExpiration)
		}
	})
}

func TestFromAIPlatformCachedContent(t *testing.T) {
	if got := aiconv.FromAIPlatformCachedContent(nil); got != nil {
		t.Errorf("FromAIPlatformCachedContent(nil) = %v, want nil", got)
	}

	created := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	expire := created.Add(time.Hour)
	got := aiconv.FromAIPlatformCachedContent(&aiplatformpb.CachedContent{
		Name:        "projects/p/locations/us-central1/cachedContents/123",
		DisplayName: "docs",
		Model:       "gemini-1.5-pro-001",
		CreateTime:  timestamppb.New(created),
		UpdateTime:  timestamppb.New(created),
		Expiration:  &aiplatformpb.CachedContent_ExpireTime{ExpireTime: timestamppb.New(expire)},
		UsageMetadata: &aiplatformpb.CachedContent_UsageMetadata{
			TotalTokenCount: 42,
			TextCount:       100,
		},
	})

	want := &genai.CachedContent{
		Name:        "projects/p/locations/us-central1/cachedContents/123",
		DisplayName: "docs",
		Model:       "gemini-1.5-pro-001",
		CreateTime:  created,
		UpdateTime:  created,
		ExpireTime:  expire,
		UsageMetadata: &genai.CachedContentUsageMetadata{
			TotalTokenCount: 42,
			TextCount:       100,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromAIPlatformCachedContent() mismatch (-want +got):\n%s", diff)
	}
}
