// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model_test

import (
	"testing"

	"github.com/go-a2a/contextcache/model"
	"github.com/go-a2a/contextcache/types"
)

func TestFormatName(t *testing.T) {
	tests := map[string]struct {
		model string
		want  string
	}{
		"short name": {
			model: "gemini-2.0-flash-001",
			want:  "projects/p/locations/us-central1/publishers/google/models/gemini-2.0-flash-001",
		},
		"models prefix": {
			model: "models/gemini-1.5-pro-001",
			want:  "projects/p/locations/us-central1/publishers/google/models/gemini-1.5-pro-001",
		},
		"publisher path": {
			model: "publishers/google/models/gemini-1.5-pro-001",
			want:  "projects/p/locations/us-central1/publishers/google/models/gemini-1.5-pro-001",
		},
		"qualified": {
			model: "projects/other/locations/europe-west4/publishers/google/models/gemini-1.5-pro-001",
			want:  "projects/other/locations/europe-west4/publishers/google/models/gemini-1.5-pro-001",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := model.FormatName(tt.model, "p", "us-central1"); got != tt.want {
				t.Errorf("FormatName(%q) = %q, want %q", tt.model, got, tt.want)
			}
		})
	}
}

func TestParent(t *testing.T) {
	if got, want := model.Parent("p", "us-central1"), "projects/p/locations/us-central1"; got != want {
		t.Errorf("Parent() = %q, want %q", got, want)
	}
}

func TestNewVertex(t *testing.T) {
	v := model.NewVertex("gemini-1.5-pro-001", "p", "l")
	if got := v.Family(); got != types.ModelFamilyGeminiAdvanced {
		t.Errorf("Family() = %q, want %q", got, types.ModelFamilyGeminiAdvanced)
	}
	if got, want := v.QualifiedName(), "projects/p/locations/l/publishers/google/models/gemini-1.5-pro-001"; got != want {
		t.Errorf("QualifiedName() = %q, want %q", got, want)
	}

	forced := model.NewVertex("gemini-1.5-pro-001", "p", "l", model.WithFamily(types.ModelFamilyGemini))
	if got := forced.Family(); got != types.ModelFamilyGemini {
		t.Errorf("Family() with WithFamily = %q, want %q", got, types.ModelFamilyGemini)
	}

	registry := model.NewFamilyRegistry(8)
	registry.MustRegister(types.ModelFamilyGeminiAdvanced, `^tuned-`)
	tuned := model.NewVertex("tuned-support-bot", "p", "l", model.WithFamilyRegistry(registry))
	if got := tuned.Family(); got != types.ModelFamilyGeminiAdvanced {
		t.Errorf("Family() with WithFamilyRegistry = %q, want %q", got, types.ModelFamilyGeminiAdvanced)
	}
}
