// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"github.com/go-a2a/contextcache/types"
)

// Vertex is a Google model served from a Vertex AI project and location.
type Vertex struct {
	name     string
	project  string
	location string
	family   types.ModelFamily
}

var _ types.ModelReference = (*Vertex)(nil)

// VertexOption configures a [Vertex].
type VertexOption func(*Vertex)

// WithFamily overrides the family resolved from the model name.
func WithFamily(family types.ModelFamily) VertexOption {
	return func(v *Vertex) {
		v.family = family
	}
}

// WithFamilyRegistry resolves the family with registry instead of the default one.
func WithFamilyRegistry(registry *FamilyRegistry) VertexOption {
	return func(v *Vertex) {
		v.family = registry.Resolve(v.name)
	}
}

// NewVertex returns a reference to modelName in project and location.
func NewVertex(modelName, project, location string, opts ...VertexOption) *Vertex {
	v := &Vertex{
		name:     modelName,
		project:  project,
		location: location,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.family == "" {
		v.family = ResolveFamily(modelName)
	}
	return v
}

// ModelName implements [types.ModelReference].
func (v *Vertex) ModelName() string { return v.name }

// Project implements [types.ModelReference].
func (v *Vertex) Project() string { return v.project }

// Location implements [types.ModelReference].
func (v *Vertex) Location() string { return v.location }

// Family implements [types.ModelReference].
func (v *Vertex) Family() types.ModelFamily { return v.family }

// QualifiedName returns the fully qualified resource name of the model.
func (v *Vertex) QualifiedName() string {
	return FormatName(v.name, v.project, v.location)
}
