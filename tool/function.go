// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/go-json-experiment/json"
	"google.golang.org/genai"

	"github.com/go-a2a/contextcache/types"
)

// Function is a user-defined function taking decoded arguments of type Args.
type Function[Args any] func(ctx context.Context, args Args) (any, error)

// FunctionTool represents a tool that wraps a user-defined function.
//
// The parameters schema of the declaration is reflected from Args, so struct field tags
// (json, jsonschema) drive parameter names, descriptions and required fields.
type FunctionTool[Args any] struct {
	name        string
	description string
	fn          Function[Args]
	declaration *genai.FunctionDeclaration
}

var _ types.Tool = (*FunctionTool[struct{}])(nil)

// NewFunctionTool returns the new FunctionTool with the given name, description and function.
//
// When name is empty, the snake_case name of fn is used.
func NewFunctionTool[Args any](name, description string, fn Function[Args]) (*FunctionTool[Args], error) {
	if fn == nil {
		return nil, fmt.Errorf("function cannot be nil")
	}
	if name == "" {
		funcName := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
		if idx := strings.LastIndex(funcName, "."); idx > -1 {
			funcName = funcName[idx+1:]
		}
		name = ToSnakeCase(funcName)
	}

	params, err := ToGeminiSchema(ReflectSchemaFromType(reflect.TypeFor[Args]()))
	if err != nil {
		return nil, fmt.Errorf("build parameters of %s: %w", name, err)
	}
	if err := ValidateGeminiSchema(params); err != nil {
		return nil, fmt.Errorf("build parameters of %s: %w", name, err)
	}

	return &FunctionTool[Args]{
		name:        name,
		description: description,
		fn:          fn,
		declaration: &genai.FunctionDeclaration{
			Name:        name,
			Description: description,
			Parameters:  params,
		},
	}, nil
}

// Name implements [types.Tool].
func (t *FunctionTool[Args]) Name() string {
	return t.name
}

// Description implements [types.Tool].
func (t *FunctionTool[Args]) Description() string {
	return t.description
}

// GetDeclaration implements [types.Tool].
func (t *FunctionTool[Args]) GetDeclaration() *genai.FunctionDeclaration {
	return t.declaration
}

// Run decodes args into Args and calls the wrapped function.
func (t *FunctionTool[Args]) Run(ctx context.Context, args map[string]any) (any, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("marshal %s arguments: %w", t.name, err)
	}
	var decoded Args
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode %s arguments: %w", t.name, err)
	}
	return t.fn(ctx, decoded)
}
