// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"google.golang.org/genai"
)

// Tool defines the interface of a callable tool that can be declared to the model.
type Tool interface {
	// Name returns the name of the tool.
	Name() string

	// Description returns the description of the tool.
	Description() string

	// GetDeclaration returns the function declaration of this tool as a [*genai.FunctionDeclaration].
	GetDeclaration() *genai.FunctionDeclaration
}

// FunctionCallingMode controls whether and how the model may call functions.
type FunctionCallingMode string

const (
	// FunctionCallingUnspecified leaves the choice to the service.
	FunctionCallingUnspecified FunctionCallingMode = "MODE_UNSPECIFIED"

	// FunctionCallingAuto lets the model decide between text and a function call.
	FunctionCallingAuto FunctionCallingMode = "AUTO"

	// FunctionCallingAny forces a function call, optionally restricted to AllowedFunctionNames.
	FunctionCallingAny FunctionCallingMode = "ANY"

	// FunctionCallingNone disables function calls.
	FunctionCallingNone FunctionCallingMode = "NONE"
)

// FunctionCallingConfig configures function calling.
type FunctionCallingConfig struct {
	Mode                 FunctionCallingMode `json:"mode,omitempty" yaml:"mode,omitempty" koanf:"mode"`
	AllowedFunctionNames []string            `json:"allowed_function_names,omitempty" yaml:"allowed_function_names,omitempty" koanf:"allowed_function_names"`
}

// RetrievalConfig carries the user context used by retrieval tools.
type RetrievalConfig struct {
	Latitude     *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty" koanf:"latitude"`
	Longitude    *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty" koanf:"longitude"`
	LanguageCode string   `json:"language_code,omitempty" yaml:"language_code,omitempty" koanf:"language_code"`
}

// ToolConfig is shared by every tool bound to a cache.
type ToolConfig struct {
	FunctionCallingConfig *FunctionCallingConfig `json:"function_calling_config,omitempty" yaml:"function_calling_config,omitempty" koanf:"function_calling_config"`
	RetrievalConfig       *RetrievalConfig       `json:"retrieval_config,omitempty" yaml:"retrieval_config,omitempty" koanf:"retrieval_config"`
}
