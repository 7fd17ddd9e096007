// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/tiendc/go-deepcopy"
	"google.golang.org/genai"

	"github.com/go-a2a/contextcache/types"
)

var (
	// ErrUnsupportedTool is returned for tool definitions of an unknown shape.
	ErrUnsupportedTool = errors.New("unsupported tool definition")

	// ErrInvalidToolConfig is returned for tool configs that cannot be sent to the model.
	ErrInvalidToolConfig = errors.New("invalid tool config")
)

// Describer is implemented by struct tool definitions that provide their own description.
type Describer interface {
	Description() string
}

// Format aggregates tool definitions of any accepted shape into a single [genai.Tool].
//
// Accepted shapes:
//   - *genai.Tool and genai.Tool: function declarations and built-in tools are merged
//   - *genai.FunctionDeclaration
//   - [types.Tool], such as [FunctionTool]
//   - map[string]any: an OpenAI style {"type": "function", "function": {...}} definition or a
//     bare {"name", "description", "parameters"} declaration
//   - *jsonschema.Schema with a title, which names the function
//   - any other struct or pointer to struct, reflected into a declaration named after the
//     snake_case type name
//
// Inputs are deep copied, so the returned tool shares no memory with them.
func Format(tools ...any) (*genai.Tool, error) {
	result := &genai.Tool{}

	for i, t := range tools {
		switch v := t.(type) {
		case nil:
			return nil, fmt.Errorf("%w: tool %d is nil", ErrUnsupportedTool, i)

		case *genai.Tool:
			if v == nil {
				return nil, fmt.Errorf("%w: tool %d is nil", ErrUnsupportedTool, i)
			}
			if err := mergeTool(result, v); err != nil {
				return nil, fmt.Errorf("tool %d: %w", i, err)
			}

		case genai.Tool:
			if err := mergeTool(result, &v); err != nil {
				return nil, fmt.Errorf("tool %d: %w", i, err)
			}

		case *genai.FunctionDeclaration:
			if err := appendDeclaration(result, v); err != nil {
				return nil, fmt.Errorf("tool %d: %w", i, err)
			}

		case types.Tool:
			decl := v.GetDeclaration()
			if decl == nil {
				return nil, fmt.Errorf("%w: tool %q has no declaration", ErrUnsupportedTool, v.Name())
			}
			if err := appendDeclaration(result, decl); err != nil {
				return nil, fmt.Errorf("tool %d: %w", i, err)
			}

		case map[string]any:
			decl, err := declarationFromMap(v)
			if err == nil {
				err = validateDeclaration(decl)
			}
			if err != nil {
				return nil, fmt.Errorf("tool %d: %w", i, err)
			}
			result.FunctionDeclarations = append(result.FunctionDeclarations, decl)

		case *jsonschema.Schema:
			decl, err := declarationFromSchema(v)
			if err == nil {
				err = validateDeclaration(decl)
			}
			if err != nil {
				return nil, fmt.Errorf("tool %d: %w", i, err)
			}
			result.FunctionDeclarations = append(result.FunctionDeclarations, decl)

		default:
			decl, err := declarationFromStruct(t)
			if err == nil {
				err = validateDeclaration(decl)
			}
			if err != nil {
				return nil, fmt.Errorf("tool %d: %w", i, err)
			}
			result.FunctionDeclarations = append(result.FunctionDeclarations, decl)
		}
	}

	return result, nil
}

// mergeTool copies the declarations and built-in tools of src into dst.
func mergeTool(dst, src *genai.Tool) error {
	var clone genai.Tool
	if err := deepcopy.Copy(&clone, src); err != nil {
		return fmt.Errorf("copy tool: %w", err)
	}

	dst.FunctionDeclarations = append(dst.FunctionDeclarations, clone.FunctionDeclarations...)
	if clone.Retrieval != nil {
		dst.Retrieval = clone.Retrieval
	}
	if clone.GoogleSearch != nil {
		dst.GoogleSearch = clone.GoogleSearch
	}
	if clone.GoogleSearchRetrieval != nil {
		dst.GoogleSearchRetrieval = clone.GoogleSearchRetrieval
	}
	if clone.EnterpriseWebSearch != nil {
		dst.EnterpriseWebSearch = clone.EnterpriseWebSearch
	}
	if clone.GoogleMaps != nil {
		dst.GoogleMaps = clone.GoogleMaps
	}
	if clone.URLContext != nil {
		dst.URLContext = clone.URLContext
	}
	if clone.CodeExecution != nil {
		dst.CodeExecution = clone.CodeExecution
	}
	return nil
}

func appendDeclaration(dst *genai.Tool, decl *genai.FunctionDeclaration) error {
	if decl == nil {
		return fmt.Errorf("%w: nil function declaration", ErrUnsupportedTool)
	}
	if err := validateDeclaration(decl); err != nil {
		return err
	}
	var clone genai.FunctionDeclaration
	if err := deepcopy.Copy(&clone, decl); err != nil {
		return fmt.Errorf("copy function declaration %s: %w", decl.Name, err)
	}
	dst.FunctionDeclarations = append(dst.FunctionDeclarations, &clone)
	return nil
}

// validateDeclaration reports parameters Gemini would reject.
func validateDeclaration(decl *genai.FunctionDeclaration) error {
	if err := ValidateGeminiSchema(decl.Parameters); err != nil {
		return fmt.Errorf("%w: parameters of %s: %w", ErrUnsupportedTool, decl.Name, err)
	}
	return nil
}

// declarationFromMap converts an OpenAI style or bare function definition.
func declarationFromMap(m map[string]any) (*genai.FunctionDeclaration, error) {
	if typ, ok := m["type"].(string); ok && typ == "function" {
		fn, ok := m["function"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: function definition has no \"function\" object", ErrUnsupportedTool)
		}
		m = fn
	}

	name, _ := m["name"].(string)
	if name == "" {
		return nil, fmt.Errorf("%w: function definition has no name", ErrUnsupportedTool)
	}
	description, _ := m["description"].(string)

	decl := &genai.FunctionDeclaration{
		Name:        name,
		Description: description,
	}

	if raw, ok := m["parameters"]; ok && raw != nil {
		params, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: parameters of %s must be an object, got %T", ErrUnsupportedTool, name, raw)
		}
		schema, err := SchemaFromMap(params)
		if err != nil {
			return nil, fmt.Errorf("%w: parameters of %s: %w", ErrUnsupportedTool, name, err)
		}
		converted, err := ToGeminiSchema(schema)
		if err != nil {
			return nil, fmt.Errorf("%w: parameters of %s: %w", ErrUnsupportedTool, name, err)
		}
		decl.Parameters = converted
	}

	return decl, nil
}

// declarationFromSchema converts a titled JSON schema describing the function parameters.
func declarationFromSchema(schema *jsonschema.Schema) (*genai.FunctionDeclaration, error) {
	if schema == nil || schema.Title == "" {
		return nil, fmt.Errorf("%w: schema tools need a title", ErrUnsupportedTool)
	}

	params, err := ToGeminiSchema(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: parameters of %s: %w", ErrUnsupportedTool, schema.Title, err)
	}
	params.Title = ""
	params.Description = ""

	return &genai.FunctionDeclaration{
		Name:        schema.Title,
		Description: schema.Description,
		Parameters:  params,
	}, nil
}

// declarationFromStruct reflects a struct value into a declaration.
func declarationFromStruct(v any) (*genai.FunctionDeclaration, error) {
	typ := reflect.TypeOf(v)
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct || typ.Name() == "" {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedTool, v)
	}

	schema := ReflectSchemaFromType(typ)
	params, err := ToGeminiSchema(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: parameters of %s: %w", ErrUnsupportedTool, typ.Name(), err)
	}

	description := schema.Description
	if d, ok := v.(Describer); ok {
		description = d.Description()
	}
	params.Description = ""

	return &genai.FunctionDeclaration{
		Name:        ToSnakeCase(typ.Name()),
		Description: description,
		Parameters:  params,
	}, nil
}

// FormatConfig converts cfg into the service representation.
//
// Modes are matched case-insensitively; AllowedFunctionNames requires the ANY mode.
func FormatConfig(cfg *types.ToolConfig) (*genai.ToolConfig, error) {
	if cfg == nil {
		return nil, nil
	}

	result := &genai.ToolConfig{}

	if fcc := cfg.FunctionCallingConfig; fcc != nil {
		mode, err := formatMode(fcc.Mode)
		if err != nil {
			return nil, err
		}
		if len(fcc.AllowedFunctionNames) > 0 && mode != genai.FunctionCallingConfigModeAny {
			return nil, fmt.Errorf("%w: allowed function names require mode %s, got %s",
				ErrInvalidToolConfig, genai.FunctionCallingConfigModeAny, mode)
		}
		result.FunctionCallingConfig = &genai.FunctionCallingConfig{
			Mode:                 mode,
			AllowedFunctionNames: slices.Clone(fcc.AllowedFunctionNames),
		}
	}

	if rc := cfg.RetrievalConfig; rc != nil {
		if (rc.Latitude == nil) != (rc.Longitude == nil) {
			return nil, fmt.Errorf("%w: latitude and longitude must be set together", ErrInvalidToolConfig)
		}
		result.RetrievalConfig = &genai.RetrievalConfig{LanguageCode: rc.LanguageCode}
		if rc.Latitude != nil {
			result.RetrievalConfig.LatLng = &genai.LatLng{
				Latitude:  types.ToPtr(*rc.Latitude),
				Longitude: types.ToPtr(*rc.Longitude),
			}
		}
	}

	return result, nil
}

func formatMode(mode types.FunctionCallingMode) (genai.FunctionCallingConfigMode, error) {
	switch strings.ToUpper(strings.TrimSpace(string(mode))) {
	case "", string(types.FunctionCallingUnspecified):
		return genai.FunctionCallingConfigModeUnspecified, nil
	case string(types.FunctionCallingAuto):
		return genai.FunctionCallingConfigModeAuto, nil
	case string(types.FunctionCallingAny):
		return genai.FunctionCallingConfigModeAny, nil
	case string(types.FunctionCallingNone):
		return genai.FunctionCallingConfigModeNone, nil
	default:
		return "", fmt.Errorf("%w: unknown function calling mode %q", ErrInvalidToolConfig, mode)
	}
}
