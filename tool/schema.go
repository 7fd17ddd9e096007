// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-json-experiment/json"
	"github.com/invopop/jsonschema"
	"google.golang.org/genai"

	"github.com/go-a2a/contextcache/types"
)

// reflector reflects Go types into self-contained JSON schemas without $ref indirections.
var reflector = &jsonschema.Reflector{
	Anonymous:      true,
	DoNotReference: true,
	ExpandedStruct: true,
}

// ReflectSchemaFromType returns the JSON schema of t.
func ReflectSchemaFromType(t reflect.Type) *jsonschema.Schema {
	return reflector.ReflectFromType(t)
}

// ToSnakeCase converts a string into snake_case.
//
// Handles lowerCamelCase, UpperCamelCase, space-separated case, acronyms
// (e.g., "REST API") and consecutive uppercase letters correctly.
//
//	ToSnakeCase("camelCase") -> "camel_case"
//	ToSnakeCase("UpperCamelCase") -> "upper_camel_case"
//	ToSnakeCase("REST API") -> "rest_api"
func ToSnakeCase(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) + len(text)/2)

	runes := []rune(text)
	lastWasUnderscore := false

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			if result.Len() > 0 && !lastWasUnderscore {
				result.WriteByte('_')
				lastWasUnderscore = true
			}
			continue
		}

		if unicode.IsUpper(r) {
			needsUnderscore := false
			if i > 0 {
				prev := runes[i-1]
				switch {
				case unicode.IsLower(prev) || unicode.IsDigit(prev):
					// camelCase
					needsUnderscore = true
				case unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
					// XMLHttp
					needsUnderscore = true
				}
			}
			if needsUnderscore && result.Len() > 0 && !lastWasUnderscore {
				result.WriteByte('_')
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
		lastWasUnderscore = false
	}

	return strings.Trim(result.String(), "_")
}

// SchemaFromMap decodes a JSON schema held in a generic map, e.g. the "parameters" of an
// OpenAI style function definition.
//
// Type lists such as ["string", "null"] and the OpenAPI "nullable" keyword are rewritten into
// an anyOf with a null branch first.
func SchemaFromMap(m map[string]any) (*jsonschema.Schema, error) {
	data, err := json.Marshal(normalizeSchemaMap(m), json.Deterministic(true))
	if err != nil {
		return nil, fmt.Errorf("marshal schema map: %w", err)
	}
	schema := new(jsonschema.Schema)
	if err := json.Unmarshal(data, schema); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	return schema, nil
}

// normalizeSchemaMap returns a copy of m where nullable forms are expressed with anyOf.
func normalizeSchemaMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeSchemaValue(k, v)
	}

	nullable, _ := out["nullable"].(bool)
	delete(out, "nullable")

	if list, ok := out["type"].([]any); ok {
		delete(out, "type")
		var branches []any
		for _, t := range list {
			if t == "null" {
				nullable = true
				continue
			}
			branches = append(branches, map[string]any{"type": t})
		}
		switch len(branches) {
		case 0:
			out["type"] = "object"
		case 1:
			out["type"] = branches[0].(map[string]any)["type"]
		default:
			out["anyOf"] = branches
		}
	}

	if nullable {
		return map[string]any{
			"anyOf": []any{out, map[string]any{"type": "null"}},
		}
	}
	return out
}

func normalizeSchemaValue(key string, v any) any {
	switch key {
	case "properties", "$defs", "definitions":
		props, ok := v.(map[string]any)
		if !ok {
			return v
		}
		out := make(map[string]any, len(props))
		for name, prop := range props {
			if sub, ok := prop.(map[string]any); ok {
				out[name] = normalizeSchemaMap(sub)
			} else {
				out[name] = prop
			}
		}
		return out

	case "items", "additionalProperties":
		if sub, ok := v.(map[string]any); ok {
			return normalizeSchemaMap(sub)
		}

	case "anyOf", "oneOf", "allOf":
		list, ok := v.([]any)
		if !ok {
			return v
		}
		out := make([]any, len(list))
		for i, item := range list {
			if sub, ok := item.(map[string]any); ok {
				out[i] = normalizeSchemaMap(sub)
			} else {
				out[i] = item
			}
		}
		return out
	}
	return v
}

// ToGeminiSchema converts a JSON schema to a Gemini Schema object.
//
// Unsupported keywords are dropped, formats are restricted to the ones Gemini accepts and an
// anyOf with a single non-null branch collapses into a nullable schema.
func ToGeminiSchema(schema *jsonschema.Schema) (*genai.Schema, error) {
	if schema == nil {
		return nil, nil
	}
	return convertSchema(schema, 0)
}

// maxSchemaDepth guards against self-referencing schemas.
const maxSchemaDepth = 32

func convertSchema(schema *jsonschema.Schema, depth int) (*genai.Schema, error) {
	if schema == nil {
		return nil, nil
	}
	if depth > maxSchemaDepth {
		return nil, fmt.Errorf("schema nesting exceeds %d levels", maxSchemaDepth)
	}
	if schema.Ref != "" {
		return nil, fmt.Errorf("schema references are not supported: %s", schema.Ref)
	}

	// anyOf [X, null] -> nullable X
	if len(schema.AnyOf) > 0 || len(schema.OneOf) > 0 {
		branches := schema.AnyOf
		if len(branches) == 0 {
			branches = schema.OneOf
		}
		var nonNull []*jsonschema.Schema
		nullable := false
		for _, b := range branches {
			if b != nil && b.Type == "null" {
				nullable = true
				continue
			}
			nonNull = append(nonNull, b)
		}

		if len(nonNull) == 1 {
			merged := *nonNull[0]
			if merged.Description == "" {
				merged.Description = schema.Description
			}
			if merged.Title == "" {
				merged.Title = schema.Title
			}
			result, err := convertSchema(&merged, depth+1)
			if err != nil {
				return nil, err
			}
			if nullable {
				result.Nullable = types.ToPtr(true)
			}
			return result, nil
		}

		result := &genai.Schema{Description: schema.Description, Title: schema.Title}
		for i, b := range nonNull {
			converted, err := convertSchema(b, depth+1)
			if err != nil {
				return nil, fmt.Errorf("convert anyOf schema[%d]: %w", i, err)
			}
			result.AnyOf = append(result.AnyOf, converted)
		}
		if nullable {
			result.Nullable = types.ToPtr(true)
		}
		return result, nil
	}

	result := &genai.Schema{
		Type:        toGeminiType(schema),
		Title:       schema.Title,
		Description: schema.Description,
		Pattern:     schema.Pattern,
		Required:    schema.Required,
		Default:     schema.Default,
	}

	if format := sanitizeFormat(schema.Type, schema.Format); format != "" {
		result.Format = format
	}

	// Gemini only accepts string enums
	for _, item := range schema.Enum {
		switch v := item.(type) {
		case string:
			result.Enum = append(result.Enum, v)
		case nil:
			result.Nullable = types.ToPtr(true)
		default:
			return nil, fmt.Errorf("enum value %v of type %T is not a string", item, item)
		}
	}

	if len(schema.Examples) > 0 {
		result.Example = schema.Examples[0]
	}

	if nullable, ok := schema.Extras["nullable"].(bool); ok {
		result.Nullable = &nullable
	}

	// numeric constraints
	if v, err := schema.Minimum.Float64(); err == nil && schema.Minimum != "" {
		result.Minimum = &v
	}
	if v, err := schema.Maximum.Float64(); err == nil && schema.Maximum != "" {
		result.Maximum = &v
	}

	result.MinLength = toInt64Ptr(schema.MinLength)
	result.MaxLength = toInt64Ptr(schema.MaxLength)
	result.MinItems = toInt64Ptr(schema.MinItems)
	result.MaxItems = toInt64Ptr(schema.MaxItems)
	result.MinProperties = toInt64Ptr(schema.MinProperties)
	result.MaxProperties = toInt64Ptr(schema.MaxProperties)

	items, err := convertSchema(schema.Items, depth+1)
	if err != nil {
		return nil, fmt.Errorf("convert items schema: %w", err)
	}
	result.Items = items

	if schema.Properties != nil && schema.Properties.Len() > 0 {
		result.Properties = make(map[string]*genai.Schema, schema.Properties.Len())
		for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
			converted, err := convertSchema(pair.Value, depth+1)
			if err != nil {
				return nil, fmt.Errorf("convert property %s schema: %w", pair.Key, err)
			}
			result.Properties[pair.Key] = converted
			result.PropertyOrdering = append(result.PropertyOrdering, pair.Key)
		}
	}

	return result, nil
}

// toGeminiType maps a JSON schema type to a Gemini type, defaulting to object for schemas
// without a type or defining fields.
func toGeminiType(schema *jsonschema.Schema) genai.Type {
	switch schema.Type {
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	case "":
		if len(schema.Enum) > 0 {
			return genai.TypeString
		}
		if schema.Items != nil {
			return genai.TypeArray
		}
		return genai.TypeObject
	default:
		return genai.TypeObject
	}
}

// sanitizeFormat keeps only the formats Gemini supports for typ.
func sanitizeFormat(typ, format string) string {
	switch typ {
	case "integer", "number":
		if format == "int32" || format == "int64" {
			return format
		}
	case "string":
		if format == "date-time" || format == "enum" {
			return format
		}
	}
	return ""
}

func toInt64Ptr(v *uint64) *int64 {
	if v == nil {
		return nil
	}
	return types.ToPtr(int64(*v))
}

// ValidateGeminiSchema validates that a schema is compatible with Gemini's requirements.
//
// [Format] runs it on the parameters of every function declaration.
func ValidateGeminiSchema(schema *genai.Schema) error {
	if schema == nil {
		return nil
	}

	switch schema.Type {
	case genai.TypeString:
		if schema.Format != "" && schema.Format != "date-time" && schema.Format != "enum" {
			return fmt.Errorf("invalid format %q for string type, supported formats: date-time, enum", schema.Format)
		}

	case genai.TypeInteger, genai.TypeNumber:
		if schema.Format != "" && schema.Format != "int32" && schema.Format != "int64" {
			return fmt.Errorf("invalid format %q for numeric type, supported formats: int32, int64", schema.Format)
		}

	case genai.TypeArray:
		if schema.Items == nil {
			return fmt.Errorf("array type requires items schema")
		}
		if err := ValidateGeminiSchema(schema.Items); err != nil {
			return fmt.Errorf("invalid items schema: %w", err)
		}

	case genai.TypeObject:
		for propName, propSchema := range schema.Properties {
			if err := ValidateGeminiSchema(propSchema); err != nil {
				return fmt.Errorf("invalid property %s schema: %w", propName, err)
			}
		}
		if len(schema.Properties) > 0 {
			for _, reqField := range schema.Required {
				if _, exists := schema.Properties[reqField]; !exists {
					return fmt.Errorf("required field %q not found in properties", reqField)
				}
			}
		}
	}

	for i, branch := range schema.AnyOf {
		if err := ValidateGeminiSchema(branch); err != nil {
			return fmt.Errorf("invalid anyOf schema[%d]: %w", i, err)
		}
	}

	return nil
}
