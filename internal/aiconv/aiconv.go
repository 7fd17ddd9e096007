// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package aiconv

import (
	"errors"
	"fmt"

	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"google.golang.org/genai"
	"google.golang.org/genproto/googleapis/type/latlng"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ErrConflictingExpiration is returned when both an expire time and a TTL are set, which the
// Vertex AI resource cannot encode.
var ErrConflictingExpiration = errors.New("expire time and ttl are mutually exclusive")

// Content Conversions

// ToAIPlatformContent converts genai.Content to aiplatformpb.Content.
// Returns nil if input is nil.
func ToAIPlatformContent(content *genai.Content) (*aiplatformpb.Content, error) {
	if content == nil {
		return nil, nil
	}

	result := &aiplatformpb.Content{
		Role:  content.Role,
		Parts: make([]*aiplatformpb.Part, 0, len(content.Parts)),
	}
	for i, part := range content.Parts {
		p, err := ToAIPlatformPart(part)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		if p != nil {
			result.Parts = append(result.Parts, p)
		}
	}

	return result, nil
}

// ToAIPlatformContents converts a slice of genai.Content to aiplatformpb.Content.
func ToAIPlatformContents(contents []*genai.Content) ([]*aiplatformpb.Content, error) {
	if contents == nil {
		return nil, nil
	}

	result := make([]*aiplatformpb.Content, 0, len(contents))
	for i, content := range contents {
		c, err := ToAIPlatformContent(content)
		if err != nil {
			return nil, fmt.Errorf("content %d: %w", i, err)
		}
		if c != nil {
			result = append(result, c)
		}
	}
	return result, nil
}

// Part Conversions

// ToAIPlatformPart converts genai.Part to aiplatformpb.Part.
// Returns nil if input is nil.
func ToAIPlatformPart(part *genai.Part) (*aiplatformpb.Part, error) {
	if part == nil {
		return nil, nil
	}

	result := &aiplatformpb.Part{}

	switch {
	case part.Text != "":
		result.Data = &aiplatformpb.Part_Text{
			Text: part.Text,
		}

	case part.InlineData != nil:
		result.Data = &aiplatformpb.Part_InlineData{
			InlineData: &aiplatformpb.Blob{
				MimeType: part.InlineData.MIMEType,
				Data:     part.InlineData.Data,
			},
		}

	case part.FileData != nil:
		result.Data = &aiplatformpb.Part_FileData{
			FileData: &aiplatformpb.FileData{
				MimeType: part.FileData.MIMEType,
				FileUri:  part.FileData.FileURI,
			},
		}

	case part.FunctionCall != nil:
		fc, err := ToAIPlatformFunctionCall(part.FunctionCall)
		if err != nil {
			return nil, err
		}
		result.Data = &aiplatformpb.Part_FunctionCall{
			FunctionCall: fc,
		}

	case part.FunctionResponse != nil:
		fr, err := ToAIPlatformFunctionResponse(part.FunctionResponse)
		if err != nil {
			return nil, err
		}
		result.Data = &aiplatformpb.Part_FunctionResponse{
			FunctionResponse: fr,
		}

	default:
		return nil, fmt.Errorf("unsupported genai.Part: %+v", part)
	}

	if vm := part.VideoMetadata; vm != nil {
		meta := &aiplatformpb.VideoMetadata{}
		if vm.StartOffset != 0 {
			meta.StartOffset = durationpb.New(vm.StartOffset)
		}
		if vm.EndOffset != 0 {
			meta.EndOffset = durationpb.New(vm.EndOffset)
		}
		result.Metadata = &aiplatformpb.Part_VideoMetadata{
			VideoMetadata: meta,
		}
	}

	return result, nil
}

// FunctionCall Conversions

// ToAIPlatformFunctionCall converts genai.FunctionCall to aiplatformpb.FunctionCall.
func ToAIPlatformFunctionCall(fc *genai.FunctionCall) (*aiplatformpb.FunctionCall, error) {
	if fc == nil {
		return nil, nil
	}

	var args *structpb.Struct
	if fc.Args != nil {
		var err error
		args, err = structpb.NewStruct(fc.Args)
		if err != nil {
			return nil, fmt.Errorf("convert %s args to structpb.Struct: %w", fc.Name, err)
		}
	}

	return &aiplatformpb.FunctionCall{
		Name: fc.Name,
		Args: args,
	}, nil
}

// ToAIPlatformFunctionResponse converts genai.FunctionResponse to aiplatformpb.FunctionResponse.
func ToAIPlatformFunctionResponse(fr *genai.FunctionResponse) (*aiplatformpb.FunctionResponse, error) {
	if fr == nil {
		return nil, nil
	}

	var response *structpb.Struct
	if fr.Response != nil {
		var err error
		response, err = structpb.NewStruct(fr.Response)
		if err != nil {
			return nil, fmt.Errorf("convert %s response to structpb.Struct: %w", fr.Name, err)
		}
	}

	return &aiplatformpb.FunctionResponse{
		Name:     fr.Name,
		Response: response,
	}, nil
}

// FunctionDeclaration Conversions

// ToAIPlatformFunctionDeclaration converts genai.FunctionDeclaration to aiplatformpb.FunctionDeclaration.
func ToAIPlatformFunctionDeclaration(fd *genai.FunctionDeclaration) (*aiplatformpb.FunctionDeclaration, error) {
	if fd == nil {
		return nil, nil
	}

	params, err := ToAIPlatformSchema(fd.Parameters)
	if err != nil {
		return nil, fmt.Errorf("parameters of %s: %w", fd.Name, err)
	}
	response, err := ToAIPlatformSchema(fd.Response)
	if err != nil {
		return nil, fmt.Errorf("response of %s: %w", fd.Name, err)
	}

	return &aiplatformpb.FunctionDeclaration{
		Name:        fd.Name,
		Description: fd.Description,
		Parameters:  params,
		Response:    response,
	}, nil
}

// Schema Conversions

// ToAIPlatformSchema converts genai.Schema to aiplatformpb.Schema.
// Returns nil if input is nil.
func ToAIPlatformSchema(schema *genai.Schema) (*aiplatformpb.Schema, error) {
	if schema == nil {
		return nil, nil
	}

	typ, err := ToAIPlatformType(schema.Type)
	if err != nil {
		return nil, err
	}
	example, err := toValue(schema.Example)
	if err != nil {
		return nil, fmt.Errorf("example: %w", err)
	}
	def, err := toValue(schema.Default)
	if err != nil {
		return nil, fmt.Errorf("default: %w", err)
	}
	items, err := ToAIPlatformSchema(schema.Items)
	if err != nil {
		return nil, fmt.Errorf("items: %w", err)
	}

	result := &aiplatformpb.Schema{
		Type:             typ,
		Format:           schema.Format,
		Title:            schema.Title,
		Description:      schema.Description,
		Enum:             schema.Enum,
		Example:          example,
		Default:          def,
		Items:            items,
		Required:         schema.Required,
		PropertyOrdering: schema.PropertyOrdering,
		Pattern:          schema.Pattern,
		Nullable:         deref(schema.Nullable, false),
		MinLength:        deref(schema.MinLength, 0),
		MaxLength:        deref(schema.MaxLength, 0),
		MinItems:         deref(schema.MinItems, 0),
		MaxItems:         deref(schema.MaxItems, 0),
		MinProperties:    deref(schema.MinProperties, 0),
		MaxProperties:    deref(schema.MaxProperties, 0),
		Minimum:          deref(schema.Minimum, 0),
		Maximum:          deref(schema.Maximum, 0),
	}

	if len(schema.Properties) > 0 {
		result.Properties = make(map[string]*aiplatformpb.Schema, len(schema.Properties))
		for k, v := range schema.Properties {
			prop, err := ToAIPlatformSchema(v)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", k, err)
			}
			result.Properties[k] = prop
		}
	}

	for i, branch := range schema.AnyOf {
		b, err := ToAIPlatformSchema(branch)
		if err != nil {
			return nil, fmt.Errorf("anyOf[%d]: %w", i, err)
		}
		result.AnyOf = append(result.AnyOf, b)
	}

	return result, nil
}

// Type Conversions

// ToAIPlatformType converts genai.Type to aiplatformpb.Type.
func ToAIPlatformType(t genai.Type) (aiplatformpb.Type, error) {
	switch t {
	case genai.TypeUnspecified:
		return aiplatformpb.Type_TYPE_UNSPECIFIED, nil
	case genai.TypeString:
		return aiplatformpb.Type_STRING, nil
	case genai.TypeNumber:
		return aiplatformpb.Type_NUMBER, nil
	case genai.TypeInteger:
		return aiplatformpb.Type_INTEGER, nil
	case genai.TypeBoolean:
		return aiplatformpb.Type_BOOLEAN, nil
	case genai.TypeArray:
		return aiplatformpb.Type_ARRAY, nil
	case genai.TypeObject:
		return aiplatformpb.Type_OBJECT, nil
	default:
		return aiplatformpb.Type_TYPE_UNSPECIFIED, fmt.Errorf("unknown genai.Type: %v", t)
	}
}

// Tool Conversions

// ToAIPlatformTool converts genai.Tool to aiplatformpb.Tool.
//
// Built-in tools without a Vertex AI counterpart in this API version are rejected.
func ToAIPlatformTool(tool *genai.Tool) (*aiplatformpb.Tool, error) {
	if tool == nil {
		return nil, nil
	}

	result := &aiplatformpb.Tool{}

	if len(tool.FunctionDeclarations) > 0 {
		result.FunctionDeclarations = make([]*aiplatformpb.FunctionDeclaration, 0, len(tool.FunctionDeclarations))
		for _, fd := range tool.FunctionDeclarations {
			decl, err := ToAIPlatformFunctionDeclaration(fd)
			if err != nil {
				return nil, err
			}
			result.FunctionDeclarations = append(result.FunctionDeclarations, decl)
		}
	}

	if tool.CodeExecution != nil {
		result.CodeExecution = &aiplatformpb.Tool_CodeExecution{}
	}
	if tool.GoogleSearchRetrieval != nil {
		result.GoogleSearchRetrieval = &aiplatformpb.GoogleSearchRetrieval{}
	}
	if tool.GoogleSearch != nil {
		result.GoogleSearch = &aiplatformpb.Tool_GoogleSearch{}
	}
	if tool.Retrieval != nil {
		return nil, fmt.Errorf("retrieval tools are not supported by the Vertex AI cache backend")
	}

	return result, nil
}

// ToAIPlatformTools converts a slice of genai.Tool to aiplatformpb.Tool.
func ToAIPlatformTools(tools []*genai.Tool) ([]*aiplatformpb.Tool, error) {
	if tools == nil {
		return nil, nil
	}

	result := make([]*aiplatformpb.Tool, 0, len(tools))
	for i, tool := range tools {
		t, err := ToAIPlatformTool(tool)
		if err != nil {
			return nil, fmt.Errorf("tool %d: %w", i, err)
		}
		if t != nil {
			result = append(result, t)
		}
	}
	return result, nil
}

// ToolConfig Conversions

// ToAIPlatformToolConfig converts genai.ToolConfig to aiplatformpb.ToolConfig.
func ToAIPlatformToolConfig(tc *genai.ToolConfig) (*aiplatformpb.ToolConfig, error) {
	if tc == nil {
		return nil, nil
	}

	result := &aiplatformpb.ToolConfig{}

	if fcc := tc.FunctionCallingConfig; fcc != nil {
		mode, err := toAIPlatformMode(fcc.Mode)
		if err != nil {
			return nil, err
		}
		result.FunctionCallingConfig = &aiplatformpb.FunctionCallingConfig{
			Mode:                 mode,
			AllowedFunctionNames: fcc.AllowedFunctionNames,
		}
	}

	if rc := tc.RetrievalConfig; rc != nil {
		result.RetrievalConfig = &aiplatformpb.RetrievalConfig{}
		if rc.LanguageCode != "" {
			result.RetrievalConfig.LanguageCode = &rc.LanguageCode
		}
		if rc.LatLng != nil {
			result.RetrievalConfig.LatLng = &latlng.LatLng{
				Latitude:  deref(rc.LatLng.Latitude, 0),
				Longitude: deref(rc.LatLng.Longitude, 0),
			}
		}
	}

	return result, nil
}

func toAIPlatformMode(mode genai.FunctionCallingConfigMode) (aiplatformpb.FunctionCallingConfig_Mode, error) {
	switch mode {
	case genai.FunctionCallingConfigModeUnspecified:
		return aiplatformpb.FunctionCallingConfig_MODE_UNSPECIFIED, nil
	case genai.FunctionCallingConfigModeAuto:
		return aiplatformpb.FunctionCallingConfig_AUTO, nil
	case genai.FunctionCallingConfigModeAny:
		return aiplatformpb.FunctionCallingConfig_ANY, nil
	case genai.FunctionCallingConfigModeNone:
		return aiplatformpb.FunctionCallingConfig_NONE, nil
	default:
		return aiplatformpb.FunctionCallingConfig_MODE_UNSPECIFIED, fmt.Errorf("unknown function calling mode: %v", mode)
	}
}

// CachedContent Conversions

// ToAIPlatformCachedContent builds the Vertex AI resource for creating a cache of model.
//
// Returns [ErrConflictingExpiration] when cfg sets both TTL and ExpireTime.
func ToAIPlatformCachedContent(model string, cfg *genai.CreateCachedContentConfig) (*aiplatformpb.CachedContent, error) {
	result := &aiplatformpb.CachedContent{
		Model: model,
	}
	if cfg == nil {
		return result, nil
	}

	switch {
	case cfg.TTL != 0 && !cfg.ExpireTime.IsZero():
		return nil, ErrConflictingExpiration
	case cfg.TTL != 0:
		result.Expiration = &aiplatformpb.CachedContent_Ttl{Ttl: durationpb.New(cfg.TTL)}
	case !cfg.ExpireTime.IsZero():
		result.Expiration = &aiplatformpb.CachedContent_ExpireTime{ExpireTime: timestamppb.New(cfg.ExpireTime)}
	}

	result.DisplayName = cfg.DisplayName

	var err error
	if result.SystemInstruction, err = ToAIPlatformContent(cfg.SystemInstruction); err != nil {
		return nil, fmt.Errorf("system instruction: %w", err)
	}
	if result.Contents, err = ToAIPlatformContents(cfg.Contents); err != nil {
		return nil, fmt.Errorf("contents: %w", err)
	}
	if result.Tools, err = ToAIPlatformTools(cfg.Tools); err != nil {
		return nil, fmt.Errorf("tools: %w", err)
	}
	if result.ToolConfig, err = ToAIPlatformToolConfig(cfg.ToolConfig); err != nil {
		return nil, fmt.Errorf("tool config: %w", err)
	}
	if cfg.KmsKeyName != "" {
		result.EncryptionSpec = &aiplatformpb.EncryptionSpec{KmsKeyName: cfg.KmsKeyName}
	}

	return result, nil
}

// FromAIPlatformCachedContent converts the metadata of a Vertex AI cache resource to genai.CachedContent.
// Returns nil if input is nil.
func FromAIPlatformCachedContent(cc *aiplatformpb.CachedContent) *genai.CachedContent {
	if cc == nil {
		return nil
	}

	result := &genai.CachedContent{
		Name:        cc.GetName(),
		DisplayName: cc.GetDisplayName(),
		Model:       cc.GetModel(),
	}
	if t := cc.GetCreateTime(); t != nil {
		result.CreateTime = t.AsTime()
	}
	if t := cc.GetUpdateTime(); t != nil {
		result.UpdateTime = t.AsTime()
	}
	switch exp := cc.GetExpiration().(type) {
	case *aiplatformpb.CachedContent_ExpireTime:
		result.ExpireTime = exp.ExpireTime.AsTime()
	case *aiplatformpb.CachedContent_Ttl:
		// a TTL is only echoed before the server resolves it
		if t := cc.GetUpdateTime(); t != nil {
			result.ExpireTime = t.AsTime().Add(exp.Ttl.AsDuration())
		}
	}
	if um := cc.GetUsageMetadata(); um != nil {
		result.UsageMetadata = &genai.CachedContentUsageMetadata{
			AudioDurationSeconds: um.GetAudioDurationSeconds(),
			ImageCount:           um.GetImageCount(),
			TextCount:            um.GetTextCount(),
			TotalTokenCount:      um.GetTotalTokenCount(),
			VideoDurationSeconds: um.GetVideoDurationSeconds(),
		}
	}

	return result
}

// Helper Functions

func toValue(v any) (*structpb.Value, error) {
	if v == nil {
		return nil, nil
	}
	return structpb.NewValue(v)
}

func deref[T any](ptr *T, def T) T {
	if ptr != nil {
		return *ptr
	}
	return def
}
