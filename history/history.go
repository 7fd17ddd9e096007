// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-json-experiment/json"
	"google.golang.org/genai"

	"github.com/go-a2a/contextcache/media"
	"github.com/go-a2a/contextcache/types"
)

// RoleFunction is the content role carrying function responses.
const RoleFunction = "function"

var (
	// ErrSystemMessagePosition is returned when a system message is not the first message.
	ErrSystemMessagePosition = errors.New("system message should be the first in the history")

	// ErrUnsupportedContent is returned for content blocks that cannot be sent to the model.
	ErrUnsupportedContent = errors.New("unsupported content block")

	// ErrUnknownRole is returned for messages with an unknown role.
	ErrUnknownRole = errors.New("unknown message role")
)

// MediaLoader resolves a media URL into a part.
type MediaLoader interface {
	Load(ctx context.Context, url, mimeType string) (*genai.Part, error)
}

var _ MediaLoader = (*media.Loader)(nil)

// Parse splits messages into a system instruction and the remaining contents.
//
// Only messages[0] may be a system message; it becomes the system instruction. Human
// messages map to the user role, AI messages to the model role (tool calls become function
// call parts) and consecutive tool messages are merged into one function content.
//
// loader resolves image_url blocks. When nil, a default [media.Loader] is used.
func Parse(ctx context.Context, messages []*types.Message, loader MediaLoader) (*genai.Content, []*genai.Content, error) {
	if loader == nil {
		loader = media.NewLoader()
	}

	var (
		systemInstruction *genai.Content
		contents          []*genai.Content
	)
	// callNames maps tool call IDs to the called function, for tool messages without a name.
	callNames := make(map[string]string)

	for i, msg := range messages {
		if msg == nil {
			return nil, nil, fmt.Errorf("message %d is nil", i)
		}

		switch msg.Role {
		case types.RoleSystem:
			if i != 0 {
				return nil, nil, fmt.Errorf("%w: found at index %d", ErrSystemMessagePosition, i)
			}
			parts, err := convertBlocks(ctx, loader, msg.Content)
			if err != nil {
				return nil, nil, fmt.Errorf("message %d: %w", i, err)
			}
			systemInstruction = &genai.Content{Parts: parts}

		case types.RoleHuman:
			parts, err := convertBlocks(ctx, loader, msg.Content)
			if err != nil {
				return nil, nil, fmt.Errorf("message %d: %w", i, err)
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))

		case types.RoleAI:
			parts, err := convertBlocks(ctx, loader, msg.Content)
			if err != nil {
				return nil, nil, fmt.Errorf("message %d: %w", i, err)
			}
			for _, call := range msg.ToolCalls {
				if call.ID != "" {
					callNames[call.ID] = call.Name
				}
				parts = append(parts, genai.NewPartFromFunctionCall(call.Name, call.Args))
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleModel))

		case types.RoleTool:
			name := msg.Name
			if name == "" {
				name = callNames[msg.ToolCallID]
			}
			if name == "" {
				return nil, nil, fmt.Errorf("message %d: tool message for call %q has no function name", i, msg.ToolCallID)
			}
			part := genai.NewPartFromFunctionResponse(name, toolResponse(msg.Text()))

			// merge with the previous function response content
			if n := len(contents); n > 0 && contents[n-1].Role == RoleFunction {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
				continue
			}
			contents = append(contents, &genai.Content{
				Role:  RoleFunction,
				Parts: []*genai.Part{part},
			})

		default:
			return nil, nil, fmt.Errorf("%w: %q at index %d", ErrUnknownRole, msg.Role, i)
		}
	}

	return systemInstruction, contents, nil
}

// toolResponse decodes a tool result. JSON objects are used as is, anything else is wrapped.
func toolResponse(text string) map[string]any {
	var response map[string]any
	if err := json.Unmarshal([]byte(text), &response); err == nil && response != nil {
		return response
	}
	return map[string]any{"content": text}
}

// convertBlocks converts message content blocks into parts.
func convertBlocks(ctx context.Context, loader MediaLoader, blocks []types.ContentBlock) ([]*genai.Part, error) {
	parts := make([]*genai.Part, 0, len(blocks))
	for i, block := range blocks {
		switch block.Type {
		case types.ContentBlockText:
			if block.Text == "" {
				continue
			}
			parts = append(parts, genai.NewPartFromText(block.Text))

		case types.ContentBlockImageURL:
			part, err := loader.Load(ctx, block.URL, block.MIMEType)
			if err != nil {
				return nil, fmt.Errorf("load block %d: %w", i, err)
			}
			parts = append(parts, part)

		case types.ContentBlockMedia:
			if block.MIMEType == "" {
				return nil, fmt.Errorf("%w: media block %d has no mime type", ErrUnsupportedContent, i)
			}
			switch {
			case len(block.Data) > 0:
				parts = append(parts, genai.NewPartFromBytes(block.Data, block.MIMEType))
			case block.FileURI != "":
				parts = append(parts, genai.NewPartFromURI(block.FileURI, block.MIMEType))
			default:
				return nil, fmt.Errorf("%w: media block %d has neither data nor file uri", ErrUnsupportedContent, i)
			}

		default:
			return nil, fmt.Errorf("%w: type %q", ErrUnsupportedContent, block.Type)
		}
	}
	return parts, nil
}
