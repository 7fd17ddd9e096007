// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package types defines the data shared by the contextcache packages.
//
// # Messages
//
// A conversation is a slice of [*Message]. Every message carries a [MessageRole] and a list
// of [ContentBlock] values:
//
//	messages := []*types.Message{
//		types.NewSystemMessage("You are a support agent."),
//		types.NewHumanMessage(
//			types.TextBlock("Summarize this manual."),
//			types.ImageURLBlock("gs://example-docs/manual.png"),
//		),
//		types.NewAIMessage("", types.ToolCall{ID: "1", Name: "lookup_order", Args: map[string]any{"order_id": "42"}}),
//		types.NewToolMessage("1", "lookup_order", `{"status": "shipped"}`),
//	}
//
// Only the first message may be a system message.
//
// # Models
//
// [ModelReference] identifies a model deployed in a project and location together with its
// [ModelFamily]. Context caching requires [ModelFamilyGeminiAdvanced]; other families fail
// with [*UnsupportedModelError].
//
// # Tools
//
// [Tool] is implemented by callable tools that can declare themselves to the model, and
// [ToolConfig] constrains how the model calls them.
package types
