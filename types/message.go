// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

// MessageRole is the author of a [Message].
type MessageRole string

const (
	// RoleSystem marks a system prompt. Only the first message of a history may carry it.
	RoleSystem MessageRole = "system"

	// RoleHuman marks a message written by the end user.
	RoleHuman MessageRole = "human"

	// RoleAI marks a message produced by the model, optionally carrying tool calls.
	RoleAI MessageRole = "ai"

	// RoleTool marks the result of a tool call.
	RoleTool MessageRole = "tool"
)

// ContentBlockType is the kind of a [ContentBlock].
type ContentBlockType string

const (
	// ContentBlockText is a plain text block.
	ContentBlockText ContentBlockType = "text"

	// ContentBlockImageURL is an image referenced by URL: a data URI, a gs:// URI or an http(s) URL.
	ContentBlockImageURL ContentBlockType = "image_url"

	// ContentBlockMedia is raw media, either inline bytes or a file URI with an explicit MIME type.
	ContentBlockMedia ContentBlockType = "media"
)

// ContentBlock is one piece of a multi-part [Message].
type ContentBlock struct {
	Type     ContentBlockType `json:"type" yaml:"type"`
	Text     string           `json:"text,omitempty" yaml:"text,omitempty"`
	URL      string           `json:"url,omitempty" yaml:"url,omitempty"`
	MIMEType string           `json:"mime_type,omitempty" yaml:"mime_type,omitempty"`
	Data     []byte           `json:"data,omitempty" yaml:"data,omitempty"`
	FileURI  string           `json:"file_uri,omitempty" yaml:"file_uri,omitempty"`
}

// ToolCall is a function call requested by the model inside an [RoleAI] message.
type ToolCall struct {
	ID   string         `json:"id,omitempty" yaml:"id,omitempty"`
	Name string         `json:"name" yaml:"name"`
	Args map[string]any `json:"args,omitempty" yaml:"args,omitempty"`
}

// Message is a single role-tagged entry of a conversation history.
type Message struct {
	Role    MessageRole    `json:"role" yaml:"role"`
	Content []ContentBlock `json:"content,omitempty" yaml:"content,omitempty"`

	// ToolCalls holds the calls requested by an AI message.
	ToolCalls []ToolCall `json:"tool_calls,omitempty" yaml:"tool_calls,omitempty"`

	// ToolCallID and Name identify the call a tool message answers.
	ToolCallID string `json:"tool_call_id,omitempty" yaml:"tool_call_id,omitempty"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Text concatenates every text block of the message.
func (m *Message) Text() string {
	var text string
	for _, block := range m.Content {
		if block.Type == ContentBlockText {
			text += block.Text
		}
	}
	return text
}

// NewSystemMessage returns a system message holding text.
func NewSystemMessage(text string) *Message {
	return &Message{Role: RoleSystem, Content: []ContentBlock{TextBlock(text)}}
}

// NewHumanMessage returns a human message made of blocks.
func NewHumanMessage(blocks ...ContentBlock) *Message {
	return &Message{Role: RoleHuman, Content: blocks}
}

// NewAIMessage returns an AI message holding text and the given tool calls.
func NewAIMessage(text string, calls ...ToolCall) *Message {
	msg := &Message{Role: RoleAI, ToolCalls: calls}
	if text != "" {
		msg.Content = []ContentBlock{TextBlock(text)}
	}
	return msg
}

// NewToolMessage returns the result of the tool call callID made to the function name.
func NewToolMessage(callID, name, content string) *Message {
	return &Message{
		Role:       RoleTool,
		Content:    []ContentBlock{TextBlock(content)},
		ToolCallID: callID,
		Name:       name,
	}
}

// TextBlock returns a text [ContentBlock].
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: ContentBlockText, Text: text}
}

// ImageURLBlock returns an image_url [ContentBlock].
func ImageURLBlock(url string) ContentBlock {
	return ContentBlock{Type: ContentBlockImageURL, URL: url}
}
