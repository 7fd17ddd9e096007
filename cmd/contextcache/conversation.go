// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"gopkg.in/yaml.v3"

	"github.com/go-a2a/contextcache/types"
)

// conversation is the content of a conversation file.
//
// Per-file settings override the command configuration.
type conversation struct {
	Model       string            `json:"model,omitempty" yaml:"model,omitempty"`
	DisplayName string            `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	TTL         string            `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	ExpireTime  string            `json:"expire_time,omitempty" yaml:"expire_time,omitempty"`
	Messages    []message         `json:"messages" yaml:"messages"`
	Tools       []map[string]any  `json:"tools,omitempty" yaml:"tools,omitempty"`
	ToolConfig  *types.ToolConfig `json:"tool_config,omitempty" yaml:"tool_config,omitempty"`
}

// message is a [types.Message] that also accepts a plain text shorthand.
type message struct {
	types.Message `json:",inline" yaml:",inline"`

	Text string `json:"text,omitempty" yaml:"text,omitempty"`
}

// loadConversation decodes path as JSON when it has a .json extension and as YAML otherwise.
func loadConversation(path string) (*conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var conv conversation
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &conv)
	} else {
		err = yaml.Unmarshal(data, &conv)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("%s has no messages", path)
	}
	return &conv, nil
}

// history returns the messages of c.
func (c *conversation) history() []*types.Message {
	messages := make([]*types.Message, 0, len(c.Messages))
	for _, m := range c.Messages {
		msg := m.Message
		if m.Text != "" {
			msg.Content = append([]types.ContentBlock{types.TextBlock(m.Text)}, msg.Content...)
		}
		messages = append(messages, &msg)
	}
	return messages
}

// tools returns the tool definitions of c.
func (c *conversation) tools() []any {
	tools := make([]any, 0, len(c.Tools))
	for _, t := range c.Tools {
		tools = append(tools, t)
	}
	return tools
}

// ttl parses the TTL of c. An empty TTL yields zero.
func (c *conversation) ttl() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 0, fmt.Errorf("parse ttl: %w", err)
	}
	return d, nil
}

// expireTime parses the expire time of c. An empty expire time yields the zero time.
func (c *conversation) expireTime() (time.Time, error) {
	if c.ExpireTime == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, c.ExpireTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse expire_time: %w", err)
	}
	return t, nil
}
