// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package history converts a chat history into Gemini contents.
//
// The history must follow one ordering rule: a system message, if any, is the first message.
// [Parse] rejects a system message anywhere else with [ErrSystemMessagePosition].
package history
