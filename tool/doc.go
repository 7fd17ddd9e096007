// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package tool converts tool definitions and tool configs into their Gemini representation.
//
// [Format] aggregates definitions of several shapes into one [genai.Tool]:
//
//	type GetWeather struct {
//		City string `json:"city" jsonschema:"description=City name"`
//	}
//
//	search, _ := tool.NewFunctionTool("search", "Search the docs", func(ctx context.Context, args SearchArgs) (any, error) {
//		return index.Search(ctx, args.Query)
//	})
//
//	gt, err := tool.Format(GetWeather{}, search, map[string]any{
//		"name":        "get_time",
//		"description": "Current time in a timezone",
//		"parameters": map[string]any{
//			"type":       "object",
//			"properties": map[string]any{"tz": map[string]any{"type": "string"}},
//		},
//	})
//
// JSON schemas are converted by [ToGeminiSchema], which keeps only what Gemini accepts.
package tool
