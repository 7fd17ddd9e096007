// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package model resolves Google model references: fully qualified resource names and model
// families.
//
// # Model Families
//
// Families are resolved using regex pattern matching over the model identifier:
//
//	gemini-1.5-pro, gemini-2.0-flash-001   -> gemini-advanced
//	gemini-1.0-pro                         -> gemini
//	code-bison                             -> codey
//	text-bison, medlm-medium               -> palm
//
// Only the gemini-advanced family supports context caching, see [IsGeminiAdvanced].
//
// # Basic Usage
//
//	ref := model.NewVertex("gemini-2.0-flash-001", "my-project", "us-central1")
//	fmt.Println(ref.QualifiedName())
//	// projects/my-project/locations/us-central1/publishers/google/models/gemini-2.0-flash-001
//
// Additional patterns can be registered on a [FamilyRegistry]:
//
//	model.DefaultFamilyRegistry().MustRegister(types.ModelFamilyGeminiAdvanced, `^my-tuned-model`)
package model
