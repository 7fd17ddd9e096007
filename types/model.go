// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

// ModelFamily groups Google models by the features they support.
type ModelFamily string

const (
	// ModelFamilyUnknown is a model that does not match any known family.
	ModelFamilyUnknown ModelFamily = "unknown"

	// ModelFamilyGemini is the first generation of Gemini models.
	ModelFamilyGemini ModelFamily = "gemini"

	// ModelFamilyGeminiAdvanced is Gemini 1.5 and later, which support context caching.
	ModelFamilyGeminiAdvanced ModelFamily = "gemini-advanced"

	// ModelFamilyCodey is the code model family.
	ModelFamilyCodey ModelFamily = "codey"

	// ModelFamilyPaLM is the PaLM (bison) family.
	ModelFamilyPaLM ModelFamily = "palm"
)

// ModelReference identifies a model deployed in a Google Cloud project and location.
type ModelReference interface {
	// ModelName returns the model identifier, e.g. "gemini-2.0-flash-001" or a full resource name.
	ModelName() string

	// Project returns the Google Cloud project ID.
	Project() string

	// Location returns the Google Cloud location, e.g. "us-central1".
	Location() string

	// Family returns the model family used for capability checks.
	Family() ModelFamily
}
