// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"strings"
)

// FormatName returns the fully qualified Vertex AI resource name of model.
//
//	FormatName("gemini-2.0-flash-001", "p", "us-central1")
//	  -> "projects/p/locations/us-central1/publishers/google/models/gemini-2.0-flash-001"
//
// Names that already start with "projects/" are returned unchanged.
func FormatName(model, project, location string) string {
	if !strings.Contains(model, "/") {
		model = "publishers/google/models/" + model
	}
	if strings.HasPrefix(model, "models/") {
		model = "publishers/google/" + model
	}
	if !strings.HasPrefix(model, "projects/") {
		model = fmt.Sprintf("projects/%s/locations/%s/%s", project, location, model)
	}
	return model
}

// Parent returns the parent resource under which cached contents of project and location live.
func Parent(project, location string) string {
	return fmt.Sprintf("projects/%s/locations/%s", project, location)
}
