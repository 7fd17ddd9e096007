// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package aiconv converts cache creation requests expressed with [google.golang.org/genai] types into
// the [cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb] resources sent by the Vertex AI backend.
//
// Conversions return an error instead of dropping data the protobuf types cannot carry:
//
//	cc, err := aiconv.ToAIPlatformCachedContent(model, &genai.CreateCachedContentConfig{
//		TTL:      time.Hour,
//		Contents: contents,
//	})
//	if errors.Is(err, aiconv.ErrConflictingExpiration) {
//		// both TTL and ExpireTime were set
//	}
package aiconv
