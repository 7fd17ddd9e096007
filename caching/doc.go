// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package caching creates and manages server-side context caches of chat histories.
//
// A context cache stores a conversation prefix (system instruction, history and tool setup)
// on Vertex AI so later requests can reference it by name instead of resending it.
//
// # Creating a cache
//
// [Creator.Create] validates that the model supports context caching, converts the messages
// and tools, issues exactly one create request to its [Backend] and returns the resource name:
//
//	backend, err := caching.NewGenAIBackend(ctx, "my-project", "us-central1")
//	if err != nil {
//		return err
//	}
//	creator, err := caching.NewCreator(backend)
//	if err != nil {
//		return err
//	}
//
//	name, err := creator.Create(ctx,
//		model.NewVertex("gemini-1.5-pro-001", "my-project", "us-central1"),
//		[]*types.Message{
//			types.NewSystemMessage("You are a helpful assistant."),
//			types.NewHumanMessage(types.TextBlock(longDocument)),
//		},
//		caching.WithTTL(30*time.Minute),
//	)
//
// At most one of [WithTTL] and [WithExpireTime] should be set. The creator passes both
// through unchanged; [AIPlatformBackend] rejects the combination with
// [ErrConflictingExpiration]. Without either the service applies its default of one hour.
//
// # Backends
//
//   - [GenAIBackend] calls the caches service of the google.golang.org/genai client.
//   - [AIPlatformBackend] calls the Vertex AI GenAiCacheService over gRPC.
//   - [InMemoryBackend] keeps entries in memory for tests and dry runs.
//   - [InstrumentedBackend] records prometheus metrics around another backend.
//
// # Managing caches
//
// [Manager] retrieves, lists, extends and deletes existing caches.
package caching
