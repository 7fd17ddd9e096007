// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging provides context-based structured logging utilities using Go's standard slog package.
//
// Loggers are stored in and retrieved from [context.Context] values so that the cache creator,
// the backends and the media loader all log through the logger chosen by the caller:
//
//	logger := logging.New(os.Stderr, logging.FormatConsole, slog.LevelDebug)
//	ctx := logging.NewContext(ctx, logger)
//
//	name, err := caching.CreateContextCache(ctx, backend, ref, messages)
//
// When no logger is found in the context, [FromContext] returns [slog.Default].
//
// # Thread Safety
//
// The logging package is safe for concurrent use.
package logging
