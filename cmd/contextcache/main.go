// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Command contextcache creates and manages Vertex AI context caches from conversation files.
package main

func main() {
	Execute()
}
