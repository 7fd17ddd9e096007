// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the contextcache command configuration from defaults, a YAML file,
// environment variables and command line flags.
package config
