// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/go-a2a/contextcache/types"
)

// defaultResolutionCacheSize is the number of model names whose family is memoized.
const defaultResolutionCacheSize = 128

// init registers the built-in model families. Order matters: the first matching pattern wins.
func init() {
	registry := DefaultFamilyRegistry()
	registry.MustRegister(types.ModelFamilyGeminiAdvanced,
		`gemini-1\.5`,
		`gemini-[2-9]`,
		`^medlm-large-1\.5(-preview|-001|@001)$`,
	)
	registry.MustRegister(types.ModelFamilyGemini, `gemini`)
	registry.MustRegister(types.ModelFamilyCodey, `code`)
	registry.MustRegister(types.ModelFamilyPaLM, `bison`, `medlm`)
}

// familyEntry represents a registry entry with a regex pattern and the family it resolves to.
type familyEntry struct {
	source  string
	pattern *regexp.Regexp
	family  types.ModelFamily
}

// FamilyRegistry resolves model names to a [types.ModelFamily] using ordered regex patterns.
//
// Resolutions are memoized in an LRU cache which is purged whenever a pattern is registered.
type FamilyRegistry struct {
	mu      sync.RWMutex
	entries []familyEntry
	cache   *lru.Cache[string, types.ModelFamily]
}

var (
	defaultRegistry *FamilyRegistry
	once            sync.Once
)

// DefaultFamilyRegistry returns the process wide registry holding the built-in families.
func DefaultFamilyRegistry() *FamilyRegistry {
	once.Do(func() {
		defaultRegistry = NewFamilyRegistry(defaultResolutionCacheSize)
	})
	return defaultRegistry
}

// NewFamilyRegistry creates an empty registry memoizing up to cacheSize resolutions.
func NewFamilyRegistry(cacheSize int) *FamilyRegistry {
	if cacheSize <= 0 {
		cacheSize = defaultResolutionCacheSize
	}
	cache, err := lru.New[string, types.ModelFamily](cacheSize)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &FamilyRegistry{cache: cache}
}

// Register maps every pattern to family. Patterns are matched case-insensitively against the
// model identifier. Registering an existing pattern updates its family in place.
func (r *FamilyRegistry) Register(family types.ModelFamily, patterns ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, pattern := range patterns {
		regex, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return fmt.Errorf("compile model pattern %q: %w", pattern, err)
		}

		updated := false
		for i, entry := range r.entries {
			if entry.source == pattern {
				r.entries[i].family = family
				updated = true
				break
			}
		}
		if !updated {
			r.entries = append(r.entries, familyEntry{source: pattern, pattern: regex, family: family})
		}
	}
	r.cache.Purge()

	return nil
}

// MustRegister is like [FamilyRegistry.Register] but panics on an invalid pattern.
func (r *FamilyRegistry) MustRegister(family types.ModelFamily, patterns ...string) {
	if err := r.Register(family, patterns...); err != nil {
		panic(err)
	}
}

// Resolve returns the family of modelName, or [types.ModelFamilyUnknown] when nothing matches.
//
// Fully qualified resource names are reduced to their last path segment first.
func (r *FamilyRegistry) Resolve(modelName string) types.ModelFamily {
	name := strings.ToLower(modelName)
	if idx := strings.LastIndex(name, "/"); idx > -1 {
		name = name[idx+1:]
	}

	// the cache is only filled while holding r.mu
	r.mu.RLock()
	defer r.mu.RUnlock()

	if family, ok := r.cache.Get(name); ok {
		return family
	}

	family := types.ModelFamilyUnknown
	for _, entry := range r.entries {
		if entry.pattern.MatchString(name) {
			family = entry.family
			break
		}
	}
	r.cache.Add(name, family)
	return family
}

// ResolveFamily resolves modelName with the default registry.
func ResolveFamily(modelName string) types.ModelFamily {
	return DefaultFamilyRegistry().Resolve(modelName)
}

// IsGeminiAdvanced reports whether family supports advanced features such as context caching.
func IsGeminiAdvanced(family types.ModelFamily) bool {
	return family == types.ModelFamilyGeminiAdvanced
}
