// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package xiter

import (
	"iter"
)

// PageFunc fetches the page identified by token and returns its items and the token of the
// next page. An empty next token ends the iteration.
type PageFunc[T any] func(token string) (items []T, next string, err error)

// Paginate returns an iterator over the items of every page returned by fetch, starting
// with the empty token.
//
// A fetch error is yielded once with the zero T and ends the iteration.
func Paginate[T any](fetch PageFunc[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var token string
		for {
			items, next, err := fetch(token)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
			if next == "" {
				return
			}
			token = next
		}
	}
}

