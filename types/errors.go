// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import "fmt"

// UnsupportedModelError is returned when a model does not support context caching.
type UnsupportedModelError struct {
	// Model is the fully qualified model name.
	Model string
}

// Error returns a string representation of the [UnsupportedModelError].
func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("model %s doesn't support context caching", e.Model)
}
