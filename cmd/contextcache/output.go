// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"
)

// printJSON writes v to w as indented JSON.
func printJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigFastest.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
