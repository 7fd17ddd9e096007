// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package media loads the media referenced by chat message content blocks.
//
// Supported references:
//   - data URIs (data:image/png;base64,...), decoded and inlined
//   - gs:// URIs, passed to the model by reference with a MIME type taken from the file
//     extension or, with [WithStorageClient], from the object metadata
//   - http(s) URLs, downloaded, sniffed and inlined
package media
