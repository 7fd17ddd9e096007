// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/gabriel-vasile/mimetype"
	"google.golang.org/genai"

	"github.com/go-a2a/contextcache/pkg/logging"
)

// DefaultMaxBytes is the largest http(s) download accepted by a [Loader].
const DefaultMaxBytes = 20 << 20

var (
	// ErrUnsupportedURL is returned for URLs that are neither data, gs nor http(s) URLs.
	ErrUnsupportedURL = errors.New("unsupported media url")

	// ErrUnknownMIMEType is returned when the MIME type of a gs:// object cannot be determined.
	ErrUnknownMIMEType = errors.New("unknown media mime type")

	// ErrTooLarge is returned when a download exceeds the configured limit.
	ErrTooLarge = errors.New("media exceeds size limit")
)

// ContentTypeResolver returns the content type of a Cloud Storage object.
type ContentTypeResolver func(ctx context.Context, bucket, object string) (string, error)

// Loader turns media references of chat messages into [genai.Part] values.
//
// Data URIs are decoded inline, gs:// URIs are passed by reference and http(s) URLs are
// downloaded and inlined.
type Loader struct {
	httpClient    *http.Client
	contentTypeOf ContentTypeResolver
	maxBytes      int64
}

// Option is a functional option for configuring a [Loader].
type Option func(*Loader)

// WithHTTPClient sets the client used to download http(s) media.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		l.httpClient = client
	}
}

// WithStorageClient resolves the MIME type of gs:// objects from their metadata.
//
// When project is not empty it is billed for requester-pays buckets.
func WithStorageClient(client *storage.Client, project string) Option {
	return func(l *Loader) {
		l.contentTypeOf = func(ctx context.Context, bucket, object string) (string, error) {
			handle := client.Bucket(bucket)
			if project != "" {
				handle = handle.UserProject(project)
			}
			attrs, err := handle.Object(object).Attrs(ctx)
			if err != nil {
				return "", fmt.Errorf("get attributes of gs://%s/%s: %w", bucket, object, err)
			}
			return attrs.ContentType, nil
		}
	}
}

// WithContentTypeResolver sets a custom resolver for gs:// object MIME types.
func WithContentTypeResolver(resolver ContentTypeResolver) Option {
	return func(l *Loader) {
		l.contentTypeOf = resolver
	}
}

// WithMaxBytes limits the size of http(s) downloads.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) {
		l.maxBytes = n
	}
}

// NewLoader returns a [Loader] configured by opts.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		httpClient: http.DefaultClient,
		maxBytes:   DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves url into a part. mimeType may be empty, in which case it is inferred.
func (l *Loader) Load(ctx context.Context, url, mimeType string) (*genai.Part, error) {
	switch {
	case strings.HasPrefix(url, "data:"):
		return l.loadDataURI(url, mimeType)
	case strings.HasPrefix(url, "gs://"):
		return l.loadGCS(ctx, url, mimeType)
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return l.loadHTTP(ctx, url, mimeType)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, truncate(url))
	}
}

// loadDataURI decodes a data:<mime>;base64,<payload> URI.
func (l *Loader) loadDataURI(url, mimeType string) (*genai.Part, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(url, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data uri", ErrUnsupportedURL)
	}
	mediaType, encoding, _ := strings.Cut(header, ";")
	if encoding != "base64" {
		return nil, fmt.Errorf("%w: data uri must be base64 encoded", ErrUnsupportedURL)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}
	if mimeType == "" {
		mimeType = mediaType
	}
	if mimeType == "" {
		mimeType = detect(data)
	}

	return genai.NewPartFromBytes(data, mimeType), nil
}

// loadGCS returns a file reference to a Cloud Storage object.
func (l *Loader) loadGCS(ctx context.Context, url, mimeType string) (*genai.Part, error) {
	if mimeType == "" {
		mimeType = mime.TypeByExtension(path.Ext(url))
	}
	if mimeType == "" && l.contentTypeOf != nil {
		bucket, object, ok := strings.Cut(strings.TrimPrefix(url, "gs://"), "/")
		if !ok || object == "" {
			return nil, fmt.Errorf("%w: %q has no object name", ErrUnsupportedURL, url)
		}
		contentType, err := l.contentTypeOf(ctx, bucket, object)
		if err != nil {
			return nil, err
		}
		mimeType = contentType
	}
	if mimeType == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMIMEType, url)
	}

	return genai.NewPartFromURI(url, stripParams(mimeType)), nil
}

// loadHTTP downloads url and inlines its bytes.
func (l *Loader) loadHTTP(ctx context.Context, url, mimeType string) (*genai.Part, error) {
	logger := logging.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create media request: %w", err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, url, l.maxBytes)
	}

	if mimeType == "" {
		mimeType = detect(data)
	}
	logger.DebugContext(ctx, "Downloaded media",
		slog.String("url", url),
		slog.String("mime_type", mimeType),
		slog.Int("bytes", len(data)),
	)

	return genai.NewPartFromBytes(data, mimeType), nil
}

// detect sniffs the MIME type of data without parameters.
func detect(data []byte) string {
	return stripParams(mimetype.Detect(data).String())
}

func stripParams(mimeType string) string {
	mediaType, _, _ := strings.Cut(mimeType, ";")
	return strings.TrimSpace(mediaType)
}

func truncate(s string) string {
	const max = 64
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
