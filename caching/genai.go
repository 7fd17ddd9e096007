// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package caching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"cloud.google.com/go/auth/credentials"
	"golang.org/x/oauth2"
	"google.golang.org/genai"

	"github.com/go-a2a/contextcache/pkg/logging"
)

// cloudPlatformScope is the OAuth2 scope required by Vertex AI.
const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// GenAIBackend is a [Backend] using the caches service of the [genai.Client].
type GenAIBackend struct {
	caches    *genai.Caches
	geminiAPI bool
}

var _ Backend = (*GenAIBackend)(nil)

type genaiOptions struct {
	accessToken string
	httpClient  *http.Client
	apiKey      string
	baseURL     string
}

// GenAIOption is a functional option for configuring a [GenAIBackend].
type GenAIOption func(*genaiOptions)

// WithAccessToken authenticates with a static OAuth2 access token instead of
// Application Default Credentials.
func WithAccessToken(token string) GenAIOption {
	return func(o *genaiOptions) {
		o.accessToken = token
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) GenAIOption {
	return func(o *genaiOptions) {
		o.httpClient = client
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) GenAIOption {
	return func(o *genaiOptions) {
		o.baseURL = url
	}
}

// WithAPIKey uses the Gemini Developer API with the given key instead of Vertex AI.
func WithAPIKey(key string) GenAIOption {
	return func(o *genaiOptions) {
		o.apiKey = key
	}
}

// NewGenAIBackend creates a new backend for project and location.
//
// It uses Application Default Credentials unless configured otherwise.
func NewGenAIBackend(ctx context.Context, project, location string, opts ...GenAIOption) (*GenAIBackend, error) {
	var o genaiOptions
	for _, opt := range opts {
		opt(&o)
	}

	cc := &genai.ClientConfig{
		HTTPClient: o.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: o.baseURL,
		},
	}

	switch {
	case o.apiKey != "":
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = o.apiKey

	default:
		if project == "" {
			return nil, errors.New("project is required")
		}
		if location == "" {
			return nil, errors.New("location is required")
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = project
		cc.Location = location

		if o.accessToken != "" {
			// genai skips its own credentials when an HTTP client is set
			cc.HTTPClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: o.accessToken,
				TokenType:   "Bearer",
			}))
		} else if o.httpClient == nil {
			creds, err := credentials.DetectDefault(&credentials.DetectOptions{
				Scopes: []string{cloudPlatformScope},
			})
			if err != nil {
				return nil, fmt.Errorf("detect default credentials: %w", err)
			}
			cc.Credentials = creds
		}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	logging.FromContext(ctx).DebugContext(ctx, "Genai cache backend initialized",
		slog.String("project", project),
		slog.String("location", location),
		slog.String("api_backend", cc.Backend.String()),
	)

	return NewGenAIBackendFromClient(client), nil
}

// NewGenAIBackendFromClient returns a backend using an existing client.
func NewGenAIBackendFromClient(client *genai.Client) *GenAIBackend {
	return &GenAIBackend{
		caches:    client.Caches,
		geminiAPI: client.ClientConfig().Backend == genai.BackendGeminiAPI,
	}
}

// Create implements [Backend].
//
// On the Gemini Developer API a Vertex AI model resource name is reduced to models/{id}.
func (b *GenAIBackend) Create(ctx context.Context, req *Request) (*CachedContent, error) {
	modelName := req.Model
	if b.geminiAPI {
		modelName = geminiAPIModel(modelName)
	}

	cc, err := b.caches.Create(ctx, modelName, req.config())
	if err != nil {
		return nil, err
	}
	return fromGenAI(cc), nil
}

// Get implements [Backend].
func (b *GenAIBackend) Get(ctx context.Context, name string) (*CachedContent, error) {
	cc, err := b.caches.Get(ctx, name, nil)
	if err != nil {
		return nil, genaiError(err)
	}
	return fromGenAI(cc), nil
}

// List implements [Backend].
func (b *GenAIBackend) List(ctx context.Context, opts *ListOptions) (*ListResponse, error) {
	cfg := &genai.ListCachedContentsConfig{}
	if opts != nil {
		cfg.PageSize = opts.PageSize
		cfg.PageToken = opts.PageToken
	}

	page, err := b.caches.List(ctx, cfg)
	if err != nil && !errors.Is(err, genai.ErrPageDone) {
		return nil, genaiError(err)
	}

	resp := &ListResponse{
		CachedContents: make([]*CachedContent, 0, len(page.Items)),
		NextPageToken:  page.NextPageToken,
	}
	for _, cc := range page.Items {
		resp.CachedContents = append(resp.CachedContents, fromGenAI(cc))
	}
	return resp, nil
}

// Update implements [Backend].
func (b *GenAIBackend) Update(ctx context.Context, name string, exp Expiration) (*CachedContent, error) {
	cc, err := b.caches.Update(ctx, name, &genai.UpdateCachedContentConfig{
		TTL:        exp.TTL,
		ExpireTime: exp.ExpireTime,
	})
	if err != nil {
		return nil, genaiError(err)
	}
	return fromGenAI(cc), nil
}

// Delete implements [Backend].
func (b *GenAIBackend) Delete(ctx context.Context, name string) error {
	if _, err := b.caches.Delete(ctx, name, nil); err != nil {
		return genaiError(err)
	}
	return nil
}

// geminiAPIModel rewrites a publisher model resource name to the models/{id} form the Gemini
// Developer API accepts.
func geminiAPIModel(name string) string {
	if strings.HasPrefix(name, "models/") || strings.HasPrefix(name, "tunedModels/") {
		return name
	}
	return "models/" + name[strings.LastIndex(name, "/")+1:]
}

// genaiError adds [ErrNotFound] to 404 responses.
func genaiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
