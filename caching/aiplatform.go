// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package caching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	aiplatform "cloud.google.com/go/aiplatform/apiv1beta1"
	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"cloud.google.com/go/auth/credentials"
	"golang.org/x/oauth2"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/fieldmaskpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/go-a2a/contextcache/internal/aiconv"
	"github.com/go-a2a/contextcache/model"
	"github.com/go-a2a/contextcache/pkg/logging"
)

// AIPlatformBackend is a [Backend] using the Vertex AI GenAiCacheService over gRPC.
type AIPlatformBackend struct {
	client   *aiplatform.GenAiCacheClient
	project  string
	location string
}

var _ Backend = (*AIPlatformBackend)(nil)

type aiplatformOptions struct {
	accessToken   string
	clientOptions []option.ClientOption
}

// AIPlatformOption is a functional option for configuring an [AIPlatformBackend].
type AIPlatformOption func(*aiplatformOptions)

// WithAIPlatformAccessToken authenticates with a static OAuth2 access token instead of
// Application Default Credentials.
func WithAIPlatformAccessToken(token string) AIPlatformOption {
	return func(o *aiplatformOptions) {
		o.accessToken = token
	}
}

// WithClientOptions appends options passed to the underlying gRPC client.
func WithClientOptions(opts ...option.ClientOption) AIPlatformOption {
	return func(o *aiplatformOptions) {
		o.clientOptions = append(o.clientOptions, opts...)
	}
}

// NewAIPlatformBackend creates a new backend for project and location.
//
// The client connects to the regional endpoint of location. Call [AIPlatformBackend.Close]
// to release the connection.
func NewAIPlatformBackend(ctx context.Context, project, location string, opts ...AIPlatformOption) (*AIPlatformBackend, error) {
	if project == "" {
		return nil, errors.New("project is required")
	}
	if location == "" {
		return nil, errors.New("location is required")
	}

	var o aiplatformOptions
	for _, opt := range opts {
		opt(&o)
	}

	clientOpts := []option.ClientOption{
		option.WithEndpoint(location + "-aiplatform.googleapis.com:443"),
	}
	switch {
	case o.accessToken != "":
		clientOpts = append(clientOpts, option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: o.accessToken,
			TokenType:   "Bearer",
		})))
	case len(o.clientOptions) == 0:
		creds, err := credentials.DetectDefault(&credentials.DetectOptions{
			Scopes: []string{cloudPlatformScope},
		})
		if err != nil {
			return nil, fmt.Errorf("detect default credentials: %w", err)
		}
		clientOpts = append(clientOpts, option.WithAuthCredentials(creds))
	}
	clientOpts = append(clientOpts, o.clientOptions...)

	client, err := aiplatform.NewGenAiCacheClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create gen ai cache client: %w", err)
	}

	logging.FromContext(ctx).DebugContext(ctx, "Aiplatform cache backend initialized",
		slog.String("project", project),
		slog.String("location", location),
	)

	return &AIPlatformBackend{
		client:   client,
		project:  project,
		location: location,
	}, nil
}

// Close closes the underlying client.
func (b *AIPlatformBackend) Close() error {
	if err := b.client.Close(); err != nil {
		return fmt.Errorf("close gen ai cache client: %w", err)
	}
	return nil
}

// Create implements [Backend].
//
// It returns [ErrConflictingExpiration] if req sets both TTL and ExpireTime.
func (b *AIPlatformBackend) Create(ctx context.Context, req *Request) (*CachedContent, error) {
	cc, err := aiconv.ToAIPlatformCachedContent(req.Model, req.config())
	if err != nil {
		return nil, err
	}

	created, err := b.client.CreateCachedContent(ctx, &aiplatformpb.CreateCachedContentRequest{
		Parent:        model.Parent(b.project, b.location),
		CachedContent: cc,
	})
	if err != nil {
		return nil, err
	}
	return fromAIPlatform(created), nil
}

// Get implements [Backend].
func (b *AIPlatformBackend) Get(ctx context.Context, name string) (*CachedContent, error) {
	cc, err := b.client.GetCachedContent(ctx, &aiplatformpb.GetCachedContentRequest{
		Name: name,
	})
	if err != nil {
		return nil, grpcError(err)
	}
	return fromAIPlatform(cc), nil
}

// List implements [Backend].
//
// A zero page size lists 50 entries per page.
func (b *AIPlatformBackend) List(ctx context.Context, opts *ListOptions) (*ListResponse, error) {
	pageSize := defaultPageSize
	var pageToken string
	if opts != nil {
		if opts.PageSize > 0 {
			pageSize = int(opts.PageSize)
		}
		pageToken = opts.PageToken
	}

	it := b.client.ListCachedContents(ctx, &aiplatformpb.ListCachedContentsRequest{
		Parent: model.Parent(b.project, b.location),
	})

	var items []*aiplatformpb.CachedContent
	next, err := iterator.NewPager(it, pageSize, pageToken).NextPage(&items)
	if err != nil {
		return nil, grpcError(err)
	}

	resp := &ListResponse{
		CachedContents: make([]*CachedContent, 0, len(items)),
		NextPageToken:  next,
	}
	for _, cc := range items {
		resp.CachedContents = append(resp.CachedContents, fromAIPlatform(cc))
	}
	return resp, nil
}

// Update implements [Backend].
func (b *AIPlatformBackend) Update(ctx context.Context, name string, exp Expiration) (*CachedContent, error) {
	cc := &aiplatformpb.CachedContent{Name: name}
	mask := &fieldmaskpb.FieldMask{}

	switch {
	case exp.TTL != 0 && !exp.ExpireTime.IsZero():
		return nil, ErrConflictingExpiration
	case exp.TTL != 0:
		cc.Expiration = &aiplatformpb.CachedContent_Ttl{Ttl: durationpb.New(exp.TTL)}
		mask.Paths = append(mask.Paths, "ttl")
	default:
		cc.Expiration = &aiplatformpb.CachedContent_ExpireTime{ExpireTime: timestamppb.New(exp.ExpireTime)}
		mask.Paths = append(mask.Paths, "expire_time")
	}

	updated, err := b.client.UpdateCachedContent(ctx, &aiplatformpb.UpdateCachedContentRequest{
		CachedContent: cc,
		UpdateMask:    mask,
	})
	if err != nil {
		return nil, grpcError(err)
	}
	return fromAIPlatform(updated), nil
}

// Delete implements [Backend].
func (b *AIPlatformBackend) Delete(ctx context.Context, name string) error {
	if err := b.client.DeleteCachedContent(ctx, &aiplatformpb.DeleteCachedContentRequest{
		Name: name,
	}); err != nil {
		return grpcError(err)
	}
	return nil
}

func fromAIPlatform(cc *aiplatformpb.CachedContent) *CachedContent {
	return fromGenAI(aiconv.FromAIPlatformCachedContent(cc))
}

// grpcError adds [ErrNotFound] to NotFound statuses.
func grpcError(err error) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
