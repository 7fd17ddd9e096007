// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/storage"
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"github.com/go-a2a/contextcache/caching"
	"github.com/go-a2a/contextcache/internal/config"
	"github.com/go-a2a/contextcache/media"
	"github.com/go-a2a/contextcache/model"
	"github.com/go-a2a/contextcache/pkg/logging"
)

// createResult is printed for every created cache.
type createResult struct {
	File string `json:"file"`
	Name string `json:"name"`
}

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create -f FILE [-f FILE...]",
		Short: "Create a context cache for each conversation file",
		Long: heredoc.Doc(`
			Create a context cache for each conversation file and print the resource names.

			A conversation file is YAML, or JSON when its name ends with .json:

			  model: gemini-1.5-pro-002
			  ttl: 30m
			  messages:
			    - role: system
			      text: You are a support agent for Example Corp.
			    - role: human
			      content:
			        - {type: text, text: "Here is the product manual."}
			        - {type: image_url, url: "gs://example-docs/manual.pdf"}
			  tools:
			    - name: lookup_order
			      description: Looks up an order by id
			      parameters:
			        type: object
			        properties:
			          order_id: {type: string}
			  tool_config:
			    function_calling_config: {mode: auto}

			Files are processed in parallel, at most --concurrency at a time.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			files, err := cmd.Flags().GetStringSlice("file")
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			backend, closeBackend, err := newBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, closeBackend())
			}()

			loader, closeLoader := newMediaLoader(ctx, cfg)
			defer func() {
				err = errors.Join(err, closeLoader())
			}()

			creator, err := caching.NewCreator(backend, caching.WithMediaLoader(loader))
			if err != nil {
				return err
			}

			results, err := createAll(ctx, creator, cfg, files)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), results)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceP("file", "f", nil, "conversation file (repeatable)")
	flags.String("model", config.DefaultModel, "model used when a file does not name one")
	flags.Duration("ttl", 0, "time to live of the caches")
	flags.String("expire_time", "", "RFC 3339 expiration of the caches")
	flags.String("display_name", "", "display name of the caches")
	flags.Int("concurrency", config.DefaultConcurrency, "number of caches created in parallel")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// createAll creates one cache per file, at most c.Concurrency at a time.
// Results are in the order of files.
func createAll(ctx context.Context, creator *caching.Creator, c *config.Config, files []string) ([]createResult, error) {
	results := make([]createResult, len(files))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.Concurrency)
	for i, file := range files {
		eg.Go(func() error {
			name, err := createOne(ctx, creator, c, file)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			results[i] = createResult{File: file, Name: name}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func createOne(ctx context.Context, creator *caching.Creator, c *config.Config, file string) (string, error) {
	conv, err := loadConversation(file)
	if err != nil {
		return "", err
	}

	modelName := conv.Model
	if modelName == "" {
		modelName = c.Model
	}

	var opts []caching.CreateOption

	ttl, err := conv.ttl()
	if err != nil {
		return "", err
	}
	expire, err := conv.expireTime()
	if err != nil {
		return "", err
	}
	if ttl == 0 && expire.IsZero() {
		ttl = c.TTL
		if expire, err = c.ExpireAt(); err != nil {
			return "", err
		}
	}
	if ttl != 0 {
		opts = append(opts, caching.WithTTL(ttl))
	}
	if !expire.IsZero() {
		opts = append(opts, caching.WithExpireTime(expire))
	}

	displayName := conv.DisplayName
	if displayName == "" {
		displayName = c.DisplayName
	}
	if displayName != "" {
		opts = append(opts, caching.WithDisplayName(displayName))
	}

	if len(conv.Tools) > 0 {
		opts = append(opts, caching.WithTools(conv.tools()...))
	}
	if conv.ToolConfig != nil {
		opts = append(opts, caching.WithToolConfig(conv.ToolConfig))
	}

	logging.FromContext(ctx).DebugContext(ctx, "Creating context cache",
		slog.String("file", file),
		slog.String("model", modelName),
	)
	return creator.Create(ctx, model.NewVertex(modelName, c.Project, c.Location), conv.history(), opts...)
}

// newMediaLoader returns a loader that resolves gs:// content types with Cloud Storage when
// a client can be created. The returned function releases the client.
func newMediaLoader(ctx context.Context, c *config.Config) (*media.Loader, func() error) {
	noop := func() error { return nil }
	if c.Backend == config.BackendMemory {
		return media.NewLoader(), noop
	}

	var opts []option.ClientOption
	if c.AccessToken != "" {
		opts = append(opts, option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: c.AccessToken,
			TokenType:   "Bearer",
		})))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "Cloud Storage is unavailable, gs:// media needs a known mime type",
			slog.Any("error", err),
		)
		return media.NewLoader(), noop
	}

	closeClient := func() error {
		if err := client.Close(); err != nil {
			return fmt.Errorf("close storage client: %w", err)
		}
		return nil
	}
	return media.NewLoader(media.WithStorageClient(client, c.Project)), closeClient
}
