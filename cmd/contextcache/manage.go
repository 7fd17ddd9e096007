// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-a2a/contextcache/caching"
)

// withManager runs fn with a manager of the configured backend.
func withManager(cmd *cobra.Command, fn func(*caching.Manager) error) (err error) {
	backend, closeBackend, err := newBackend(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, closeBackend())
	}()

	manager, err := caching.NewManager(backend)
	if err != nil {
		return err
	}
	return fn(manager)
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Show the metadata of a context cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(m *caching.Manager) error {
				cc, err := m.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), cc)
			})
		},
	}
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the context caches of the project and location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := cmd.Flags().GetBool("all")
			if err != nil {
				return err
			}
			pageSize, err := cmd.Flags().GetInt32("page-size")
			if err != nil {
				return err
			}
			pageToken, err := cmd.Flags().GetString("page-token")
			if err != nil {
				return err
			}

			return withManager(cmd, func(m *caching.Manager) error {
				if !all {
					resp, err := m.List(cmd.Context(), &caching.ListOptions{PageSize: pageSize, PageToken: pageToken})
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), resp)
				}

				var caches []*caching.CachedContent
				for cc, err := range m.All(cmd.Context()) {
					if err != nil {
						return err
					}
					caches = append(caches, cc)
				}
				return printJSON(cmd.OutOrStdout(), caches)
			})
		},
	}
	cmd.Flags().Bool("all", false, "follow page tokens and print every cache")
	cmd.Flags().Int32("page-size", 0, "maximum number of caches per page")
	cmd.Flags().String("page-token", "", "token of the page to list")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME...",
		Short: "Delete context caches",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(m *caching.Manager) error {
				for _, name := range args {
					if err := m.Delete(cmd.Context(), name); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", name)
				}
				return nil
			})
		},
	}
}

func newExtendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extend NAME",
		Short: "Change the expiration of a context cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ttl, err := cmd.Flags().GetDuration("ttl")
			if err != nil {
				return err
			}
			expireTime, err := cmd.Flags().GetString("expire_time")
			if err != nil {
				return err
			}
			var expire time.Time
			if expireTime != "" {
				if expire, err = time.Parse(time.RFC3339, expireTime); err != nil {
					return fmt.Errorf("parse expire_time: %w", err)
				}
			}

			return withManager(cmd, func(m *caching.Manager) error {
				cc, err := m.UpdateExpiration(cmd.Context(), args[0], caching.Expiration{TTL: ttl, ExpireTime: expire})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), cc)
			})
		},
	}
	cmd.Flags().Duration("ttl", 0, "new time to live, counted from now")
	cmd.Flags().String("expire_time", "", "new RFC 3339 expiration")
	cmd.MarkFlagsOneRequired("ttl", "expire_time")
	cmd.MarkFlagsMutuallyExclusive("ttl", "expire_time")
	return cmd
}
