// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/go-a2a/contextcache/internal/config"
	"github.com/go-a2a/contextcache/pkg/logging"
)

// cfg is loaded before any subcommand runs.
var cfg *config.Config

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contextcache",
		Short: "Manage Vertex AI context caches",
		Long: heredoc.Doc(`
			contextcache stores conversation prefixes as Vertex AI context caches.

			Settings are read from $HOME/.contextcache/config.yaml (or --config),
			CONTEXTCACHE_* environment variables and flags, in increasing precedence.
		`),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cmd.Flags())
			if err != nil {
				return err
			}

			logger := logging.New(cmd.ErrOrStderr(), logging.Format(cfg.Log.Format), logging.ParseLevel(cfg.Log.Level))
			slog.SetDefault(logger)
			cmd.SetContext(logging.NewContext(cmd.Context(), logger))
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.contextcache/config.yaml)")
	flags.String("project", "", "Google Cloud project")
	flags.String("location", config.DefaultLocation, "Google Cloud location")
	flags.String("backend", config.DefaultBackend, "cache backend (genai, aiplatform, memory)")
	flags.String("access_token", "", "OAuth2 access token used instead of Application Default Credentials")
	flags.String("metrics_file", "", "write prometheus metrics of backend calls to this file on exit")
	flags.String("log.level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.String("log.format", config.DefaultLogFormat, "log format (console, json, text)")

	cmd.AddCommand(
		newCreateCmd(),
		newGetCmd(),
		newListCmd(),
		newDeleteCmd(),
		newExtendCmd(),
	)
	return cmd
}

// Execute runs the root command and exits on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
