// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"

	"github.com/go-a2a/contextcache/pkg/logging"
)

func TestFromContext(t *testing.T) {
	if got := logging.FromContext(context.Background()); got != slog.Default() {
		t.Errorf("FromContext() without logger = %p, want slog.Default()", got)
	}

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := logging.NewContext(context.Background(), logger)
	if got := logging.FromContext(ctx); got != logger {
		t.Errorf("FromContext() = %p, want %p", got, logger)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" DEBUG ": slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := logging.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(&buf, logging.FormatJSON, slog.LevelInfo)
		logger.Debug("hidden")
		logger.Info("cache created", slog.String("name", "projects/p/locations/l/cachedContents/1"))

		var record map[string]any
		if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
			t.Fatalf("decode record %q: %v", buf.String(), err)
		}
		if record["msg"] != "cache created" {
			t.Errorf("msg = %v, want %q", record["msg"], "cache created")
		}
		if record["name"] != "projects/p/locations/l/cachedContents/1" {
			t.Errorf("name = %v", record["name"])
		}
	})

	for _, format := range []logging.Format{logging.FormatText, logging.FormatConsole} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			logger := logging.New(&buf, format, slog.LevelWarn)
			logger.Info("hidden")
			logger.Warn("expiring soon")

			out := buf.String()
			if strings.Contains(out, "hidden") {
				t.Errorf("output %q contains a record below the level", out)
			}
			if !strings.Contains(out, "expiring soon") {
				t.Errorf("output %q is missing the warning", out)
			}
		})
	}
}
