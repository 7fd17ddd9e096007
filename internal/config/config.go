// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by [Load].
const EnvPrefix = "CONTEXTCACHE_"

// Backend names accepted by the backend key.
const (
	BackendGenAI      = "genai"
	BackendAIPlatform = "aiplatform"
	BackendMemory     = "memory"
)

// Defaults.
const (
	DefaultLocation    = "us-central1"
	DefaultModel       = "gemini-2.0-flash-001"
	DefaultBackend     = BackendGenAI
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "console"
	DefaultConcurrency = 4
)

// Config is the configuration of the contextcache command.
type Config struct {
	Project     string        `koanf:"project"`
	Location    string        `koanf:"location"`
	Model       string        `koanf:"model"`
	Backend     string        `koanf:"backend"`
	TTL         time.Duration `koanf:"ttl"`
	ExpireTime  string        `koanf:"expire_time"`
	DisplayName string        `koanf:"display_name"`
	AccessToken string        `koanf:"access_token"`
	Concurrency int           `koanf:"concurrency"`
	MetricsFile string        `koanf:"metrics_file"`
	Log         LogConfig     `koanf:"log"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Load reads the configuration from, in increasing precedence, the defaults, the YAML file
// named by the "config" flag (or $HOME/.contextcache/config.yaml), CONTEXTCACHE_ environment
// variables and flags set on the command line.
//
// GOOGLE_CLOUD_PROJECT and GOOGLE_CLOUD_LOCATION seed the project and location defaults.
func Load(flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	location := os.Getenv("GOOGLE_CLOUD_LOCATION")
	if location == "" {
		location = DefaultLocation
	}
	defaults := map[string]any{
		"project":     os.Getenv("GOOGLE_CLOUD_PROJECT"),
		"location":    location,
		"model":       DefaultModel,
		"backend":     DefaultBackend,
		"concurrency": DefaultConcurrency,
		"log.level":   DefaultLogLevel,
		"log.format":  DefaultLogFormat,
	}
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	configPath := ""
	if flags != nil {
		if flag := flags.Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		globalPath := filepath.Join(home, ".contextcache", "config.yaml")
		if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
			slog.Debug("Global config not found or invalid", slog.String("path", globalPath), slog.Any("error", err))
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps CONTEXTCACHE_LOG_LEVEL to log.level and CONTEXTCACHE_EXPIRE_TIME to expire_time.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "log_"); ok {
		return "log." + rest
	}
	return key
}

// Validate reports the first invalid setting of c.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendGenAI, BackendAIPlatform:
		if c.Project == "" {
			return errors.New("project is required, set --project or CONTEXTCACHE_PROJECT")
		}
		if c.Location == "" {
			return errors.New("location is required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q, want one of %s, %s, %s", c.Backend, BackendGenAI, BackendAIPlatform, BackendMemory)
	}

	if c.TTL < 0 {
		return fmt.Errorf("ttl must be positive, got %s", c.TTL)
	}
	expire, err := c.ExpireAt()
	if err != nil {
		return err
	}
	if c.TTL != 0 && !expire.IsZero() {
		return errors.New("ttl and expire_time are mutually exclusive")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	switch c.Log.Format {
	case "console", "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// ExpireAt parses ExpireTime as RFC 3339. An empty ExpireTime yields the zero time.
func (c *Config) ExpireAt() (time.Time, error) {
	if c.ExpireTime == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, c.ExpireTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse expire_time: %w", err)
	}
	return t, nil
}
