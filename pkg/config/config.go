// Package config loads client configuration from defaults, an
// optional YAML file, and GROKIPEDIA_-prefixed environment variables,
// in that order of precedence (lowest first).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

const envPrefix = "GROKIPEDIA_"

// Config is the full client configuration surface.
type Config struct {
	// BaseURL is the origin serving article pages.
	BaseURL string `koanf:"base_url"`

	// Timeout applies to each HTTP attempt.
	Timeout time.Duration `koanf:"timeout"`

	// CacheSize bounds the article LRU cache.
	CacheSize int `koanf:"cache_size"`

	// RateLimit is the minimum interval between outbound requests.
	// Zero disables rate limiting.
	RateLimit time.Duration `koanf:"rate_limit"`

	// MaxRetries bounds retries after the first attempt. Zero
	// disables retrying.
	MaxRetries int `koanf:"max_retries"`

	// SkipTLSVerify disables certificate verification.
	SkipTLSVerify bool `koanf:"skip_tls_verify"`

	// ClientCert and ClientKey are optional PEM paths for mutual TLS.
	ClientCert string `koanf:"client_cert"`
	ClientKey  string `koanf:"client_key"`

	// UserAgent overrides the default User-Agent header.
	UserAgent string `koanf:"user_agent"`

	// LinksDir is the sitemap export directory the slug index loads
	// from.
	LinksDir string `koanf:"links_dir"`

	// Fuzzy controls whether the slug index builds its BK-tree.
	Fuzzy bool `koanf:"fuzzy"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:    "https://grokipedia.com",
		Timeout:    30 * time.Second,
		CacheSize:  1000,
		RateLimit:  time.Second,
		MaxRetries: 3,
		LinksDir:   "links",
		Fuzzy:      true,
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped
// when path is empty or the file does not exist), and environment
// variables like GROKIPEDIA_BASE_URL.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	defaults := Default()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"base_url":    defaults.BaseURL,
		"timeout":     defaults.Timeout,
		"cache_size":  defaults.CacheSize,
		"rate_limit":  defaults.RateLimit,
		"max_retries": defaults.MaxRetries,
		"links_dir":   defaults.LinksDir,
		"fuzzy":       defaults.Fuzzy,
	}, "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
