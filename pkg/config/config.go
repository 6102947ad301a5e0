// Package config loads the apiscout tool configuration.
//
// The configuration is a TOML file, by default
// $XDG_CONFIG_HOME/apiscout/config.toml. A missing file is not an error:
// [Load] returns [Default] in that case. Keys present in the file override
// the defaults; absent keys keep them.
//
//	registries = ["https://api.swaggerhub.com/v1/apis"]
//	mapping_path = "config/api_mapping.json"
//	timeout = "10s"
//
//	[cache]
//	backend = "file"
//	ttl = "1h"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/apiscout/pkg/buildinfo"
	"github.com/matzehuels/apiscout/pkg/cache"
	"github.com/matzehuels/apiscout/pkg/discovery"
	apierrors "github.com/matzehuels/apiscout/pkg/errors"
	"github.com/matzehuels/apiscout/pkg/httputil"
	"github.com/matzehuels/apiscout/pkg/integration"
)

const (
	appName  = "apiscout"
	fileName = "config.toml"

	// DefaultServerAddr is the listen address of the serve command.
	DefaultServerAddr = "127.0.0.1:8080"

	// DefaultCacheTTL is how long cached registry responses stay valid.
	DefaultCacheTTL = time.Hour
)

// Duration is a time.Duration written as a string ("10s", "1h30m") in TOML.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the tool configuration.
type Config struct {
	Registries  []string     `toml:"registries"`
	MappingPath string       `toml:"mapping_path"`
	ResolveURL  string       `toml:"resolve_url"`
	UserAgent   string       `toml:"user_agent"`
	Timeout     Duration     `toml:"timeout"`
	Retries     int          `toml:"retries"` // Total attempts per request
	Cache       CacheConfig  `toml:"cache"`
	Server      ServerConfig `toml:"server"`
}

// CacheConfig selects the registry response cache.
type CacheConfig struct {
	Backend string             `toml:"backend"` // none, file or redis
	TTL     Duration           `toml:"ttl"`
	Dir     string             `toml:"dir"` // File backend directory; defaults to the XDG cache dir
	Redis   cache.RedisOptions `toml:"redis"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Registries:  append([]string(nil), discovery.DefaultRegistries...),
		MappingPath: integration.DefaultPath,
		ResolveURL:  discovery.DefaultResolveURL,
		UserAgent:   buildinfo.UserAgent(),
		Timeout:     Duration(httputil.DefaultTimeout),
		Retries:     1,
		Cache: CacheConfig{
			Backend: cache.BackendNone,
			TTL:     Duration(DefaultCacheTTL),
		},
		Server: ServerConfig{Addr: DefaultServerAddr},
	}
}

// Load reads the configuration at path on top of Default. An empty path
// means DefaultPath. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, apierrors.Wrap(apierrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, apierrors.New(apierrors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no component can use.
func (c *Config) Validate() error {
	if len(c.Registries) == 0 {
		return apierrors.New(apierrors.ErrCodeInvalidConfig, "registries cannot be empty")
	}
	for _, r := range c.Registries {
		if err := apierrors.ValidateURL(r); err != nil {
			return apierrors.Wrap(apierrors.ErrCodeInvalidConfig, err, "invalid registry")
		}
	}
	if c.MappingPath == "" {
		return apierrors.New(apierrors.ErrCodeInvalidConfig, "mapping_path cannot be empty")
	}
	if strings.Count(c.ResolveURL, "%s") != 1 {
		return apierrors.New(apierrors.ErrCodeInvalidConfig, "resolve_url must contain exactly one %%s: %q", c.ResolveURL)
	}
	if c.Timeout < 0 {
		return apierrors.New(apierrors.ErrCodeInvalidConfig, "timeout cannot be negative")
	}
	if c.Retries < 1 {
		return apierrors.New(apierrors.ErrCodeInvalidConfig, "retries must be at least 1")
	}
	switch c.Cache.Backend {
	case cache.BackendNone, cache.BackendFile:
	case cache.BackendRedis:
		if c.Cache.Redis.Addr == "" {
			return apierrors.New(apierrors.ErrCodeInvalidConfig, "cache.redis.addr is required for the redis backend")
		}
	default:
		return apierrors.New(apierrors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

// Save writes the configuration as TOML, creating parent directories.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// CacheOptions converts the cache section to cache.Open options.
// An empty file cache dir falls back to CacheDir.
func (c *Config) CacheOptions() (cache.Options, error) {
	opts := cache.Options{Backend: c.Cache.Backend, Dir: c.Cache.Dir, Redis: c.Cache.Redis}
	if opts.Backend == cache.BackendFile && opts.Dir == "" {
		dir, err := CacheDir()
		if err != nil {
			return opts, err
		}
		opts.Dir = dir
	}
	return opts, nil
}

// ClientOptions converts the HTTP settings to httputil options. The cache is
// left to the caller.
func (c *Config) ClientOptions() httputil.Options {
	return httputil.Options{
		Timeout:  time.Duration(c.Timeout),
		Headers:  map[string]string{"User-Agent": c.UserAgent, "Accept": "application/json"},
		CacheTTL: time.Duration(c.Cache.TTL),
		Attempts: c.Retries,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/apiscout/config.toml, falling back to
// ~/.config/apiscout/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// CacheDir returns the response cache directory using the XDG standard
// (~/.cache/apiscout/).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
