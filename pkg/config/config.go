// Package config loads gridui settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/gridui/config.toml (falling back to
// ~/.config/gridui/config.toml). Every field is optional:
//
//	cols = 12
//	rows = 10
//	mode = "precise"
//	formats = ["svg", "json"]
//	row_overlay = true
//
//	[cache]
//	backend = "redis"        # none, file or redis
//	dir = "/tmp/gridui"      # file backend root
//	redis_addr = "localhost:6379"
//	redis_db = 0
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
//
// Command-line flags override what the file sets.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gridui/pkg/cache"
	"github.com/matzehuels/gridui/pkg/errors"
	"github.com/matzehuels/gridui/pkg/grid"
)

// AppName names the configuration and cache directories.
const AppName = "gridui"

// Config is the full set of file settings.
type Config struct {
	Cols       int      `toml:"cols"`
	Rows       int      `toml:"rows"`
	Mode       string   `toml:"mode"`
	Formats    []string `toml:"formats"`
	RowOverlay bool     `toml:"row_overlay"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the result cache.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	TTL       Duration `toml:"ttl"`
}

// ServerConfig configures `gridui serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a Go duration string ("90m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Mode:    string(grid.ModeFast),
		Formats: []string{"svg"},
		Cache: CacheConfig{
			Backend: string(cache.BackendFile),
			TTL:     Duration{cache.LayoutTTL},
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// DefaultPath returns the standard location of the config file.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// DefaultCacheDir returns the standard cache directory
// ($XDG_CACHE_HOME/gridui or ~/.cache/gridui).
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads the config file at path on top of the defaults. An empty path
// selects DefaultPath, where a missing file simply yields the defaults; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case os.IsNotExist(err) && !explicit:
		return Default(), nil
	case os.IsNotExist(err):
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", path)
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q in %s", undecoded[0].String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and keywords.
func (c *Config) Validate() error {
	if c.Cols < 0 || c.Rows < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cols and rows must not be negative, got %d×%d", c.Cols, c.Rows)
	}
	if _, err := grid.ParseMode(c.Mode); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "mode")
	}
	switch cache.Backend(c.Cache.Backend) {
	case "", cache.BackendNone, cache.BackendFile, cache.BackendRedis:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (must be none, file or redis)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	if c.Cache.RedisDB < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "redis_db must not be negative")
	}
	return nil
}

// CacheOptions converts the cache section into options for cache.Open.
// A file backend without a directory uses DefaultCacheDir.
func (c *Config) CacheOptions() cache.Options {
	opts := cache.Options{
		Backend: cache.Backend(c.Cache.Backend),
		Dir:     c.Cache.Dir,
		Redis: cache.RedisOptions{
			Addr: c.Cache.RedisAddr,
			DB:   c.Cache.RedisDB,
		},
	}
	if opts.Backend == cache.BackendFile && opts.Dir == "" {
		if dir, err := DefaultCacheDir(); err == nil {
			opts.Dir = dir
		}
	}
	return opts
}
