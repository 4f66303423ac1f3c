// Package config loads taggraph settings from a TOML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the config file, environment
// variables, command-line flags (applied by the caller).
//
//	endpoint  = "http://localhost:9999/graphql"
//	api_key   = "..."
//	timeout   = "10s"
//	retries   = 2
//	plugin_id = "tagGraph"
//	height    = 1080
//
//	[cache]
//	backend = "file"   # file, none, redis, mongo
//	ttl     = "5m"
//
//	[exclude]
//	ids         = ["12"]
//	names       = ["Meta*"]
//	filter_file = "exclude.yaml"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/taggraph/pkg/cache"
	"github.com/matzehuels/taggraph/pkg/errors"
	"github.com/matzehuels/taggraph/pkg/plugin"
	"github.com/matzehuels/taggraph/pkg/render/vis"
)

const appName = "taggraph"

// DefaultEndpoint is the GraphQL endpoint of a local server.
const DefaultEndpoint = "http://localhost:9999/graphql"

// Environment variables.
const (
	EnvEndpoint = "TAGGRAPH_ENDPOINT"
	EnvAPIKey   = "TAGGRAPH_API_KEY"
)

// Duration is a time.Duration written as a string ("10s", "5m") in TOML.
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full taggraph configuration.
type Config struct {
	Endpoint string   `toml:"endpoint"`
	APIKey   string   `toml:"api_key"`
	Timeout  Duration `toml:"timeout"`
	Retries  int      `toml:"retries"`
	PluginID string   `toml:"plugin_id"`
	Height   int      `toml:"height"`

	Cache   CacheConfig   `toml:"cache"`
	Exclude ExcludeConfig `toml:"exclude"`

	// Path is the file the config was read from, empty when none was found.
	Path string `toml:"-"`
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
}

// ExcludeConfig holds default exclusions applied to every draw.
type ExcludeConfig struct {
	IDs        []string `toml:"ids"`
	Names      []string `toml:"names"`
	FilterFile string   `toml:"filter_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Endpoint: DefaultEndpoint,
		Timeout:  Duration{10 * time.Second},
		PluginID: plugin.DefaultID,
		Height:   vis.DefaultHeight,
		Cache: CacheConfig{
			Backend: cache.BackendNone,
			TTL:     Duration{cache.TTLQuery},
		},
	}
}

// Load reads path, or the default location when path is empty, and applies
// environment overrides. A missing file at the default location is not an
// error; a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		switch {
		case err == nil:
			cfg.Path = path
			if undec := md.Undecoded(); len(undec) > 0 {
				return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undec[0].String())
			}
		case os.IsNotExist(err) && !explicit:
		default:
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
		}
	}

	cfg.applyEnv()
	if cfg.Path != "" && cfg.Exclude.FilterFile != "" && !filepath.IsAbs(cfg.Exclude.FilterFile) {
		cfg.Exclude.FilterFile = filepath.Join(filepath.Dir(cfg.Path), cfg.Exclude.FilterFile)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := errors.ValidateEndpoint(c.Endpoint); err != nil {
		return err
	}
	if c.Retries < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "retries must be >= 0, got %d", c.Retries)
	}
	if c.Timeout.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout must be >= 0")
	}
	if c.Height < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "height must be >= 0, got %d", c.Height)
	}
	if err := errors.ValidatePluginID(c.PluginID); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendNone, cache.BackendRedis, cache.BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (must be one of: file, none, redis, mongo)", c.Cache.Backend)
	}
	if c.Cache.Backend == cache.BackendMongo && c.Cache.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache backend mongo requires mongo_uri")
	}
	for _, id := range c.Exclude.IDs {
		if err := errors.ValidateTagID(id); err != nil {
			return err
		}
	}
	for _, p := range c.Exclude.Names {
		if err := errors.ValidatePattern(p); err != nil {
			return err
		}
	}
	return nil
}

// CacheOptions converts the cache section for cache.Open. An empty
// directory resolves to CacheDir.
func (c *Config) CacheOptions() (cache.Options, error) {
	opts := cache.Options{
		Backend:       c.Cache.Backend,
		Dir:           c.Cache.Dir,
		RedisAddr:     c.Cache.RedisAddr,
		RedisPassword: c.Cache.RedisPassword,
		RedisDB:       c.Cache.RedisDB,
		MongoURI:      c.Cache.MongoURI,
		MongoDatabase: c.Cache.MongoDatabase,
	}
	if opts.Dir == "" && (opts.Backend == "" || opts.Backend == cache.BackendFile) {
		dir, err := CacheDir()
		if err != nil {
			return cache.Options{}, err
		}
		opts.Dir = dir
	}
	return opts, nil
}

// FileCacheDir returns the directory the file backend uses: the configured
// dir, or CacheDir. It resolves regardless of the selected backend.
func (c *Config) FileCacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return CacheDir()
}

// DefaultPath returns $XDG_CONFIG_HOME/taggraph/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns $XDG_CACHE_HOME/taggraph, falling back to ~/.cache.
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
