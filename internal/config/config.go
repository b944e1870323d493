// Package config loads chartgeom's optional TOML configuration file and
// applies environment overrides.
//
// The file lives at $XDG_CONFIG_HOME/chartgeom/config.toml (falling back to
// ~/.config/chartgeom/config.toml) unless a path is given explicitly:
//
//	[cache]
//	backend = "redis"          # file, memory, redis, mongo or none
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	log_file = "/var/log/chartgeom/server.log"
//
//	[chart]
//	width = 640
//	height = 320
//	formats = ["svg", "png"]
//
// Environment variables win over the file:
//
//	CHARTGEOM_CACHE       cache backend
//	CHARTGEOM_REDIS_ADDR  redis address (implies backend "redis" when no backend is set)
//	CHARTGEOM_MONGO_URI   mongo URI (implies backend "mongo" when no backend is set)
package config

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/chartgeom/pkg/cache"
	"github.com/matzehuels/chartgeom/pkg/errors"
)

// AppName is used for XDG directories.
const AppName = "chartgeom"

// Environment variable names.
const (
	EnvCache     = "CHARTGEOM_CACHE"
	EnvRedisAddr = "CHARTGEOM_REDIS_ADDR"
	EnvMongoURI  = "CHARTGEOM_MONGO_URI"
)

// Config is the full configuration.
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Chart  ChartConfig  `toml:"chart"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend  string      `toml:"backend"`
	Dir      string      `toml:"dir"`
	MemoryMB int64       `toml:"memory_mb"`
	Redis    RedisConfig `toml:"redis"`
	Mongo    MongoConfig `toml:"mongo"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr   string `toml:"addr"`
	DB     int    `toml:"db"`
	Prefix string `toml:"prefix"`
}

// MongoConfig configures the mongo backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures `chartgeom serve`.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	RequestTimeout Duration `toml:"request_timeout"`
	MaxBodyMB      int64    `toml:"max_body_mb"`
	LogFile        string   `toml:"log_file"`
	LogMaxSizeMB   int      `toml:"log_max_size_mb"`
	LogMaxBackups  int      `toml:"log_max_backups"`
	LogMaxAgeDays  int      `toml:"log_max_age_days"`
}

// ChartConfig holds defaults for rendering.
type ChartConfig struct {
	Width   float64  `toml:"width"`
	Height  float64  `toml:"height"`
	Formats []string `toml:"formats"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct{ time.Duration }

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

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Backend:  cache.BackendFile,
			MemoryMB: cache.DefaultMemoryBytes >> 20,
			Redis:    RedisConfig{Prefix: AppName + ":"},
			Mongo:    MongoConfig{Database: AppName, Collection: "cache"},
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: Duration{30 * time.Second},
			MaxBodyMB:      8,
			LogMaxSizeMB:   100,
			LogMaxBackups:  3,
			LogMaxAgeDays:  28,
		},
	}
}

// =============================================================================
// Loading
// =============================================================================

// Load reads the config file at path over the defaults and applies
// environment overrides. An empty path means the XDG location, where a
// missing file is not an error; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !os.IsNotExist(err) {
				return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", path)
			}
			if explicit {
				return Config{}, errors.Wrap(errors.ErrCodeNotFound, err, "load %s", path)
			}
		}
	}

	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv applies environment overrides read through getenv.
func (c *Config) applyEnv(getenv func(string) string) {
	backend := getenv(EnvCache)
	if addr := getenv(EnvRedisAddr); addr != "" {
		c.Cache.Redis.Addr = addr
		if backend == "" {
			backend = cache.BackendRedis
		}
	}
	if uri := getenv(EnvMongoURI); uri != "" {
		c.Cache.Mongo.URI = uri
		if backend == "" {
			backend = cache.BackendMongo
		}
	}
	if backend != "" {
		c.Cache.Backend = backend
	}
}

// Validate checks the backend name and numeric limits.
func (c Config) Validate() error {
	backends := []string{cache.BackendNone, cache.BackendFile, cache.BackendMemory, cache.BackendRedis, cache.BackendMongo}
	if c.Cache.Backend != "" && !slices.Contains(backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == cache.BackendRedis && c.Cache.Redis.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "redis cache needs cache.redis.addr or %s", EnvRedisAddr)
	}
	if c.Cache.Backend == cache.BackendMongo && c.Cache.Mongo.URI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "mongo cache needs cache.mongo.uri or %s", EnvMongoURI)
	}
	if c.Cache.MemoryMB < 0 || c.Server.MaxBodyMB < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "size limits must not be negative")
	}
	if err := errors.ValidateNonNegative("chart.width", c.Chart.Width); err != nil {
		return err
	}
	return errors.ValidateNonNegative("chart.height", c.Chart.Height)
}

// CacheOptions converts the cache section into backend options. A file
// backend without a directory uses the XDG cache directory.
func (c Config) CacheOptions() (cache.Options, error) {
	opts := cache.Options{
		Backend:         c.Cache.Backend,
		Dir:             c.Cache.Dir,
		MemoryBytes:     c.Cache.MemoryMB << 20,
		RedisAddr:       c.Cache.Redis.Addr,
		RedisDB:         c.Cache.Redis.DB,
		RedisPrefix:     c.Cache.Redis.Prefix,
		MongoURI:        c.Cache.Mongo.URI,
		MongoDatabase:   c.Cache.Mongo.Database,
		MongoCollection: c.Cache.Mongo.Collection,
	}
	if opts.Backend == cache.BackendFile && opts.Dir == "" {
		dir, err := CacheDir()
		if err != nil {
			return cache.Options{}, errors.Wrap(errors.ErrCodeInternal, err, "resolve cache dir")
		}
		opts.Dir = dir
	}
	return opts, nil
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns the config file location using the XDG standard
// (~/.config/chartgeom/config.toml).
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the cache directory using the XDG standard (~/.cache/chartgeom/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
