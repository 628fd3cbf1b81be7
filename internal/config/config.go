// Package config loads server configuration.
//
// Values are layered, later sources winning:
//
//  1. defaults from [Default]
//  2. an optional TOML file
//  3. environment variables prefixed with KAWAII_, e.g. KAWAII_SERVER_ADDR or
//     KAWAII_STORE_REDIS_ADDR
//  4. command-line flags, applied by the caller
//
// A minimal file:
//
//	[server]
//	addr = ":8080"
//
//	[store]
//	backend = "redis"
//	[store.redis]
//	addr = "localhost:6379"
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/kelseyhightower/envconfig"

	"github.com/matzehuels/kawaiicounter/pkg/background"
	"github.com/matzehuels/kawaiicounter/pkg/service"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "KAWAII"

// Store backends.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
)

// Config is the complete server configuration.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Store       StoreConfig       `toml:"store"`
	Backgrounds BackgroundsConfig `toml:"backgrounds"`
	Cache       CacheConfig       `toml:"cache"`
	Badge       BadgeConfig       `toml:"badge"`
	RateLimit   RateLimitConfig   `toml:"ratelimit" envconfig:"ratelimit"`
	Log         LogConfig         `toml:"log"`
}

type ServerConfig struct {
	Addr           string        `toml:"addr"`
	ReadTimeout    time.Duration `toml:"read_timeout" envconfig:"read_timeout"`
	WriteTimeout   time.Duration `toml:"write_timeout" envconfig:"write_timeout"`
	MaxUploadBytes int64         `toml:"max_upload_bytes" envconfig:"max_upload_bytes"`
}

type StoreConfig struct {
	Backend string      `toml:"backend"`
	Path    string      `toml:"path"`
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Key      string `toml:"key"`
}

type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

type BackgroundsConfig struct {
	Dir string `toml:"dir"`
	Fit string `toml:"fit"`
}

// CacheConfig configures the rasterized badge cache. The redis backend reuses
// the store's redis connection settings.
type CacheConfig struct {
	Backend string        `toml:"backend"`
	Dir     string        `toml:"dir"`
	TTL     time.Duration `toml:"ttl"`
	MaxCost int64         `toml:"max_cost" envconfig:"max_cost"`
}

type BadgeConfig struct {
	Format string `toml:"format"`
}

// RateLimitConfig bounds mutating requests per client. RPS 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `toml:"rps"`
	Burst int     `toml:"burst"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			MaxUploadBytes: 5 << 20,
		},
		Store: StoreConfig{
			Backend: StoreFile,
			Path:    "data/counters.json",
			Redis: RedisConfig{
				Addr: "localhost:6379",
				Key:  "kawaii:counters",
			},
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "kawaii",
				Collection: "snapshots",
			},
		},
		Backgrounds: BackgroundsConfig{
			Dir: "data/backgrounds",
			Fit: string(background.FitStretch),
		},
		Cache: CacheConfig{
			Backend: CacheMemory,
			Dir:     "data/cache",
			TTL:     24 * time.Hour,
			MaxCost: 64 << 20,
		},
		Badge:     BadgeConfig{Format: string(service.FormatSVG)},
		RateLimit: RateLimitConfig{RPS: 5, Burst: 20},
		Log:       LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, the TOML file at path (if not
// empty), and the environment. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown enum values and unusable settings.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}

	switch c.Store.Backend {
	case StoreFile:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the file backend")
		}
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for the redis backend")
		}
	case StoreMongo:
		if c.Store.Mongo.URI == "" || c.Store.Mongo.Database == "" || c.Store.Mongo.Collection == "" {
			return fmt.Errorf("store.mongo uri, database and collection are required for the mongo backend")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("store.backend %q: must be one of file, redis, mongo, memory", c.Store.Backend)
	}

	if c.Backgrounds.Dir == "" {
		return fmt.Errorf("backgrounds.dir is required")
	}
	if _, ok := background.ParseFit(c.Backgrounds.Fit); !ok {
		return fmt.Errorf("backgrounds.fit %q: must be stretch or crop", c.Backgrounds.Fit)
	}

	switch c.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheFile:
		if c.Cache.Dir == "" {
			return fmt.Errorf("cache.dir is required for the file backend")
		}
	case CacheRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for the redis cache")
		}
	default:
		return fmt.Errorf("cache.backend %q: must be one of none, memory, file, redis", c.Cache.Backend)
	}

	if _, ok := service.ParseFormat(c.Badge.Format); !ok {
		return fmt.Errorf("badge.format %q: must be svg or png", c.Badge.Format)
	}

	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("ratelimit.rps must not be negative")
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1 {
		return fmt.Errorf("ratelimit.burst must be at least 1")
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level %q: %w", c.Log.Level, err)
	}
	return nil
}

// Fit returns the parsed background fit. Call after Validate.
func (c Config) Fit() background.Fit {
	fit, _ := background.ParseFit(c.Backgrounds.Fit)
	return fit
}

// Format returns the parsed default badge format. Call after Validate.
func (c Config) Format() service.Format {
	f, _ := service.ParseFormat(c.Badge.Format)
	return f
}
