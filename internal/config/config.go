// Package config loads the invitation service configuration.
//
// Values start from Default, are overlaid by an optional YAML file and then
// by INVITATIONS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/roach88/invitations/internal/cache"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

var (
	validBackends   = []string{CacheNone, CacheMemory, CacheRedis}
	validLevels     = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"json", "console"}
)

// Config is the complete service configuration.
type Config struct {
	// DatabasePath is the SQLite file. ":memory:" is accepted for tests.
	DatabasePath string `yaml:"database_path" env:"DATABASE_PATH"`

	// ComponentsFile is an optional CUE component registry.
	ComponentsFile string `yaml:"components_file" env:"COMPONENTS_FILE"`

	Cache CacheConfig `yaml:"cache" envPrefix:"CACHE_"`
	Log   LogConfig   `yaml:"log" envPrefix:"LOG_"`
}

// CacheConfig selects and sizes the cache backend.
type CacheConfig struct {
	Backend     string      `yaml:"backend" env:"BACKEND"`
	MemoryBytes int         `yaml:"memory_bytes" env:"MEMORY_BYTES"`
	Redis       RedisConfig `yaml:"redis" envPrefix:"REDIS_"`
}

// RedisConfig holds the redis connection settings.
type RedisConfig struct {
	Mode        string        `yaml:"mode" env:"MODE"`
	Address     string        `yaml:"address" env:"ADDRESS"`
	Password    string        `yaml:"password" env:"PASSWORD"`
	DB          int           `yaml:"db" env:"DB"`
	MasterName  string        `yaml:"master_name" env:"MASTER_NAME"`
	Prefix      string        `yaml:"prefix" env:"PREFIX"`
	TTL         time.Duration `yaml:"ttl" env:"TTL"`
	DialTimeout time.Duration `yaml:"dial_timeout" env:"DIAL_TIMEOUT"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		DatabasePath: "invitations.db",
		Cache: CacheConfig{
			Backend:     CacheMemory,
			MemoryBytes: cache.DefaultMemoryBytes,
			Redis: RedisConfig{
				Mode:        "single",
				Address:     "localhost:6379",
				Prefix:      "invitations:",
				TTL:         time.Hour,
				DialTimeout: 5 * time.Second,
			},
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Load builds a Config from the defaults, the YAML file at path (skipped
// when path is empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "INVITATIONS_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown enumerations and impossible sizes.
func (c Config) Validate() error {
	var errs []error
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path is required"))
	}
	if !slices.Contains(validBackends, c.Cache.Backend) {
		errs = append(errs, fmt.Errorf("cache.backend %q: must be one of %v", c.Cache.Backend, validBackends))
	}
	if c.Cache.MemoryBytes < 0 {
		errs = append(errs, errors.New("cache.memory_bytes must not be negative"))
	}
	if c.Cache.Backend == CacheRedis && c.Cache.Redis.Address == "" {
		errs = append(errs, errors.New("cache.redis.address is required for the redis backend"))
	}
	if !slices.Contains(validLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level %q: must be one of %v", c.Log.Level, validLevels))
	}
	if !slices.Contains(validLogFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format %q: must be one of %v", c.Log.Format, validLogFormats))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// RedisCache converts the redis settings to the cache package's form.
func (c Config) RedisCache() cache.RedisConfig {
	r := c.Cache.Redis
	return cache.RedisConfig{
		Mode:        r.Mode,
		Address:     r.Address,
		Password:    r.Password,
		DB:          r.DB,
		MasterName:  r.MasterName,
		Prefix:      r.Prefix,
		TTL:         r.TTL,
		DialTimeout: r.DialTimeout,
	}
}
