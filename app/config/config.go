package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultPort used when PORT is unset or not a valid TCP port
const DefaultPort = 3000

// Cache backends accepted by cache.backend
const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendMongo  = "mongo"
	CacheBackendHybrid = "hybrid"
)

type AppConfig struct {
	Port int    `json:"port"`
	Env  string `json:"env"`
}

type CORSConfig struct {
	Allowlist []string `json:"allowlist"`
}

type AuthConfig struct {
	Enabled bool `json:"enabled"`
}

type CacheConfig struct {
	Backend string        `json:"backend"`
	L1Size  int           `json:"l1_size"`
	TTL     time.Duration `json:"ttl"`
}

type RedisConfig struct {
	URL string `json:"url"`
}

type MongoConfig struct {
	URL      string `json:"url"`
	Database string `json:"database"`
}

type BatchConfig struct {
	MaxAddresses int `json:"max_addresses"`
	Workers      int `json:"workers"`
}

// Config runtime configuration of the validator service and worker
type Config struct {
	App   AppConfig   `json:"app"`
	CORS  CORSConfig  `json:"cors"`
	Auth  AuthConfig  `json:"auth"`
	Cache CacheConfig `json:"cache"`
	Redis RedisConfig `json:"redis"`
	Mongo MongoConfig `json:"mongo"`
	Batch BatchConfig `json:"batch"`
}

// IsProduction reports whether app.env is "production"
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

// Load reads defaults, an optional app.yaml from configPaths (default
// ./config and .) and environment variables, in increasing precedence.
// A missing config file is not an error.
func Load(configPaths ...string) (Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("yaml")
	if len(configPaths) == 0 {
		configPaths = []string{"./config", "."}
	}
	for _, path := range configPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// PORT wins over APP_PORT
	_ = v.BindEnv("app.port", "PORT", "APP_PORT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		App: AppConfig{
			Port: ParsePort(v.GetString("app.port")),
			Env:  v.GetString("app.env"),
		},
		CORS: CORSConfig{
			Allowlist: ParseCORSAllowlist(strings.Join(v.GetStringSlice("cors.allowlist"), ",")),
		},
		Auth: AuthConfig{
			Enabled: v.GetBool("auth.enabled"),
		},
		Cache: CacheConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("cache.backend"))),
			L1Size:  v.GetInt("cache.l1_size"),
			TTL:     v.GetDuration("cache.ttl"),
		},
		Redis: RedisConfig{
			URL: v.GetString("redis.url"),
		},
		Mongo: MongoConfig{
			URL:      v.GetString("mongo.url"),
			Database: v.GetString("mongo.database"),
		},
		Batch: BatchConfig{
			MaxAddresses: v.GetInt("batch.max_addresses"),
			Workers:      v.GetInt("batch.workers"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", DefaultPort)
	v.SetDefault("app.env", "development")
	v.SetDefault("cors.allowlist", "")
	v.SetDefault("auth.enabled", false)
	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.l1_size", 10000)
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("redis.url", "redis://localhost:6379")
	v.SetDefault("mongo.url", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "address_validator")
	v.SetDefault("batch.max_addresses", 1000)
	v.SetDefault("batch.workers", 8)
}

// Validate checks values that have no sensible fallback.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case CacheBackendNone, CacheBackendMemory, CacheBackendRedis, CacheBackendMongo, CacheBackendHybrid:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	if c.Cache.L1Size <= 0 {
		return fmt.Errorf("cache.l1_size must be positive, got %d", c.Cache.L1Size)
	}
	if c.Batch.MaxAddresses <= 0 {
		return fmt.Errorf("batch.max_addresses must be positive, got %d", c.Batch.MaxAddresses)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("batch.workers must be positive, got %d", c.Batch.Workers)
	}

	return nil
}

// ParsePort returns raw as a port number, or DefaultPort when raw is empty,
// not an integer, or outside 1..65535.
func ParsePort(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultPort
	}

	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 || port > 65535 {
		return DefaultPort
	}

	return port
}

// ParseCORSAllowlist splits a comma-separated origin list, trimming entries,
// dropping empties and duplicates while keeping first-seen order.
func ParseCORSAllowlist(raw string) []string {
	origins := []string{}
	seen := make(map[string]struct{})

	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if _, ok := seen[origin]; ok {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}

	return origins
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}

	for _, filename := range filenames {
		if err := godotenv.Load(filename); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", filename, err)
		}
	}

	return nil
}
