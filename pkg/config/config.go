// Package config resolves the process configuration from layered sources.
//
// Precedence (high -> low):
//  1. command line flags
//  2. environment (NOBEL_* plus the legacy LOG_LEVEL, OUTPUT_DIR and PORT)
//  3. optional YAML/JSON file (--config or NOBEL_CONFIG)
//  4. defaults
//
// The resolved Config is the only thing the rest of the program sees.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/nobel-prize-cache/pkg/cache"
)

// Cache backends.
const (
	BackendMemory = cache.BackendMemory
	BackendLRU    = cache.BackendLRU
	BackendRedis  = cache.BackendRedis
)

// Config contains the fully resolved process configuration.
type Config struct {
	// APIBaseURL is the upstream API root.
	APIBaseURL string `koanf:"api_base_url"`

	// UserAgent is sent with every upstream request.
	UserAgent string `koanf:"user_agent"`

	// RequestTimeout bounds one upstream request.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// RequestsPerSecond paces upstream requests; 0 disables pacing.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// CacheTTL applies uniformly to every cache entry.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// CacheSweepInterval runs the memory store janitor; 0 leaves only lazy expiry.
	CacheSweepInterval time.Duration `koanf:"cache_sweep_interval"`

	// CacheBackend is one of memory, lru, redis.
	CacheBackend string `koanf:"cache_backend"`

	// CacheCapacity bounds the lru backend.
	CacheCapacity int `koanf:"cache_capacity"`

	RedisAddr   string `koanf:"redis_addr"`
	RedisPrefix string `koanf:"redis_prefix"`

	// StatsSampleSize is the limit applied to statistics queries without one.
	StatsSampleSize int `koanf:"stats_sample_size"`

	// Coalesce merges concurrent cache misses for one query.
	Coalesce bool `koanf:"coalesce"`

	// Addr is the HTTP listen address, e.g. ":3000".
	Addr string `koanf:"addr"`

	// StaticDir is served at / when set.
	StaticDir string `koanf:"static_dir"`

	OutputDir  string `koanf:"output_dir"`
	OutputFile string `koanf:"output_file"`

	// Format is the export format: json or csv.
	Format string `koanf:"format"`

	LogLevel  string `koanf:"log_level"`
	LogPretty bool   `koanf:"log_pretty"`

	// Year and Category filter the export.
	Year     int    `koanf:"year"`
	Category string `koanf:"category"`

	// FetchAll exports every page of the filtered set.
	FetchAll bool `koanf:"fetch_all"`

	PageSize       int `koanf:"page_size"`
	MaxConcurrency int `koanf:"max_concurrency"`
}

// Defaults returns the lowest-precedence configuration layer.
func Defaults() map[string]any {
	return map[string]any{
		"api_base_url":         "https://api.nobelprize.org/2.1",
		"user_agent":           "nobel-prize-cache/1.0",
		"request_timeout":      30 * time.Second,
		"requests_per_second":  5.0,
		"cache_ttl":            time.Hour,
		"cache_sweep_interval": 10 * time.Minute,
		"cache_backend":        BackendMemory,
		"cache_capacity":       1000,
		"redis_addr":           "",
		"redis_prefix":         "nobel-cache",
		"stats_sample_size":    100,
		"coalesce":             false,
		"addr":                 ":3000",
		"static_dir":           "",
		"output_dir":           "./output",
		"output_file":          "nobel_analysis.json",
		"format":               "json",
		"log_level":            "info",
		"log_pretty":           false,
		"year":                 0,
		"category":             "",
		"fetch_all":            false,
		"page_size":            100,
		"max_concurrency":      4,
	}
}

// Validate checks the resolved configuration.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.APIBaseURL) == "" {
		errs = append(errs, errors.New("api_base_url must not be empty"))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("cache_ttl must be positive (got %s)", c.CacheTTL))
	}
	if c.CacheSweepInterval < 0 {
		errs = append(errs, fmt.Errorf("cache_sweep_interval must not be negative (got %s)", c.CacheSweepInterval))
	}
	if c.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("requests_per_second must not be negative (got %g)", c.RequestsPerSecond))
	}

	switch c.CacheBackend {
	case BackendMemory:
	case BackendLRU:
		if c.CacheCapacity <= 0 {
			errs = append(errs, fmt.Errorf("cache_capacity must be positive for the lru backend (got %d)", c.CacheCapacity))
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache_backend %q (want memory, lru or redis)", c.CacheBackend))
	}

	switch strings.ToLower(c.Format) {
	case "json", "csv":
	default:
		errs = append(errs, fmt.Errorf("unknown format %q (want json or csv)", c.Format))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}

	if c.StatsSampleSize <= 0 {
		errs = append(errs, fmt.Errorf("stats_sample_size must be positive (got %d)", c.StatsSampleSize))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page_size must be positive (got %d)", c.PageSize))
	}
	if c.MaxConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("max_concurrency must be positive (got %d)", c.MaxConcurrency))
	}

	return errors.Join(errs...)
}
