package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source kinds understood by SourceConfig.Kind.
const (
	SourceHTTP   = "http"
	SourceFile   = "file"
	SourceBucket = "bucket"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP   HTTPConfig   `yaml:"http"`
	Source SourceConfig `yaml:"source"`
	Cache  CacheConfig  `yaml:"cache"`
	View   ViewConfig   `yaml:"view"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// SourceConfig selects where data/<city>.json documents come from.
type SourceConfig struct {
	Kind    string        `yaml:"kind"`
	BaseURL string        `yaml:"baseUrl"`
	Dir     string        `yaml:"dir"`
	Timeout time.Duration `yaml:"timeout"`
	Bucket  BucketConfig  `yaml:"bucket"`
}

// BucketConfig contains S3-compatible object storage settings.
type BucketConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
}

// CacheConfig toggles the short-lived document cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Addr    string        `yaml:"addr"`
	Prefix  string        `yaml:"prefix"`
	TTL     time.Duration `yaml:"ttl"`
}

// ViewConfig controls session and rendering policies.
type ViewConfig struct {
	StalePolicy          string        `yaml:"stalePolicy"`
	TimestampPolicy      string        `yaml:"timestampPolicy"`
	TimestampPlaceholder string        `yaml:"timestampPlaceholder"`
	SessionIdleTTL       time.Duration `yaml:"sessionIdleTtl"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("SOURCE_KIND"); v != "" {
		cfg.Source.Kind = strings.ToLower(v)
	}
	if v := os.Getenv("SOURCE_BASE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("SOURCE_DIR"); v != "" {
		cfg.Source.Dir = v
	}
	if v := os.Getenv("SOURCE_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Source.Timeout = parsed
		}
	}
	if v := os.Getenv("SOURCE_BUCKET_ENDPOINT"); v != "" {
		cfg.Source.Bucket.Endpoint = v
	}
	if v := os.Getenv("SOURCE_BUCKET_ACCESS_KEY"); v != "" {
		cfg.Source.Bucket.AccessKey = v
	}
	if v := os.Getenv("SOURCE_BUCKET_SECRET_KEY"); v != "" {
		cfg.Source.Bucket.SecretKey = v
	}
	if v := os.Getenv("SOURCE_BUCKET_NAME"); v != "" {
		cfg.Source.Bucket.Bucket = v
	}
	if v := os.Getenv("SOURCE_BUCKET_REGION"); v != "" {
		cfg.Source.Bucket.Region = v
	}
	if v := os.Getenv("SOURCE_BUCKET_PREFIX"); v != "" {
		cfg.Source.Bucket.Prefix = v
	}
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = parseBool(v)
	}
	if v := os.Getenv("CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("CACHE_PREFIX"); v != "" {
		cfg.Cache.Prefix = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = parsed
		}
	}
	if v := os.Getenv("VIEW_STALE_POLICY"); v != "" {
		cfg.View.StalePolicy = v
	}
	if v := os.Getenv("VIEW_TIMESTAMP_POLICY"); v != "" {
		cfg.View.TimestampPolicy = v
	}
	if v := os.Getenv("VIEW_TIMESTAMP_PLACEHOLDER"); v != "" {
		cfg.View.TimestampPlaceholder = v
	}
	if v := os.Getenv("VIEW_SESSION_IDLE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.View.SessionIdleTTL = parsed
		}
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
		},
		Source: SourceConfig{
			Kind:    SourceFile,
			Dir:     "docs/data",
			Timeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: false,
			Prefix:  "activity",
			TTL:     time.Minute,
		},
		View: ViewConfig{
			StalePolicy:          "ignore_stale",
			TimestampPolicy:      "placeholder",
			TimestampPlaceholder: "unavailable",
			SessionIdleTTL:       30 * time.Minute,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	switch c.Source.Kind {
	case SourceHTTP:
		if strings.TrimSpace(c.Source.BaseURL) == "" {
			return errors.New("source.baseUrl cannot be empty for http sources")
		}
	case SourceFile:
		if strings.TrimSpace(c.Source.Dir) == "" {
			return errors.New("source.dir cannot be empty for file sources")
		}
	case SourceBucket:
		if strings.TrimSpace(c.Source.Bucket.Endpoint) == "" || strings.TrimSpace(c.Source.Bucket.Bucket) == "" {
			return errors.New("source.bucket.endpoint and source.bucket.bucket are required for bucket sources")
		}
	default:
		return fmt.Errorf("source.kind %q must be one of http, file, bucket", c.Source.Kind)
	}
	if c.Source.Timeout < 0 {
		return errors.New("source.timeout cannot be negative")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl cannot be negative")
	}
	if c.View.SessionIdleTTL < 0 {
		return errors.New("view.sessionIdleTtl cannot be negative")
	}
	switch c.View.StalePolicy {
	case "ignore_stale", "last_write_wins":
	default:
		return fmt.Errorf("view.stalePolicy %q must be ignore_stale or last_write_wins", c.View.StalePolicy)
	}
	switch c.View.TimestampPolicy {
	case "placeholder", "abort":
	default:
		return fmt.Errorf("view.timestampPolicy %q must be placeholder or abort", c.View.TimestampPolicy)
	}
	return nil
}
