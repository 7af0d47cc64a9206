// Package config reads the simples3 binary configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/cache"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/internal/keyenc"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/s3types"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheBadger = "badger"
)

// Config is the full binary configuration.
type Config struct {
	S3       S3Config
	Cache    CacheConfig
	Log      LogConfig
	HTTPAddr string

	// DataDir bounds the local paths HTTP callers can read and write.
	DataDir string
}

type S3Config struct {
	Region           string
	Endpoint         string
	AccessKeyID      string
	SecretAccessKey  string
	SessionToken     string
	ForcePathStyle   bool
	SSLVerify        bool
	MaxRetries       int
	Timeout          time.Duration
	KeyEncoder       string
	BatchConcurrency int
}

type CacheConfig struct {
	Backend    string
	Dir        string
	TTL        time.Duration
	MaxEntries int
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads the configuration. Variables from a .env file in the working
// directory, or from the files given, fill in what the environment lacks.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}

	r := &reader{}
	cfg := Config{
		S3: S3Config{
			Region:           getEnv("S3_REGION", ""),
			Endpoint:         getEnv("S3_ENDPOINT", ""),
			AccessKeyID:      getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey:  getEnv("S3_SECRET_ACCESS_KEY", ""),
			SessionToken:     getEnv("S3_SESSION_TOKEN", ""),
			ForcePathStyle:   r.bool("S3_FORCE_PATH_STYLE", false),
			SSLVerify:        r.bool("S3_SSL_VERIFY", true),
			MaxRetries:       r.int("S3_MAX_RETRIES", 3),
			Timeout:          r.duration("S3_TIMEOUT", 0),
			KeyEncoder:       getEnv("S3_KEY_ENCODER", "none"),
			BatchConcurrency: r.int("S3_BATCH_CONCURRENCY", 25),
		},
		Cache: CacheConfig{
			Backend:    strings.ToLower(getEnv("CACHE_BACKEND", CacheNone)),
			Dir:        getEnv("CACHE_DIR", ".simples3-cache"),
			TTL:        r.duration("CACHE_TTL", 15*time.Minute),
			MaxEntries: r.int("CACHE_MAX_ENTRIES", 1000),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		DataDir:  getEnv("HTTP_DATA_DIR", "data"),
	}
	if r.err != nil {
		return Config{}, r.err
	}

	switch cfg.Cache.Backend {
	case CacheNone, CacheMemory, CacheBadger:
	default:
		return Config{}, fmt.Errorf("CACHE_BACKEND: unknown backend %q", cfg.Cache.Backend)
	}
	if cfg.DataDir == "" {
		return Config{}, fmt.Errorf("HTTP_DATA_DIR: must not be empty")
	}
	if _, err := keyenc.New(cfg.S3.KeyEncoder); err != nil {
		return Config{}, fmt.Errorf("S3_KEY_ENCODER: %w", err)
	}

	return cfg, nil
}

// Options maps the S3 settings to client options.
func (c Config) Options() []s3types.Option {
	opts := []s3types.Option{
		simples3.WithMaxRetries(c.S3.MaxRetries),
		simples3.WithForcePathStyle(c.S3.ForcePathStyle),
		simples3.WithSSLVerify(c.S3.SSLVerify),
		simples3.WithBatchConcurrency(c.S3.BatchConcurrency),
	}
	if c.S3.Region != "" {
		opts = append(opts, simples3.WithRegion(c.S3.Region))
	}
	if c.S3.Endpoint != "" {
		opts = append(opts, simples3.WithEndpoint(c.S3.Endpoint))
	}
	if c.S3.AccessKeyID != "" {
		opts = append(opts, simples3.WithCredentials(c.S3.AccessKeyID, c.S3.SecretAccessKey, c.S3.SessionToken))
	}
	if c.S3.Timeout > 0 {
		opts = append(opts, simples3.WithTimeout(c.S3.Timeout))
	}
	// Load already rejected unknown names.
	if enc, _ := keyenc.New(c.S3.KeyEncoder); enc != nil {
		opts = append(opts, simples3.WithKeyEncoder(enc))
	}
	return opts
}

// OpenCache builds the configured cache backend, or returns nil for "none".
func (c Config) OpenCache() (s3types.Cache, error) {
	switch c.Cache.Backend {
	case CacheMemory:
		return cache.NewMemory(c.Cache.TTL, c.Cache.MaxEntries), nil
	case CacheBadger:
		b, err := cache.OpenBadger(c.Cache.Dir, c.Cache.TTL)
		if err != nil {
			return nil, fmt.Errorf("open badger cache in %s: %w", c.Cache.Dir, err)
		}
		return b, nil
	default:
		return nil, nil
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// reader parses typed variables and keeps the first failure.
type reader struct {
	err error
}

func (r *reader) int(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		r.fail(key, valueStr, err)
		return defaultValue
	}
	return value
}

func (r *reader) bool(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
	if err != nil {
		r.fail(key, valueStr, err)
		return defaultValue
	}
	return value
}

func (r *reader) duration(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(strings.TrimSpace(valueStr))
	if err != nil {
		r.fail(key, valueStr, err)
		return defaultValue
	}
	return value
}

func (r *reader) fail(key, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%s=%q: %w", key, value, err)
	}
}
