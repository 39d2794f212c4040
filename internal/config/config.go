// Package config provides configuration management for Vortex: loading,
// environment-variable overrides and validation of the settings that shape
// registry defaults, segment storage and scan concurrency.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// StorageBackend names a segment source backend kind.
type StorageBackend string

const (
	BackendLocal StorageBackend = "local"
	BackendS3    StorageBackend = "s3"
	BackendGCS   StorageBackend = "gcs"
	BackendAzure StorageBackend = "azure"
)

// SplitMode selects how the scan engine partitions a layout into splits (§4.7).
type SplitMode string

const (
	SplitByLayout   SplitMode = "layout"
	SplitByRowCount SplitMode = "row_count"
)

// Config is the complete Vortex runtime configuration.
type Config struct {
	LogLevel string        `json:"log_level" yaml:"log_level"`
	Storage  StorageConfig `json:"storage" yaml:"storage"`
	Cache    CacheConfig   `json:"cache" yaml:"cache"`
	Scan     ScanConfig    `json:"scan" yaml:"scan"`
}

// StorageConfig selects and configures the segment source backend.
type StorageConfig struct {
	Backend   StorageBackend `json:"backend" yaml:"backend"`
	LocalPath string         `json:"local_path" yaml:"local_path"`
	S3        S3Config       `json:"s3" yaml:"s3"`
	GCS       GCSConfig      `json:"gcs" yaml:"gcs"`
	Azure     AzureConfig    `json:"azure" yaml:"azure"`
}

// S3Config configures the S3 segment source (§4.6).
type S3Config struct {
	Region   string `json:"region" yaml:"region"`
	Bucket   string `json:"bucket" yaml:"bucket"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// GCSConfig configures the GCS segment source.
type GCSConfig struct {
	Bucket    string `json:"bucket" yaml:"bucket"`
	ProjectID string `json:"project_id" yaml:"project_id"`
}

// AzureConfig configures the Azure Blob segment source.
type AzureConfig struct {
	Account   string `json:"account" yaml:"account"`
	Container string `json:"container" yaml:"container"`
}

// CacheConfig configures the per-scan segment cache (§4.6, §6.3).
type CacheConfig struct {
	Enabled    bool          `json:"enabled" yaml:"enabled"`
	MaxBytes   int64         `json:"max_bytes" yaml:"max_bytes"`
	RedisAddr  string        `json:"redis_addr" yaml:"redis_addr"`
	DefaultTTL time.Duration `json:"default_ttl" yaml:"default_ttl"`
}

// ScanConfig configures split strategy and I/O coalescing (§4.7, §4.6).
type ScanConfig struct {
	SplitMode        SplitMode     `json:"split_mode" yaml:"split_mode"`
	SplitRowCount    uint64        `json:"split_row_count" yaml:"split_row_count"`
	InitialReadSize  int64         `json:"initial_read_size" yaml:"initial_read_size"`
	CoalesceWindow   time.Duration `json:"coalesce_window" yaml:"coalesce_window"`
	CoalesceMaxBytes int64         `json:"coalesce_max_bytes" yaml:"coalesce_max_bytes"`
	ChannelDepth     int           `json:"channel_depth" yaml:"channel_depth"`
}

// Default returns the baseline configuration (§6.3 default write/scan options).
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Storage: StorageConfig{
			Backend:   BackendLocal,
			LocalPath: "./vortex-data",
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxBytes:   256 << 20,
			DefaultTTL: 10 * time.Minute,
		},
		Scan: ScanConfig{
			SplitMode:        SplitByLayout,
			SplitRowCount:    1 << 20,
			InitialReadSize:  8 << 20,
			CoalesceWindow:   2 * time.Millisecond,
			CoalesceMaxBytes: 8 << 20,
			ChannelDepth:     64,
		},
	}
}

// Load reads configuration from path (if non-empty and present) and then
// applies environment-variable overrides, mirroring the file-then-env
// precedence used across the ambient config stack.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	cfg.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile merges YAML configuration from path into c.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv applies VORTEX_*-prefixed environment variable overrides.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("VORTEX_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("VORTEX_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = StorageBackend(v)
	}
	if v := os.Getenv("VORTEX_STORAGE_LOCAL_PATH"); v != "" {
		c.Storage.LocalPath = v
	}
	if v := os.Getenv("VORTEX_S3_BUCKET"); v != "" {
		c.Storage.S3.Bucket = v
	}
	if v := os.Getenv("VORTEX_S3_REGION"); v != "" {
		c.Storage.S3.Region = v
	}
	if v := os.Getenv("VORTEX_GCS_BUCKET"); v != "" {
		c.Storage.GCS.Bucket = v
	}
	if v := os.Getenv("VORTEX_AZURE_CONTAINER"); v != "" {
		c.Storage.Azure.Container = v
	}
	if v := os.Getenv("VORTEX_CACHE_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Cache.MaxBytes = n
		}
	}
	if v := os.Getenv("VORTEX_REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("VORTEX_SPLIT_ROW_COUNT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Scan.SplitRowCount = n
		}
	}
}

// Validate checks structural invariants of the configuration.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendLocal, BackendS3, BackendGCS, BackendAzure:
	default:
		return fmt.Errorf("unknown storage backend: %q", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendLocal && c.Storage.LocalPath == "" {
		return fmt.Errorf("local storage backend requires storage.local_path")
	}
	if c.Cache.MaxBytes < 0 {
		return fmt.Errorf("cache.max_bytes must be >= 0")
	}
	switch c.Scan.SplitMode {
	case SplitByLayout, SplitByRowCount:
	default:
		return fmt.Errorf("unknown split mode: %q", c.Scan.SplitMode)
	}
	if c.Scan.SplitMode == SplitByRowCount && c.Scan.SplitRowCount == 0 {
		return fmt.Errorf("scan.split_row_count must be > 0 when split_mode is row_count")
	}
	return nil
}

// Save writes the configuration as YAML to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultConfigPath returns the platform default config file location.
func DefaultConfigPath() string {
	if v := os.Getenv("VORTEX_CONFIG"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "vortex.yaml"
	}
	return filepath.Join(home, ".config", "vortex", "vortex.yaml")
}
