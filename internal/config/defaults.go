package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	// Output defaults
	DefaultOutputDir = "./docs"

	// Fetch defaults
	DefaultTimeout       = 30 * time.Second
	DefaultMaxRetries    = 3
	DefaultRetryDelay    = 2 * time.Second
	DefaultMaxRetryDelay = 30 * time.Second
	DefaultRequestDelay  = 100 * time.Millisecond

	// Sync defaults
	DefaultSanityDropRatio = 0.20
	DefaultMaxFailRatio    = 0.15

	// Cache defaults
	DefaultCacheEnabled = true
	DefaultCacheTTL     = 24 * time.Hour

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".docsync"
	}
	return filepath.Join(home, ".docsync")
}

// CacheDir returns the cache directory path
func CacheDir() string {
	return filepath.Join(ConfigDir(), "cache")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Directory: DefaultOutputDir,
		},
		Fetch: FetchConfig{
			Timeout:       DefaultTimeout,
			MaxRetries:    DefaultMaxRetries,
			RetryDelay:    DefaultRetryDelay,
			MaxRetryDelay: DefaultMaxRetryDelay,
			RequestDelay:  DefaultRequestDelay,
		},
		Sync: SyncConfig{
			SanityDropRatio: DefaultSanityDropRatio,
			MaxFailRatio:    DefaultMaxFailRatio,
		},
		Cache: CacheConfig{
			Enabled:   DefaultCacheEnabled,
			TTL:       DefaultCacheTTL,
			Directory: CacheDir(),
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
