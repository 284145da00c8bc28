package config

import (
	"time"
)

// Config represents the application configuration
type Config struct {
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Fetch   FetchConfig   `mapstructure:"fetch" yaml:"fetch"`
	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// Directory is the root under which relative site output
	// directories are placed.
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// FetchConfig contains HTTP fetch settings
type FetchConfig struct {
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries    int           `mapstructure:"max_retries" yaml:"max_retries"`
	RetryDelay    time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
	MaxRetryDelay time.Duration `mapstructure:"max_retry_delay" yaml:"max_retry_delay"`
	RequestDelay  time.Duration `mapstructure:"request_delay" yaml:"request_delay"`
	UserAgent     string        `mapstructure:"user_agent" yaml:"user_agent"`
	ProxyURL      string        `mapstructure:"proxy_url" yaml:"proxy_url"`
}

// SyncConfig contains sync guard settings
type SyncConfig struct {
	SanityDropRatio float64 `mapstructure:"sanity_drop_ratio" yaml:"sanity_drop_ratio"`
	MaxFailRatio    float64 `mapstructure:"max_fail_ratio" yaml:"max_fail_ratio"`
}

// CacheConfig contains cache settings
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Directory string        `mapstructure:"directory" yaml:"directory"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration and clamps out-of-range values
// back to defaults.
func (c *Config) Validate() error {
	if c.Output.Directory == "" {
		c.Output.Directory = DefaultOutputDir
	}
	if c.Fetch.Timeout < time.Second {
		c.Fetch.Timeout = DefaultTimeout
	}
	if c.Fetch.MaxRetries < 1 {
		c.Fetch.MaxRetries = DefaultMaxRetries
	}
	if c.Fetch.RetryDelay <= 0 {
		c.Fetch.RetryDelay = DefaultRetryDelay
	}
	if c.Fetch.MaxRetryDelay < c.Fetch.RetryDelay {
		c.Fetch.MaxRetryDelay = DefaultMaxRetryDelay
	}
	if c.Fetch.RequestDelay < 0 {
		c.Fetch.RequestDelay = DefaultRequestDelay
	}
	if c.Sync.SanityDropRatio <= 0 || c.Sync.SanityDropRatio >= 1 {
		c.Sync.SanityDropRatio = DefaultSanityDropRatio
	}
	if c.Sync.MaxFailRatio <= 0 || c.Sync.MaxFailRatio > 1 {
		c.Sync.MaxFailRatio = DefaultMaxFailRatio
	}
	if c.Cache.TTL < time.Minute {
		c.Cache.TTL = DefaultCacheTTL
	}
	return nil
}
