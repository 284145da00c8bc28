package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from file, environment, and defaults
// Uses the global viper instance to access CLI flag bindings
func Load() (*Config, error) {
	v := viper.GetViper()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())
	v.AddConfigPath(".")

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Environment variables (DOCSYNC_*)
	v.SetEnvPrefix("DOCSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	// Output defaults
	v.SetDefault("output.directory", DefaultOutputDir)

	// Fetch defaults
	v.SetDefault("fetch.timeout", DefaultTimeout)
	v.SetDefault("fetch.max_retries", DefaultMaxRetries)
	v.SetDefault("fetch.retry_delay", DefaultRetryDelay)
	v.SetDefault("fetch.max_retry_delay", DefaultMaxRetryDelay)
	v.SetDefault("fetch.request_delay", DefaultRequestDelay)
	v.SetDefault("fetch.user_agent", "")
	v.SetDefault("fetch.proxy_url", "")

	// Sync defaults
	v.SetDefault("sync.sanity_drop_ratio", DefaultSanityDropRatio)
	v.SetDefault("sync.max_fail_ratio", DefaultMaxFailRatio)

	// Cache defaults
	v.SetDefault("cache.enabled", DefaultCacheEnabled)
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("cache.directory", CacheDir())

	// Logging defaults
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	return os.MkdirAll(ConfigDir(), 0755)
}
