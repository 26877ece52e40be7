package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Normalizer NormalizerConfig
	Cache      CacheConfig
	Resolver   ResolverConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig holds configuration for the external record store
type StoreConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Index   string `mapstructure:"index"`
}

// NormalizerConfig holds configuration for the name-normalization service
type NormalizerConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds configuration for the normalization memo
type CacheConfig struct {
	MemoCapacity int           `mapstructure:"memo_capacity"`
	MemoTTL      time.Duration `mapstructure:"memo_ttl"`
}

// ResolverConfig holds configuration for the resolution pipeline
type ResolverConfig struct {
	// FetchConcurrency caps the number of in-flight store lookups per
	// request during the candidate-key fan-out.
	FetchConcurrency int `mapstructure:"fetch_concurrency"`
	// Retailers is the fixed retailer list probed per ingredient
	// variant. The merge policy is first-match-wins in this order, so
	// it stays a slice.
	Retailers []string `mapstructure:"retailers"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/genericrx/")

	// Environment variable settings, e.g. GENERICRX_STORE_API_KEY
	// overrides store.api_key.
	v.SetEnvPrefix("GENERICRX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Store defaults. The empty api_key default registers the key so
	// the env override is visible to Unmarshal.
	v.SetDefault("store.api_key", "")
	v.SetDefault("store.base_url", "https://drug-info-index.svc.pinecone.io")
	v.SetDefault("store.index", "drug-info-index")

	// Normalizer defaults
	v.SetDefault("normalizer.api_key", "")
	v.SetDefault("normalizer.base_url", "https://api.namewise.example.com")
	v.SetDefault("normalizer.timeout", "10s")

	// Cache defaults
	v.SetDefault("cache.memo_capacity", 512)
	v.SetDefault("cache.memo_ttl", "24h")

	// Resolver defaults
	v.SetDefault("resolver.fetch_concurrency", 10)
	v.SetDefault("resolver.retailers", []string{
		"cvs", "walgreens", "walmart", "riteaid", "kroger",
	})
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Store.APIKey == "" {
		return fmt.Errorf("store API key is required (set GENERICRX_STORE_API_KEY)")
	}

	if config.Cache.MemoCapacity <= 0 {
		return fmt.Errorf("cache memo capacity must be positive, got: %d", config.Cache.MemoCapacity)
	}

	if config.Resolver.FetchConcurrency <= 0 {
		return fmt.Errorf("resolver fetch concurrency must be positive, got: %d", config.Resolver.FetchConcurrency)
	}

	if len(config.Resolver.Retailers) == 0 {
		return fmt.Errorf("resolver retailer list must not be empty")
	}

	return nil
}
