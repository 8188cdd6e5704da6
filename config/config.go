package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Serper     SerperConfig
	Discovery  DiscoveryConfig
	Extraction ExtractionConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SerperConfig holds configuration for the Serper search API
type SerperConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Country string `mapstructure:"country"`
}

// DiscoveryConfig holds Discovery stage configuration
type DiscoveryConfig struct {
	MaxResultsCap    int      `mapstructure:"max_results_cap"`
	EcommerceDomains []string `mapstructure:"ecommerce_domains"`
	DefaultSites     []string `mapstructure:"default_sites"`
}

// ExtractionConfig holds Extraction stage configuration
type ExtractionConfig struct {
	WorkerCount  int           `mapstructure:"worker_count"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	StageTimeout time.Duration `mapstructure:"stage_timeout"`
	MaxBodyKB    int           `mapstructure:"max_body_kb"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP  int `mapstructure:"per_ip"` // requests per minute per client IP
	Serper int `mapstructure:"serper"` // requests per hour against the search API
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file first so viper's AutomaticEnv picks the values up
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricelens/")

	// Environment variable settings
	v.SetEnvPrefix("PRICELENS")
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

// loadEnvFile loads key=value pairs from a .env file in the working
// directory, if present. Existing environment variables are not overridden.
func loadEnvFile() error {
	file, err := os.Open(".env")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}

	return scanner.Err()
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Serper defaults
	v.SetDefault("serper.base_url", "https://google.serper.dev")
	v.SetDefault("serper.country", "us")

	// Discovery defaults
	v.SetDefault("discovery.max_results_cap", 50)
	v.SetDefault("discovery.ecommerce_domains", []string{
		"amazon.com", "ebay.com", "walmart.com", "target.com",
		"bestbuy.com", "newegg.com", "etsy.com", "shopify.com",
		"alibaba.com", "aliexpress.com", "costco.com", "homedepot.com",
		"lowes.com", "wayfair.com", "overstock.com", "zappos.com",
	})
	v.SetDefault("discovery.default_sites", []string{
		"amazon.com", "walmart.com", "target.com", "bestbuy.com", "ebay.com",
	})

	// Extraction defaults
	v.SetDefault("extraction.worker_count", 5)
	v.SetDefault("extraction.fetch_timeout", "15s")
	v.SetDefault("extraction.stage_timeout", "60s")
	v.SetDefault("extraction.max_body_kb", 1024)

	// Cache defaults
	v.SetDefault("cache.ttl", "1h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.serper", 2500)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Serper.APIKey == "" {
		return fmt.Errorf("Serper API key is required (set PRICELENS_SERPER_API_KEY)")
	}

	if config.Discovery.MaxResultsCap <= 0 {
		return fmt.Errorf("discovery max_results_cap must be positive, got: %d", config.Discovery.MaxResultsCap)
	}

	if config.Extraction.WorkerCount <= 0 {
		return fmt.Errorf("extraction worker_count must be positive, got: %d", config.Extraction.WorkerCount)
	}

	if config.Extraction.FetchTimeout <= 0 || config.Extraction.StageTimeout <= 0 {
		return fmt.Errorf("extraction timeouts must be positive")
	}

	return nil
}
