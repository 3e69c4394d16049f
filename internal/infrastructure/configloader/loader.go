package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"wallet_portfolio/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv overrides alchemy.apiKey when set.
const APIKeyEnv = "ALCHEMY_API_KEY"

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`  // seconds
	WriteTimeout int    `yaml:"writeTimeout"` // seconds, 0 keeps SSE streams open
	IdleTimeout  int    `yaml:"idleTimeout"`  // seconds
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	Development bool   `yaml:"development"`
}

// AlchemyConfig holds portfolio API configuration.
type AlchemyConfig struct {
	APIKey               string   `yaml:"apiKey"`
	DataBaseURL          string   `yaml:"dataBaseURL"`
	NFTBaseURL           string   `yaml:"nftBaseURL"`
	Networks             []string `yaml:"networks"`
	MaxTokens            int      `yaml:"maxTokens"`
	NFTPageSize          int      `yaml:"nftPageSize"`
	RequestTimeoutMillis int64    `yaml:"requestTimeoutMillis"`
}

// RetryConfig holds backoff configuration for portfolio API calls.
type RetryConfig struct {
	MaxAttempts        int   `yaml:"maxAttempts"`
	InitialDelayMillis int64 `yaml:"initialDelayMillis"`
}

// PriceStreamConfig holds live price feed configuration.
type PriceStreamConfig struct {
	URL                    string `yaml:"url"`
	CooldownMillis         int64  `yaml:"cooldownMillis"`
	HandshakeTimeoutMillis int64  `yaml:"handshakeTimeoutMillis"`
}

// CacheConfig holds configuration for the fetch result cache.
type CacheConfig struct {
	Enabled                bool `yaml:"enabled"`
	TTLSeconds             int  `yaml:"ttlSeconds"`
	CleanupIntervalSeconds int  `yaml:"cleanupIntervalSeconds"`
}

// RateLimitConfig holds the outbound request limiter configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig               `yaml:"server"`
	Logging     LoggingConfig              `yaml:"logging"`
	Alchemy     AlchemyConfig              `yaml:"alchemy"`
	Retry       RetryConfig                `yaml:"retry"`
	PriceStream PriceStreamConfig          `yaml:"priceStream"`
	Cache       CacheConfig                `yaml:"cache"`
	RateLimit   RateLimitConfig            `yaml:"rateLimit"`
	Networks    []entity.NetworkDefinition `yaml:"networks"`
}

// RequestTimeout returns the per-request timeout of the portfolio API client.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Alchemy.RequestTimeoutMillis) * time.Millisecond
}

// InitialRetryDelay returns the delay before the second attempt.
func (c *Config) InitialRetryDelay() time.Duration {
	return time.Duration(c.Retry.InitialDelayMillis) * time.Millisecond
}

// Cooldown returns the pause after a price stream failure.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.PriceStream.CooldownMillis) * time.Millisecond
}

// HandshakeTimeout returns the price stream dial timeout.
func (c *Config) HandshakeTimeout() time.Duration {
	return time.Duration(c.PriceStream.HandshakeTimeoutMillis) * time.Millisecond
}

// CacheTTL returns how long fetch results stay cached.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// CacheCleanupInterval returns the expired-entry sweep interval.
func (c *Config) CacheCleanupInterval() time.Duration {
	return time.Duration(c.Cache.CleanupIntervalSeconds) * time.Second
}

// HasAPIKey reports whether a portfolio API key is configured.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.Alchemy.APIKey) != ""
}

// Load reads the YAML configuration file from the given path and unmarshals it.
// A missing file yields the defaults. The API key from the environment wins over the file.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logrus.Warnf("Config file %s not found, using defaults", path)
	case err != nil:
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
	}

	if key, ok := os.LookupEnv(APIKeyEnv); ok && strings.TrimSpace(key) != "" {
		cfg.Alchemy.APIKey = strings.TrimSpace(key)
		logrus.Infof("Alchemy API key taken from %s", APIKeyEnv)
	}

	applyDefaults(&cfg)

	if !cfg.HasAPIKey() {
		logrus.Warnf("Alchemy API key is not configured. Set %s to load portfolios.", APIKeyEnv)
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
		logrus.Infof("Server.Port not set, defaulting to %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Alchemy.DataBaseURL == "" {
		cfg.Alchemy.DataBaseURL = "https://api.g.alchemy.com/data/v1"
		logrus.Infof("Alchemy.DataBaseURL not set, defaulting to %s", cfg.Alchemy.DataBaseURL)
	}
	if cfg.Alchemy.NFTBaseURL == "" {
		cfg.Alchemy.NFTBaseURL = "https://eth-mainnet.g.alchemy.com/nft/v3"
		logrus.Infof("Alchemy.NFTBaseURL not set, defaulting to %s", cfg.Alchemy.NFTBaseURL)
	}
	if len(cfg.Alchemy.Networks) == 0 {
		cfg.Alchemy.Networks = []string{"eth-mainnet"}
		logrus.Infof("Alchemy.Networks not set, defaulting to %v", cfg.Alchemy.Networks)
	}
	if cfg.Alchemy.MaxTokens <= 0 {
		cfg.Alchemy.MaxTokens = 20
	}
	if cfg.Alchemy.NFTPageSize <= 0 {
		cfg.Alchemy.NFTPageSize = 50
	}
	if cfg.Alchemy.RequestTimeoutMillis <= 0 {
		cfg.Alchemy.RequestTimeoutMillis = 10000
		logrus.Infof("Alchemy.RequestTimeoutMillis not set, defaulting to %d ms", cfg.Alchemy.RequestTimeoutMillis)
	}

	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.InitialDelayMillis <= 0 {
		cfg.Retry.InitialDelayMillis = 500
	}

	if cfg.PriceStream.URL == "" {
		cfg.PriceStream.URL = "wss://websocket-floor-test-732ef4f89e9d.herokuapp.com"
		logrus.Infof("PriceStream.URL not set, defaulting to %s", cfg.PriceStream.URL)
	}
	if cfg.PriceStream.CooldownMillis <= 0 {
		cfg.PriceStream.CooldownMillis = 3000
	}
	if cfg.PriceStream.HandshakeTimeoutMillis <= 0 {
		cfg.PriceStream.HandshakeTimeoutMillis = 10000
	}

	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = 60
	}
	if cfg.Cache.CleanupIntervalSeconds <= 0 {
		cfg.Cache.CleanupIntervalSeconds = 300
	}

	if cfg.RateLimit.RequestsPerSecond <= 0 {
		cfg.RateLimit.RequestsPerSecond = 5
		logrus.Infof("RateLimit.RequestsPerSecond not set, defaulting to %.0f", cfg.RateLimit.RequestsPerSecond)
	}
	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 2
	}
}
