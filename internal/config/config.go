// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported LLM provider names.
const (
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"APP_ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBHost      string `mapstructure:"DB_HOST"`
	DBPort      string `mapstructure:"DB_PORT"`
	DBUser      string `mapstructure:"DB_USER"`
	DBPassword  string `mapstructure:"DB_PASSWORD"`
	DBName      string `mapstructure:"DB_NAME"`
	DBSSLMode   string `mapstructure:"DB_SSLMODE"`

	DBSchemaMode                  string `mapstructure:"DB_SCHEMA_MODE"`
	DBAutoMigrateAllowDestructive bool   `mapstructure:"DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE"`
	DBMaxOpenConns                int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns                int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes      int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS"`

	AnthropicAPIKey    string `mapstructure:"ANTHROPIC_API_KEY"`
	AnthropicModel     string `mapstructure:"ANTHROPIC_MODEL"`
	AnthropicBaseURL   string `mapstructure:"ANTHROPIC_BASE_URL"`
	OpenAIAPIKey       string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel        string `mapstructure:"OPENAI_MODEL"`
	OpenAIBaseURL      string `mapstructure:"OPENAI_BASE_URL"`
	DefaultLLMProvider string `mapstructure:"DEFAULT_LLM_PROVIDER"`
	LLMTimeoutSeconds  int    `mapstructure:"LLM_TIMEOUT_SECONDS"`
	LLMMaxRetries      int    `mapstructure:"LLM_MAX_RETRIES"`

	TrendFeedURLs        string `mapstructure:"TREND_FEED_URLS"`
	TrendCacheTTLMinutes int    `mapstructure:"TREND_CACHE_TTL_MINUTES"`
	GenerationRateLimit  int    `mapstructure:"GENERATION_RATE_LIMIT"`

	OTelEnabled      bool    `mapstructure:"OTEL_ENABLED"`
	OTelExporter     string  `mapstructure:"OTEL_EXPORTER"`
	OTelEndpoint     string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelSamplerRatio float64 `mapstructure:"OTEL_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from .env, config files and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults(viper.GetViper())

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "user")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "vibe_tweet")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_SCHEMA_MODE", "hybrid")
	v.SetDefault("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE", false)
	v.SetDefault("DB_MAX_OPEN_CONNS", 15)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("FEATURE_FLAGS", "")
	v.SetDefault("ANTHROPIC_API_KEY", "")
	v.SetDefault("ANTHROPIC_MODEL", "claude-sonnet-4-5")
	v.SetDefault("ANTHROPIC_BASE_URL", "")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("DEFAULT_LLM_PROVIDER", ProviderClaude)
	v.SetDefault("LLM_TIMEOUT_SECONDS", 30)
	v.SetDefault("LLM_MAX_RETRIES", 2)
	v.SetDefault("TREND_FEED_URLS", "")
	v.SetDefault("TREND_CACHE_TTL_MINUTES", 15)
	v.SetDefault("GENERATION_RATE_LIMIT", 10)
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER", "stdout")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	v.SetDefault("OTEL_SAMPLER_RATIO", 1.0)
}

// Validate ensures that required configuration values are present and consistent.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}

	c.DefaultLLMProvider = strings.ToLower(strings.TrimSpace(c.DefaultLLMProvider))
	if c.DefaultLLMProvider == "" {
		c.DefaultLLMProvider = ProviderClaude
	}
	if c.DefaultLLMProvider != ProviderClaude && c.DefaultLLMProvider != ProviderOpenAI {
		return fmt.Errorf("DEFAULT_LLM_PROVIDER must be %q or %q, got %q", ProviderClaude, ProviderOpenAI, c.DefaultLLMProvider)
	}
	if c.LLMTimeoutSeconds <= 0 {
		return errors.New("LLM_TIMEOUT_SECONDS must be positive")
	}
	if c.LLMMaxRetries < 0 {
		return errors.New("LLM_MAX_RETRIES cannot be negative")
	}
	if c.OTelSamplerRatio < 0 || c.OTelSamplerRatio > 1 {
		return errors.New("OTEL_SAMPLER_RATIO must be within [0,1]")
	}
	if c.DatabaseURL != "" {
		if _, err := url.Parse(c.DatabaseURL); err != nil {
			return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
		}
	}

	if c.AnthropicAPIKey == "" && c.OpenAIAPIKey == "" {
		log.Println("WARNING: neither ANTHROPIC_API_KEY nor OPENAI_API_KEY is set. Tweet generation will be unavailable.")
	}

	if c.IsProduction() {
		if c.DatabaseURL == "" && (c.DBPassword == "password" || c.DBPassword == "") {
			return errors.New("a strong DB_PASSWORD or a DATABASE_URL is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	}

	return nil
}

// IsProduction reports whether the app runs with a production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// LLMTimeout returns the per-call timeout for provider requests.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

// TrendCacheTTL returns how long merged trends stay cached.
func (c *Config) TrendCacheTTL() time.Duration {
	if c.TrendCacheTTLMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.TrendCacheTTLMinutes) * time.Minute
}

// FeedURLs splits TREND_FEED_URLS into a clean list.
func (c *Config) FeedURLs() []string {
	return splitList(c.TrendFeedURLs)
}

// Origins splits ALLOWED_ORIGINS into a clean list.
func (c *Config) Origins() []string {
	return splitList(c.AllowedOrigins)
}

// DatabaseDriver returns "sqlite" for sqlite:// and file: URLs and "postgres" otherwise.
func (c *Config) DatabaseDriver() string {
	u := strings.ToLower(c.DatabaseURL)
	if strings.HasPrefix(u, "sqlite://") || strings.HasPrefix(u, "file:") {
		return "sqlite"
	}
	return "postgres"
}

// DSN returns the connection string for the configured driver.
// Async driver suffixes such as "postgresql+asyncpg://" are normalised to plain postgres URLs.
func (c *Config) DSN() string {
	if c.DatabaseURL == "" {
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
		)
	}
	if c.DatabaseDriver() == "sqlite" {
		return strings.TrimPrefix(c.DatabaseURL, "sqlite://")
	}
	dsn := c.DatabaseURL
	if i := strings.Index(dsn, "://"); i > 0 {
		scheme := dsn[:i]
		if plus := strings.Index(scheme, "+"); plus > 0 {
			scheme = scheme[:plus]
		}
		dsn = scheme + dsn[i:]
	}
	return dsn
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
