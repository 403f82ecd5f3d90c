package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:               "8000",
		Env:                "development",
		DBPassword:         "secure-password",
		DBSSLMode:          "require",
		DefaultLLMProvider: "claude",
		LLMTimeoutSeconds:  30,
		OTelSamplerRatio:   1,
	}
}

func TestConfig_ValidateProvider(t *testing.T) {
	tests := []struct {
		name        string
		provider    string
		want        string
		expectError bool
	}{
		{"claude", "claude", "claude", false},
		{"openai mixed case", " OpenAI ", "openai", false},
		{"empty falls back to claude", "", "claude", false},
		{"unknown provider", "gemini", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.DefaultLLMProvider = tt.provider

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.DefaultLLMProvider)
		})
	}
}

func TestConfig_ValidateProduction(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.DBPassword = "password"
	assert.Error(t, c.Validate())

	c.DatabaseURL = "postgres://vibe:secret@db:5432/vibe_tweet"
	assert.NoError(t, c.Validate())
}

func TestConfig_ValidateBounds(t *testing.T) {
	c := validConfig()
	c.LLMTimeoutSeconds = 0
	assert.Error(t, c.Validate())

	c = validConfig()
	c.OTelSamplerRatio = 1.5
	assert.Error(t, c.Validate())
}

func TestConfig_DSN(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		driver string
		dsn    string
	}{
		{"asyncpg url", "postgresql+asyncpg://u:p@localhost:5432/vibe", "postgres", "postgresql://u:p@localhost:5432/vibe"},
		{"plain postgres", "postgres://u:p@db/vibe?sslmode=disable", "postgres", "postgres://u:p@db/vibe?sslmode=disable"},
		{"sqlite", "sqlite://vibe.db", "sqlite", "vibe.db"},
		{"sqlite file uri", "file::memory:?cache=shared", "sqlite", "file::memory:?cache=shared"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{DatabaseURL: tt.url}
			assert.Equal(t, tt.driver, c.DatabaseDriver())
			assert.Equal(t, tt.dsn, c.DSN())
		})
	}

	parts := &Config{DBHost: "h", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=n sslmode=disable", parts.DSN())
}

func TestConfig_Lists(t *testing.T) {
	c := &Config{
		TrendFeedURLs:  " https://a.example/rss , ,https://b.example/atom",
		AllowedOrigins: "*",
	}
	assert.Equal(t, []string{"https://a.example/rss", "https://b.example/atom"}, c.FeedURLs())
	assert.Equal(t, []string{"*"}, c.Origins())
	assert.Equal(t, 15*time.Minute, c.TrendCacheTTL())
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer viper.Reset()
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("OPENAI_API_KEY")
	defer os.Unsetenv("DEFAULT_LLM_PROVIDER")

	os.Setenv("APP_ENV", "test")
	os.Setenv("OPENAI_API_KEY", "sk-test")
	os.Setenv("DEFAULT_LLM_PROVIDER", "openai")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8000", c.Port)
	assert.Equal(t, "sk-test", c.OpenAIAPIKey)
	assert.Equal(t, "openai", c.DefaultLLMProvider)
	assert.Equal(t, 15, c.DBMaxOpenConns)
	assert.Equal(t, 30*time.Second, c.LLMTimeout())
}
