// internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Environment string
	LogLevel    string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Redis       RedisConfig
	Trend       TrendConfig
	Article     ArticleConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration. An empty Host disables
// snapshot persistence.
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// Enabled reports whether a database is configured
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// ConnString returns the pgx connection string
func (c DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// NATSConfig holds NATS configuration. An empty URL disables events.
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// RedisConfig holds Redis configuration. An empty URL keeps the trend cache
// in process memory.
type RedisConfig struct {
	URL string
	Key string
}

// TrendConfig holds trend aggregation configuration
type TrendConfig struct {
	SearchAPIKey    string
	SearchAPIURL    string
	SearchGeo       string
	TrendsFeedURL   string
	TrendsFeedBrand string
	RedditBaseURL   string
	RepositoryURL   string
	TwitterToken    string
	TwitterAPIURL   string
	TwitterQuery    string
	RequestTimeout  time.Duration
	TierDelay       time.Duration
	CacheTTL        time.Duration
	RefreshSchedule string
	RefreshTimeout  time.Duration
	EventsTopic     string
}

// ArticleConfig holds article generation configuration
type ArticleConfig struct {
	Provider           string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string
	OpenAIImageModel   string
	GeminiAPIKey       string
	GeminiModel        string
	GenerateImages     bool
	StockImageBaseURL  string
	PlaceholderBaseURL string
	ImageHealthTTL     time.Duration
	Timeout            time.Duration
}

// LLM providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Load loads configuration from environment variables, reading an optional
// .env file first
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read .env file: %w", err)
	}
	return fromEnv()
}

func fromEnv() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", ""),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "trendwise"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", ""),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
			Key: getEnv("REDIS_TRENDS_KEY", "trendwise:trends"),
		},
		Trend: TrendConfig{
			SearchAPIKey:    getEnv("SERPAPI_KEY", ""),
			SearchAPIURL:    getEnv("TREND_SEARCH_API_URL", "https://serpapi.com/search.json"),
			SearchGeo:       getEnv("TREND_SEARCH_GEO", "US"),
			TrendsFeedURL:   getEnv("TREND_FEED_URL", "https://trends.google.com/trending/rss?geo=US"),
			TrendsFeedBrand: getEnv("TREND_FEED_BRAND", "Google Trends"),
			RedditBaseURL:   getEnv("TREND_REDDIT_BASE_URL", "https://www.reddit.com"),
			RepositoryURL:   getEnv("TREND_REPOSITORY_URL", "https://api.github.com/search/repositories?q=stars:>1000&sort=updated&order=desc&per_page=5"),
			TwitterToken:    getEnv("TWITTER_BEARER_TOKEN", ""),
			TwitterAPIURL:   getEnv("TWITTER_API_URL", "https://api.twitter.com"),
			TwitterQuery:    getEnv("TWITTER_QUERY", "has:hashtags -is:retweet -is:reply lang:en"),
			RequestTimeout:  getEnvAsDuration("TREND_REQUEST_TIMEOUT", 8*time.Second),
			TierDelay:       getEnvAsDuration("TREND_TIER_DELAY", 1*time.Second),
			CacheTTL:        getEnvAsDuration("TREND_CACHE_TTL", 10*time.Minute),
			RefreshSchedule: getEnv("TREND_REFRESH_SCHEDULE", "@every 10m"),
			RefreshTimeout:  getEnvAsDuration("TREND_REFRESH_TIMEOUT", 1*time.Minute),
			EventsTopic:     getEnv("TREND_EVENTS_TOPIC", "trend"),
		},
		Article: ArticleConfig{
			Provider:           strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
			OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
			OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIImageModel:   getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
			GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
			GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			GenerateImages:     getEnvAsBool("ARTICLE_GENERATE_IMAGES", false),
			StockImageBaseURL:  getEnv("ARTICLE_STOCK_IMAGE_URL", "https://source.unsplash.com/1200x630/"),
			PlaceholderBaseURL: getEnv("ARTICLE_PLACEHOLDER_URL", "https://placehold.co"),
			ImageHealthTTL:     getEnvAsDuration("ARTICLE_IMAGE_HEALTH_TTL", 15*time.Minute),
			Timeout:            getEnvAsDuration("ARTICLE_TIMEOUT", 75*time.Second),
		},
	}

	return config, validate(config)
}

// LLMConfigured reports whether the selected provider has credentials
func (c ArticleConfig) LLMConfigured() bool {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey != ""
	case ProviderGemini:
		return c.GeminiAPIKey != ""
	}
	return false
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", config.Server.Port)
	}

	if config.Trend.RequestTimeout <= 0 {
		return fmt.Errorf("trend request timeout must be positive")
	}

	if config.Trend.TierDelay < 0 {
		return fmt.Errorf("trend tier delay must not be negative")
	}

	if config.Trend.CacheTTL <= 0 {
		return fmt.Errorf("trend cache ttl must be positive")
	}

	if config.Trend.RefreshSchedule == "" {
		return fmt.Errorf("trend refresh schedule must be set")
	}

	switch config.Article.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown LLM provider %q", config.Article.Provider)
	}

	if config.Article.Timeout <= 0 {
		return fmt.Errorf("article timeout must be positive")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
