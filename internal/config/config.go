package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Webhook gateway configuration
	Webhook WebhookConfig

	// Record store (Airtable) configuration
	Airtable AirtableConfig

	// LLM configuration
	Anthropic AnthropicConfig

	// Prompt store configuration
	Langfuse LangfuseConfig

	// Event delivery configuration
	Events EventsConfig

	// SEO metrics API configuration
	SEO SEOConfig

	// Static context configuration
	Context ContextConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// WebhookConfig holds webhook gateway settings
type WebhookConfig struct {
	Secret       string
	DedupeWindow time.Duration
}

// AirtableConfig holds record store connection settings
type AirtableConfig struct {
	APIKey        string
	BaseID        string
	KeywordBaseID string
	BaseURL       string
	Timeout       time.Duration
}

// AnthropicConfig holds LLM settings
type AnthropicConfig struct {
	APIKey            string
	Model             string
	OutlineMaxTokens  int
	DraftMaxTokens    int
	FinalizeMaxTokens int
}

// LangfuseConfig holds prompt store settings
type LangfuseConfig struct {
	PublicKey string
	SecretKey string
	Host      string
	Timeout   time.Duration
}

// EventsConfig holds event delivery settings. When IngestURL is empty, events
// run on the in-process dispatcher only.
type EventsConfig struct {
	IngestURL  string
	EventKey   string
	MaxWorkers int
}

// SEOConfig holds SEO metrics API settings
type SEOConfig struct {
	Login             string
	Password          string
	BaseURL           string
	MaxConcurrency    int
	RequestsPerSecond float64
	Timeout           time.Duration
}

// ContextConfig holds static context bundle settings
type ContextConfig struct {
	ManifestPath string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 300*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Webhook: WebhookConfig{
			Secret:       getEnv("WEBHOOK_SECRET", ""),
			DedupeWindow: getDurationEnv("WEBHOOK_DEDUPE_WINDOW", 2*time.Minute),
		},
		Airtable: AirtableConfig{
			APIKey:        getEnv("AIRTABLE_API_KEY", ""),
			BaseID:        getEnv("AIRTABLE_BASE_ID", ""),
			KeywordBaseID: getEnv("AIRTABLE_KEYWORD_BASE_ID", ""),
			BaseURL:       getEnv("AIRTABLE_BASE_URL", "https://api.airtable.com/v0"),
			Timeout:       getDurationEnv("AIRTABLE_TIMEOUT", 30*time.Second),
		},
		Anthropic: AnthropicConfig{
			APIKey:            getEnv("ANTHROPIC_API_KEY", ""),
			Model:             getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
			OutlineMaxTokens:  getIntEnv("OUTLINE_MAX_TOKENS", 2048),
			DraftMaxTokens:    getIntEnv("DRAFT_MAX_TOKENS", 8192),
			FinalizeMaxTokens: getIntEnv("FINALIZE_MAX_TOKENS", 8192),
		},
		Langfuse: LangfuseConfig{
			PublicKey: getEnv("LANGFUSE_PUBLIC_KEY", ""),
			SecretKey: getEnv("LANGFUSE_SECRET_KEY", ""),
			Host:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
			Timeout:   getDurationEnv("LANGFUSE_TIMEOUT", 15*time.Second),
		},
		Events: EventsConfig{
			IngestURL:  getEnv("EVENT_INGEST_URL", ""),
			EventKey:   getEnv("EVENT_KEY", ""),
			MaxWorkers: getIntEnv("EVENT_MAX_WORKERS", 8),
		},
		SEO: SEOConfig{
			Login:             getEnv("DATAFORSEO_LOGIN", ""),
			Password:          getEnv("DATAFORSEO_PASSWORD", ""),
			BaseURL:           getEnv("DATAFORSEO_BASE_URL", "https://api.dataforseo.com"),
			MaxConcurrency:    getIntEnv("SEO_MAX_CONCURRENCY", 3),
			RequestsPerSecond: getFloatEnv("SEO_REQUESTS_PER_SECOND", 2.0),
			Timeout:           getDurationEnv("SEO_TIMEOUT", 60*time.Second),
		},
		Context: ContextConfig{
			ManifestPath: getEnv("CONTEXT_MANIFEST_PATH", "./context/manifest.yaml"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// The keyword research subsystem may live in its own base
	if cfg.Airtable.KeywordBaseID == "" {
		cfg.Airtable.KeywordBaseID = cfg.Airtable.BaseID
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Webhook.Secret == "" {
		return fmt.Errorf("WEBHOOK_SECRET is required")
	}
	if c.Airtable.APIKey == "" {
		return fmt.Errorf("AIRTABLE_API_KEY is required")
	}
	if c.Airtable.BaseID == "" {
		return fmt.Errorf("AIRTABLE_BASE_ID is required")
	}
	if c.Anthropic.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
