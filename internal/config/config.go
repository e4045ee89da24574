package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the Milan agent core.
type Config struct {
	Port      int
	Version   string
	LLM       LLMConfig
	Database  DatabaseConfig
	Telemetry TelemetryConfig
	Retention RetentionConfig
}

// LLMConfig configures the LLM gateway. A provider is selected from
// whichever credential is present, in order: OpenAI, Azure OpenAI,
// Anthropic, Ollama.
// With none set the gateway reports unconfigured and agents degrade to
// their deterministic paths.
type LLMConfig struct {
	OpenAIKey      string
	AzureKey       string
	AzureEndpoint  string
	AnthropicKey   string
	OllamaEndpoint string
	Model          string
	EmbeddingModel string
	Temperature    float64
	MaxTokens      int
	MaxRetries     int
	RetryBaseDelay time.Duration
	CallTimeout    time.Duration
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// RetentionConfig controls the execution-log janitor. Days <= 0
// disables the sweep entirely. With ArchivePath set, expired logs are
// written to JSONL files before they are purged.
type RetentionConfig struct {
	Days        int
	Interval    time.Duration
	ArchivePath string
	Compress    bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envInt("MILAN_PORT", 8080),
		Version: envStr("MILAN_VERSION", "1.0.0"),
		LLM: LLMConfig{
			OpenAIKey:      envStr("OPENAI_API_KEY", ""),
			AzureKey:       envStr("AZURE_OPENAI_API_KEY", ""),
			AzureEndpoint:  envStr("AZURE_OPENAI_ENDPOINT", ""),
			AnthropicKey:   envStr("ANTHROPIC_API_KEY", ""),
			OllamaEndpoint: envStr("OLLAMA_ENDPOINT", ""),
			Model:          envStr("MILAN_LLM_MODEL", "gpt-4"),
			EmbeddingModel: envStr("MILAN_EMBEDDING_MODEL", "text-embedding-3-small"),
			Temperature:    envFloat("MILAN_LLM_TEMPERATURE", 0.7),
			MaxTokens:      envInt("MILAN_LLM_MAX_TOKENS", 1000),
			MaxRetries:     envInt("MILAN_AGENT_MAX_RETRIES", 3),
			RetryBaseDelay: envDur("MILAN_AGENT_RETRY_DELAY", time.Second),
			CallTimeout:    envDur("MILAN_AGENT_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:            envStr("DATABASE_URL", ""),
			MaxConnections: envInt("DATABASE_MAX_CONNECTIONS", 25),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", true),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "milan-agent-core"),
		},
		Retention: RetentionConfig{
			Days:        envInt("MILAN_LOG_RETENTION_DAYS", 0),
			Interval:    envDur("MILAN_LOG_RETENTION_INTERVAL", time.Hour),
			ArchivePath: envStr("MILAN_LOG_ARCHIVE_PATH", ""),
			Compress:    envBool("MILAN_LOG_ARCHIVE_COMPRESS", true),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
