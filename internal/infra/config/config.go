package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
)

type Config struct {
	Env  string
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	LLMProvider     string
	LLMAPIKey       string
	LLMBaseURL      string
	GenerationModel string
	EmbeddingModel  string
	LLMRatePerSec   float64

	RetrievalLimit    int
	AnswerMaxTokens   int
	AnswerTimeout     time.Duration
	AnswerMaxAttempts int
	MaxHistoryTurns   int

	RecordCacheSize int
	RecordCacheTTL  time.Duration

	OTelEnabled     bool
	OTelEndpoint    string
	RouterModelless bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first, without overriding variables
// already set by the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "9020"),

		DBHost:     getEnv("DB_HOST", "assistant-db"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "assistant_user"),
		DBPassword: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "assistant_password"),
		DBName:     getEnv("DB_NAME", "assistant_db"),

		LLMProvider:     getEnv("LLM_PROVIDER", "ollama"),
		LLMAPIKey:       getSecret("LLM_API_KEY", "LLM_API_KEY_FILE", ""),
		LLMBaseURL:      getEnvWithAlt("LLM_BASE_URL", "OLLAMA_URL", "http://ollama:11434"),
		GenerationModel: getEnv("GENERATION_MODEL", "llama3.1:8b"),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
		LLMRatePerSec:   getEnvFloat("LLM_RATE_PER_SEC", 5),

		RetrievalLimit:    getEnvInt("RETRIEVAL_LIMIT", 5),
		AnswerMaxTokens:   getEnvInt("ANSWER_MAX_TOKENS", 1024),
		AnswerTimeout:     getEnvDuration("ANSWER_TIMEOUT", 60*time.Second),
		AnswerMaxAttempts: getEnvInt("ANSWER_MAX_ATTEMPTS", 2),
		MaxHistoryTurns:   getEnvInt("MAX_HISTORY_TURNS", 10),

		RecordCacheSize: getEnvInt("RECORD_CACHE_SIZE", 512),
		RecordCacheTTL:  getEnvDuration("RECORD_CACHE_TTL", 5*time.Minute),

		OTelEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		RouterModelless: getEnvBool("ROUTER_HEURISTIC_ONLY", false),
	}
}

// Validate reports missing or contradictory settings before any
// component is constructed.
func (c *Config) Validate() error {
	provider := strings.ToLower(c.LLMProvider)
	switch provider {
	case "openai":
		if c.LLMAPIKey == "" {
			return fmt.Errorf("%w: LLM_API_KEY is required for the openai provider", domain.ErrConfiguration)
		}
	case "ollama":
		if c.LLMBaseURL == "" {
			return fmt.Errorf("%w: LLM_BASE_URL is required for the ollama provider", domain.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown LLM_PROVIDER %q", domain.ErrConfiguration, c.LLMProvider)
	}

	if c.GenerationModel == "" {
		return fmt.Errorf("%w: GENERATION_MODEL must not be empty", domain.ErrConfiguration)
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("%w: EMBEDDING_MODEL must not be empty", domain.ErrConfiguration)
	}
	if c.RetrievalLimit <= 0 {
		return fmt.Errorf("%w: RETRIEVAL_LIMIT must be positive", domain.ErrConfiguration)
	}
	if c.OTelEnabled && c.OTelEndpoint == "" {
		return fmt.Errorf("%w: OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED is set", domain.ErrConfiguration)
	}
	return nil
}

// DSN assembles the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvWithAlt(key, altKey, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if value, ok := os.LookupEnv(altKey); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
