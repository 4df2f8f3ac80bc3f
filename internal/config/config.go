// Package config resolves runtime configuration from the environment.
// Values are read once into an explicit Config struct that is passed to
// the components needing it; nothing in the core reads process-wide state.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/hefgen/metricgen/internal/domain"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel   = "openai/gpt-4o"
	DefaultHTTPTimeout       = 90 * time.Second
	DefaultMaxAttempts       = 3
	DefaultQueryLogDir       = "query_logs"

	DefaultTemporalHostPort  = "localhost:7233"
	DefaultTemporalNamespace = "default"
	DefaultTaskQueue         = "metricgen"
)

// OpenRouterConfig holds credentials and settings for the LLM provider.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// TemporalConfig holds connection settings for the Temporal worker and
// client. Only used by the worker command; the direct generation path
// never touches Temporal.
type TemporalConfig struct {
	HostPort  string
	Namespace string
	TaskQueue string
}

// Config is the resolved runtime configuration for one process.
type Config struct {
	OpenRouter OpenRouterConfig
	Temporal   TemporalConfig

	// PubMedEmail is the contact address NCBI Entrez requires. Empty
	// disables the PubMed tool rather than failing startup.
	PubMedEmail string

	// QueryLogDir is where tool query audit files are written.
	QueryLogDir string

	// MaxAttempts bounds generation retries on validation failure.
	MaxAttempts int
}

// Load reads configuration from the environment, consulting a .env file
// in the working directory when present. A missing OPENROUTER_API_KEY is
// a ConfigurationError: nothing downstream can run without it.
func Load() (*Config, error) {
	// Best effort; absence of a .env file is the normal production case.
	_ = godotenv.Load()

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return nil, &domain.ConfigurationError{
			Field:  "OPENROUTER_API_KEY",
			Value:  "",
			Reason: "is required for LLM access; set it via environment variable or .env",
		}
	}

	cfg := &Config{
		OpenRouter: OpenRouterConfig{
			APIKey:  apiKey,
			BaseURL: envOr("OPENROUTER_BASE_URL", DefaultOpenRouterBaseURL),
			Model:   envOr("OPENROUTER_MODEL", DefaultOpenRouterModel),
			Timeout: DefaultHTTPTimeout,
		},
		Temporal: TemporalConfig{
			HostPort:  envOr("TEMPORAL_HOST_PORT", DefaultTemporalHostPort),
			Namespace: envOr("TEMPORAL_NAMESPACE", DefaultTemporalNamespace),
			TaskQueue: envOr("TEMPORAL_TASK_QUEUE", DefaultTaskQueue),
		},
		PubMedEmail: os.Getenv("PUBMED_EMAIL"),
		QueryLogDir: envOr("QUERY_LOG_DIR", DefaultQueryLogDir),
		MaxAttempts: DefaultMaxAttempts,
	}

	if raw := os.Getenv("AGENT_MAX_RETRIES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, &domain.ConfigurationError{
				Field:  "AGENT_MAX_RETRIES",
				Value:  raw,
				Reason: "must be a positive integer",
			}
		}
		cfg.MaxAttempts = n
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
