package config //nolint:testpackage // Exercises env resolution directly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hefgen/metricgen/internal/domain"
)

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")

	_, err := Load()

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "OPENROUTER_API_KEY", cfgErr.Field)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("OPENROUTER_BASE_URL", "")
	t.Setenv("OPENROUTER_MODEL", "")
	t.Setenv("AGENT_MAX_RETRIES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.OpenRouter.APIKey)
	assert.Equal(t, DefaultOpenRouterBaseURL, cfg.OpenRouter.BaseURL)
	assert.Equal(t, DefaultOpenRouterModel, cfg.OpenRouter.Model)
	assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, DefaultQueryLogDir, cfg.QueryLogDir)
	assert.Equal(t, DefaultTaskQueue, cfg.Temporal.TaskQueue)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("OPENROUTER_MODEL", "anthropic/claude-sonnet")
	t.Setenv("AGENT_MAX_RETRIES", "5")
	t.Setenv("PUBMED_EMAIL", "research@example.org")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "anthropic/claude-sonnet", cfg.OpenRouter.Model)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, "research@example.org", cfg.PubMedEmail)
}

func TestLoad_RejectsBadRetryCount(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("AGENT_MAX_RETRIES", "zero")

	_, err := Load()

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "AGENT_MAX_RETRIES", cfgErr.Field)
}
