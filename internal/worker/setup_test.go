package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hefgen/metricgen/internal/config"
)

func TestNewToolRegistry(t *testing.T) {
	cfg := &config.Config{}
	reg := NewToolRegistry(cfg)
	assert.Equal(t, []string{"ArXiv", "DuckDuckGo", "OpenAlex", "SemanticScholar"}, reg.Names())

	cfg.PubMedEmail = "dev@example.com"
	reg = NewToolRegistry(cfg)
	assert.Contains(t, reg.Names(), "PubMed")
}
