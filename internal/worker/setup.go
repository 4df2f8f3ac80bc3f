// Package worker wires generation dependencies together and registers
// them with a Temporal worker.
package worker

import (
	"log/slog"

	"github.com/hefgen/metricgen/internal/config"
	"github.com/hefgen/metricgen/internal/generation"
	"github.com/hefgen/metricgen/internal/llm"
	"github.com/hefgen/metricgen/internal/querylog"
	"github.com/hefgen/metricgen/internal/relevance"
	"github.com/hefgen/metricgen/internal/tools"
)

// NewToolRegistry builds the search tool registry from configuration.
// PubMed is only registered when a contact email is configured, per
// NCBI usage policy.
func NewToolRegistry(cfg *config.Config) *tools.Registry {
	toolset := []tools.Tool{
		tools.NewArXiv(nil),
		tools.NewSemanticScholar(nil),
		tools.NewOpenAlex(cfg.PubMedEmail, nil),
		tools.NewDuckDuckGo(nil),
	}
	if cfg.PubMedEmail != "" {
		toolset = append(toolset, tools.NewPubMed(cfg.PubMedEmail, nil))
	}
	return tools.NewRegistry(toolset...)
}

// NewPlanner assembles the full generation planner from configuration.
func NewPlanner(cfg *config.Config, logger *slog.Logger) *generation.Planner {
	client := llm.NewOpenRouterClient(cfg.OpenRouter, logger)
	return generation.NewPlanner(
		client,
		NewToolRegistry(cfg),
		relevance.NewFilter(client, logger),
		querylog.New(cfg.QueryLogDir),
		cfg.MaxAttempts,
		logger,
	)
}
