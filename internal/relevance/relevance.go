// Package relevance filters candidate sources before they are attached
// to a metric. Scholarly archives are trusted outright; everything else
// is screened with a cheap yes/no model call.
package relevance

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/hefgen/metricgen/internal/domain"
	"github.com/hefgen/metricgen/internal/llm"
)

// trustedHosts are archive hosts whose results skip the model screen.
// Matching is by exact host or dot-prefixed suffix.
var trustedHosts = []string{
	"arxiv.org",
	"pubmed.ncbi.nlm.nih.gov",
	"ncbi.nlm.nih.gov",
	"doi.org",
	"openalex.org",
	"semanticscholar.org",
	"aclanthology.org",
}

const screenPromptTemplate = `You judge whether a source is relevant to an evaluation metric.

Task domain: %s
Task type: %s
Metric: %s

Source title: %s
Source URL: %s

Is this source plausibly relevant to defining or justifying the metric above? Answer with exactly one word: yes or no.`

// Filter screens sources for relevance to a metric.
type Filter struct {
	client llm.Client
	logger *slog.Logger
}

// NewFilter creates a relevance filter. A nil logger falls back to
// slog.Default.
func NewFilter(client llm.Client, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{
		client: client,
		logger: logger.With("component", "relevance"),
	}
}

// Keep returns the subset of sources judged relevant to the metric,
// preserving input order. A failed screen keeps the source: dropping
// evidence on provider trouble would starve metrics of citations.
func (f *Filter) Keep(ctx context.Context, task domain.TaskContext, metricName string, sources []domain.Source) []domain.Source {
	kept := make([]domain.Source, 0, len(sources))
	for _, src := range sources {
		if Trusted(src.URL) {
			kept = append(kept, src)
			continue
		}

		relevant, err := f.screen(ctx, task, metricName, src)
		if err != nil {
			f.logger.WarnContext(ctx, "relevance screen failed, keeping source",
				"metric", metricName,
				"url", src.URL,
				"error", err)
			kept = append(kept, src)
			continue
		}
		if relevant {
			kept = append(kept, src)
		} else {
			f.logger.DebugContext(ctx, "source screened out",
				"metric", metricName,
				"url", src.URL)
		}
	}
	return kept
}

func (f *Filter) screen(ctx context.Context, task domain.TaskContext, metricName string, src domain.Source) (bool, error) {
	prompt := fmt.Sprintf(screenPromptTemplate,
		task.TaskDomain, task.TaskType, metricName, src.Title, src.URL)

	resp, err := f.client.Complete(ctx, llm.Request{
		User:        prompt,
		Temperature: 0,
		MaxTokens:   4,
	})
	if err != nil {
		return false, err
	}

	answer := strings.ToLower(strings.TrimSpace(resp.Content))
	answer = strings.TrimRight(answer, ".!")
	return answer == "yes", nil
}

// Trusted reports whether the URL's host is on the archive allowlist.
func Trusted(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, trusted := range trustedHosts {
		if host == trusted || strings.HasSuffix(host, "."+trusted) {
			return true
		}
	}
	return false
}
