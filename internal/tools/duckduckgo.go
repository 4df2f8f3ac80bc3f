package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hefgen/metricgen/internal/domain"
)

const (
	duckDuckGoName    = "DuckDuckGo"
	duckDuckGoBaseURL = "https://api.duckduckgo.com/"
)

// DuckDuckGo searches the DuckDuckGo Instant Answer API. It is the
// general-web fallback when the scholarly backends come up empty.
type DuckDuckGo struct {
	baseURL string
	fetch   *fetcher
}

// NewDuckDuckGo creates a DuckDuckGo search tool.
func NewDuckDuckGo(client *http.Client) *DuckDuckGo {
	return &DuckDuckGo{
		baseURL: duckDuckGoBaseURL,
		fetch:   newFetcher(client),
	}
}

// Name implements Tool.
func (d *DuckDuckGo) Name() string { return duckDuckGoName }

// Search implements Tool.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]domain.Source, error) {
	params := url.Values{
		"q":             {query},
		"format":        {"json"},
		"no_html":       {"1"},
		"skip_disambig": {"1"},
	}
	body, err := d.fetch.get(ctx, d.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo search %q: %w", query, err)
	}

	var resp struct {
		AbstractURL   string `json:"AbstractURL"`
		Heading       string `json:"Heading"`
		RelatedTopics []struct {
			FirstURL string `json:"FirstURL"`
			Text     string `json:"Text"`
		} `json:"RelatedTopics"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("duckduckgo search %q: parse response: %w", query, err)
	}

	var sources []domain.Source
	if resp.Heading != "" && resp.AbstractURL != "" {
		sources = append(sources, domain.Source{Title: resp.Heading, URL: resp.AbstractURL})
	}
	for _, topic := range resp.RelatedTopics {
		if len(sources) >= defaultMaxResults {
			break
		}
		if topic.Text == "" || topic.FirstURL == "" {
			continue
		}
		sources = append(sources, domain.Source{Title: topic.Text, URL: topic.FirstURL})
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("duckduckgo search %q: %w", query, ErrNoResults)
	}
	return sources, nil
}
