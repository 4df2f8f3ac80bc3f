package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hefgen/metricgen/internal/domain"
)

const (
	openAlexName    = "OpenAlex"
	openAlexBaseURL = "https://api.openalex.org/works"
)

// OpenAlex searches the OpenAlex scholarly works API.
type OpenAlex struct {
	baseURL    string
	mailto     string
	maxResults int
	fetch      *fetcher
}

// NewOpenAlex creates an OpenAlex search tool. A non-empty mailto joins
// the polite pool, which gets better rate limits.
func NewOpenAlex(mailto string, client *http.Client) *OpenAlex {
	return &OpenAlex{
		baseURL:    openAlexBaseURL,
		mailto:     mailto,
		maxResults: defaultMaxResults,
		fetch:      newFetcher(client),
	}
}

// Name implements Tool.
func (o *OpenAlex) Name() string { return openAlexName }

// Search implements Tool.
func (o *OpenAlex) Search(ctx context.Context, query string) ([]domain.Source, error) {
	params := url.Values{
		"search":   {query},
		"per-page": {strconv.Itoa(o.maxResults)},
		"select":   {"id,title,doi"},
	}
	if o.mailto != "" {
		params.Set("mailto", o.mailto)
	}
	body, err := o.fetch.get(ctx, o.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("openalex search %q: %w", query, err)
	}

	var resp struct {
		Results []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
			DOI   string `json:"doi"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("openalex search %q: parse response: %w", query, err)
	}

	sources := make([]domain.Source, 0, len(resp.Results))
	for _, work := range resp.Results {
		link := work.DOI
		if link == "" {
			link = work.ID
		}
		if work.Title == "" || link == "" {
			continue
		}
		sources = append(sources, domain.Source{Title: work.Title, URL: link})
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("openalex search %q: %w", query, ErrNoResults)
	}
	return sources, nil
}
