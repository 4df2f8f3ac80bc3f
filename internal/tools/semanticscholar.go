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
	semanticScholarName    = "SemanticScholar"
	semanticScholarBaseURL = "https://api.semanticscholar.org/graph/v1/paper/search"
)

// SemanticScholar searches the Semantic Scholar Graph API.
type SemanticScholar struct {
	baseURL    string
	maxResults int
	fetch      *fetcher
}

// NewSemanticScholar creates a Semantic Scholar search tool.
func NewSemanticScholar(client *http.Client) *SemanticScholar {
	return &SemanticScholar{
		baseURL:    semanticScholarBaseURL,
		maxResults: defaultMaxResults,
		fetch:      newFetcher(client),
	}
}

// Name implements Tool.
func (s *SemanticScholar) Name() string { return semanticScholarName }

// Search implements Tool.
func (s *SemanticScholar) Search(ctx context.Context, query string) ([]domain.Source, error) {
	params := url.Values{
		"query":  {query},
		"limit":  {strconv.Itoa(s.maxResults)},
		"fields": {"title,url"},
	}
	body, err := s.fetch.get(ctx, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("semantic scholar search %q: %w", query, err)
	}

	var resp struct {
		Data []struct {
			Title string `json:"title"`
			URL   string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("semantic scholar search %q: parse response: %w", query, err)
	}

	sources := make([]domain.Source, 0, len(resp.Data))
	for _, paper := range resp.Data {
		if paper.Title == "" || paper.URL == "" {
			continue
		}
		sources = append(sources, domain.Source{Title: paper.Title, URL: paper.URL})
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("semantic scholar search %q: %w", query, ErrNoResults)
	}
	return sources, nil
}
