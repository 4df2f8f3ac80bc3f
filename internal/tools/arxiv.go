package tools

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hefgen/metricgen/internal/domain"
)

const (
	arxivName    = "ArXiv"
	arxivBaseURL = "https://export.arxiv.org/api/query"

	defaultMaxResults = 5
)

// ArXiv searches the arXiv Atom API for preprints.
type ArXiv struct {
	baseURL    string
	maxResults int
	fetch      *fetcher
}

// NewArXiv creates an arXiv search tool. A nil client uses a default
// with a 30s timeout.
func NewArXiv(client *http.Client) *ArXiv {
	return &ArXiv{
		baseURL:    arxivBaseURL,
		maxResults: defaultMaxResults,
		fetch:      newFetcher(client),
	}
}

// Name implements Tool.
func (a *ArXiv) Name() string { return arxivName }

// Search implements Tool.
func (a *ArXiv) Search(ctx context.Context, query string) ([]domain.Source, error) {
	params := url.Values{
		"search_query": {"all:" + query},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(a.maxResults)},
	}
	body, err := a.fetch.get(ctx, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("arxiv search %q: %w", query, err)
	}

	var feed struct {
		Entries []struct {
			ID    string `xml:"id"`
			Title string `xml:"title"`
			Links []struct {
				Href string `xml:"href,attr"`
				Rel  string `xml:"rel,attr"`
			} `xml:"link"`
		} `xml:"entry"`
	}
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("arxiv search %q: parse feed: %w", query, err)
	}
	if len(feed.Entries) == 0 {
		return nil, fmt.Errorf("arxiv search %q: %w", query, ErrNoResults)
	}

	sources := make([]domain.Source, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		link := entry.ID
		for _, l := range entry.Links {
			if l.Rel == "alternate" && l.Href != "" {
				link = l.Href
				break
			}
		}
		sources = append(sources, domain.Source{
			// Atom titles wrap at column 80 with leading whitespace.
			Title: strings.Join(strings.Fields(entry.Title), " "),
			URL:   link,
		})
	}
	return sources, nil
}
