package tools

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hefgen/metricgen/internal/domain"
)

const (
	pubmedName    = "PubMed"
	pubmedBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	pubmedArticleURL = "https://pubmed.ncbi.nlm.nih.gov/"
)

// PubMed searches biomedical literature through the NCBI E-utilities.
// NCBI asks API consumers to identify themselves with a contact email;
// the tool is only constructed when one is configured.
type PubMed struct {
	baseURL    string
	email      string
	maxResults int
	fetch      *fetcher
}

// NewPubMed creates a PubMed search tool. The email is attached to each
// E-utilities request per NCBI usage policy.
func NewPubMed(email string, client *http.Client) *PubMed {
	return &PubMed{
		baseURL:    pubmedBaseURL,
		email:      email,
		maxResults: defaultMaxResults,
		fetch:      newFetcher(client),
	}
}

// Name implements Tool.
func (p *PubMed) Name() string { return pubmedName }

// Search implements Tool. It runs an esearch for PMIDs, then an esummary
// to resolve titles.
func (p *PubMed) Search(ctx context.Context, query string) ([]domain.Source, error) {
	ids, err := p.searchIDs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pubmed search %q: %w", query, err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("pubmed search %q: %w", query, ErrNoResults)
	}

	sources, err := p.summaries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("pubmed search %q: %w", query, err)
	}
	return sources, nil
}

func (p *PubMed) searchIDs(ctx context.Context, query string) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmax":  {strconv.Itoa(p.maxResults)},
		"retmode": {"json"},
		"email":   {p.email},
	}
	body, err := p.fetch.get(ctx, p.baseURL+"/esearch.fcgi?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		ESearchResult struct {
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse esearch response: %w", err)
	}
	return resp.ESearchResult.IDList, nil
}

func (p *PubMed) summaries(ctx context.Context, ids []string) ([]domain.Source, error) {
	params := url.Values{
		"db":    {"pubmed"},
		"id":    {strings.Join(ids, ",")},
		"email": {p.email},
	}
	body, err := p.fetch.get(ctx, p.baseURL+"/esummary.fcgi?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Docs []struct {
			ID    string `xml:"ID,attr"`
			Items []struct {
				Name  string `xml:"Name,attr"`
				Value string `xml:",chardata"`
			} `xml:"Item"`
		} `xml:"DocSum"`
	}
	if err := xml.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse esummary response: %w", err)
	}

	sources := make([]domain.Source, 0, len(result.Docs))
	for _, doc := range result.Docs {
		title := ""
		for _, item := range doc.Items {
			if item.Name == "Title" {
				title = strings.TrimSpace(item.Value)
				break
			}
		}
		if title == "" || doc.ID == "" {
			continue
		}
		sources = append(sources, domain.Source{
			Title: title,
			URL:   pubmedArticleURL + doc.ID + "/",
		})
	}
	if len(sources) == 0 {
		return nil, ErrNoResults
	}
	return sources, nil
}
