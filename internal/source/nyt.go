package source

import (
	"context"
	"fmt"
	"net/url"
)

type nytSource struct {
	api    *api
	apiKey string
}

type nytSearchResponse struct {
	Response struct {
		Docs []struct {
			Headline struct {
				Main string `json:"main"`
			} `json:"headline"`
			Abstract      string `json:"abstract"`
			LeadParagraph string `json:"lead_paragraph"`
		} `json:"docs"`
	} `json:"response"`
}

// Search queries the article search API sorted by relevance.
// The extract is the abstract or lead paragraph of the top article.
func (s *nytSource) Search(ctx context.Context, query string) (*Result, error) {
	params := url.Values{
		"q":       {query},
		"api-key": {s.apiKey},
		"sort":    {"relevance"},
	}

	var resp nytSearchResponse
	if err := s.api.getJSON(ctx, "/svc/search/v2/articlesearch.json", params, &resp); err != nil {
		return nil, fmt.Errorf("nyt search failed: %w", err)
	}

	docs := resp.Response.Docs
	headlines := make([]string, 0, len(docs))
	for _, d := range docs {
		headlines = append(headlines, d.Headline.Main)
	}

	headline := pickTitle(headlines, query)
	if headline == "" {
		return nil, ErrNotFound
	}

	extract := docs[0].Abstract
	if extract == "" {
		extract = docs[0].LeadParagraph
	}
	if extract == "" {
		return nil, ErrNotFound
	}

	return &Result{Title: headline, Extract: extract}, nil
}
