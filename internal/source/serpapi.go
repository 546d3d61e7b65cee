package source

import (
	"context"
	"fmt"
	"net/url"
)

type serpSource struct {
	api    *api
	apiKey string
}

type serpSearchResponse struct {
	OrganicResults []struct {
		Title string `json:"title"`
	} `json:"organic_results"`
}

// Search returns the title of the first organic Google result via SerpAPI.
func (s *serpSource) Search(ctx context.Context, query string) (*Result, error) {
	params := url.Values{
		"q":       {query},
		"api_key": {s.apiKey},
	}

	var resp serpSearchResponse
	if err := s.api.getJSON(ctx, "/search", params, &resp); err != nil {
		return nil, fmt.Errorf("serpapi search failed: %w", err)
	}

	results := resp.OrganicResults
	if len(results) == 0 || results[0].Title == "" {
		return nil, ErrNotFound
	}

	return &Result{Title: results[0].Title}, nil
}
