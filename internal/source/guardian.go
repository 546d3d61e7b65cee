package source

import (
	"context"
	"fmt"
	"net/url"
)

type guardianSource struct {
	api    *api
	apiKey string
}

type guardianSearchResponse struct {
	Response struct {
		Results []struct {
			WebTitle string `json:"webTitle"`
		} `json:"results"`
	} `json:"response"`
}

// Search returns the headline of the top Guardian result. Headlines carry no
// separate extract.
func (s *guardianSource) Search(ctx context.Context, query string) (*Result, error) {
	params := url.Values{
		"q":       {query},
		"api-key": {s.apiKey},
	}

	var resp guardianSearchResponse
	if err := s.api.getJSON(ctx, "/search", params, &resp); err != nil {
		return nil, fmt.Errorf("guardian search failed: %w", err)
	}

	results := resp.Response.Results
	if len(results) == 0 || results[0].WebTitle == "" {
		return nil, ErrNotFound
	}

	return &Result{Title: results[0].WebTitle}, nil
}
