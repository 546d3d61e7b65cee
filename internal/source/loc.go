package source

import (
	"context"
	"fmt"
	"net/url"
)

type locSource struct {
	api *api
}

type locSearchResponse struct {
	Results []struct {
		Title       string `json:"title"`
		Description text   `json:"description"`
	} `json:"results"`
}

// Search queries the Library of Congress collection search.
// The extract is the description of the top result, or the chosen title when
// the top result has none.
func (s *locSource) Search(ctx context.Context, query string) (*Result, error) {
	params := url.Values{
		"q":  {query},
		"fo": {"json"},
		"c":  {"10"},
	}

	var resp locSearchResponse
	if err := s.api.getJSON(ctx, "/search/", params, &resp); err != nil {
		return nil, fmt.Errorf("loc search failed: %w", err)
	}

	titles := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		titles = append(titles, r.Title)
	}

	title := pickTitle(titles, query)
	if title == "" {
		return nil, ErrNotFound
	}

	extract := string(resp.Results[0].Description)
	if extract == "" {
		extract = title
	}

	return &Result{Title: title, Extract: extract}, nil
}
