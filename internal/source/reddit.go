package source

import (
	"context"
	"fmt"
	"net/url"
)

type redditSource struct {
	api *api
}

type redditSearchResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Title string `json:"title"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Search returns the title of the top post from Reddit's public search.
func (s *redditSource) Search(ctx context.Context, query string) (*Result, error) {
	var resp redditSearchResponse
	if err := s.api.getJSON(ctx, "/search.json", url.Values{"q": {query}}, &resp); err != nil {
		return nil, fmt.Errorf("reddit search failed: %w", err)
	}

	posts := resp.Data.Children
	if len(posts) == 0 || posts[0].Data.Title == "" {
		return nil, ErrNotFound
	}

	return &Result{Title: posts[0].Data.Title}, nil
}
