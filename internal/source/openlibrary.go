package source

import (
	"context"
	"fmt"
	"net/url"
)

type openLibrarySource struct {
	api *api
}

type openLibrarySearchResponse struct {
	Docs []struct {
		Title         string `json:"title"`
		Subtitle      string `json:"subtitle"`
		FirstSentence text   `json:"first_sentence"`
	} `json:"docs"`
}

// Search looks books up by title. The extract is the top book's first
// sentence, then its subtitle, then the chosen title.
func (s *openLibrarySource) Search(ctx context.Context, query string) (*Result, error) {
	params := url.Values{
		"title": {query},
		"limit": {"10"},
	}

	var resp openLibrarySearchResponse
	if err := s.api.getJSON(ctx, "/search.json", params, &resp); err != nil {
		return nil, fmt.Errorf("openlibrary search failed: %w", err)
	}

	titles := make([]string, 0, len(resp.Docs))
	for _, d := range resp.Docs {
		titles = append(titles, d.Title)
	}

	title := pickTitle(titles, query)
	if title == "" {
		return nil, ErrNotFound
	}

	book := resp.Docs[0]
	extract := string(book.FirstSentence)
	if extract == "" {
		extract = book.Subtitle
	}
	if extract == "" {
		extract = title
	}

	return &Result{Title: title, Extract: extract}, nil
}
