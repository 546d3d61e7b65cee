package source

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
)

type wikipediaSource struct {
	api *api
}

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type wikiSummaryResponse struct {
	Extract     string `json:"extract"`
	Description string `json:"description"`
}

type wikiExtractsResponse struct {
	Query struct {
		Pages map[string]struct {
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

func (s *wikipediaSource) search(ctx context.Context, srsearch string) ([]string, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {srsearch},
		"format":   {"json"},
		"utf8":     {"1"},
		"srlimit":  {"10"},
	}

	var resp wikiSearchResponse
	if err := s.api.getJSON(ctx, "/w/api.php", params, &resp); err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(resp.Query.Search))
	for _, r := range resp.Query.Search {
		titles = append(titles, r.Title)
	}
	return titles, nil
}

// Search finds the best matching article and returns its lead summary.
// Lookup order: exact or containing title, intitle search, first result.
// The summary endpoint is tried before the extracts API.
func (s *wikipediaSource) Search(ctx context.Context, query string) (*Result, error) {
	titles, err := s.search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("wikipedia search failed: %w", err)
	}

	title := ""
	q := strings.ToLower(query)
	for _, t := range titles {
		if t != "" && strings.Contains(strings.ToLower(t), q) {
			title = t
			break
		}
	}

	if title == "" {
		intitle, err := s.search(ctx, fmt.Sprintf("intitle:%q", query))
		if err != nil {
			log.Printf("[Source:wikipedia] intitle search failed: %v", err)
		} else if len(intitle) > 0 {
			title = intitle[0]
		}
	}

	if title == "" && len(titles) > 0 {
		title = titles[0]
	}
	if title == "" {
		return nil, ErrNotFound
	}

	extract := s.summary(ctx, title)
	if extract == "" {
		extract = s.intro(ctx, title)
	}
	if extract == "" {
		return nil, ErrNotFound
	}

	return &Result{Title: title, Extract: extract}, nil
}

// summary reads the REST summary. Failures are logged and yield "".
func (s *wikipediaSource) summary(ctx context.Context, title string) string {
	var resp wikiSummaryResponse
	if err := s.api.getJSON(ctx, "/api/rest_v1/page/summary/"+url.PathEscape(title), nil, &resp); err != nil {
		log.Printf("[Source:wikipedia] summary lookup failed for %q: %v", title, err)
		return ""
	}
	if resp.Extract != "" {
		return resp.Extract
	}
	return resp.Description
}

// intro reads the plain-text intro through the extracts API.
func (s *wikipediaSource) intro(ctx context.Context, title string) string {
	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"explaintext": {"1"},
		"exintro":     {"1"},
		"titles":      {title},
		"format":      {"json"},
		"utf8":        {"1"},
	}

	var resp wikiExtractsResponse
	if err := s.api.getJSON(ctx, "/w/api.php", params, &resp); err != nil {
		log.Printf("[Source:wikipedia] extracts lookup failed for %q: %v", title, err)
		return ""
	}
	for _, page := range resp.Query.Pages {
		return page.Extract
	}
	return ""
}
