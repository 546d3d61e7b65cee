// Package source contains the content source adapters. Each adapter turns a
// query into the title and text extract of the best matching item from one
// external provider.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Provider names.
const (
	Wikipedia   = "wikipedia"
	LOC         = "loc"
	NYT         = "nyt"
	Guardian    = "guardian"
	Reddit      = "reddit"
	SerpAPI     = "serpapi"
	OpenLibrary = "openlibrary"
)

// Providers lists every supported provider name.
var Providers = []string{Wikipedia, LOC, NYT, Guardian, Reddit, SerpAPI, OpenLibrary}

// ErrNotFound reports that the provider answered but had nothing usable.
var ErrNotFound = errors.New("no result")

// ErrUnknownProvider is returned by New for an unsupported provider name.
var ErrUnknownProvider = errors.New("unknown provider")

// Result is the normalized answer of a provider.
// Extract may be empty when the provider only has a title.
type Result struct {
	Title   string
	Extract string
}

// Source is a content source adapter.
// Search returns ErrNotFound when nothing matched; any other error is a
// transient failure (network, timeout, non-2xx, malformed payload).
type Source interface {
	Search(ctx context.Context, query string) (*Result, error)
}

// Options configure an adapter.
type Options struct {
	// APIKey is required by nyt, guardian and serpapi.
	APIKey string
	// BaseURL overrides the provider's scheme and host.
	BaseURL string
	// HTTPClient defaults to a client with a 30s timeout.
	HTTPClient *http.Client
	// UserAgent defaults to "<Provider>Thinker/1.0".
	UserAgent string
}

// RequiresAPIKey reports whether the provider needs Options.APIKey.
func RequiresAPIKey(provider string) bool {
	switch provider {
	case NYT, Guardian, SerpAPI:
		return true
	default:
		return false
	}
}

// New creates the adapter for provider.
func New(provider string, opts Options) (Source, error) {
	if RequiresAPIKey(provider) && opts.APIKey == "" {
		return nil, fmt.Errorf("provider '%s' requires an API key", provider)
	}

	var src Source
	switch provider {
	case Wikipedia:
		src = &wikipediaSource{api: newAPI(opts, "https://en.wikipedia.org", "WikipediaThinker/1.0")}
	case LOC:
		src = &locSource{api: newAPI(opts, "https://www.loc.gov", "LOCThinker/1.0")}
	case NYT:
		src = &nytSource{api: newAPI(opts, "https://api.nytimes.com", "NYTThinker/1.0"), apiKey: opts.APIKey}
	case Guardian:
		src = &guardianSource{api: newAPI(opts, "https://content.guardianapis.com", "GuardianThinker/1.0"), apiKey: opts.APIKey}
	case Reddit:
		src = &redditSource{api: newAPI(opts, "https://www.reddit.com", "RedditThinker/1.0")}
	case SerpAPI:
		src = &serpSource{api: newAPI(opts, "https://serpapi.com", "GoogleSearchThinker/1.0"), apiKey: opts.APIKey}
	case OpenLibrary:
		src = &openLibrarySource{api: newAPI(opts, "https://openlibrary.org", "OpenLibraryThinker/1.0")}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	return guarded{src}, nil
}

// guarded rejects blank queries before any network call.
type guarded struct {
	Source
}

func (g guarded) Search(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNotFound
	}
	return g.Source.Search(ctx, query)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// api is the JSON-over-HTTP plumbing shared by all adapters.
type api struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

func newAPI(opts Options, defaultBase, defaultAgent string) *api {
	a := &api{
		client:    opts.HTTPClient,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
	}
	if a.client == nil {
		a.client = &http.Client{Timeout: 30 * time.Second}
	}
	if a.baseURL == "" {
		a.baseURL = defaultBase
	}
	if a.userAgent == "" {
		a.userAgent = defaultAgent
	}
	return a
}

// getJSON fetches baseURL+path with params and decodes the body into out.
func (a *api) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := a.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{URL: a.baseURL + path, Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// pickTitle prefers a title equal to or containing query, else the first non-empty one.
func pickTitle(titles []string, query string) string {
	q := strings.ToLower(query)
	for _, t := range titles {
		if t != "" && strings.Contains(strings.ToLower(t), q) {
			return t
		}
	}
	for _, t := range titles {
		if t != "" {
			return t
		}
	}
	return ""
}

// text decodes a JSON string or array of strings, joining arrays with spaces.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = text(s)
		return nil
	}

	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		// Other shapes carry nothing we can mine.
		*t = ""
		return nil
	}
	*t = text(strings.Join(parts, " "))
	return nil
}
