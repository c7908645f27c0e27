// Package tvmaze adapts the TVMaze API to the provider chain. TVMaze
// is keyless and series-only, which makes it the natural last resort in
// the chain: it cannot fail auth and costs nothing to query.
package tvmaze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/ebrainte/rd-dav-server/internal/provider"
)

const (
	providerName = provider.SourceTVMaze

	// DefaultURL is the public TVMaze API endpoint.
	DefaultURL = "https://api.tvmaze.com"
)

// show is the subset of TVMaze's show object this provider reads.
type show struct {
	Name      string `json:"name"`
	Premiered string `json:"premiered"`
}

// searchEntry wraps a show in the /search/shows response.
type searchEntry struct {
	Score float64 `json:"score"`
	Show  show    `json:"show"`
}

// Provider resolves series titles against TVMaze.
type Provider struct {
	httpClient *http.Client
	baseURL    string
	cache      *cache.Cache
}

// New creates a TVMaze provider. Pass a nil httpClient for a default
// with a timeout; tests point baseURL at an httptest server via
// NewWithBaseURL.
func New(httpClient *http.Client) *Provider {
	return NewWithBaseURL(httpClient, DefaultURL)
}

// NewWithBaseURL creates a provider against a specific API endpoint.
func NewWithBaseURL(httpClient *http.Client, baseURL string) *Provider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Provider{
		httpClient: httpClient,
		baseURL:    baseURL,
		cache:      cache.New(24*time.Hour, 10*time.Minute),
	}
}

func (p *Provider) Name() provider.Source { return providerName }

// SearchMovie always misses: TVMaze indexes television only.
func (p *Provider) SearchMovie(ctx context.Context, title string, year int) (provider.Match, error) {
	return provider.Match{}, provider.ErrNoResults
}

// SearchSeries looks up a series. The singlesearch endpoint applies
// fuzzy matching server side and usually lands the right show; when it
// 404s, the broader search endpoint gets one more chance and its
// highest scored entry wins.
func (p *Provider) SearchSeries(ctx context.Context, title string) (provider.Match, error) {
	if cached, found := p.cache.Get(title); found {
		if match, ok := cached.(provider.Match); ok {
			return match, nil
		}
	}

	match, err := p.singleSearch(ctx, title)
	if errors.Is(err, provider.ErrNoResults) {
		match, err = p.fullSearch(ctx, title)
	}
	if err != nil {
		return provider.Match{}, err
	}

	p.cache.Set(title, match, cache.DefaultExpiration)
	return match, nil
}

func (p *Provider) singleSearch(ctx context.Context, title string) (provider.Match, error) {
	endpoint := p.baseURL + "/singlesearch/shows?q=" + url.QueryEscape(title)

	var result show
	if err := p.getJSON(ctx, endpoint, &result); err != nil {
		return provider.Match{}, err
	}
	if result.Name == "" {
		return provider.Match{}, provider.ErrNoResults
	}
	return showMatch(result), nil
}

func (p *Provider) fullSearch(ctx context.Context, title string) (provider.Match, error) {
	endpoint := p.baseURL + "/search/shows?q=" + url.QueryEscape(title)

	var entries []searchEntry
	if err := p.getJSON(ctx, endpoint, &entries); err != nil {
		return provider.Match{}, err
	}
	if len(entries) == 0 {
		return provider.Match{}, provider.ErrNoResults
	}

	best := entries[0]
	for _, e := range entries[1:] {
		if e.Score > best.Score {
			best = e
		}
	}
	if best.Show.Name == "" {
		return provider.Match{}, provider.ErrNoResults
	}
	return showMatch(best.Show), nil
}

func (p *Provider) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &provider.Error{Provider: providerName, Code: "INVALID_REQUEST", Message: err.Error()}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return &provider.Error{Provider: providerName, Code: "UNAVAILABLE", Message: err.Error()}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return provider.ErrNoResults
	case resp.StatusCode == http.StatusTooManyRequests:
		return &provider.Error{Provider: providerName, Code: "RATE_LIMITED", Message: "tvmaze rate limit exceeded"}
	case resp.StatusCode != http.StatusOK:
		return &provider.Error{
			Provider: providerName,
			Code:     "UNKNOWN",
			Message:  fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &provider.Error{Provider: providerName, Code: "BAD_RESPONSE", Message: err.Error()}
	}
	return nil
}

func showMatch(s show) provider.Match {
	return provider.Match{Title: s.Name, Year: premieredYear(s.Premiered)}
}

// premieredYear extracts the year from a premiere date ("2023-09-29").
func premieredYear(premiered string) int {
	if len(premiered) < 4 {
		return 0
	}
	n, err := strconv.Atoi(premiered[:4])
	if err != nil {
		return 0
	}
	return n
}
