// Package tvdb adapts TheTVDB API to the provider chain.
package tvdb

import (
	"context"
	"strconv"
	"strings"

	tvdbapi "github.com/dashotv/tvdb"
	"github.com/dashotv/tvdb/openapi/models/operations"

	"github.com/ebrainte/rd-dav-server/internal/provider"
)

const providerName = provider.SourceTVDB

// Client captures the dashotv client method this provider uses.
type Client interface {
	GetSearchResults(request operations.GetSearchResultsRequest) (*tvdbapi.GetSearchResultsResponse, error)
}

// Provider resolves titles against TVDB.
type Provider struct {
	client Client
}

// New logs in to TVDB and returns a provider. Login performs a network
// round trip, so construction can fail.
func New(apiKey string) (*Provider, error) {
	client, err := tvdbapi.Login(strings.TrimSpace(apiKey))
	if err != nil {
		return nil, mapError(err)
	}
	return NewWithClient(client), nil
}

// NewWithClient creates a provider over an injected client.
func NewWithClient(client Client) *Provider {
	return &Provider{client: client}
}

func (p *Provider) Name() provider.Source { return providerName }

func (p *Provider) SearchMovie(ctx context.Context, title string, year int) (provider.Match, error) {
	if err := ctx.Err(); err != nil {
		return provider.Match{}, err
	}
	return p.search(title, "movie", year)
}

func (p *Provider) SearchSeries(ctx context.Context, title string) (provider.Match, error) {
	if err := ctx.Err(); err != nil {
		return provider.Match{}, err
	}
	return p.search(title, "series", 0)
}

// search runs one TVDB search and returns the first candidate of the
// requested record type. The API mixes movies, series, and people in
// one result list even with a type filter set.
func (p *Provider) search(title, recordType string, year int) (provider.Match, error) {
	query := strings.TrimSpace(title)
	if query == "" {
		return provider.Match{}, provider.ErrNoResults
	}

	req := operations.GetSearchResultsRequest{Query: &query, Type: &recordType}
	if year > 0 {
		yf := float64(year)
		req.Year = &yf
	}

	resp, err := p.client.GetSearchResults(req)
	if err != nil {
		return provider.Match{}, mapError(err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return provider.Match{}, provider.ErrNoResults
	}

	for _, candidate := range resp.Data {
		if !strings.EqualFold(pointerToString(candidate.Type), recordType) {
			continue
		}
		name := firstNonEmptyString(
			pointerToString(candidate.Name),
			pointerToString(candidate.NameTranslated),
			pointerToString(candidate.Title),
		)
		if name == "" {
			continue
		}
		return provider.Match{
			Title: name,
			Year:  parseYear(pointerToString(candidate.Year)),
		}, nil
	}

	return provider.Match{}, provider.ErrNoResults
}

func pointerToString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func firstNonEmptyString(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func parseYear(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func mapError(err error) error {
	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "401"), strings.Contains(lower, "unauthorized"), strings.Contains(lower, "apikey"):
		return &provider.Error{Provider: providerName, Code: "AUTH_FAILED", Message: err.Error()}
	case strings.Contains(lower, "429"), strings.Contains(lower, "too many"):
		return &provider.Error{Provider: providerName, Code: "RATE_LIMITED", Message: err.Error()}
	case strings.Contains(lower, "404"), strings.Contains(lower, "not found"):
		return provider.ErrNoResults
	default:
		return &provider.Error{Provider: providerName, Code: "UNKNOWN", Message: err.Error()}
	}
}
