// Package omdb adapts the Open Movie Database API to the provider
// chain.
package omdb

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Digital-Shane/omdb"

	"github.com/ebrainte/rd-dav-server/internal/provider"
)

const providerName = provider.SourceOMDb

// Provider resolves titles against OMDb.
type Provider struct {
	client *omdb.Client
}

// New creates an OMDb provider. Pass a nil httpClient to get a default
// with a sane timeout; tests inject a client with a stub transport.
func New(apiKey string, httpClient *http.Client) *Provider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Provider{client: omdb.NewClient(strings.TrimSpace(apiKey), httpClient)}
}

func (p *Provider) Name() provider.Source { return providerName }

// SearchMovie looks up a movie by title. OMDb's year filter is strict,
// so a miss with a year is retried without one before giving up: release
// names frequently carry the re-release or rip year rather than the
// original release year.
func (p *Provider) SearchMovie(ctx context.Context, title string, year int) (provider.Match, error) {
	if err := ctx.Err(); err != nil {
		return provider.Match{}, err
	}

	match, err := p.searchMovie(title, year)
	if errors.Is(err, provider.ErrNoResults) && year > 0 {
		match, err = p.searchMovie(title, 0)
	}
	return match, err
}

func (p *Provider) searchMovie(title string, year int) (provider.Match, error) {
	query := omdb.QueryData{
		Title:      title,
		SearchType: "movie",
		Plot:       "short",
	}
	if year > 0 {
		query.Year = strconv.Itoa(year)
	}

	result, err := p.client.SearchByTitle(query)
	if err != nil {
		return provider.Match{}, p.mapError(err)
	}

	switch movie := result.(type) {
	case omdb.MovieResult:
		return movieMatch(movie), nil
	case *omdb.MovieResult:
		return movieMatch(*movie), nil
	default:
		return provider.Match{}, provider.ErrNoResults
	}
}

// SearchSeries looks up a series by title. No year filter: parsed years
// on episode files are usually rip years, not first-air years.
func (p *Provider) SearchSeries(ctx context.Context, title string) (provider.Match, error) {
	if err := ctx.Err(); err != nil {
		return provider.Match{}, err
	}

	query := omdb.QueryData{
		Title:      title,
		SearchType: "series",
		Plot:       "short",
	}

	result, err := p.client.SearchByTitle(query)
	if err != nil {
		return provider.Match{}, p.mapError(err)
	}

	switch series := result.(type) {
	case omdb.SeriesResult:
		return seriesMatch(series), nil
	case *omdb.SeriesResult:
		return seriesMatch(*series), nil
	default:
		return provider.Match{}, provider.ErrNoResults
	}
}

func movieMatch(result omdb.MovieResult) provider.Match {
	return provider.Match{
		Title: result.Title,
		Year:  yearNumber(omdb.FirstYear(result.Year)),
	}
}

func seriesMatch(result omdb.SeriesResult) provider.Match {
	return provider.Match{
		Title: result.Title,
		Year:  yearNumber(omdb.FirstYear(result.Year)),
	}
}

// yearNumber converts OMDb's string year ("2014", "2019–2023" already
// reduced by FirstYear) to an int, zero when absent or malformed.
func yearNumber(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func (p *Provider) mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "not found"):
		return provider.ErrNoResults
	case strings.Contains(lower, "invalid api key"), strings.Contains(lower, "missing omdb api key"):
		return &provider.Error{
			Provider: providerName,
			Code:     "AUTH_FAILED",
			Message:  err.Error(),
		}
	case strings.Contains(lower, "limit reached"), strings.Contains(lower, "too many requests"):
		return &provider.Error{
			Provider: providerName,
			Code:     "RATE_LIMITED",
			Message:  err.Error(),
		}
	default:
		return &provider.Error{
			Provider: providerName,
			Code:     "UNKNOWN",
			Message:  err.Error(),
		}
	}
}
