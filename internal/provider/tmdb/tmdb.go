// Package tmdb adapts The Movie Database API to the provider chain.
package tmdb

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	tmdb "github.com/ryanbradynd05/go-tmdb"

	"github.com/ebrainte/rd-dav-server/internal/provider"
)

const providerName = provider.SourceTMDB

// Client is the slice of *tmdb.TMDb this provider uses, split out so
// tests can stub responses.
type Client interface {
	SearchMovie(name string, options map[string]string) (*tmdb.MovieSearchResults, error)
	SearchTv(name string, options map[string]string) (*tmdb.TvSearchResults, error)
}

// Provider resolves titles against TMDB.
type Provider struct {
	client      Client
	language    string
	rateLimiter *rateLimiter
}

// New creates a TMDB provider with the real API client.
func New(apiKey string) *Provider {
	client := tmdb.Init(tmdb.Config{APIKey: strings.TrimSpace(apiKey)})
	return NewWithClient(client)
}

// NewWithClient creates a provider over an injected client.
func NewWithClient(client Client) *Provider {
	return &Provider{
		client:      client,
		language:    "en-US",
		rateLimiter: newRateLimiter(38, 10*time.Second),
	}
}

func (p *Provider) Name() provider.Source { return providerName }

// SearchMovie looks up a movie by title. Among the returned candidates
// the closest title match wins, not simply the first: TMDB orders by
// popularity, which punishes less popular films that share words with
// blockbusters. A miss with a year filter is retried without one.
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
	options := map[string]string{"language": p.language}
	if year > 0 {
		options["year"] = strconv.Itoa(year)
	}

	p.rateLimiter.wait()
	results, err := p.client.SearchMovie(title, options)
	if err != nil {
		return provider.Match{}, p.mapError(err)
	}
	if results == nil || len(results.Results) == 0 {
		return provider.Match{}, provider.ErrNoResults
	}

	best := 0
	bestScore := titleSimilarity(title, results.Results[0].Title)
	for i := 1; i < len(results.Results); i++ {
		if score := titleSimilarity(title, results.Results[i].Title); score > bestScore {
			best, bestScore = i, score
		}
	}

	movie := results.Results[best]
	return provider.Match{
		Title: movie.Title,
		Year:  dateYear(movie.ReleaseDate),
	}, nil
}

// SearchSeries looks up a series by title, again preferring the closest
// title among the candidates.
func (p *Provider) SearchSeries(ctx context.Context, title string) (provider.Match, error) {
	if err := ctx.Err(); err != nil {
		return provider.Match{}, err
	}

	p.rateLimiter.wait()
	results, err := p.client.SearchTv(title, map[string]string{"language": p.language})
	if err != nil {
		return provider.Match{}, p.mapError(err)
	}
	if results == nil || len(results.Results) == 0 {
		return provider.Match{}, provider.ErrNoResults
	}

	best := 0
	bestScore := titleSimilarity(title, results.Results[0].Name)
	for i := 1; i < len(results.Results); i++ {
		if score := titleSimilarity(title, results.Results[i].Name); score > bestScore {
			best, bestScore = i, score
		}
	}

	show := results.Results[best]
	return provider.Match{
		Title: show.Name,
		Year:  dateYear(show.FirstAirDate),
	}, nil
}

// titleSimilarity scores how well a candidate title matches the query
// on normalized word sets: 1 for an exact match, otherwise the share of
// overlapping words.
func titleSimilarity(query, candidate string) float64 {
	q := normalizeTitle(query)
	c := normalizeTitle(candidate)
	if q == c {
		return 1
	}

	qWords := strings.Fields(q)
	cWords := strings.Fields(c)
	if len(qWords) == 0 || len(cWords) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(qWords))
	for _, w := range qWords {
		set[w] = struct{}{}
	}
	common := 0
	for _, w := range cWords {
		if _, ok := set[w]; ok {
			common++
		}
	}

	union := len(qWords) + len(cWords) - common
	return float64(common) / float64(union)
}

// normalizeTitle lowercases and strips punctuation so "Dune: Part Two"
// and "dune part two" compare equal.
func normalizeTitle(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// dateYear extracts the year from a TMDB date string ("2024-05-22").
func dateYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	n, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return n
}

func (p *Provider) mapError(err error) error {
	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "401"), strings.Contains(lower, "unauthorized"):
		return &provider.Error{
			Provider: providerName,
			Code:     "AUTH_FAILED",
			Message:  err.Error(),
		}
	case strings.Contains(lower, "429"), strings.Contains(lower, "rate limit"):
		return &provider.Error{
			Provider: providerName,
			Code:     "RATE_LIMITED",
			Message:  err.Error(),
		}
	case strings.Contains(lower, "503"), strings.Contains(lower, "unavailable"):
		return &provider.Error{
			Provider: providerName,
			Code:     "UNAVAILABLE",
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
