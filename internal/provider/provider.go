// Package provider defines the metadata provider capability and the
// resolver that chains providers into a single title lookup.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Source identifies which metadata provider produced a resolution.
type Source string

const (
	SourceOMDb   Source = "omdb"
	SourceTMDB   Source = "tmdb"
	SourceTVDB   Source = "tvdb"
	SourceTVMaze Source = "tvmaze"
	SourceNone   Source = "none"
)

// Confidence describes how a title was resolved.
type Confidence int

const (
	// ConfidenceFallback means no provider matched and the canonical
	// title is the raw parsed guess.
	ConfidenceFallback Confidence = iota
	// ConfidenceHigh means a provider returned a match.
	ConfidenceHigh
)

// Match is a canonical title returned by a provider search. Year is
// zero when the provider did not report one.
type Match struct {
	Title string
	Year  int
}

// ErrNoResults reports that a provider found nothing for a query.
var ErrNoResults = errors.New("no results found")

// Provider is the capability every metadata source implements. Movies
// and series are queried through separate endpoints on every real API,
// so the split is part of the contract. Providers that cannot serve a
// media type return ErrNoResults.
type Provider interface {
	Name() Source
	SearchMovie(ctx context.Context, title string, year int) (Match, error)
	SearchSeries(ctx context.Context, title string) (Match, error)
}

// Error wraps a provider failure with enough context to log it at the
// call site. Resolution treats any provider error as "no match".
type Error struct {
	Provider Source
	Code     string
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Code, e.Message)
}
