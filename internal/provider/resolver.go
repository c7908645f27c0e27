package provider

import (
	"context"
	"errors"
	"time"

	csmap "github.com/mhmtszr/concurrent-swiss-map"

	"github.com/ebrainte/rd-dav-server/internal/log"
	"github.com/ebrainte/rd-dav-server/internal/parse"
)

// ResolvedTitle is the outcome of running a parsed name through the
// provider chain. CanonicalTitle is always non-empty: when every
// provider misses, it falls back to the parsed guess.
type ResolvedTitle struct {
	CanonicalTitle string
	Year           int
	Provider       Source
	Confidence     Confidence
}

// cacheKey identifies one logical lookup. Two files from the same
// season pack share a key and therefore a single provider round trip.
type cacheKey struct {
	title string
	year  int
	kind  parse.Kind
}

// searchTimeout bounds a single provider call so one slow API cannot
// stall a whole tree rebuild.
const searchTimeout = 10 * time.Second

// Resolver turns parsed names into canonical titles by asking a fixed
// chain of providers in order and caching every outcome, including
// fallbacks. Safe for concurrent use.
type Resolver struct {
	chain []Provider
	cache *csmap.CsMap[cacheKey, ResolvedTitle]
}

// NewResolver builds a resolver over the given providers. Chain order
// is significant: the first provider that returns a match wins.
func NewResolver(chain ...Provider) *Resolver {
	return &Resolver{
		chain: chain,
		cache: csmap.Create[cacheKey, ResolvedTitle](),
	}
}

// Resolve looks up the canonical title for a parsed name. Provider
// errors are logged and treated as a miss so a flaky API degrades a
// single title instead of the whole refresh. Results are cached for
// the resolver's lifetime, negative outcomes included.
func (r *Resolver) Resolve(ctx context.Context, name parse.ParsedName) ResolvedTitle {
	key := cacheKey{title: name.TitleGuess, year: name.Year, kind: searchKind(name.Kind)}
	if cached, ok := r.cache.Load(key); ok {
		return cached
	}

	resolved := r.search(ctx, name)
	r.cache.Store(key, resolved)
	return resolved
}

// CacheSize reports how many distinct lookups the resolver has served.
func (r *Resolver) CacheSize() int {
	return r.cache.Count()
}

func (r *Resolver) search(ctx context.Context, name parse.ParsedName) ResolvedTitle {
	for _, p := range r.chain {
		match, err := r.query(ctx, p, name)
		if err != nil {
			if !errors.Is(err, ErrNoResults) {
				log.Warn("provider search failed",
					"provider", string(p.Name()),
					"title", name.TitleGuess,
					"error", err)
			}
			continue
		}
		year := match.Year
		if year == 0 {
			year = name.Year
		}
		return ResolvedTitle{
			CanonicalTitle: match.Title,
			Year:           year,
			Provider:       p.Name(),
			Confidence:     ConfidenceHigh,
		}
	}

	return ResolvedTitle{
		CanonicalTitle: name.TitleGuess,
		Year:           name.Year,
		Provider:       SourceNone,
		Confidence:     ConfidenceFallback,
	}
}

func (r *Resolver) query(ctx context.Context, p Provider, name parse.ParsedName) (Match, error) {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	if name.Kind == parse.KindEpisode {
		return p.SearchSeries(ctx, name.TitleGuess)
	}
	return p.SearchMovie(ctx, name.TitleGuess, name.Year)
}

// searchKind collapses KindUnknown into KindMovie for cache purposes:
// both run the movie search path, so their outcomes are identical.
func searchKind(k parse.Kind) parse.Kind {
	if k == parse.KindEpisode {
		return parse.KindEpisode
	}
	return parse.KindMovie
}
