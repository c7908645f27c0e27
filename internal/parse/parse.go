// Package parse turns raw torrent and file names into structured media
// metadata. Parsing is best effort and never fails: names that defeat
// every pattern come back as KindUnknown with a cleaned title guess.
package parse

import "strings"

// Kind classifies what a release name appears to be.
type Kind int

const (
	KindUnknown Kind = iota
	KindMovie
	KindEpisode
)

func (k Kind) String() string {
	switch k {
	case KindMovie:
		return "movie"
	case KindEpisode:
		return "episode"
	default:
		return "unknown"
	}
}

// ParsedName is the structured result of parsing one release name.
// Zero values mean "not present" for Year, Season and Episode.
type ParsedName struct {
	Raw        string
	TitleGuess string
	Year       int
	Season     int
	Episode    int
	Kind       Kind
}

// Parse extracts a title guess, year, and season/episode markers from a
// torrent folder or file name.
func Parse(raw string) ParsedName {
	parsed := ParsedName{Raw: raw, Kind: KindUnknown}

	name := stripExtension(raw)
	name = sitePrefixRe.ReplaceAllString(name, "")
	// Names that use underscores instead of dots parse better once
	// normalized to the dotted convention.
	if !strings.Contains(name, ".") && strings.Contains(name, "_") {
		name = strings.ReplaceAll(name, "_", ".")
	}

	titleEnd := len(name)

	if season, episode, idx, ok := seasonEpisode(name); ok {
		parsed.Kind = KindEpisode
		parsed.Season = season
		parsed.Episode = episode
		if idx < titleEnd {
			titleEnd = idx
		}
	} else if season, idx, ok := seasonNumber(name); ok {
		// Season pack folder: "Show.Name.S02.1080p" and friends.
		parsed.Kind = KindEpisode
		parsed.Season = season
		if idx < titleEnd {
			titleEnd = idx
		}
	} else if episode, idx, ok := episodeNumber(name); ok {
		parsed.Kind = KindEpisode
		parsed.Episode = episode
		if idx < titleEnd {
			titleEnd = idx
		}
	}

	if year, idx, ok := yearNumber(name); ok {
		parsed.Year = year
		if parsed.Kind == KindUnknown {
			parsed.Kind = KindMovie
		}
		if idx < titleEnd {
			titleEnd = idx
		}
	}

	parsed.TitleGuess = cleanTitle(name[:titleEnd])
	if parsed.TitleGuess == "" {
		parsed.TitleGuess = cleanTitle(name)
	}
	if parsed.TitleGuess == "" {
		parsed.TitleGuess = strings.TrimSpace(name)
	}

	return parsed
}
