package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// Pattern compilation for release name parsing
var (
	// Site prefixes like "www.UIndex.org    -    "
	sitePrefixRe = regexp.MustCompile(`(?i)^www\.\S+\.\w+\s*[-–—]\s*`)

	// Season/episode patterns
	seasonEpisodeRe  = regexp.MustCompile(`(?i)s(\d{1,2})[\s._-]*e(\d{1,3})`)
	crossEpisodeRe   = regexp.MustCompile(`(?i)\b(\d{1,2})x(\d{1,3})\b`)
	seasonOnlyRe     = regexp.MustCompile(`(?i)(?:^|[\s._-])s(?:eason)?[\s._-]*(\d{1,2})(?:[\s._-]|$)`)
	episodeOnlyRe    = regexp.MustCompile(`(?i)(?:^|[\s._-])e(?:p|pisode)?[\s._-]*(\d{1,3})(?:[\s._-]|$)`)

	// Year extraction: 4-digit years between 1900-2099, not part of a longer number
	yearRe = regexp.MustCompile(`(?:^|[^\d])((19|20)\d{2})(?:[^\d]|$)`)

	// Encoding tags to strip from title guesses
	encodingTagsRe = regexp.MustCompile(`(?i)\b(?:HD|HDR|DV|x265|x264|H\.?264|H\.?265|HEVC|AVC|AAC|AC3|DD|DTS|FLAC|MP3|WEB-?DL|WEB-?Rip|BluRay|BDRip|DVDRip|HDTV|720p|1080p|2160p|4K|UHD|SDR|10bit|8bit|PROPER|REPACK|iNTERNAL|LiMiTED|UNRATED|EXTENDED|COMPLETE|SEASON|SERIES|MULTI|DUAL|DUBBED|SUBBED|RETAIL|NTSC|PAL|UNCUT)\b`)

	// Trailing release group: "...-GROUP" at end of name
	releaseGroupRe = regexp.MustCompile(`-[A-Za-z0-9]+$`)
)

// knownExtensions are suffixes stripped before parsing. Broader than the
// allowed tree extensions on purpose: parsing a .nfo name must still
// yield a sensible title guess.
var knownExtensions = map[string]struct{}{
	".mkv": {}, ".mp4": {}, ".avi": {}, ".iso": {}, ".m4v": {}, ".ts": {}, ".wmv": {},
	".mov": {}, ".flv": {}, ".webm": {}, ".mpg": {}, ".mpeg": {},
	".srt": {}, ".sub": {}, ".ass": {}, ".ssa": {}, ".vtt": {}, ".idx": {},
	".nfo": {}, ".txt": {}, ".jpg": {}, ".jpeg": {}, ".png": {}, ".sfv": {},
}

// stripExtension removes a trailing known media/junk extension.
func stripExtension(name string) string {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return name
	}
	if _, ok := knownExtensions[strings.ToLower(name[dot:])]; ok {
		return name[:dot]
	}
	return name
}

// seasonEpisode extracts season and episode numbers and the index where
// the marker starts, or ok=false when the name carries none.
func seasonEpisode(name string) (season, episode, index int, ok bool) {
	if m := seasonEpisodeRe.FindStringSubmatchIndex(name); m != nil {
		season = atoiSubmatch(name, m, 1)
		episode = atoiSubmatch(name, m, 2)
		return season, episode, m[0], true
	}
	if m := crossEpisodeRe.FindStringSubmatchIndex(name); m != nil {
		season = atoiSubmatch(name, m, 1)
		episode = atoiSubmatch(name, m, 2)
		return season, episode, m[0], true
	}
	return 0, 0, -1, false
}

// seasonNumber extracts a season-only marker such as "S02" or "Season 2".
func seasonNumber(name string) (season, index int, ok bool) {
	if m := seasonOnlyRe.FindStringSubmatchIndex(name); m != nil {
		return atoiSubmatch(name, m, 1), m[0], true
	}
	return 0, -1, false
}

// episodeNumber extracts an episode-only marker such as "E07" or "Episode 7".
func episodeNumber(name string) (episode, index int, ok bool) {
	if m := episodeOnlyRe.FindStringSubmatchIndex(name); m != nil {
		return atoiSubmatch(name, m, 1), m[0], true
	}
	return 0, -1, false
}

// yearNumber extracts a plausible release year and the index where it starts.
func yearNumber(name string) (year, index int, ok bool) {
	if m := yearRe.FindStringSubmatchIndex(name); m != nil {
		return atoiSubmatch(name, m, 1), m[2], true
	}
	return 0, -1, false
}

func atoiSubmatch(s string, matchIndex []int, group int) int {
	start, end := matchIndex[2*group], matchIndex[2*group+1]
	if start < 0 || end < 0 {
		return 0
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0
	}
	return n
}

// cleanTitle normalizes a raw title fragment: separators become spaces,
// encoding tags and release groups are dropped, whitespace collapses.
func cleanTitle(fragment string) string {
	s := releaseGroupRe.ReplaceAllString(fragment, "")
	s = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(s)
	s = encodingTagsRe.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, "([{ ")
	return titleCaseIfShouting(s)
}

// titleCaseIfShouting normalizes all-caps titles ("GEN V" -> "Gen V")
// while leaving mixed-case titles untouched.
func titleCaseIfShouting(title string) string {
	if len(title) <= 2 || title != strings.ToUpper(title) {
		return title
	}
	words := strings.Fields(strings.ToLower(title))
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
