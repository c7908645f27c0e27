package vfs

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/ebrainte/rd-dav-server/internal/debrid"
	"github.com/ebrainte/rd-dav-server/internal/log"
	"github.com/ebrainte/rd-dav-server/internal/parse"
	"github.com/ebrainte/rd-dav-server/internal/provider"
)

// videoExtensions and subtitleExtensions bound what the tree exposes.
// Everything else in a torrent (nfo, samples, artwork) is noise for a
// media library.
var videoExtensions = map[string]struct{}{
	".mkv": {}, ".mp4": {}, ".avi": {}, ".iso": {}, ".m4v": {}, ".ts": {}, ".wmv": {},
}

var subtitleExtensions = map[string]struct{}{
	".srt": {}, ".sub": {}, ".ass": {}, ".ssa": {}, ".vtt": {},
}

// Resolver is the slice of the provider resolver the builder needs.
type Resolver interface {
	Resolve(ctx context.Context, name parse.ParsedName) provider.ResolvedTitle
}

// Builder turns a torrent listing into a snapshot.
type Builder struct {
	resolver Resolver
}

// NewBuilder creates a builder over the given resolver.
func NewBuilder(resolver Resolver) *Builder {
	return &Builder{resolver: resolver}
}

// Build assembles a fresh tree from the torrent listing. Build never
// fails: a torrent that defeats parsing still lands in the tree under
// its fallback title, and unresolvable names degrade to the parsed
// guess.
func (b *Builder) Build(ctx context.Context, torrents []debrid.Torrent) *Snapshot {
	now := time.Now()
	root := NewDir("", now)
	movies, _ := root.ensureDir(MoviesDir)
	series, _ := root.ensureDir(SeriesDir)

	placed := 0
	for _, torrent := range torrents {
		torrentInfo := parse.Parse(torrent.Name)

		for _, file := range torrent.Files {
			if !allowedExtension(file.Name) {
				continue
			}

			info := mergeParsed(torrentInfo, parse.Parse(file.Name))
			resolved := b.resolver.Resolve(ctx, info)

			node := NewFile(file.Name, file.Size, file.Href, now)
			if b.place(movies, series, info, resolved, node) {
				placed++
			} else {
				log.Debug("dropped duplicate file",
					"file", file.Name,
					"torrent", torrent.Name)
			}
		}
	}

	log.Info("virtual tree built",
		"torrents", len(torrents),
		"files", placed,
		"movies", len(movies.Children()),
		"series", len(series.Children()))

	return &Snapshot{Root: root, BuiltAt: now}
}

// place routes one file into the Movies or Series branch. Returns false
// when the file lost a name collision.
func (b *Builder) place(movies, series *Node, info parse.ParsedName, resolved provider.ResolvedTitle, file *Node) bool {
	if info.Kind == parse.KindEpisode {
		showDir, ok := series.ensureDir(sanitizeName(resolved.CanonicalTitle))
		if !ok {
			return false
		}

		season := info.Season
		if season <= 0 {
			season = 1
		}
		seasonDir, ok := showDir.ensureDir(fmt.Sprintf("Season %02d", season))
		if !ok {
			return false
		}
		return seasonDir.addFile(file)
	}

	name := sanitizeName(resolved.CanonicalTitle)
	if resolved.Year > 0 {
		name = fmt.Sprintf("%s (%d)", name, resolved.Year)
	}
	movieDir, ok := movies.ensureDir(name)
	if !ok {
		return false
	}
	return movieDir.addFile(file)
}

// mergeParsed combines torrent-level and file-level parses. The torrent
// name usually carries the better title and year, while season and
// episode markers live on the file.
func mergeParsed(torrent, file parse.ParsedName) parse.ParsedName {
	merged := parse.ParsedName{
		Raw:        torrent.Raw,
		TitleGuess: torrent.TitleGuess,
		Year:       torrent.Year,
		Season:     file.Season,
		Episode:    file.Episode,
		Kind:       torrent.Kind,
	}
	if merged.TitleGuess == "" {
		merged.TitleGuess = file.TitleGuess
	}
	if merged.Year == 0 {
		merged.Year = file.Year
	}
	if merged.Season == 0 {
		merged.Season = torrent.Season
	}
	if merged.Episode == 0 {
		merged.Episode = torrent.Episode
	}
	if file.Kind == parse.KindEpisode {
		merged.Kind = parse.KindEpisode
	}
	return merged
}

// allowedExtension reports whether a file belongs in the tree.
func allowedExtension(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	if _, ok := videoExtensions[ext]; ok {
		return true
	}
	_, ok := subtitleExtensions[ext]
	return ok
}

// sanitizeName makes a title safe as a directory name. A colon becomes
// " -" so "Furiosa: A Mad Max Saga" reads naturally as
// "Furiosa - A Mad Max Saga"; the other reserved characters turn into
// spaces.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, ":", " -")
	replacer := strings.NewReplacer(
		"/", " ", "\\", " ", "*", " ", "?", " ",
		`"`, " ", "<", " ", ">", " ", "|", " ",
	)
	name = replacer.Replace(name)
	return strings.Join(strings.Fields(name), " ")
}
