package source

import (
	"context"
	"slices"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/idkjsp/Lacale-check/internal/library/scanner"
	"github.com/idkjsp/Lacale-check/internal/matching"
	"github.com/idkjsp/Lacale-check/internal/media"
)

// Folder infers a catalog from the video files below a directory. Movie
// files become one item per title and year; episode files are grouped into
// series with their seasons and episodes.
type Folder struct {
	root    string
	scanner *scanner.Service
	logger  zerolog.Logger
}

// NewFolder creates a folder source rooted at root.
func NewFolder(root string, logger zerolog.Logger) *Folder {
	log := logger.With().Str("component", "folder").Logger()
	return &Folder{
		root:    root,
		scanner: scanner.NewService(&logger),
		logger:  log,
	}
}

func (f *Folder) Name() string {
	return "folder"
}

// ListItems scans the folder. Movies come before series; within each kind,
// items keep the order in which their first file was found.
func (f *Folder) ListItems(ctx context.Context) ([]media.Item, error) {
	result, err := f.scanner.Scan(ctx, f.root)
	if err != nil {
		return nil, &Error{Source: "folder", Op: "scan " + f.root, Err: err}
	}
	for _, se := range result.Errors {
		f.logger.Warn().Str("path", se.Path).Str("error", se.Error).Msg("Skipped unreadable path")
	}

	b := newCatalogBuilder()
	for i := range result.Movies {
		b.addMovie(&result.Movies[i])
	}
	for i := range result.Episodes {
		b.addEpisode(&result.Episodes[i])
	}
	items := b.items()

	f.logger.Info().
		Int("files", result.TotalFiles).
		Int("items", len(items)).
		Msg("Read catalog")
	return items, nil
}

type seriesEntry struct {
	index    int
	seasons  map[int][]int
	yearSeen map[int]int
}

// catalogBuilder groups parsed files into items. Series are keyed by
// normalized title, movies by normalized title and year.
type catalogBuilder struct {
	list   []media.Item
	movies map[string]int
	series map[string]*seriesEntry
	order  []string
}

func newCatalogBuilder() *catalogBuilder {
	return &catalogBuilder{
		movies: make(map[string]int),
		series: make(map[string]*seriesEntry),
	}
}

func (b *catalogBuilder) addMovie(rel *scanner.Release) {
	key := matching.NormalizeTitle(rel.Title)
	if key == "" {
		return
	}
	key += "|" + strconv.Itoa(rel.Year)
	if _, ok := b.movies[key]; ok {
		return
	}
	b.movies[key] = len(b.list)
	b.list = append(b.list, media.Item{
		ID:     int64(len(b.list) + 1),
		Titles: media.UniqueTitles(rel.Title),
		Year:   rel.Year,
		Kind:   media.KindMovie,
	})
}

func (b *catalogBuilder) addEpisode(rel *scanner.Release) {
	key := matching.NormalizeTitle(rel.Title)
	if key == "" {
		return
	}
	entry, ok := b.series[key]
	if !ok {
		entry = &seriesEntry{
			index:    len(b.list),
			seasons:  make(map[int][]int),
			yearSeen: make(map[int]int),
		}
		b.series[key] = entry
		b.order = append(b.order, key)
		b.list = append(b.list, media.Item{
			ID:     int64(len(b.list) + 1),
			Titles: media.UniqueTitles(rel.Title),
			Kind:   media.KindSeries,
		})
	}

	if rel.Year > 0 {
		entry.yearSeen[rel.Year]++
	}
	if rel.IsCompleteSeries || (rel.Season == 0 && rel.Episode == 0) {
		return
	}

	last := max(rel.EndSeason, rel.Season)
	for s := rel.Season; s <= last; s++ {
		if _, ok := entry.seasons[s]; !ok {
			entry.seasons[s] = nil
		}
	}
	if rel.Episode > 0 {
		for e := rel.Episode; e <= max(rel.EndEpisode, rel.Episode); e++ {
			entry.seasons[rel.Season] = append(entry.seasons[rel.Season], e)
		}
	}
}

func (b *catalogBuilder) items() []media.Item {
	for _, key := range b.order {
		entry := b.series[key]
		item := &b.list[entry.index]
		item.Year = mostSeen(entry.yearSeen)

		numbers := make([]int, 0, len(entry.seasons))
		for n := range entry.seasons {
			numbers = append(numbers, n)
		}
		slices.Sort(numbers)

		for _, n := range numbers {
			eps := entry.seasons[n]
			slices.Sort(eps)
			eps = slices.Compact(eps)
			item.Seasons = append(item.Seasons, media.Season{Number: n, EpisodeCount: len(eps), Episodes: eps})
		}
	}
	return b.list
}

// mostSeen returns the most frequent year, the earliest on ties.
func mostSeen(years map[int]int) int {
	best, bestCount := 0, 0
	for y, n := range years {
		if n > bestCount || (n == bestCount && y < best) {
			best, bestCount = y, n
		}
	}
	return best
}
