// Package media defines the catalog entities read from a source and checked
// against the tracker.
package media

import "strings"

// Kind distinguishes movies from series.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// Item is one catalog entry (a movie or a series) as produced by a source.
// Items are treated as immutable once a source has returned them.
type Item struct {
	ID         int64    `json:"id" yaml:"id"`
	Titles     []string `json:"titles" yaml:"titles"` // primary title first, then alternates
	Year       int      `json:"year,omitempty" yaml:"year,omitempty"`
	Kind       Kind     `json:"kind" yaml:"kind"`
	Seasons    []Season `json:"seasons,omitempty" yaml:"seasons,omitempty"`
	Popularity float64  `json:"popularity,omitempty" yaml:"popularity,omitempty"`
	Sent       bool     `json:"sent,omitempty" yaml:"sent,omitempty"`
}

// Season describes one season of a series.
type Season struct {
	Number       int   `json:"number" yaml:"number"`
	EpisodeCount int   `json:"episodeCount" yaml:"episodeCount"`
	Episodes     []int `json:"episodes,omitempty" yaml:"episodes,omitempty"`
}

// Title returns the primary title.
func (i Item) Title() string {
	if len(i.Titles) == 0 {
		return ""
	}
	return i.Titles[0]
}

// HasYear reports whether the source supplied a release year.
func (i Item) HasYear() bool {
	return i.Year > 0
}

// IsSeries reports whether the item is a series.
func (i Item) IsSeries() bool {
	return i.Kind == KindSeries
}

// EpisodeNumbers returns the episode numbers of the season. Explicit numbers
// from the source win; otherwise 1..EpisodeCount is assumed.
func (s Season) EpisodeNumbers() []int {
	if len(s.Episodes) > 0 {
		out := make([]int, len(s.Episodes))
		copy(out, s.Episodes)
		return out
	}
	out := make([]int, 0, s.EpisodeCount)
	for n := 1; n <= s.EpisodeCount; n++ {
		out = append(out, n)
	}
	return out
}

// UniqueTitles builds a title list with blanks and case-insensitive
// duplicates removed, preserving order. It is used by sources so that the
// Titles invariant (non-empty, primary first) holds.
func UniqueTitles(titles ...string) []string {
	seen := make(map[string]struct{}, len(titles))
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
