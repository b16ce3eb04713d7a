// Package planner expands catalog items into tracker lookups.
package planner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/idkjsp/Lacale-check/internal/config"
	"github.com/idkjsp/Lacale-check/internal/media"
)

// Plan turns items into search tasks in source order. Items outside the
// year range are dropped first; planning stops as soon as Limit tasks exist.
// Task.Item points into items, so the slice must not be modified afterwards.
//
// Movies always get a single full task. A series without usable seasons gets
// a full task in every mode, and a season without episode data gets a
// season task in episode mode, so that each item still yields a row.
func Plan(items []media.Item, cfg config.PlannerConfig) []media.Task {
	mode := media.Granularity(cfg.Mode)
	if mode == "" {
		mode = media.GranularityFull
	}

	p := &plan{limit: cfg.Limit}
	for i := range items {
		if p.full() {
			break
		}
		item := &items[i]
		if !InYearRange(*item, cfg.YearMin, cfg.YearMax) {
			continue
		}
		p.expand(i, item, mode, cfg.IncludeSpecials)
	}
	return p.tasks
}

// InYearRange reports whether the item falls within [min, max]. Zero bounds
// are open. An item without a year is excluded as soon as either bound is set.
func InYearRange(item media.Item, minYear, maxYear int) bool {
	if minYear <= 0 && maxYear <= 0 {
		return true
	}
	if !item.HasYear() {
		return false
	}
	if minYear > 0 && item.Year < minYear {
		return false
	}
	if maxYear > 0 && item.Year > maxYear {
		return false
	}
	return true
}

// Query builds the search string sent to the tracker for a unit:
// "Dune 2021", "Fargo S04" or "Fargo S04E07". The year only qualifies
// movie lookups.
func Query(item media.Item, g media.Granularity, season, episode int) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(item.Title()))
	switch g {
	case media.GranularitySeason:
		fmt.Fprintf(&b, " S%02d", season)
	case media.GranularityEpisode:
		fmt.Fprintf(&b, " S%02dE%02d", season, episode)
	default:
		if !item.IsSeries() && item.HasYear() {
			b.WriteString(" ")
			b.WriteString(strconv.Itoa(item.Year))
		}
	}
	return b.String()
}

type plan struct {
	limit int
	tasks []media.Task
}

func (p *plan) full() bool {
	return p.limit > 0 && len(p.tasks) >= p.limit
}

func (p *plan) add(index int, item *media.Item, g media.Granularity, season, episode int) bool {
	if p.full() {
		return false
	}

	p.tasks = append(p.tasks, media.Task{
		Item:        item,
		ItemIndex:   index,
		Seq:         len(p.tasks),
		Granularity: g,
		Season:      season,
		Episode:     episode,
		Query:       Query(*item, g, season, episode),
	})
	return true
}

func (p *plan) expand(index int, item *media.Item, mode media.Granularity, specials bool) {
	if !item.IsSeries() || mode == media.GranularityFull {
		p.add(index, item, media.GranularityFull, 0, 0)
		return
	}

	seasons := make([]media.Season, 0, len(item.Seasons))
	for _, s := range item.Seasons {
		if s.Number == 0 && !specials {
			continue
		}
		seasons = append(seasons, s)
	}
	if len(seasons) == 0 {
		p.add(index, item, media.GranularityFull, 0, 0)
		return
	}

	for _, s := range seasons {
		if mode == media.GranularitySeason {
			if !p.add(index, item, media.GranularitySeason, s.Number, 0) {
				return
			}
			continue
		}

		episodes := s.EpisodeNumbers()
		if len(episodes) == 0 {
			if !p.add(index, item, media.GranularitySeason, s.Number, 0) {
				return
			}
			continue
		}
		for _, e := range episodes {
			if !p.add(index, item, media.GranularityEpisode, s.Number, e) {
				return
			}
		}
	}
}
