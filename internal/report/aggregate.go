// Package report turns match results into ordered rows for display and
// export.
package report

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/idkjsp/Lacale-check/internal/config"
	"github.com/idkjsp/Lacale-check/internal/matching"
	"github.com/idkjsp/Lacale-check/internal/media"
	"github.com/idkjsp/Lacale-check/internal/tracker"
)

// Show filters.
const (
	ShowAll        = "all"
	ShowMissing    = "missing"
	ShowSent       = "sent"
	ShowVersioning = "versioning"
	ShowExact      = "exact"
	ShowClose      = "close"
	ShowDifferent  = "different"
)

// Sort keys. SortInstant keeps source order.
const (
	SortInstant      = "instant"
	SortOldest       = "oldest"
	SortNewest       = "newest"
	SortAZ           = "az"
	SortZA           = "za"
	SortPopular      = "popular"
	SortLeastPopular = "least-popular"
)

// ShowValues lists the accepted show filters.
var ShowValues = []string{ShowAll, ShowMissing, ShowSent, ShowVersioning, ShowExact, ShowClose, ShowDifferent}

// SortValues lists the accepted sort keys.
var SortValues = []string{SortInstant, SortOldest, SortNewest, SortAZ, SortZA, SortPopular, SortLeastPopular}

// Options selects and orders the rows of a report.
type Options struct {
	Mode        string
	Limit       int
	Show        string
	HidePresent bool
	Sort        string
}

// Validate checks the show filter and sort key.
func (o Options) Validate() error {
	if o.Show != "" && !slices.Contains(ShowValues, o.Show) {
		return fmt.Errorf("unknown show filter %q (want one of %s)", o.Show, strings.Join(ShowValues, ", "))
	}
	if o.Sort != "" && !slices.Contains(SortValues, o.Sort) {
		return fmt.Errorf("unknown sort key %q (want one of %s)", o.Sort, strings.Join(SortValues, ", "))
	}
	return nil
}

// Row is one checked unit: a movie or series, a season or an episode.
type Row struct {
	ItemID     int64           `json:"itemId" yaml:"itemId"`
	Title      string          `json:"title" yaml:"title"`
	Year       int             `json:"year,omitempty" yaml:"year,omitempty"`
	Kind       media.Kind      `json:"kind" yaml:"kind"`
	Season     int             `json:"season,omitempty" yaml:"season,omitempty"`
	Episode    int             `json:"episode,omitempty" yaml:"episode,omitempty"`
	Unit       string          `json:"unit,omitempty" yaml:"unit,omitempty"`
	Status     matching.Status `json:"status" yaml:"status"`
	ItemStatus matching.Status `json:"itemStatus" yaml:"itemStatus"` // worst status across the item's rows
	Release    string          `json:"release,omitempty" yaml:"release,omitempty"`
	Seeders    float64         `json:"seeders,omitempty" yaml:"seeders,omitempty"`
	Score      float64         `json:"score" yaml:"score"`
	Note       string          `json:"note,omitempty" yaml:"note,omitempty"`
	Sent       bool            `json:"sent,omitempty" yaml:"sent,omitempty"`
	Popularity float64         `json:"popularity,omitempty" yaml:"popularity,omitempty"`

	itemIndex int
	seq       int
}

// Report is the aggregated outcome of a run.
type Report struct {
	Title  string                  `json:"title" yaml:"title"`
	Rows   []Row                   `json:"rows" yaml:"rows"`
	Counts map[matching.Status]int `json:"counts" yaml:"counts"`
	Failed int                     `json:"failed" yaml:"failed"`
	Total  int                     `json:"total" yaml:"total"`
}

// Aggregate builds the report rows. Rows are grouped by item in source
// order, then ordered by opts.Sort with a stable sort so that an item's
// sub-rows stay together and equal keys keep their relative order. Counts
// cover every result, before filtering.
func Aggregate(results []matching.Result, opts Options) Report {
	rows := make([]Row, 0, len(results))
	for _, res := range results {
		rows = append(rows, newRow(res))
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		return cmp.Or(cmp.Compare(a.itemIndex, b.itemIndex), cmp.Compare(a.seq, b.seq))
	})
	markItemStatus(rows)

	rep := Report{
		Title:  Heading(opts),
		Counts: make(map[matching.Status]int, 4),
		Total:  len(rows),
	}
	for _, res := range results {
		rep.Counts[res.Status]++
		if res.Err != nil {
			rep.Failed++
		}
	}

	rep.Rows = Filter(rows, opts.Show, opts.HidePresent)
	Sort(rep.Rows, opts.Sort)
	return rep
}

// Filter keeps the rows selected by show. With hidePresent, rows whose
// release is already on the tracker are dropped as well.
func Filter(rows []Row, show string, hidePresent bool) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if hidePresent && r.Status.Present() {
			continue
		}
		if matchesShow(r, show) {
			out = append(out, r)
		}
	}
	return out
}

func matchesShow(r Row, show string) bool {
	switch show {
	case ShowMissing:
		return r.Status == matching.StatusMissing
	case ShowSent:
		return r.Sent
	case ShowVersioning:
		return r.Status == matching.StatusClose || r.Status == matching.StatusDifferent
	case ShowExact:
		return r.Status == matching.StatusExact
	case ShowClose:
		return r.Status == matching.StatusClose
	case ShowDifferent:
		return r.Status == matching.StatusDifferent
	default:
		return true
	}
}

// Sort orders rows in place by item-level keys. Items without a year sort
// last for both year orders.
func Sort(rows []Row, key string) {
	var compare func(a, b Row) int
	switch key {
	case SortOldest:
		compare = func(a, b Row) int {
			return cmp.Or(compareYear(a, b, false), compareTitle(a, b))
		}
	case SortNewest:
		compare = func(a, b Row) int {
			return cmp.Or(compareYear(a, b, true), compareTitle(a, b))
		}
	case SortAZ:
		compare = compareTitle
	case SortZA:
		compare = func(a, b Row) int { return compareTitle(b, a) }
	case SortPopular:
		compare = func(a, b Row) int { return cmp.Compare(b.Popularity, a.Popularity) }
	case SortLeastPopular:
		compare = func(a, b Row) int { return cmp.Compare(a.Popularity, b.Popularity) }
	default:
		return
	}
	slices.SortStableFunc(rows, compare)
}

func compareYear(a, b Row, desc bool) int {
	switch {
	case a.Year == b.Year:
		return 0
	case a.Year == 0:
		return 1
	case b.Year == 0:
		return -1
	case desc:
		return cmp.Compare(b.Year, a.Year)
	default:
		return cmp.Compare(a.Year, b.Year)
	}
}

func compareTitle(a, b Row) int {
	return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
}

// Heading describes the selection, e.g. "Seasons (max 50)" or
// "First 100 items (source order), sorted oldest first". Items are always
// selected in source order; the sort key only orders the rows.
func Heading(opts Options) string {
	limit := "all"
	if opts.Limit > 0 {
		limit = fmt.Sprintf("max %d", opts.Limit)
	}

	var heading string
	switch opts.Mode {
	case config.ModeSeason:
		heading = fmt.Sprintf("Seasons (%s, source order)", limit)
	case config.ModeEpisode:
		heading = fmt.Sprintf("Episodes (%s, source order)", limit)
	default:
		if opts.Limit > 0 {
			heading = fmt.Sprintf("First %d items (source order)", opts.Limit)
		} else {
			heading = "All items (source order)"
		}
	}

	order := map[string]string{
		SortOldest:       "oldest first",
		SortNewest:       "newest first",
		SortAZ:           "A to Z",
		SortZA:           "Z to A",
		SortPopular:      "most popular first",
		SortLeastPopular: "least popular first",
	}[opts.Sort]
	if order == "" {
		return heading
	}
	return heading + ", sorted " + order
}

func newRow(res matching.Result) Row {
	task := res.Task
	r := Row{
		Status:    res.Status,
		Season:    task.Season,
		Episode:   task.Episode,
		Score:     res.Score,
		Note:      res.Reason,
		itemIndex: task.ItemIndex,
		seq:       task.Seq,
	}

	switch task.Granularity {
	case media.GranularitySeason:
		r.Unit = fmt.Sprintf("S%02d", task.Season)
	case media.GranularityEpisode:
		r.Unit = fmt.Sprintf("S%02dE%02d", task.Season, task.Episode)
	}

	if item := task.Item; item != nil {
		r.ItemID = item.ID
		r.Title = item.Title()
		r.Year = item.Year
		r.Kind = item.Kind
		r.Sent = item.Sent
		r.Popularity = item.Popularity
	}
	if res.Best != nil {
		r.Release = res.Best.Name
		r.Seeders = res.Best.Popularity
	}
	if res.Err != nil {
		r.Note = failureNote(res.Err)
	}
	return r
}

func failureNote(err error) string {
	switch {
	case tracker.IsRateLimited(err):
		return "unknown: rate limited"
	case tracker.IsNetworkError(err):
		return "unknown: network error"
	default:
		return "unknown: " + err.Error()
	}
}

// markItemStatus sets ItemStatus on rows grouped by item.
func markItemStatus(rows []Row) {
	for start := 0; start < len(rows); {
		end := start + 1
		worst := rows[start].Status
		for end < len(rows) && rows[end].itemIndex == rows[start].itemIndex {
			worst = min(worst, rows[end].Status)
			end++
		}
		for i := start; i < end; i++ {
			rows[i].ItemStatus = worst
		}
		start = end
	}
}
