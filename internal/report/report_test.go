package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/idkjsp/Lacale-check/internal/config"
	"github.com/idkjsp/Lacale-check/internal/matching"
	"github.com/idkjsp/Lacale-check/internal/media"
	"github.com/idkjsp/Lacale-check/internal/tracker"
)

type fixture struct {
	items   []media.Item
	results []matching.Result
}

func movieFixture() fixture {
	items := []media.Item{
		{ID: 1, Titles: []string{"Mickey 17"}, Year: 2025, Kind: media.KindMovie, Popularity: 80},
		{ID: 2, Titles: []string{"Amélie"}, Year: 2001, Kind: media.KindMovie, Popularity: 12, Sent: true},
		{ID: 3, Titles: []string{"Nobody 2"}, Year: 2025, Kind: media.KindMovie, Popularity: 40},
		{ID: 4, Titles: []string{"Évanouis"}, Kind: media.KindMovie, Popularity: 5},
		{ID: 5, Titles: []string{"Dune"}, Year: 2021, Kind: media.KindMovie, Popularity: 40},
	}
	statuses := []matching.Status{
		matching.StatusExact, matching.StatusClose, matching.StatusDifferent, matching.StatusMissing, matching.StatusMissing,
	}

	f := fixture{items: items}
	for i := range items {
		task := media.Task{Item: &items[i], ItemIndex: i, Seq: i, Granularity: media.GranularityFull}
		res := matching.Result{Task: task, Status: statuses[i]}
		if statuses[i] != matching.StatusMissing {
			res.Best = &media.Candidate{Name: items[i].Title() + ".1080p.WEB", Popularity: 3}
		}
		f.results = append(f.results, res)
	}
	f.results[4] = matching.Failed(f.results[4].Task, &tracker.Error{Op: "search", Query: "Dune", Err: tracker.ErrRateLimited})
	return f
}

func titles(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Title
		if r.Unit != "" {
			out[i] += " " + r.Unit
		}
	}
	return out
}

func TestAggregate_FullMode(t *testing.T) {
	f := movieFixture()
	// completion order must not matter
	shuffled := []matching.Result{f.results[3], f.results[0], f.results[4], f.results[2], f.results[1]}

	rep := Aggregate(shuffled, Options{Mode: config.ModeFull, Limit: 5, Sort: SortInstant})

	assert.Equal(t, "First 5 items (source order)", rep.Title)
	assert.Equal(t, []string{"Mickey 17", "Amélie", "Nobody 2", "Évanouis", "Dune"}, titles(rep.Rows))
	assert.Equal(t, 5, rep.Total)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, 2, rep.Counts[matching.StatusMissing])
	assert.Equal(t, 1, rep.Counts[matching.StatusExact])

	dune := rep.Rows[4]
	assert.Equal(t, matching.StatusMissing, dune.Status)
	assert.Equal(t, "unknown: rate limited", dune.Note)
	assert.Empty(t, dune.Release)
	assert.Equal(t, "Mickey 17.1080p.WEB", rep.Rows[0].Release)
}

func TestAggregate_Filters(t *testing.T) {
	f := movieFixture()

	tests := []struct {
		name        string
		show        string
		hidePresent bool
		want        []string
	}{
		{"all", ShowAll, false, []string{"Mickey 17", "Amélie", "Nobody 2", "Évanouis", "Dune"}},
		{"missing", ShowMissing, false, []string{"Évanouis", "Dune"}},
		{"sent", ShowSent, false, []string{"Amélie"}},
		{"versioning", ShowVersioning, false, []string{"Amélie", "Nobody 2"}},
		{"exact", ShowExact, false, []string{"Mickey 17"}},
		{"close", ShowClose, false, []string{"Amélie"}},
		{"different", ShowDifferent, false, []string{"Nobody 2"}},
		{"hide present", ShowAll, true, []string{"Nobody 2", "Évanouis", "Dune"}},
		{"versioning without present", ShowVersioning, true, []string{"Nobody 2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := Aggregate(f.results, Options{Show: tt.show, HidePresent: tt.hidePresent})
			assert.Equal(t, tt.want, titles(rep.Rows))
			assert.Equal(t, 5, rep.Total, "counts ignore filters")
		})
	}
}

func TestAggregate_Sort(t *testing.T) {
	f := movieFixture()

	tests := []struct {
		key  string
		want []string
	}{
		{SortInstant, []string{"Mickey 17", "Amélie", "Nobody 2", "Évanouis", "Dune"}},
		{SortOldest, []string{"Amélie", "Dune", "Mickey 17", "Nobody 2", "Évanouis"}},
		{SortNewest, []string{"Mickey 17", "Nobody 2", "Dune", "Amélie", "Évanouis"}},
		{SortAZ, []string{"Amélie", "Dune", "Mickey 17", "Nobody 2", "Évanouis"}},
		{SortZA, []string{"Évanouis", "Nobody 2", "Mickey 17", "Dune", "Amélie"}},
		{SortPopular, []string{"Mickey 17", "Nobody 2", "Dune", "Amélie", "Évanouis"}},
		{SortLeastPopular, []string{"Évanouis", "Amélie", "Nobody 2", "Dune", "Mickey 17"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			rep := Aggregate(f.results, Options{Sort: tt.key})
			assert.Equal(t, tt.want, titles(rep.Rows))
		})
	}
}

func seasonFixture() []matching.Result {
	items := []media.Item{
		{ID: 1, Titles: []string{"Severance"}, Year: 2022, Kind: media.KindSeries, Popularity: 10},
		{ID: 2, Titles: []string{"Andor"}, Year: 2022, Kind: media.KindSeries, Popularity: 10},
	}
	var results []matching.Result
	seq := 0
	add := func(idx, season int, status matching.Status) {
		task := media.Task{Item: &items[idx], ItemIndex: idx, Seq: seq, Granularity: media.GranularitySeason, Season: season}
		results = append(results, matching.Result{Task: task, Status: status})
		seq++
	}
	add(0, 1, matching.StatusExact)
	add(0, 2, matching.StatusMissing)
	add(1, 1, matching.StatusClose)
	add(1, 2, matching.StatusExact)
	return results
}

func TestAggregate_SeasonRowsStayGrouped(t *testing.T) {
	results := seasonFixture()

	rep := Aggregate(results, Options{Mode: config.ModeSeason, Limit: 50, Sort: SortAZ})
	assert.Equal(t, "Seasons (max 50, source order), sorted A to Z", rep.Title)
	assert.Equal(t, []string{"Andor S01", "Andor S02", "Severance S01", "Severance S02"}, titles(rep.Rows))

	assert.Equal(t, matching.StatusClose, rep.Rows[0].ItemStatus)
	assert.Equal(t, matching.StatusClose, rep.Rows[1].ItemStatus)
	assert.Equal(t, matching.StatusMissing, rep.Rows[2].ItemStatus, "any missing season marks the item")
	assert.Equal(t, matching.StatusMissing, rep.Rows[3].ItemStatus)

	// equal popularity keeps source order and groups
	rep = Aggregate(results, Options{Mode: config.ModeSeason, Sort: SortPopular})
	assert.Equal(t, []string{"Severance S01", "Severance S02", "Andor S01", "Andor S02"}, titles(rep.Rows))
}

func TestAggregate_Deterministic(t *testing.T) {
	f := movieFixture()
	first := Aggregate(f.results, Options{Sort: SortNewest})
	for range 10 {
		again := Aggregate(f.results, Options{Sort: SortNewest})
		assert.Equal(t, titles(first.Rows), titles(again.Rows))
	}
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, Options{}.Validate())
	assert.NoError(t, Options{Show: ShowVersioning, Sort: SortLeastPopular}.Validate())
	assert.Error(t, Options{Show: "present"}.Validate())
	assert.Error(t, Options{Sort: "random"}.Validate())
}

func TestHeading(t *testing.T) {
	tests := []struct {
		opts Options
		want string
	}{
		{Options{Mode: config.ModeFull, Limit: 10}, "First 10 items (source order)"},
		{Options{Mode: config.ModeFull, Limit: 10, Sort: SortOldest}, "First 10 items (source order), sorted oldest first"},
		{Options{Mode: config.ModeFull, Sort: SortInstant}, "All items (source order)"},
		{Options{Mode: config.ModeFull, Sort: SortPopular}, "All items (source order), sorted most popular first"},
		{Options{Mode: config.ModeEpisode, Limit: 100}, "Episodes (max 100, source order)"},
		{Options{Mode: config.ModeSeason, Sort: SortAZ}, "Seasons (all, source order), sorted A to Z"},
	}
	for _, tt := range tests {
		if got := Heading(tt.opts); got != tt.want {
			t.Errorf("Heading(%+v) = %q, want %q", tt.opts, got, tt.want)
		}
	}
}

func TestRenderTable(t *testing.T) {
	f := movieFixture()
	rep := Aggregate(f.results, Options{Mode: config.ModeFull, Limit: 5})

	var buf bytes.Buffer
	require.NoError(t, RenderTable(&buf, rep, false))
	out := buf.String()

	assert.Contains(t, out, "First 5 items (source order)")
	assert.Contains(t, out, "Mickey 17")
	assert.Contains(t, out, "Exact")
	assert.Contains(t, out, "unknown: rate limited")
	assert.NotContains(t, out, "UNIT")
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "5 checked: 1 exact, 1 close, 1 different, 2 missing (1 failed)")
}

func TestRenderTable_UnitColumn(t *testing.T) {
	rep := Aggregate(seasonFixture(), Options{Mode: config.ModeSeason, Show: ShowMissing})

	var buf bytes.Buffer
	require.NoError(t, RenderTable(&buf, rep, true))
	out := buf.String()

	assert.Contains(t, out, "UNIT")
	assert.Contains(t, out, "S02")
	assert.Contains(t, out, "1 shown")
}

func TestShouldColorize(t *testing.T) {
	assert.False(t, ShouldColorize(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, ShouldColorize(f))
}

func TestExport_CSVAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	rep := Aggregate(seasonFixture(), Options{Mode: config.ModeSeason, Show: ShowMissing})

	require.NoError(t, Export(path, rep))
	require.NoError(t, Export(path, rep))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, []string{
		"title,year,season,episode,status,release,note",
		"Severance,2022,2,,Missing,,",
		"Severance,2022,2,,Missing,,",
	}, lines)
}

func TestExport_CSVEmptyFileGetsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	rep := Aggregate(movieFixture().results, Options{Show: ShowExact})
	require.NoError(t, Export(path, rep))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "title,year,season,episode,status,release,note\nMickey 17,2025,,,Exact,Mickey 17.1080p.WEB,\n", string(data))
}

func TestExport_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	rep := Aggregate(movieFixture().results, Options{Show: ShowMissing})
	require.NoError(t, Export(path, rep))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded struct {
		Rows []struct {
			Title  string `json:"title"`
			Status string `json:"status"`
			Note   string `json:"note"`
		} `json:"rows"`
		Counts map[string]int `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Rows, 2)
	assert.Equal(t, "Missing", decoded.Rows[0].Status)
	assert.Equal(t, "unknown: rate limited", decoded.Rows[1].Note)
	assert.Equal(t, 2, decoded.Counts["Missing"])
}

func TestExport_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	rep := Aggregate(movieFixture().results, Options{Show: ShowExact})
	require.NoError(t, Export(path, rep))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded struct {
		Title string `yaml:"title"`
		Rows  []struct {
			Title   string `yaml:"title"`
			Status  string `yaml:"status"`
			Release string `yaml:"release"`
		} `yaml:"rows"`
	}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Len(t, decoded.Rows, 1)
	assert.Equal(t, "Mickey 17", decoded.Rows[0].Title)
	assert.Equal(t, "Exact", decoded.Rows[0].Status)
}
