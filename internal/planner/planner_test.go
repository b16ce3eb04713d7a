package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idkjsp/Lacale-check/internal/config"
	"github.com/idkjsp/Lacale-check/internal/media"
)

func catalog() []media.Item {
	return []media.Item{
		{ID: 1, Titles: []string{"Mickey 17"}, Year: 2025, Kind: media.KindMovie},
		{ID: 2, Titles: []string{"Fargo"}, Year: 2014, Kind: media.KindSeries, Seasons: []media.Season{
			{Number: 0, EpisodeCount: 2},
			{Number: 1, EpisodeCount: 2},
			{Number: 4, Episodes: []int{7, 8}},
		}},
		{ID: 3, Titles: []string{"Dune"}, Year: 2021, Kind: media.KindMovie},
	}
}

func queries(tasks []media.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Query
	}
	return out
}

func TestPlan_Modes(t *testing.T) {
	tests := []struct {
		name string
		mode string
		want []string
	}{
		{
			name: "full",
			mode: config.ModeFull,
			want: []string{"Mickey 17 2025", "Fargo", "Dune 2021"},
		},
		{
			name: "default mode is full",
			mode: "",
			want: []string{"Mickey 17 2025", "Fargo", "Dune 2021"},
		},
		{
			name: "season",
			mode: config.ModeSeason,
			want: []string{"Mickey 17 2025", "Fargo S01", "Fargo S04", "Dune 2021"},
		},
		{
			name: "episode",
			mode: config.ModeEpisode,
			want: []string{"Mickey 17 2025", "Fargo S01E01", "Fargo S01E02", "Fargo S04E07", "Fargo S04E08", "Dune 2021"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := Plan(catalog(), config.PlannerConfig{Mode: tt.mode})
			assert.Equal(t, tt.want, queries(tasks))
		})
	}
}

func TestPlan_TaskFields(t *testing.T) {
	items := catalog()
	tasks := Plan(items, config.PlannerConfig{Mode: config.ModeEpisode})
	require.Len(t, tasks, 6)

	for i, task := range tasks {
		assert.Equal(t, i, task.Seq)
		assert.Same(t, &items[task.ItemIndex], task.Item)
	}

	assert.Equal(t, media.GranularityFull, tasks[0].Granularity, "movies stay full")
	assert.Equal(t, media.GranularityEpisode, tasks[3].Granularity)
	assert.Equal(t, 4, tasks[3].Season)
	assert.Equal(t, 7, tasks[3].Episode)
	assert.Equal(t, 1, tasks[3].ItemIndex)
}

func TestPlan_Limit(t *testing.T) {
	tests := []struct {
		name  string
		mode  string
		limit int
		want  []string
	}{
		{"full limit", config.ModeFull, 2, []string{"Mickey 17 2025", "Fargo"}},
		{"limit cuts inside a series", config.ModeEpisode, 3, []string{"Mickey 17 2025", "Fargo S01E01", "Fargo S01E02"}},
		{"limit above task count", config.ModeSeason, 50, []string{"Mickey 17 2025", "Fargo S01", "Fargo S04", "Dune 2021"}},
		{"zero is unlimited", config.ModeFull, 0, []string{"Mickey 17 2025", "Fargo", "Dune 2021"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := Plan(catalog(), config.PlannerConfig{Mode: tt.mode, Limit: tt.limit})
			assert.Equal(t, tt.want, queries(tasks))
		})
	}
}

func TestPlan_YearFilter(t *testing.T) {
	items := append(catalog(), media.Item{ID: 4, Titles: []string{"Unknown Year"}, Kind: media.KindMovie})

	tests := []struct {
		name     string
		min, max int
		want     []string
	}{
		{"no bounds keeps unknown year", 0, 0, []string{"Mickey 17 2025", "Fargo", "Dune 2021", "Unknown Year"}},
		{"inclusive lower bound", 2021, 0, []string{"Mickey 17 2025", "Dune 2021"}},
		{"inclusive upper bound", 0, 2021, []string{"Fargo", "Dune 2021"}},
		{"both bounds", 2015, 2024, []string{"Dune 2021"}},
		{"empty range", 2030, 2031, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := Plan(items, config.PlannerConfig{Mode: config.ModeFull, YearMin: tt.min, YearMax: tt.max})
			if tt.want == nil {
				assert.Empty(t, tasks)
				return
			}
			assert.Equal(t, tt.want, queries(tasks))
		})
	}
}

func TestPlan_FilteredItemsDoNotUseBudget(t *testing.T) {
	tasks := Plan(catalog(), config.PlannerConfig{Mode: config.ModeFull, Limit: 2, YearMin: 2020})
	assert.Equal(t, []string{"Mickey 17 2025", "Dune 2021"}, queries(tasks))
	assert.Equal(t, 2, tasks[1].ItemIndex)
}

func TestPlan_Specials(t *testing.T) {
	tasks := Plan(catalog(), config.PlannerConfig{Mode: config.ModeSeason, IncludeSpecials: true})
	assert.Equal(t, []string{"Mickey 17 2025", "Fargo S00", "Fargo S01", "Fargo S04", "Dune 2021"}, queries(tasks))
}

func TestPlan_SeriesWithoutBreakdown(t *testing.T) {
	items := []media.Item{
		{ID: 1, Titles: []string{"Severance"}, Kind: media.KindSeries},
		{ID: 2, Titles: []string{"Andor"}, Kind: media.KindSeries, Seasons: []media.Season{{Number: 2}}},
	}

	tasks := Plan(items, config.PlannerConfig{Mode: config.ModeEpisode})
	require.Len(t, tasks, 2)
	assert.Equal(t, "Severance", tasks[0].Query)
	assert.Equal(t, media.GranularityFull, tasks[0].Granularity)
	assert.Equal(t, "Andor S02", tasks[1].Query)
	assert.Equal(t, media.GranularitySeason, tasks[1].Granularity)
}

func TestQuery(t *testing.T) {
	movie := media.Item{Titles: []string{" Dune "}, Year: 2021, Kind: media.KindMovie}
	series := media.Item{Titles: []string{"Fargo"}, Year: 2014, Kind: media.KindSeries}
	noYear := media.Item{Titles: []string{"Évanouis"}, Kind: media.KindMovie}

	assert.Equal(t, "Dune 2021", Query(movie, media.GranularityFull, 0, 0))
	assert.Equal(t, "Évanouis", Query(noYear, media.GranularityFull, 0, 0))
	assert.Equal(t, "Fargo", Query(series, media.GranularityFull, 0, 0))
	assert.Equal(t, "Fargo S04", Query(series, media.GranularitySeason, 4, 0))
	assert.Equal(t, "Fargo S04E07", Query(series, media.GranularityEpisode, 4, 7))
	assert.Equal(t, "Fargo S10E112", Query(series, media.GranularityEpisode, 10, 112))
}
