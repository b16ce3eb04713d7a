package source

import (
	"context"
	"slices"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/idkjsp/Lacale-check/internal/config"
	"github.com/idkjsp/Lacale-check/internal/media"
	"github.com/idkjsp/Lacale-check/internal/planner"
)

// Sonarr lists series from a Sonarr instance.
type Sonarr struct {
	arr      arrClient
	plan     config.PlannerConfig
	episodes bool
}

// NewSonarr creates a Sonarr source. In episode mode the episode list of
// each series that will be planned is fetched so that real episode numbers
// are known.
func NewSonarr(baseURL, apiKey string, cfg config.SourcesConfig, plan config.PlannerConfig, logger zerolog.Logger) *Sonarr {
	return &Sonarr{
		arr:      newArrClient("sonarr", baseURL, apiKey, cfg, logger),
		plan:     plan,
		episodes: plan.Mode == config.ModeEpisode,
	}
}

func (s *Sonarr) Name() string {
	return "sonarr"
}

type apiSeries struct {
	ID              int64               `json:"id"`
	Title           string              `json:"title"`
	Year            int                 `json:"year"`
	Status          string              `json:"status"`
	Tags            []int64             `json:"tags"`
	AlternateTitles []apiAlternateTitle `json:"alternateTitles"`
	Ratings         struct {
		Votes int     `json:"votes"`
		Value float64 `json:"value"`
	} `json:"ratings"`
	Seasons []struct {
		SeasonNumber int `json:"seasonNumber"`
		Statistics   struct {
			EpisodeCount      int `json:"episodeCount"`
			TotalEpisodeCount int `json:"totalEpisodeCount"`
		} `json:"statistics"`
	} `json:"seasons"`
}

type apiEpisode struct {
	SeasonNumber  int `json:"seasonNumber"`
	EpisodeNumber int `json:"episodeNumber"`
}

// ListItems returns the series in the order Sonarr lists them.
func (s *Sonarr) ListItems(ctx context.Context) ([]media.Item, error) {
	sentID, err := s.arr.sentTagID(ctx)
	if err != nil {
		return nil, s.arr.fail("read tags", err)
	}

	var series []apiSeries
	if err := s.arr.getJSON(ctx, "/api/v3/series", &series); err != nil {
		return nil, s.arr.fail("read series", err)
	}

	// tasks the fetched series will produce; once the limit is reached the
	// remaining series are never planned and keep their season counts
	tasks := 0
	single := s.plan
	single.Limit, single.YearMin, single.YearMax = 0, 0, 0

	items := make([]media.Item, 0, len(series))
	for i := range series {
		as := &series[i]
		if as.Status == "deleted" {
			continue
		}

		titles := []string{as.Title}
		for _, alt := range as.AlternateTitles {
			// season-scoped aliases name a single season, not the show
			if alt.SeasonNumber != nil && *alt.SeasonNumber > 0 {
				continue
			}
			titles = append(titles, alt.Title)
		}
		titles = media.UniqueTitles(titles...)
		if len(titles) == 0 {
			s.arr.logger.Warn().Int64("id", as.ID).Msg("Skipping series without title")
			continue
		}

		item := media.Item{
			ID:         as.ID,
			Titles:     titles,
			Year:       as.Year,
			Kind:       media.KindSeries,
			Popularity: float64(as.Ratings.Votes),
			Sent:       hasTag(as.Tags, sentID),
			Seasons:    seasonsOf(as),
		}

		if s.episodes && s.planned(item, tasks) {
			if err := s.loadEpisodes(ctx, &item); err != nil {
				return nil, s.arr.fail("read episodes", err)
			}
			tasks += len(planner.Plan([]media.Item{item}, single))
		}
		items = append(items, item)
	}

	s.arr.logger.Info().Int("series", len(items)).Msg("Read catalog")
	return items, nil
}

// planned reports whether the planner will reach item, given the number of
// tasks the series before it produce.
func (s *Sonarr) planned(item media.Item, tasks int) bool {
	if !planner.InYearRange(item, s.plan.YearMin, s.plan.YearMax) {
		return false
	}
	return s.plan.Limit <= 0 || tasks < s.plan.Limit
}

func seasonsOf(as *apiSeries) []media.Season {
	seasons := make([]media.Season, 0, len(as.Seasons))
	for _, sn := range as.Seasons {
		count := sn.Statistics.TotalEpisodeCount
		if count == 0 {
			count = sn.Statistics.EpisodeCount
		}
		seasons = append(seasons, media.Season{Number: sn.SeasonNumber, EpisodeCount: count})
	}
	slices.SortStableFunc(seasons, func(a, b media.Season) int {
		return a.Number - b.Number
	})
	return seasons
}

// loadEpisodes replaces the season counts with the episode numbers Sonarr
// knows about.
func (s *Sonarr) loadEpisodes(ctx context.Context, item *media.Item) error {
	var episodes []apiEpisode
	path := "/api/v3/episode?seriesId=" + strconv.FormatInt(item.ID, 10)
	if err := s.arr.getJSON(ctx, path, &episodes); err != nil {
		return err
	}

	bySeason := make(map[int][]int)
	for _, e := range episodes {
		if e.EpisodeNumber <= 0 {
			continue
		}
		bySeason[e.SeasonNumber] = append(bySeason[e.SeasonNumber], e.EpisodeNumber)
	}

	for i := range item.Seasons {
		nums := bySeason[item.Seasons[i].Number]
		slices.Sort(nums)
		nums = slices.Compact(nums)
		item.Seasons[i].Episodes = nums
		item.Seasons[i].EpisodeCount = len(nums)
		delete(bySeason, item.Seasons[i].Number)
	}

	// episodes of seasons missing from the series record
	extra := make([]int, 0, len(bySeason))
	for n := range bySeason {
		extra = append(extra, n)
	}
	slices.Sort(extra)
	for _, n := range extra {
		nums := bySeason[n]
		slices.Sort(nums)
		nums = slices.Compact(nums)
		item.Seasons = append(item.Seasons, media.Season{Number: n, EpisodeCount: len(nums), Episodes: nums})
	}
	if len(extra) > 0 {
		slices.SortStableFunc(item.Seasons, func(a, b media.Season) int {
			return a.Number - b.Number
		})
	}

	s.arr.logger.Debug().
		Int64("seriesId", item.ID).
		Int("episodes", len(episodes)).
		Msg("Read episodes")
	return nil
}
