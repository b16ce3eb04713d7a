package source

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/idkjsp/Lacale-check/internal/config"
	"github.com/idkjsp/Lacale-check/internal/media"
)

// Radarr lists movies from a Radarr instance.
type Radarr struct {
	arr arrClient
}

// NewRadarr creates a Radarr source.
func NewRadarr(baseURL, apiKey string, cfg config.SourcesConfig, logger zerolog.Logger) *Radarr {
	return &Radarr{arr: newArrClient("radarr", baseURL, apiKey, cfg, logger)}
}

func (r *Radarr) Name() string {
	return "radarr"
}

type apiMovie struct {
	ID              int64               `json:"id"`
	Title           string              `json:"title"`
	OriginalTitle   string              `json:"originalTitle"`
	Year            int                 `json:"year"`
	Status          string              `json:"status"`
	Popularity      float64             `json:"popularity"`
	Tags            []int64             `json:"tags"`
	AlternateTitles []apiAlternateTitle `json:"alternateTitles"`
}

// ListItems returns the movies in the order Radarr lists them.
func (r *Radarr) ListItems(ctx context.Context) ([]media.Item, error) {
	sentID, err := r.arr.sentTagID(ctx)
	if err != nil {
		return nil, r.arr.fail("read tags", err)
	}

	var movies []apiMovie
	if err := r.arr.getJSON(ctx, "/api/v3/movie", &movies); err != nil {
		return nil, r.arr.fail("read movies", err)
	}

	items := make([]media.Item, 0, len(movies))
	for i := range movies {
		m := &movies[i]
		if m.Status == "deleted" {
			continue
		}

		titles := []string{m.Title, m.OriginalTitle}
		for _, alt := range m.AlternateTitles {
			titles = append(titles, alt.Title)
		}
		titles = media.UniqueTitles(titles...)
		if len(titles) == 0 {
			r.arr.logger.Warn().Int64("id", m.ID).Msg("Skipping movie without title")
			continue
		}

		items = append(items, media.Item{
			ID:         m.ID,
			Titles:     titles,
			Year:       m.Year,
			Kind:       media.KindMovie,
			Popularity: m.Popularity,
			Sent:       hasTag(m.Tags, sentID),
		})
	}

	r.arr.logger.Info().Int("movies", len(items)).Msg("Read catalog")
	return items, nil
}
