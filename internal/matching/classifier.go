package matching

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/idkjsp/Lacale-check/internal/config"
	"github.com/idkjsp/Lacale-check/internal/library/scanner"
	"github.com/idkjsp/Lacale-check/internal/media"
)

// Status is the match state of a task. Higher values are better matches.
type Status int

const (
	StatusMissing Status = iota
	StatusDifferent
	StatusClose
	StatusExact
)

var statusNames = map[Status]string{
	StatusMissing:   "Missing",
	StatusDifferent: "Different",
	StatusClose:     "Close",
	StatusExact:     "Exact",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText renders the status name in JSON and YAML exports.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Present reports whether the tracker already has the content.
func (s Status) Present() bool {
	return s == StatusExact || s == StatusClose
}

// Result is the outcome of one task. Best is nil iff Status is Missing.
// Err holds the task failure (rate limiting, network) when the lookup could
// not be completed; such results are Missing.
type Result struct {
	Task   media.Task
	Status Status
	Best   *media.Candidate
	Score  float64
	Reason string
	Err    error
}

// Failed builds the Missing result of a task whose lookup failed.
func Failed(task media.Task, err error) Result {
	return Result{Task: task, Status: StatusMissing, Err: err}
}

// Classifier assigns match states to tracker candidates.
type Classifier struct {
	closeThreshold     float64
	differentThreshold float64
	yearTolerance      int
	logger             zerolog.Logger
}

// NewClassifier creates a classifier from validated thresholds.
func NewClassifier(cfg config.MatchingConfig, logger zerolog.Logger) *Classifier {
	return &Classifier{
		closeThreshold:     cfg.CloseThreshold,
		differentThreshold: cfg.DifferentThreshold,
		yearTolerance:      cfg.YearTolerance,
		logger:             logger.With().Str("component", "classifier").Logger(),
	}
}

type verdict struct {
	status Status
	score  float64
	reason string
}

// Classify evaluates every candidate and keeps the best one. Ties among
// equal states are broken by score (except for Exact), then popularity,
// then the order the tracker returned them in, so the same input always
// selects the same candidate.
func (c *Classifier) Classify(task media.Task, candidates []media.Candidate) Result {
	result := Result{Task: task, Status: StatusMissing}
	if task.Item == nil || len(candidates) == 0 {
		return result
	}

	titles := make([]string, 0, len(task.Item.Titles))
	for _, t := range task.Item.Titles {
		titles = append(titles, NormalizeTitle(t))
	}

	bestIdx := -1
	var best verdict
	for i, cand := range candidates {
		v := c.evaluate(task, titles, cand)
		if v.status == StatusMissing {
			continue
		}
		if bestIdx < 0 || better(v, cand, best, candidates[bestIdx]) {
			bestIdx = i
			best = v
		}
	}

	if bestIdx < 0 {
		return result
	}

	chosen := candidates[bestIdx]
	result.Status = best.status
	result.Best = &chosen
	result.Score = best.score
	result.Reason = best.reason

	c.logger.Debug().
		Str("task", task.Label()).
		Str("status", result.Status.String()).
		Str("candidate", chosen.Name).
		Float64("score", best.score).
		Int("candidates", len(candidates)).
		Msg("Classified task")

	return result
}

func better(v verdict, cand media.Candidate, cur verdict, curCand media.Candidate) bool {
	if v.status != cur.status {
		return v.status > cur.status
	}
	if v.status != StatusExact && v.score != cur.score {
		return v.score > cur.score
	}
	return cand.Popularity > curCand.Popularity
}

func (c *Classifier) evaluate(task media.Task, titles []string, cand media.Candidate) verdict {
	rel := scanner.ParseRelease(cand.Name)
	candTitle := NormalizeTitle(rel.Title)
	if candTitle == "" {
		candTitle = Normalize(cand.Name)
	}
	if candTitle == "" {
		return verdict{status: StatusMissing}
	}

	score := 0.0
	primary, alternate := false, false
	for i, t := range titles {
		if t == "" {
			continue
		}
		if t == candTitle {
			score = 1.0
			if i == 0 {
				primary = true
			} else {
				alternate = true
			}
			continue
		}
		score = max(score, similarity(t, candTitle))
	}

	v := verdict{score: score}
	switch {
	case primary:
		v.status = StatusExact
	case alternate:
		v.status = StatusClose
		v.reason = "alternate title"
	case score >= c.closeThreshold:
		v.status = StatusClose
		v.reason = "similar title"
	case score >= c.differentThreshold:
		v.status = StatusDifferent
		v.reason = "partial title"
	}

	unit, unitReason := c.unitLimit(task, rel)
	if v.status == StatusMissing {
		// a release of exactly the requested unit under another title is
		// still reported, as a different release
		if unit == StatusExact && isSeriesUnit(task) {
			v.status = StatusDifferent
			v.reason = "title mismatch"
		}
		return v
	}
	v = limit(v, unit, unitReason)

	year, yearReason := c.yearLimit(task.Item, rel)
	return limit(v, year, yearReason)
}

func limit(v verdict, ceiling Status, reason string) verdict {
	if v.status > ceiling {
		v.status = ceiling
		v.reason = reason
	}
	return v
}

func (c *Classifier) yearLimit(item *media.Item, rel *scanner.Release) (Status, string) {
	if !item.HasYear() || rel.Year == 0 || rel.Year == item.Year {
		return StatusExact, ""
	}
	reason := fmt.Sprintf("year %d", rel.Year)
	diff := rel.Year - item.Year
	if diff < 0 {
		diff = -diff
	}
	if diff <= c.yearTolerance {
		return StatusClose, reason
	}
	return StatusDifferent, reason
}

func isSeriesUnit(task media.Task) bool {
	return task.Granularity == media.GranularitySeason || task.Granularity == media.GranularityEpisode
}

// unitLimit caps the state by how well the release's season/episode marker
// fits the task: the exact unit, a pack containing it, or anything else.
func (c *Classifier) unitLimit(task media.Task, rel *scanner.Release) (Status, string) {
	switch task.Granularity {
	case media.GranularitySeason:
		switch {
		case rel.IsTV && rel.Episode == 0 && rel.EndSeason == 0 && !rel.IsCompleteSeries && rel.Season == task.Season:
			return StatusExact, ""
		case rel.CoversSeason(task.Season):
			return StatusClose, "pack " + markerOf(rel)
		default:
			return StatusDifferent, unitMismatch(rel)
		}

	case media.GranularityEpisode:
		switch {
		case rel.IsTV && rel.Season == task.Season && rel.Episode == task.Episode && rel.EndEpisode == 0:
			return StatusExact, ""
		case rel.CoversEpisode(task.Season, task.Episode):
			return StatusClose, "pack " + markerOf(rel)
		default:
			return StatusDifferent, unitMismatch(rel)
		}

	default:
		if task.Item.IsSeries() || !rel.IsTV {
			return StatusExact, ""
		}
		return StatusDifferent, "series release " + markerOf(rel)
	}
}

func unitMismatch(rel *scanner.Release) string {
	if !rel.IsTV {
		return "no season marker"
	}
	return "wrong unit " + markerOf(rel)
}

func markerOf(rel *scanner.Release) string {
	switch {
	case rel.IsCompleteSeries && rel.EndSeason == 0:
		return "complete"
	case rel.EndSeason > 0:
		return fmt.Sprintf("S%02d-S%02d", rel.Season, rel.EndSeason)
	case rel.Episode > 0 && rel.EndEpisode > 0:
		return fmt.Sprintf("S%02dE%02d-E%02d", rel.Season, rel.Episode, rel.EndEpisode)
	case rel.Episode > 0:
		return fmt.Sprintf("S%02dE%02d", rel.Season, rel.Episode)
	default:
		return fmt.Sprintf("S%02d", rel.Season)
	}
}
