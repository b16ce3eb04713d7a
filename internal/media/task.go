package media

import "fmt"

// Granularity is the level at which an item is checked.
type Granularity string

const (
	GranularityFull    Granularity = "full"
	GranularitySeason  Granularity = "season"
	GranularityEpisode Granularity = "episode"
)

// Task is one tracker lookup for an item. Season and Episode are set
// according to Granularity.
type Task struct {
	Item        *Item
	ItemIndex   int // position of Item in the source order
	Seq         int // position of the task in the plan
	Granularity Granularity
	Season      int
	Episode     int
	Query       string
}

// Label renders the unit the task checks, e.g. "Severance S01E02".
func (t Task) Label() string {
	title := ""
	if t.Item != nil {
		title = t.Item.Title()
	}
	switch t.Granularity {
	case GranularitySeason:
		return fmt.Sprintf("%s S%02d", title, t.Season)
	case GranularityEpisode:
		return fmt.Sprintf("%s S%02dE%02d", title, t.Season, t.Episode)
	default:
		return title
	}
}

// Candidate is one tracker search hit. Popularity (seeders or similar) only
// orders otherwise equal candidates.
type Candidate struct {
	Name       string  `json:"name" yaml:"name"`
	Popularity float64 `json:"popularity,omitempty" yaml:"popularity,omitempty"`
}
