package config

import (
	"errors"
	"fmt"
)

// ErrConfig marks configuration errors. They are fatal and reported before
// any network call is made.
var ErrConfig = errors.New("invalid configuration")

// Error describes a missing or invalid configuration key.
type Error struct {
	Key    string // config key or environment variable
	Source string // selected source, empty when not source specific
	Reason string
}

func (e *Error) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("config %s (required for %s): %s", e.Key, e.Source, e.Reason)
	}
	return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
}

func (e *Error) Unwrap() error {
	return ErrConfig
}

// IsConfigError returns true if err is a configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// Source names the catalog a run reads from.
type Source string

const (
	SourceRadarr Source = "radarr"
	SourceSonarr Source = "sonarr"
	SourceFolder Source = "folder"
)

// Check modes.
const (
	ModeFull    = "full"
	ModeSeason  = "season"
	ModeEpisode = "episode"
)

// MaxWorkers caps the number of concurrent tracker requests.
const MaxWorkers = 8

// Validate checks the keys required by the selected source and the
// consistency of the tunables.
func (c *Config) Validate(source Source) error {
	switch source {
	case SourceRadarr:
		if c.RadarrURL == "" {
			return missing("RADARR_URL", source)
		}
		if c.RadarrAPIKey == "" {
			return missing("RADARR_API_KEY", source)
		}
	case SourceSonarr:
		if c.SonarrURL == "" {
			return missing("SONARR_URL", source)
		}
		if c.SonarrAPIKey == "" {
			return missing("SONARR_API_KEY", source)
		}
	case SourceFolder:
	default:
		return &Error{Key: "source", Reason: fmt.Sprintf("unknown source %q", source)}
	}

	if c.LacalePasskey == "" {
		return missing("LACALE_PASSKEY", source)
	}
	if c.LacaleAPIBase == "" {
		return missing("LACALE_API_BASE", source)
	}

	return c.validateTunables()
}

func (c *Config) validateTunables() error {
	m := c.Matching
	if m.DifferentThreshold <= 0 || m.DifferentThreshold >= m.CloseThreshold || m.CloseThreshold > 1 {
		return &Error{
			Key:    "matching",
			Reason: fmt.Sprintf("thresholds must satisfy 0 < different (%.2f) < close (%.2f) <= 1", m.DifferentThreshold, m.CloseThreshold),
		}
	}
	if m.YearTolerance < 0 {
		return &Error{Key: "matching.year_tolerance", Reason: "must not be negative"}
	}

	s := c.Search
	if s.Workers < 1 || s.Workers > MaxWorkers {
		return &Error{Key: "search.workers", Reason: fmt.Sprintf("must be between 1 and %d", MaxWorkers)}
	}
	if s.MaxAttempts < 1 {
		return &Error{Key: "search.max_attempts", Reason: "must be at least 1"}
	}
	if s.NetworkRetries < 0 {
		return &Error{Key: "search.network_retries", Reason: "must not be negative"}
	}
	if s.BaseDelay <= 0 || s.MaxDelay < s.BaseDelay {
		return &Error{Key: "search.max_delay", Reason: "must be at least search.base_delay, which must be positive"}
	}
	if s.Timeout <= 0 {
		return &Error{Key: "search.timeout", Reason: "must be positive"}
	}

	p := c.Planner
	switch p.Mode {
	case ModeFull, ModeSeason, ModeEpisode:
	default:
		return &Error{Key: "planner.mode", Reason: fmt.Sprintf("unknown mode %q", p.Mode)}
	}
	if p.YearMin > 0 && p.YearMax > 0 && p.YearMin > p.YearMax {
		return &Error{Key: "planner.year_min", Reason: fmt.Sprintf("%d is after year_max %d", p.YearMin, p.YearMax)}
	}

	return nil
}

func missing(key string, source Source) error {
	return &Error{Key: key, Source: string(source), Reason: "missing"}
}
