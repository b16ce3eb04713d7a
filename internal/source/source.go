// Package source reads the catalog to check: a Radarr or Sonarr instance,
// or a local media folder.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/idkjsp/Lacale-check/internal/config"
	"github.com/idkjsp/Lacale-check/internal/media"
)

// ErrSource marks failures to read the catalog. They abort the run.
var ErrSource = errors.New("catalog source unavailable")

// Error wraps a source failure with the source and operation.
type Error struct {
	Source string
	Op     string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Source, e.Op, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrSource, e.Err}
}

// IsSourceError returns true if err came from a catalog source.
func IsSourceError(err error) bool {
	return errors.Is(err, ErrSource)
}

// Source lists catalog items in a stable order.
type Source interface {
	Name() string
	ListItems(ctx context.Context) ([]media.Item, error)
}

// New builds the source selected for this run. folder is only used by
// config.SourceFolder. Sonarr fetches episode numbers when mode is episode.
func New(kind config.Source, cfg config.Config, folder string, logger zerolog.Logger) (Source, error) {
	switch kind {
	case config.SourceRadarr:
		return NewRadarr(cfg.RadarrURL, cfg.RadarrAPIKey, cfg.Sources, logger), nil
	case config.SourceSonarr:
		return NewSonarr(cfg.SonarrURL, cfg.SonarrAPIKey, cfg.Sources, cfg.Planner, logger), nil
	case config.SourceFolder:
		return NewFolder(folder, logger), nil
	default:
		return nil, fmt.Errorf("unknown source %q", kind)
	}
}
