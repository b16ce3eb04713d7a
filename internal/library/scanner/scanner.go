package scanner

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// ScanError is a path that could not be read during a scan.
type ScanError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ScanResult contains the media files found under a folder.
type ScanResult struct {
	RootPath   string      `json:"rootPath"`
	Movies     []Release   `json:"movies"`
	Episodes   []Release   `json:"episodes"`
	Errors     []ScanError `json:"errors"`
	TotalFiles int         `json:"totalFiles"`
	Skipped    int         `json:"skipped"`
}

// Service walks local folders for media files.
type Service struct {
	logger *zerolog.Logger
}

// NewService creates a new scanner service.
func NewService(logger *zerolog.Logger) *Service {
	subLogger := logger.With().Str("component", "scanner").Logger()
	return &Service{
		logger: &subLogger,
	}
}

// Scan walks root recursively. Files are returned in lexical walk order so
// repeated scans of the same tree yield the same sequence. Unreadable
// entries below root are recorded in Errors; an unreadable root is returned
// as an error.
func (s *Service) Scan(ctx context.Context, root string) (*ScanResult, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "scan", Path: root, Err: os.ErrInvalid}
	}

	result := &ScanResult{
		RootPath: root,
		Movies:   make([]Release, 0),
		Episodes: make([]Release, 0),
		Errors:   make([]ScanError, 0),
	}

	s.logger.Info().Str("path", root).Msg("Starting folder scan")

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if walkErr != nil && path == root {
			return walkErr
		}
		return s.processEntry(path, d, walkErr, result)
	})
	if err != nil {
		return result, err
	}

	s.logger.Info().
		Str("path", root).
		Int("totalFiles", result.TotalFiles).
		Int("movies", len(result.Movies)).
		Int("episodes", len(result.Episodes)).
		Int("errors", len(result.Errors)).
		Int("skipped", result.Skipped).
		Msg("Folder scan completed")

	return result, nil
}

func (s *Service) processEntry(path string, d os.DirEntry, walkErr error, result *ScanResult) error {
	if walkErr != nil {
		s.logger.Warn().Err(walkErr).Str("path", path).Msg("Skipping unreadable path")
		result.Errors = append(result.Errors, ScanError{Path: path, Error: walkErr.Error()})
		return nil //nolint:nilerr // Record error but continue scanning
	}

	if d.IsDir() || !IsVideoFile(d.Name()) {
		return nil
	}

	if IsSampleFile(d.Name()) {
		result.Skipped++
		return nil
	}

	result.TotalFiles++

	parsed := ParsePath(path)
	if parsed.Title == "" {
		result.Skipped++
		return nil
	}

	if parsed.IsTV {
		result.Episodes = append(result.Episodes, *parsed)
	} else {
		result.Movies = append(result.Movies, *parsed)
	}
	return nil
}
