package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// CSVHeader is written once, when the export file is created.
var CSVHeader = []string{"title", "year", "season", "episode", "status", "release", "note"}

// Export writes the displayed rows to path. The format follows the
// extension: .json and .yaml/.yml replace the file with the full report,
// anything else is CSV appended to the file, with the header only written
// to a new or empty file.
func Export(path string, rep Report) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return writeFile(path, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		})
	case ".yaml", ".yml":
		return writeFile(path, func(w io.Writer) error {
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(rep); err != nil {
				return err
			}
			return enc.Close()
		})
	default:
		return appendCSV(path, rep.Rows)
	}
}

func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write export: %w", err)
	}
	return f.Close()
}

func appendCSV(path string, rows []Row) error {
	newFile := true
	if info, err := os.Stat(path); err == nil {
		newFile = info.Size() == 0
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat export file: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open export file: %w", err)
	}

	if err := WriteCSV(f, rows, newFile); err != nil {
		f.Close()
		return fmt.Errorf("failed to write export: %w", err)
	}
	return f.Close()
}

// WriteCSV writes rows as CSV, preceded by CSVHeader when header is set.
func WriteCSV(w io.Writer, rows []Row, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(CSVHeader); err != nil {
			return err
		}
	}
	for _, r := range rows {
		if err := cw.Write(csvRecord(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRecord(r Row) []string {
	season := ""
	if r.Unit != "" {
		season = strconv.Itoa(r.Season)
	}
	return []string{
		r.Title,
		optionalInt(r.Year),
		season,
		optionalInt(r.Episode),
		r.Status.String(),
		r.Release,
		r.Note,
	}
}

func optionalInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
