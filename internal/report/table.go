package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/idkjsp/Lacale-check/internal/matching"
)

var statusColors = map[matching.Status]text.Colors{
	matching.StatusExact:     {text.FgGreen},
	matching.StatusClose:     {text.FgCyan},
	matching.StatusDifferent: {text.FgYellow},
	matching.StatusMissing:   {text.FgRed},
}

// ShouldColorize reports whether w is a terminal.
func ShouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// RenderTable writes the report heading, the rows and a status summary.
func RenderTable(w io.Writer, rep Report, colorize bool) error {
	withUnit := false
	for _, r := range rep.Rows {
		if r.Unit != "" {
			withUnit = true
			break
		}
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(rep.Title)
	tw.Style().Title.Align = text.AlignLeft

	header := table.Row{"#", "Title", "Year"}
	if withUnit {
		header = append(header, "Unit")
	}
	header = append(header, "Status", "Release", "Note")
	tw.AppendHeader(header)

	for i, r := range rep.Rows {
		year := ""
		if r.Year > 0 {
			year = strconv.Itoa(r.Year)
		}
		status := r.Status.String()
		if colorize {
			status = statusColors[r.Status].Sprint(status)
		}

		row := table.Row{i + 1, r.Title, year}
		if withUnit {
			row = append(row, r.Unit)
		}
		row = append(row, status, r.Release, r.Note)
		tw.AppendRow(row)
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, WidthMax: 48},
		{Name: "Release", WidthMax: 64},
	})

	if _, err := fmt.Fprintln(w, tw.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, Summary(rep))
	return err
}

// Summary renders the per-status counts, e.g.
// "12 checked: 5 exact, 2 close, 1 different, 4 missing (1 failed)".
func Summary(rep Report) string {
	parts := make([]string, 0, 4)
	for _, s := range []matching.Status{matching.StatusExact, matching.StatusClose, matching.StatusDifferent, matching.StatusMissing} {
		parts = append(parts, fmt.Sprintf("%d %s", rep.Counts[s], strings.ToLower(s.String())))
	}
	line := fmt.Sprintf("%d checked: %s", rep.Total, strings.Join(parts, ", "))
	if rep.Failed > 0 {
		line += fmt.Sprintf(" (%d failed)", rep.Failed)
	}
	if shown := len(rep.Rows); shown != rep.Total {
		line += fmt.Sprintf(", %d shown", shown)
	}
	return line
}
