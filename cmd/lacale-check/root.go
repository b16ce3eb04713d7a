package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idkjsp/Lacale-check/internal/config"
	"github.com/idkjsp/Lacale-check/internal/report"
)

type rootFlags struct {
	radarr     bool
	sonarr     bool
	folder     string
	configPath string
	envFile    string
}

// flagKeys maps command line flags to the config keys they override.
var flagKeys = map[string]string{
	"mode":         "planner.mode",
	"limit":        "planner.limit",
	"year-min":     "planner.year_min",
	"year-max":     "planner.year_max",
	"specials":     "planner.include_specials",
	"show":         "report.show",
	"hide-present": "report.hide_present",
	"sort":         "report.sort",
	"export":       "report.export",
	"radarr-key":   "radarr_api_key",
	"sonarr-key":   "sonarr_api_key",
	"workers":      "search.workers",
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"log-dir":      "logging.dir",
}

func newRootCommand() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "lacale-check (--radarr | --sonarr | --folder PATH)",
		Short: "Check which movies and series of a catalog are already on La Cale",
		Long: `lacale-check reads a catalog from Radarr, Sonarr or a local folder, searches
the tracker for every movie, season or episode, and reports whether each one
is there (Exact), there in another version (Close), only loosely related
releases exist (Different) or nothing was found (Missing).`,
		Version:       config.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := config.Options{
				ConfigPath: flags.configPath,
				EnvFile:    flags.envFile,
				Overrides:  overrides(cmd),
			}
			return run(cmd, flags.sourceKind(), flags.folder, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&flags.radarr, "radarr", false, "Read movies from Radarr")
	f.BoolVar(&flags.sonarr, "sonarr", false, "Read series from Sonarr")
	f.StringVar(&flags.folder, "folder", "", "Read the catalog from a local media folder")
	cmd.MarkFlagsMutuallyExclusive("radarr", "sonarr", "folder")
	cmd.MarkFlagsOneRequired("radarr", "sonarr", "folder")

	f.StringVarP(&flags.configPath, "config", "c", "", "Configuration file path")
	f.StringVar(&flags.envFile, "env-file", "", "Dotenv file with the connection settings (default .env)")

	f.String("mode", config.ModeFull, "Check granularity: full, season or episode")
	f.IntP("limit", "l", 100, "Maximum number of checks (0 for no limit)")
	f.Int("year-min", 0, "Skip items released before this year")
	f.Int("year-max", 0, "Skip items released after this year")
	f.Bool("specials", false, "Include season 0 (specials) in season and episode checks")
	f.String("show", report.ShowAll, "Rows to show: "+strings.Join(report.ShowValues, ", "))
	f.Bool("hide-present", false, "Hide rows already on the tracker (Exact or Close)")
	f.String("sort", report.SortInstant, "Row order: "+strings.Join(report.SortValues, ", "))
	f.String("export", "", "Export rows to a file (.csv appends, .json or .yaml replace)")
	f.String("radarr-key", "", "Radarr API key (overrides RADARR_API_KEY)")
	f.String("sonarr-key", "", "Sonarr API key (overrides SONARR_API_KEY)")
	f.Int("workers", 4, fmt.Sprintf("Concurrent tracker requests (1-%d)", config.MaxWorkers))
	f.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	f.String("log-format", "console", "Log format: console or json")
	f.String("log-dir", "", "Also write JSON logs to lacale-check.log in this directory")

	return cmd
}

func (f rootFlags) sourceKind() config.Source {
	switch {
	case f.radarr:
		return config.SourceRadarr
	case f.sonarr:
		return config.SourceSonarr
	default:
		return config.SourceFolder
	}
}

// overrides collects the flags set on the command line. Unset flags leave
// the config file and environment in charge.
func overrides(cmd *cobra.Command) map[string]any {
	out := make(map[string]any)
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		out[key] = flag.Value.String()
	}
	return out
}
