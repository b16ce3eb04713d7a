package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idkjsp/Lacale-check/internal/checker"
	"github.com/idkjsp/Lacale-check/internal/config"
	"github.com/idkjsp/Lacale-check/internal/logger"
	"github.com/idkjsp/Lacale-check/internal/matching"
	"github.com/idkjsp/Lacale-check/internal/planner"
	"github.com/idkjsp/Lacale-check/internal/report"
	"github.com/idkjsp/Lacale-check/internal/source"
	"github.com/idkjsp/Lacale-check/internal/tracker"
)

// run executes one check: read the catalog, plan the searches, query the
// tracker and print the report. Configuration and source failures abort the
// run before or instead of any tracker search. Individual search failures
// only mark their row.
func run(cmd *cobra.Command, kind config.Source, folder string, opts config.Options) error {
	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}
	if err := cfg.Validate(kind); err != nil {
		return err
	}
	if kind == config.SourceFolder && folder == "" {
		return &config.Error{Key: "folder", Source: string(kind), Reason: "a path is required"}
	}

	reportOpts := report.Options{
		Mode:        cfg.Planner.Mode,
		Limit:       cfg.Planner.Limit,
		Show:        cfg.Report.Show,
		HidePresent: cfg.Report.HidePresent,
		Sort:        cfg.Report.Sort,
	}
	if err := reportOpts.Validate(); err != nil {
		return fmt.Errorf("%w: %w", config.ErrConfig, err)
	}

	root := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Dir:    cfg.Logging.Dir,
		Out:    cmd.ErrOrStderr(),
	})
	defer func() { _ = root.Close() }()
	log := root.WithComponent("cli")

	ctx := cmd.Context()
	log.Info().
		Str("source", string(kind)).
		Str("mode", cfg.Planner.Mode).
		Int("limit", cfg.Planner.Limit).
		Int("workers", cfg.Search.Workers).
		Str("version", config.Version).
		Msg("Starting check")

	src, err := source.New(kind, cfg, folder, root.Logger)
	if err != nil {
		return err
	}
	items, err := src.ListItems(ctx)
	if err != nil {
		return err
	}

	tasks := planner.Plan(items, cfg.Planner)
	log.Info().Int("items", len(items)).Int("tasks", len(tasks)).Msg("Planned searches")

	client := tracker.NewClient(cfg, root.Logger)
	classifier := matching.NewClassifier(cfg.Matching, root.Logger)
	runner := checker.NewRunner(client, classifier, cfg.Search.Workers, root.Logger,
		checker.WithProgress(func(done, total int, r matching.Result) {
			log.Debug().
				Int("done", done).
				Int("total", total).
				Str("query", r.Task.Query).
				Str("status", r.Status.String()).
				Msg("Checked")
		}))

	results, summary, runErr := runner.Run(ctx, tasks)

	rep := report.Aggregate(results, reportOpts)
	out := cmd.OutOrStdout()
	if err := report.RenderTable(out, rep, report.ShouldColorize(out)); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if path := cfg.Report.Export; path != "" {
		if err := report.Export(path, rep); err != nil {
			return err
		}
		log.Info().Str("path", path).Int("rows", len(rep.Rows)).Msg("Exported report")
	}

	if summary.RateLimited > 0 {
		log.Warn().Int("count", summary.RateLimited).Msg("Some searches stayed rate limited, their rows are marked unknown")
	}
	return runErr
}
