// Package checker runs planned lookups against the tracker with bounded
// parallelism and classifies what comes back.
package checker

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/idkjsp/Lacale-check/internal/matching"
	"github.com/idkjsp/Lacale-check/internal/media"
	"github.com/idkjsp/Lacale-check/internal/tracker"
)

// Searcher queries the tracker for one task.
type Searcher interface {
	Search(ctx context.Context, query string) ([]media.Candidate, error)
}

// Classifier decides the match state of a task.
type Classifier interface {
	Classify(task media.Task, candidates []media.Candidate) matching.Result
}

// Summary counts outcomes of a run.
type Summary struct {
	Tasks       int
	Exact       int
	Close       int
	Different   int
	Missing     int
	RateLimited int
	Failed      int
	Duration    time.Duration
}

// Runner executes tasks on a fixed-size worker pool.
type Runner struct {
	searcher   Searcher
	classifier Classifier
	workers    int
	logger     zerolog.Logger
	onResult   func(done, total int, r matching.Result)
}

// Option customizes a Runner.
type Option func(*Runner)

// WithProgress registers a callback invoked after each task completes.
// It is called from worker goroutines.
func WithProgress(fn func(done, total int, r matching.Result)) Option {
	return func(r *Runner) {
		r.onResult = fn
	}
}

// NewRunner creates a runner. workers below 1 means one worker.
func NewRunner(searcher Searcher, classifier Classifier, workers int, logger zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{
		searcher:   searcher,
		classifier: classifier,
		workers:    max(workers, 1),
		logger:     logger.With().Str("component", "checker").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every task and returns exactly one result per task, in task
// order. Task failures are recorded on their result; Run only returns an
// error when ctx is canceled, in which case unfinished tasks are reported
// as failed with the context error.
func (r *Runner) Run(ctx context.Context, tasks []media.Task) ([]matching.Result, Summary, error) {
	start := time.Now()
	results := make([]matching.Result, len(tasks))
	var done atomic.Int64

	r.logger.Info().
		Int("tasks", len(tasks)).
		Int("workers", r.workers).
		Msg("Checking tracker")

	g := new(errgroup.Group)
	g.SetLimit(r.workers)

	for i := range tasks {
		if ctx.Err() != nil {
			results[i] = matching.Failed(tasks[i], ctx.Err())
			continue
		}
		g.Go(func() error {
			results[i] = r.runTask(ctx, tasks[i])
			n := done.Add(1)
			if r.onResult != nil {
				r.onResult(int(n), len(tasks), results[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := summarize(results)
	summary.Duration = time.Since(start)

	r.logger.Info().
		Int("tasks", summary.Tasks).
		Int("exact", summary.Exact).
		Int("close", summary.Close).
		Int("different", summary.Different).
		Int("missing", summary.Missing).
		Int("failed", summary.Failed).
		Dur("duration", summary.Duration).
		Msg("Check complete")

	return results, summary, ctx.Err()
}

func (r *Runner) runTask(ctx context.Context, task media.Task) matching.Result {
	candidates, err := r.searcher.Search(ctx, task.Query)
	if err != nil {
		event := r.logger.Error()
		if errors.Is(err, context.Canceled) {
			event = r.logger.Debug()
		}
		event.Err(err).
			Str("query", task.Query).
			Bool("rateLimited", tracker.IsRateLimited(err)).
			Msg("Task failed")
		return matching.Failed(task, err)
	}
	return r.classifier.Classify(task, candidates)
}

func summarize(results []matching.Result) Summary {
	s := Summary{Tasks: len(results)}
	for _, res := range results {
		if res.Err != nil {
			s.Failed++
			if tracker.IsRateLimited(res.Err) {
				s.RateLimited++
			}
		}
		switch res.Status {
		case matching.StatusExact:
			s.Exact++
		case matching.StatusClose:
			s.Close++
		case matching.StatusDifferent:
			s.Different++
		default:
			s.Missing++
		}
	}
	return s
}
