// Package batch runs figure extraction over many images concurrently.
// Pipeline runs for different images share no mutable state, so they can
// proceed fully in parallel; only the worker count bounds concurrency.
package batch

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/notefig/notefig/internal/pipeline"
	"github.com/notefig/notefig/internal/utils"
)

// ItemResult pairs one input path with its outcome. A per-item failure does
// not abort the rest of the batch.
type ItemResult struct {
	Path   string
	Result *pipeline.Result
	Err    error
}

// Runner executes pipeline runs with bounded concurrency.
type Runner struct {
	pipeline *pipeline.Pipeline
	workers  int
	logger   *slog.Logger
}

// NewRunner creates a batch runner. Non-positive workers defaults to
// GOMAXPROCS.
func NewRunner(p *pipeline.Pipeline, workers int, logger *slog.Logger) *Runner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{pipeline: p, workers: workers, logger: logger}
}

// Run processes all paths and returns results in input order. Only context
// cancellation stops the batch early.
func (r *Runner) Run(ctx context.Context, paths []string) []ItemResult {
	results := make([]ItemResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, path := range paths {
		results[i] = ItemResult{Path: path}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			img, _, err := utils.LoadImage(path)
			if err != nil {
				r.logger.Warn("skipping unreadable image", "path", path, "error", err)
				results[i].Err = err
				return nil
			}
			res, err := r.pipeline.ProcessImage(ctx, img, path, "")
			if err != nil {
				r.logger.Warn("extraction failed", "path", path, "error", err)
				results[i].Err = err
				return nil
			}
			results[i].Result = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}
