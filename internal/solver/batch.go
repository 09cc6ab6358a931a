package solver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/dynode/internal/dynamo"
)

// Job is one independent solve in a batch.
type Job struct {
	Name    string
	Problem dynamo.Problem
	Config  Config
	Options []Option
}

type BatchResult struct {
	Name     string
	Solution *Solution
	Err      error
}

// Batch runs jobs on at most workers goroutines (GOMAXPROCS when workers is
// not positive). Results are returned in job order. A failing job does not
// stop the others; cancelling ctx stops every job at its next accepted step.
//
// Problems in different jobs must not share a System that keeps mutable
// state.
func Batch(ctx context.Context, jobs []Job, workers int) []BatchResult {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]BatchResult, len(jobs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			sol, err := Solve(ctx, job.Problem, job.Config, job.Options...)
			results[i] = BatchResult{Name: job.Name, Solution: sol, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Failed returns the results that ended in an error.
func Failed(results []BatchResult) []BatchResult {
	var out []BatchResult
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
