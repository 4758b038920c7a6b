package compliance

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/schedule"
)

// Sweep evaluates a whole roster concurrently, one goroutine per employee
// with at most workers running at once (workers <= 0 means unbounded). The
// result is ordered like Evaluate's. The only error is ctx's.
func (e *Evaluator) Sweep(ctx context.Context, employees []schedule.Employee, shifts []schedule.Shift, weekAnchor generic.TimePoint, workers int) ([]Violation, error) {
	byEmployee := groupByEmployee(shifts)
	results := make([][]Violation, len(employees))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, emp := range employees {
		i, emp := i, emp
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.EvaluateEmployee(emp, byEmployee[emp.ID], weekAnchor)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Violation
	for _, vs := range results {
		out = append(out, vs...)
	}
	return out, nil
}
