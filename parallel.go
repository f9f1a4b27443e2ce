package generational

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minParallelSpan is the smallest index range handed to one worker.
const minParallelSpan = 256

// ParallelRange calls fn for every stored value from up to workers
// goroutines, each walking a disjoint range of slots. workers <= 0 uses
// GOMAXPROCS. The first error cancels ctx for the remaining calls and is
// returned. The arena must not be mutated until ParallelRange returns.
func (v *GenVec[T, G]) ParallelRange(ctx context.Context, workers int, fn func(ctx context.Context, id GenID[G], value T) error) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	n := len(v.entries)
	span := max((n+workers-1)/workers, minParallelSpan)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < n; start += span {
		end := min(start+span, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				e := &v.entries[i]
				if e.state != slotOccupied {
					continue
				}
				if err := fn(ctx, FromIndexAndGeneration(uint(i), e.generation), e.value); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
