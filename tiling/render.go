package tiling

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/e7canasta/frametiler/frame"
)

// Render materializes a lazy sequence into memory with a small worker
// pool. Every sequence built by this package computes positions
// independently and idempotently, so pulls run concurrently and land
// in their slots in any order; the first failing pull cancels the
// rest. workers <= 0 sizes the pool to GOMAXPROCS.
func Render(ctx context.Context, src frame.Sequence, workers int) (*frame.MemSequence, error) {
	n := src.Len()
	if n == 0 {
		return frame.NewMem(src.Shape()), nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make([]*frame.Frame, n)
	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				f, err := src.Frame(ctx, i)
				if err != nil {
					fail(fmt.Errorf("tiling: render frame %d: %w", i, err))
					return
				}
				out[i] = f
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return frame.FromFrames(out)
}
