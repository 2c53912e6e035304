// Package parallel schedules independent rows across worker goroutines.
package parallel

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/born-ml/rmsnorm/internal/envconfig"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4, // A row is already a tile of work.
	}
}

// ConfigFromEnv returns DefaultConfig overridden by RMSNORM_NUM_WORKERS and
// RMSNORM_MIN_ROWS.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	//nolint:gosec // G115: worker counts are small
	cfg.NumWorkers = int(envconfig.NumWorkers())
	//nolint:gosec // G115: chunk sizes are small
	cfg.MinChunkSize = int(envconfig.MinRows())
	cfg.Enabled = cfg.NumWorkers > 1
	return cfg
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinChunkSize || cfg.NumWorkers <= 1 {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := chunkSize(n, cfg)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForChunks splits [0, n) into contiguous chunks and runs f on each, at most
// cfg.NumWorkers at a time. Per-chunk state such as scratch buffers belongs in f.
//
// The first error cancels the context passed to the remaining chunks and is
// returned. A chunk that has not started when ctx is done is skipped.
func ForChunks(ctx context.Context, n int, cfg Config, f func(ctx context.Context, start, end int) error) error {
	if n <= 0 {
		return nil
	}
	if !cfg.Enabled || n < cfg.MinChunkSize || cfg.NumWorkers <= 1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return f(ctx, 0, n)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.NumWorkers)

	size := chunkSize(n, cfg)
	for start := 0; start < n; start += size {
		start := start
		end := min(start+size, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return f(ctx, start, end)
		})
	}
	return g.Wait()
}

func chunkSize(n int, cfg Config) int {
	workers := max(cfg.NumWorkers, 1)
	return max((n+workers-1)/workers, cfg.MinChunkSize, 1)
}
