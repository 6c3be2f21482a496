package render

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/spica-project/spica/pipeline"
)

// A ChunkFunc renders one chunk of elements into worker-local pipeline
// forks using the supplied random stream. It is called from worker
// goroutines and must not touch any shared mutable state.
type ChunkFunc func(c Chunk, rng *rand.Rand, sinks []pipeline.Pipeline) error

// Options control a scheduled render.
type Options struct {
	// Workers is the number of parallel workers. 0 or 1 renders every
	// chunk synchronously on the calling goroutine; the output is
	// identical to the parallel path up to float merge ordering.
	Workers int

	// Seed for the per-chunk deterministic random streams.
	Seed int64

	// OnChunk, when set, is invoked on the coordinating goroutine
	// after each chunk has been merged. Safe to Finalize the owning
	// pipelines from here for progressive display.
	OnChunk func(done, total int)
}

// WorkerStat summarizes one worker's share of a render.
type WorkerStat struct {
	Worker   int
	Chunks   int
	Elements int
	Busy     time.Duration
}

// Stats summarize a completed (or aborted) render.
type Stats struct {
	Workers    []WorkerStat
	Chunks     int
	Elements   int
	RenderTime time.Duration
}

type chunkResult struct {
	chunk   Chunk
	worker  int
	forks   []pipeline.Pipeline
	elapsed time.Duration
	err     error
}

// chunkRand derives the deterministic random stream for one chunk.
// Seeding is a function of (seed, chunk index) only, so repeat renders
// of the same configuration consume identical streams per chunk no
// matter how chunks land on workers.
func chunkRand(seed int64, chunk int) *rand.Rand {
	return rand.New(rand.NewSource(seed + int64(chunk)*7919 + 1))
}

// Run partitions chunks across workers, executes fn for each chunk
// against fresh forks of the owner pipelines, and merges completed
// forks back into the owners on the coordinating goroutine.
//
// On a chunk error no further chunks are dispatched; chunks already
// merged remain in the owners, which are flagged incomplete, and the
// first error is returned. Cancellation via ctx behaves the same with
// ctx.Err() as the error: in-flight chunks finish, nothing partial is
// ever merged.
func Run(ctx context.Context, chunks []Chunk, owners []pipeline.Pipeline, opts Options, fn ChunkFunc) (Stats, error) {
	start := time.Now()

	var stats Stats
	var err error
	if opts.Workers <= 1 {
		stats, err = runSync(ctx, chunks, owners, opts, fn)
	} else {
		stats, err = runParallel(ctx, chunks, owners, opts, fn)
	}
	stats.RenderTime = time.Since(start)

	if err != nil {
		for _, p := range owners {
			p.MarkIncomplete()
		}
	}
	return stats, err
}

func forkAll(owners []pipeline.Pipeline) []pipeline.Pipeline {
	forks := make([]pipeline.Pipeline, len(owners))
	for i, p := range owners {
		forks[i] = p.Fork()
	}
	return forks
}

func mergeAll(owners, forks []pipeline.Pipeline) error {
	for i, p := range owners {
		if err := p.Merge(forks[i]); err != nil {
			return err
		}
	}
	return nil
}

func runSync(ctx context.Context, chunks []Chunk, owners []pipeline.Pipeline, opts Options, fn ChunkFunc) (Stats, error) {
	stat := WorkerStat{Worker: 0}
	stats := Stats{Chunks: len(chunks)}

	for done, c := range chunks {
		if ctxErr := ctx.Err(); ctxErr != nil {
			stats.Workers = []WorkerStat{stat}
			return stats, ctxErr
		}

		chunkStart := time.Now()
		forks := forkAll(owners)
		if err := fn(c, chunkRand(opts.Seed, c.Index), forks); err != nil {
			stats.Workers = []WorkerStat{stat}
			return stats, err
		}
		if err := mergeAll(owners, forks); err != nil {
			stats.Workers = []WorkerStat{stat}
			return stats, err
		}

		stat.Chunks++
		stat.Elements += c.Elements()
		stat.Busy += time.Since(chunkStart)
		stats.Elements += c.Elements()

		if opts.OnChunk != nil {
			opts.OnChunk(done+1, len(chunks))
		}
	}

	stats.Workers = []WorkerStat{stat}
	return stats, nil
}

func runParallel(ctx context.Context, chunks []Chunk, owners []pipeline.Pipeline, opts Options, fn ChunkFunc) (Stats, error) {
	tasks := make(chan Chunk)
	results := make(chan chunkResult, opts.Workers)
	quit := make(chan struct{})

	// Dispatcher. Stops handing out chunks on error or cancellation;
	// workers always finish the chunk they hold.
	var dispatched sync.WaitGroup
	dispatched.Add(1)
	go func() {
		defer dispatched.Done()
		defer close(tasks)
		for _, c := range chunks {
			select {
			case tasks <- c:
			case <-quit:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	var workers sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		workers.Add(1)
		go func(id int) {
			defer workers.Done()
			for c := range tasks {
				chunkStart := time.Now()
				forks := forkAll(owners)
				err := fn(c, chunkRand(opts.Seed, c.Index), forks)
				results <- chunkResult{
					chunk:   c,
					worker:  id,
					forks:   forks,
					elapsed: time.Since(chunkStart),
					err:     err,
				}
			}
		}(i)
	}

	go func() {
		workers.Wait()
		close(results)
	}()

	// Coordinator: the only goroutine that touches the owners. Merge
	// order does not matter; the pairwise merge is associative and
	// commutative.
	perWorker := make([]WorkerStat, opts.Workers)
	for i := range perWorker {
		perWorker[i].Worker = i
	}

	stats := Stats{Chunks: len(chunks)}
	var firstErr error
	done := 0
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
				close(quit)
			}
			continue
		}

		if err := mergeAll(owners, res.forks); err != nil && firstErr == nil {
			firstErr = err
			close(quit)
			continue
		}

		done++
		perWorker[res.worker].Chunks++
		perWorker[res.worker].Elements += res.chunk.Elements()
		perWorker[res.worker].Busy += res.elapsed
		stats.Elements += res.chunk.Elements()

		if opts.OnChunk != nil {
			opts.OnChunk(done, len(chunks))
		}
	}
	dispatched.Wait()
	stats.Workers = perWorker

	if firstErr != nil {
		return stats, firstErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil && done < len(chunks) {
		return stats, ctxErr
	}
	return stats, nil
}
