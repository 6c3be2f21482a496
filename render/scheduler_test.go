package render

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/spica-project/spica/pipeline"
	"github.com/spica-project/spica/spectral"
)

func TestSplit(t *testing.T) {
	type spec struct {
		elements  int
		size      int
		expChunks int
		expLast   int
	}
	specs := []spec{
		spec{16, 4, 4, 4},
		spec{17, 4, 5, 1},
		spec{1, 1, 1, 1},
		spec{10, 0, 1, 10},
		spec{10, 100, 1, 10},
		spec{0, 4, 0, 0},
	}

	for index, s := range specs {
		chunks := Split(s.elements, s.size)
		if len(chunks) != s.expChunks {
			t.Fatalf("[spec %d] expected %d chunks; got %d", index, s.expChunks, len(chunks))
		}
		if len(chunks) == 0 {
			continue
		}

		if last := chunks[len(chunks)-1]; last.Elements() != s.expLast {
			t.Fatalf("[spec %d] expected %d elements in last chunk; got %d", index, s.expLast, last.Elements())
		}

		// Contiguous cover of [0, elements).
		next := 0
		for i, c := range chunks {
			if c.Index != i || c.Start != next {
				t.Fatalf("[spec %d] chunk %d is not contiguous: %+v", index, i, c)
			}
			next = c.End
		}
		if next != s.elements {
			t.Fatalf("[spec %d] chunks cover %d elements; want %d", index, next, s.elements)
		}
	}
}

// fillChunk accumulates one deterministic pseudo-random sample per
// element into every sink.
func fillChunk(c Chunk, rng *rand.Rand, sinks []pipeline.Pipeline) error {
	for elem := c.Start; elem < c.End; elem++ {
		s := pipeline.Sample{
			Spectrum:       spectral.Spectrum{rng.Float64()},
			Weight:         1,
			Area:           1,
			ProjSolidAngle: 1,
		}
		for _, sink := range sinks {
			sink.Accumulate(elem, s)
		}
	}
	return nil
}

func TestSyncAndParallelAgree(t *testing.T) {
	const elements = 64
	layout := pipeline.Layout{Width: 8, Height: 8, Bands: 1, Bins: 1, BinWidth: 1}

	run := func(workers int) *pipeline.Result {
		p := pipeline.NewPower()
		p.Reset(layout)

		chunks := Split(elements, 8)
		_, err := Run(context.Background(), chunks, []pipeline.Pipeline{p}, Options{Workers: workers, Seed: 99}, fillChunk)
		if err != nil {
			t.Fatalf("run with %d workers failed: %v", workers, err)
		}
		return p.Finalize()
	}

	sync := run(0)
	parallel := run(4)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if sync.Samples(x, y) != 1 || parallel.Samples(x, y) != 1 {
				t.Fatalf("element (%d,%d) sample counts differ from 1", x, y)
			}
			if math.Abs(sync.Mean(x, y)-parallel.Mean(x, y)) > 1e-12 {
				t.Fatalf("element (%d,%d): sync mean %g, parallel mean %g", x, y, sync.Mean(x, y), parallel.Mean(x, y))
			}
		}
	}
}

func TestChunkErrorAbortsDispatch(t *testing.T) {
	layout := pipeline.Layout{Width: 16, Height: 1, Bands: 1, Bins: 1, BinWidth: 1}
	bang := errors.New("traversal fault")

	p := pipeline.NewPower()
	p.Reset(layout)

	var calls int32
	fn := func(c Chunk, rng *rand.Rand, sinks []pipeline.Pipeline) error {
		atomic.AddInt32(&calls, 1)
		if c.Index == 2 {
			return bang
		}
		return fillChunk(c, rng, sinks)
	}

	chunks := Split(16, 1)
	_, err := Run(context.Background(), chunks, []pipeline.Pipeline{p}, Options{Workers: 2, Seed: 1}, fn)
	if !errors.Is(err, bang) {
		t.Fatalf("expected the chunk error; got %v", err)
	}

	if got := atomic.LoadInt32(&calls); got >= int32(len(chunks)) {
		t.Fatalf("dispatch did not stop early: %d of %d chunks ran", got, len(chunks))
	}
	if !p.Incomplete() {
		t.Fatal("pipelines must be flagged incomplete after an aborted render")
	}
}

func TestSyncErrorKeepsMergedChunks(t *testing.T) {
	layout := pipeline.Layout{Width: 4, Height: 1, Bands: 1, Bins: 1, BinWidth: 1}
	bang := errors.New("traversal fault")

	p := pipeline.NewPower()
	p.Reset(layout)

	fn := func(c Chunk, rng *rand.Rand, sinks []pipeline.Pipeline) error {
		if c.Index == 2 {
			return bang
		}
		return fillChunk(c, rng, sinks)
	}

	_, err := Run(context.Background(), Split(4, 1), []pipeline.Pipeline{p}, Options{Workers: 0, Seed: 1}, fn)
	if !errors.Is(err, bang) {
		t.Fatalf("expected the chunk error; got %v", err)
	}

	res := p.Finalize()
	if !res.Incomplete {
		t.Fatal("result must be flagged incomplete")
	}
	if res.Samples(0, 0) != 1 || res.Samples(1, 0) != 1 {
		t.Fatal("chunks merged before the error must remain visible")
	}
	if res.Samples(2, 0) != 0 || res.Samples(3, 0) != 0 {
		t.Fatal("failed and undispatched chunks must not contribute")
	}
}

func TestCancellationBetweenChunks(t *testing.T) {
	layout := pipeline.Layout{Width: 8, Height: 1, Bands: 1, Bins: 1, BinWidth: 1}

	p := pipeline.NewPower()
	p.Reset(layout)

	ctx, cancel := context.WithCancel(context.Background())

	var calls int32
	fn := func(c Chunk, rng *rand.Rand, sinks []pipeline.Pipeline) error {
		if atomic.AddInt32(&calls, 1) == 2 {
			cancel()
		}
		return fillChunk(c, rng, sinks)
	}

	_, err := Run(ctx, Split(8, 1), []pipeline.Pipeline{p}, Options{Workers: 0, Seed: 1}, fn)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled; got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected the in-flight chunk to finish and no more: %d chunks ran", got)
	}
}

func TestProgressHook(t *testing.T) {
	layout := pipeline.Layout{Width: 6, Height: 1, Bands: 1, Bins: 1, BinWidth: 1}

	p := pipeline.NewPower()
	p.Reset(layout)

	var reported []int
	opts := Options{
		Workers: 0,
		Seed:    1,
		OnChunk: func(done, total int) {
			if total != 3 {
				t.Fatalf("expected 3 total chunks; got %d", total)
			}
			reported = append(reported, done)

			// A progressive snapshot mid-render must be readable.
			_ = p.Finalize()
		},
	}

	if _, err := Run(context.Background(), Split(6, 2), []pipeline.Pipeline{p}, opts, fillChunk); err != nil {
		t.Fatal(err)
	}

	if len(reported) != 3 || reported[0] != 1 || reported[2] != 3 {
		t.Fatalf("unexpected progress sequence: %v", reported)
	}
}
