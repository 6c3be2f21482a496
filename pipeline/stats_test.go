package pipeline

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/stat"
)

const statTolerance = 1e-9

func TestWelfordMatchesBatchStatistics(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	samples := make([]float64, 10000)
	for i := range samples {
		samples[i] = rng.NormFloat64()*3 + 7
	}

	a := newStatArray(1)
	for _, x := range samples {
		a.add(0, x)
	}

	if mean := stat.Mean(samples, nil); math.Abs(a.mean[0]-mean) > statTolerance {
		t.Fatalf("incremental mean %g disagrees with batch mean %g", a.mean[0], mean)
	}
	if variance := stat.Variance(samples, nil); math.Abs(a.variance(0)-variance) > statTolerance {
		t.Fatalf("incremental variance %g disagrees with batch variance %g", a.variance(0), variance)
	}
}

func TestMergeLawIsExact(t *testing.T) {
	type spec struct {
		seed  int64
		total int
	}
	specs := []spec{
		spec{1, 10},
		spec{2, 1000},
		spec{3, 4999},
	}

	for index, s := range specs {
		rng := rand.New(rand.NewSource(s.seed))

		samples := make([]float64, s.total)
		for i := range samples {
			samples[i] = rng.ExpFloat64()
		}

		// Sequential accumulation of the full set.
		sequential := newStatArray(1)
		for _, x := range samples {
			sequential.add(0, x)
		}

		// A random partition of the same samples accumulated into two
		// independent estimators and merged.
		left := newStatArray(1)
		right := newStatArray(1)
		for _, x := range samples {
			if rng.Intn(2) == 0 {
				left.add(0, x)
			} else {
				right.add(0, x)
			}
		}
		if err := left.merge(right); err != nil {
			t.Fatalf("[spec %d] merge failed: %v", index, err)
		}

		if left.counts[0] != sequential.counts[0] {
			t.Fatalf("[spec %d] merged count %d; want %d", index, left.counts[0], sequential.counts[0])
		}
		if math.Abs(left.mean[0]-sequential.mean[0]) > statTolerance {
			t.Fatalf("[spec %d] merged mean %g; sequential %g", index, left.mean[0], sequential.mean[0])
		}
		if math.Abs(left.variance(0)-sequential.variance(0)) > statTolerance {
			t.Fatalf("[spec %d] merged variance %g; sequential %g", index, left.variance(0), sequential.variance(0))
		}
	}
}

func TestMergeCommutes(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	build := func(n int) *statArray {
		a := newStatArray(1)
		for i := 0; i < n; i++ {
			a.add(0, rng.Float64()*10)
		}
		return a
	}

	a1, b1 := build(137), build(613)

	// Accumulate the reverse ordering from fresh copies of the same
	// underlying streams.
	rng = rand.New(rand.NewSource(5))
	a2, b2 := build(137), build(613)

	if err := a1.merge(b1); err != nil {
		t.Fatal(err)
	}
	if err := b2.merge(a2); err != nil {
		t.Fatal(err)
	}

	if math.Abs(a1.mean[0]-b2.mean[0]) > statTolerance {
		t.Fatalf("merge order changed the mean: %g vs %g", a1.mean[0], b2.mean[0])
	}
	if math.Abs(a1.variance(0)-b2.variance(0)) > statTolerance {
		t.Fatalf("merge order changed the variance: %g vs %g", a1.variance(0), b2.variance(0))
	}
}

func TestMergeIntoEmpty(t *testing.T) {
	a := newStatArray(1)
	b := newStatArray(1)
	b.add(0, 2)
	b.add(0, 4)

	if err := a.merge(b); err != nil {
		t.Fatal(err)
	}
	if a.counts[0] != 2 || a.mean[0] != 3 {
		t.Fatalf("empty merge target: count %d mean %g; want 2, 3", a.counts[0], a.mean[0])
	}
}

func TestEmptyCellStatistics(t *testing.T) {
	a := newStatArray(1)

	if a.variance(0) != 0 || a.stderr(0) != 0 {
		t.Fatalf("zero-sample cell must report 0 variance and stderr; got %g, %g", a.variance(0), a.stderr(0))
	}

	a.add(0, 5)
	if a.stderr(0) != 0 {
		t.Fatalf("single-sample cell must report 0 stderr; got %g", a.stderr(0))
	}
}
