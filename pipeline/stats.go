package pipeline

import (
	"errors"
	"math"
)

var errStatSizeMismatch = errors.New("pipeline: cannot merge statistics of different shapes")

// statArray keeps running mean/variance statistics for a flat array of
// cells using Welford's incremental update, which stays numerically
// stable across arbitrarily many samples and across merges.
type statArray struct {
	counts []uint64
	mean   []float64
	m2     []float64
}

func newStatArray(cells int) *statArray {
	return &statArray{
		counts: make([]uint64, cells),
		mean:   make([]float64, cells),
		m2:     make([]float64, cells),
	}
}

func (a *statArray) cells() int {
	return len(a.counts)
}

// add folds one sample value into cell.
func (a *statArray) add(cell int, x float64) {
	a.counts[cell]++
	delta := x - a.mean[cell]
	a.mean[cell] += delta / float64(a.counts[cell])
	a.m2[cell] += delta * (x - a.mean[cell])
}

// merge folds the statistics of b into a cell by cell using the exact
// pairwise rule:
//
//	mean = (na*ma + nb*mb) / (na+nb)
//	M2   = M2a + M2b + delta^2 * na*nb/(na+nb), delta = mb - ma
//
// The rule is commutative and associative, so worker completion order
// cannot change the merged result beyond float rounding.
func (a *statArray) merge(b *statArray) error {
	if a.cells() != b.cells() {
		return errStatSizeMismatch
	}

	for i := range a.counts {
		nb := b.counts[i]
		if nb == 0 {
			continue
		}
		na := a.counts[i]
		if na == 0 {
			a.counts[i] = nb
			a.mean[i] = b.mean[i]
			a.m2[i] = b.m2[i]
			continue
		}

		fa, fb := float64(na), float64(nb)
		total := fa + fb
		delta := b.mean[i] - a.mean[i]

		a.mean[i] = (fa*a.mean[i] + fb*b.mean[i]) / total
		a.m2[i] += b.m2[i] + delta*delta*fa*fb/total
		a.counts[i] = na + nb
	}
	return nil
}

// variance returns the unbiased sample variance for cell, or 0 when
// fewer than two samples have been observed.
func (a *statArray) variance(cell int) float64 {
	if a.counts[cell] < 2 {
		return 0
	}
	return a.m2[cell] / float64(a.counts[cell]-1)
}

// stderr returns the standard error of the mean for cell, or 0 when
// fewer than two samples have been observed.
func (a *statArray) stderr(cell int) float64 {
	if a.counts[cell] < 2 {
		return 0
	}
	return math.Sqrt(a.variance(cell) / float64(a.counts[cell]))
}
