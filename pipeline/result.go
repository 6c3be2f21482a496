package pipeline

import "math"

// A Result is a frozen snapshot of a pipeline's statistics: per-element
// mean values and standard errors, addressable by element index and,
// for spectral pipelines, by (band, bin) within the element.
type Result struct {
	Name   string
	Layout Layout

	// PerBin is true for spectral pipelines whose cells are individual
	// wavelength bins rather than band-integrated scalars.
	PerBin bool

	// Incomplete marks partial statistics left behind by an aborted
	// render.
	Incomplete bool

	mean   []float64
	stderr []float64
	counts []uint64
}

func (r *Result) scalarCell(elem, band int) int {
	return elem*r.Layout.Bands + band
}

func (r *Result) binCell(elem, band, bin int) int {
	return (elem*r.Layout.Bands+band)*r.Layout.Bins + bin
}

// Mean returns the element's mean value. Scalar pipelines sum the
// independent per-band estimates; spectral pipelines integrate the
// per-bin means across the full spectrum using the bin width.
func (r *Result) Mean(x, y int) float64 {
	elem := y*r.Layout.Width + x

	var total float64
	if !r.PerBin {
		for band := 0; band < r.Layout.Bands; band++ {
			total += r.mean[r.scalarCell(elem, band)]
		}
		return total
	}

	for band := 0; band < r.Layout.Bands; band++ {
		for bin := 0; bin < r.Layout.Bins; bin++ {
			total += r.mean[r.binCell(elem, band, bin)]
		}
	}
	return total * r.Layout.BinWidth
}

// StdErr returns the element's standard error. Per-band (and per-bin)
// estimates are independent, so their errors combine in quadrature.
func (r *Result) StdErr(x, y int) float64 {
	elem := y*r.Layout.Width + x

	var sq float64
	if !r.PerBin {
		for band := 0; band < r.Layout.Bands; band++ {
			se := r.stderr[r.scalarCell(elem, band)]
			sq += se * se
		}
		return math.Sqrt(sq)
	}

	for band := 0; band < r.Layout.Bands; band++ {
		for bin := 0; bin < r.Layout.Bins; bin++ {
			se := r.stderr[r.binCell(elem, band, bin)] * r.Layout.BinWidth
			sq += se * se
		}
	}
	return math.Sqrt(sq)
}

// Samples returns the number of samples folded into the element across
// all bands.
func (r *Result) Samples(x, y int) uint64 {
	elem := y*r.Layout.Width + x

	var n uint64
	for band := 0; band < r.Layout.Bands; band++ {
		if !r.PerBin {
			n += r.counts[r.scalarCell(elem, band)]
			continue
		}
		// Every bin of a band sees the same samples; count bin 0.
		n += r.counts[r.binCell(elem, band, 0)]
	}
	return n
}

// BinMean returns the per-bin mean for spectral pipelines.
func (r *Result) BinMean(x, y, band, bin int) float64 {
	elem := y*r.Layout.Width + x
	return r.mean[r.binCell(elem, band, bin)]
}

// BinStdErr returns the per-bin standard error for spectral pipelines.
func (r *Result) BinStdErr(x, y, band, bin int) float64 {
	elem := y*r.Layout.Width + x
	return r.stderr[r.binCell(elem, band, bin)]
}
