package pipeline

import (
	"errors"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/spica-project/spica/spectral"
)

var (
	ErrMergeMismatch = errors.New("pipeline: merge source does not match this pipeline")
	ErrNotReset      = errors.New("pipeline: accumulate before reset")
)

// Layout describes the output shape shared by every pipeline attached
// to one observer: the element grid, the spectral banding, and the bin
// width used to integrate spectra to scalars.
type Layout struct {
	// Element grid. Point sensors use 1x1.
	Width  int
	Height int

	// Spectral banding: Bands rendering passes of Bins bins each.
	Bands int
	Bins  int

	// Width of a single wavelength bin in nanometers.
	BinWidth float64
}

// Elements returns the number of sensing elements in the layout.
func (l Layout) Elements() int {
	return l.Width * l.Height
}

// A Sample is one traced stochastic ray evaluation routed to the
// attached pipelines. Spectrum holds per-bin spectral radiance for the
// sample's band; nil means "no intersection" and accumulates as zero.
type Sample struct {
	// Index of the spectral band this sample was traced with.
	Band int

	// Per-bin spectral radiance, W/m^2/sr/nm. May be nil.
	Spectrum spectral.Spectrum

	// Generator weight, cos(theta)/pdf. Averaging Spectrum*Weight over
	// samples estimates the projected-solid-angle radiance integral.
	Weight float64

	// Collecting area of the sensing element, m^2.
	Area float64

	// Projected solid angle integrated by Weight, sr.
	ProjSolidAngle float64
}

// A Pipeline ingests traced samples for sensing elements and maintains
// running per-cell statistics. Observers hold an ordered set of these
// and route every sample to each of them.
//
// Fork and Merge support parallel rendering: each worker accumulates
// into a private fork and the coordinator merges completed forks back,
// in any order, using the exact pairwise mean/variance merge.
type Pipeline interface {
	// Name identifies the pipeline in results and logs.
	Name() string

	// Reset reallocates the accumulators for a new layout, discarding
	// any previous statistics.
	Reset(layout Layout)

	// Fork returns an empty pipeline with the same layout and kind for
	// worker-local accumulation.
	Fork() Pipeline

	// Merge folds a fork's statistics into this pipeline.
	Merge(fork Pipeline) error

	// Accumulate folds one sample for the given flat element index.
	Accumulate(elem int, s Sample)

	// Finalize snapshots the current statistics into a result with
	// per-element means and standard errors. It never disturbs the
	// running accumulators and may be called at any time, including
	// for progressive display of partial state.
	Finalize() *Result

	// MarkIncomplete flags the current statistics as the aftermath of
	// an aborted render; Reset or a completed render clears it.
	MarkIncomplete()

	// Incomplete reports whether the statistics come from an aborted
	// render.
	Incomplete() bool
}

// kind selects the radiometric normalization applied per sample.
type kind uint8

const (
	power kind = iota
	radiance
	spectralPower
	spectralRadiance
)

func (k kind) String() string {
	switch k {
	case power:
		return "power"
	case radiance:
		return "radiance"
	case spectralPower:
		return "spectral-power"
	case spectralRadiance:
		return "spectral-radiance"
	}
	return "unknown"
}

// perBin reports whether the kind keeps per-bin running statistics
// instead of integrating across bins at accumulation time.
func (k kind) perBin() bool {
	return k == spectralPower || k == spectralRadiance
}

// Estimator is the shared implementation behind all pipeline kinds.
type Estimator struct {
	kind   kind
	layout Layout

	// mu guards the aggregate state against concurrent Merge/Finalize
	// on the coordinating side. Worker forks are single-goroutine and
	// pay only an uncontended lock.
	mu         sync.Mutex
	stats      *statArray
	incomplete bool
}

// NewPower creates a pipeline measuring total collected power per
// element in watts: spectra are integrated across bins and scaled by
// the element's collecting area before entering the running mean.
func NewPower() *Estimator { return &Estimator{kind: power} }

// NewRadiance creates a pipeline measuring mean observed radiance per
// element in W/m^2/sr: integrated spectra are normalized by the
// per-sample projected solid angle (the etendue throughput factor).
func NewRadiance() *Estimator { return &Estimator{kind: radiance} }

// NewSpectralPower creates a pipeline keeping per-bin power statistics
// in W/nm, flattened to a reportable spectrum only at Finalize.
func NewSpectralPower() *Estimator { return &Estimator{kind: spectralPower} }

// NewSpectralRadiance creates a pipeline keeping per-bin radiance
// statistics in W/m^2/sr/nm.
func NewSpectralRadiance() *Estimator { return &Estimator{kind: spectralRadiance} }

func (e *Estimator) Name() string {
	return e.kind.String()
}

func (e *Estimator) Reset(layout Layout) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.layout = layout
	e.stats = newStatArray(e.cellCount(layout))
	e.incomplete = false
}

func (e *Estimator) cellCount(layout Layout) int {
	cells := layout.Elements() * layout.Bands
	if e.kind.perBin() {
		cells *= layout.Bins
	}
	return cells
}

func (e *Estimator) Fork() Pipeline {
	fork := &Estimator{kind: e.kind, layout: e.layout}
	fork.stats = newStatArray(e.cellCount(e.layout))
	return fork
}

func (e *Estimator) Merge(fork Pipeline) error {
	other, ok := fork.(*Estimator)
	if !ok || other.kind != e.kind {
		return ErrMergeMismatch
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stats == nil {
		return ErrNotReset
	}
	return e.stats.merge(other.stats)
}

// normalization returns the radiometric factor applied to the sample's
// weighted spectrum for this pipeline kind.
func (e *Estimator) normalization(s Sample) float64 {
	switch e.kind {
	case power, spectralPower:
		return s.Weight * s.Area
	default:
		return s.Weight / s.ProjSolidAngle
	}
}

func (e *Estimator) Accumulate(elem int, s Sample) {
	if e.stats == nil {
		// No accumulators before the first Reset; drop the sample.
		return
	}
	norm := e.normalization(s)

	if !e.kind.perBin() {
		// Integrate across bins first, then fold the scalar.
		var x float64
		if s.Spectrum != nil {
			x = floats.Sum(s.Spectrum) * e.layout.BinWidth * norm
		}
		e.stats.add(elem*e.layout.Bands+s.Band, x)
		return
	}

	// Per-bin running statistics; a nil spectrum still counts as a
	// zero sample in every bin of the band so the estimator stays
	// unbiased.
	base := (elem*e.layout.Bands + s.Band) * e.layout.Bins
	for bin := 0; bin < e.layout.Bins; bin++ {
		var x float64
		if s.Spectrum != nil {
			x = s.Spectrum[bin] * norm
		}
		e.stats.add(base+bin, x)
	}
}

func (e *Estimator) MarkIncomplete() {
	e.mu.Lock()
	e.incomplete = true
	e.mu.Unlock()
}

func (e *Estimator) Incomplete() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.incomplete
}

// Finalize snapshots means and standard errors for every cell. The
// running accumulators are copied, never mutated, so progressive
// display can call this at any cadence.
func (e *Estimator) Finalize() *Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := e.stats
	if stats == nil {
		// Before the first Reset the pipeline has no cells; report an
		// empty snapshot rather than blowing up a progressive display.
		stats = newStatArray(0)
	}

	cells := stats.cells()
	res := &Result{
		Name:       e.kind.String(),
		Layout:     e.layout,
		PerBin:     e.kind.perBin(),
		Incomplete: e.incomplete,
		mean:       make([]float64, cells),
		stderr:     make([]float64, cells),
		counts:     make([]uint64, cells),
	}
	copy(res.mean, stats.mean)
	copy(res.counts, stats.counts)
	for i := 0; i < cells; i++ {
		res.stderr[i] = stats.stderr(i)
	}
	return res
}
