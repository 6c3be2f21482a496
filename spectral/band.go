package spectral

import "errors"

// Default observation settings. These mirror a typical visible-light
// sensor: a single pass over the visible range with 21 bins.
const (
	DefaultMinWavelength = 375.0
	DefaultMaxWavelength = 785.0
	DefaultBins          = 21
	DefaultRays          = 1
)

var (
	ErrInvalidRange         = errors.New("spectral: max wavelength must be greater than min")
	ErrInvalidRayCount      = errors.New("spectral: ray count must be >= 1")
	ErrInvalidBinCount      = errors.New("spectral: bin count must be >= 1")
	ErrSpectrumBandMismatch = errors.New("spectral: spectrum length does not match band bin count")
)

// A Band is one contiguous wavelength sub-range rendered by a single
// observation pass. It spans [Min, Max) nanometers divided into Bins
// equal-width bins.
type Band struct {
	Min  float64
	Max  float64
	Bins int
}

// Width of a single bin in nanometers.
func (b Band) BinWidth() float64 {
	return (b.Max - b.Min) / float64(b.Bins)
}

// Centre wavelength of bin i.
func (b Band) BinCentre(i int) float64 {
	return b.Min + (float64(i)+0.5)*b.BinWidth()
}

// Centre wavelengths for all bins in ascending order.
func (b Band) Centres() []float64 {
	centres := make([]float64, b.Bins)
	for i := range centres {
		centres[i] = b.BinCentre(i)
	}
	return centres
}

// Partition splits the observable range [min, max] into rays ordered,
// non-overlapping bands that together cover it exactly, each divided
// into bins equal-width bins.
//
// Band boundaries depend only on (min, max, rays). Workers that render
// different bands of the same configuration therefore always agree on
// the banding, which the pipeline merge step relies on.
func Partition(min, max float64, rays, bins int) ([]Band, error) {
	if max <= min {
		return nil, ErrInvalidRange
	}
	if rays < 1 {
		return nil, ErrInvalidRayCount
	}
	if bins < 1 {
		return nil, ErrInvalidBinCount
	}

	// Boundaries are computed once and shared between adjacent bands so
	// the union reconstructs [min, max] without float gaps or overlaps.
	bounds := make([]float64, rays+1)
	span := max - min
	for i := 0; i <= rays; i++ {
		bounds[i] = min + span*float64(i)/float64(rays)
	}
	bounds[rays] = max

	bands := make([]Band, rays)
	for i := 0; i < rays; i++ {
		bands[i] = Band{Min: bounds[i], Max: bounds[i+1], Bins: bins}
	}
	return bands, nil
}
