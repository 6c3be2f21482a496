package spectral

import "gonum.org/v1/gonum/floats"

// A Spectrum holds one per-bin radiometric vector for a single band,
// e.g. the spectral radiance returned by a scene trace. A nil Spectrum
// is the "no intersection" sentinel and behaves as all zeros.
type Spectrum []float64

// NewSpectrum allocates a zeroed spectrum sized for band.
func NewSpectrum(band Band) Spectrum {
	return make(Spectrum, band.Bins)
}

// Total integrates the spectrum across the band using the bin width,
// e.g. W/nm per bin -> W. A nil spectrum integrates to zero.
func (s Spectrum) Total(band Band) (float64, error) {
	if s == nil {
		return 0, nil
	}
	if len(s) != band.Bins {
		return 0, ErrSpectrumBandMismatch
	}
	return floats.Sum(s) * band.BinWidth(), nil
}

// AddScaled accumulates a*o into s. Both spectra must be the same size.
func (s Spectrum) AddScaled(a float64, o Spectrum) error {
	if len(s) != len(o) {
		return ErrSpectrumBandMismatch
	}
	floats.AddScaled(s, a, o)
	return nil
}

// Scale multiplies every bin by a.
func (s Spectrum) Scale(a float64) {
	floats.Scale(a, s)
}
