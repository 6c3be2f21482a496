package spectral

import (
	"math"
	"testing"
)

func TestSpectrumTotal(t *testing.T) {
	band := Band{Min: 400, Max: 500, Bins: 4}

	s := NewSpectrum(band)
	for i := range s {
		s[i] = 2
	}

	// 4 bins of value 2 over 25 nm each.
	total, err := s.Total(band)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(total-200) > 1e-12 {
		t.Fatalf("expected integral 200; got %g", total)
	}
}

func TestNilSpectrumIsZero(t *testing.T) {
	band := Band{Min: 400, Max: 500, Bins: 4}

	var s Spectrum
	total, err := s.Total(band)
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Fatalf("nil spectrum should integrate to 0; got %g", total)
	}
}

func TestSpectrumSizeMismatch(t *testing.T) {
	band := Band{Min: 400, Max: 500, Bins: 4}

	s := make(Spectrum, 3)
	if _, err := s.Total(band); err != ErrSpectrumBandMismatch {
		t.Fatalf("expected ErrSpectrumBandMismatch; got %v", err)
	}
	if err := s.AddScaled(1, make(Spectrum, 4)); err != ErrSpectrumBandMismatch {
		t.Fatalf("expected ErrSpectrumBandMismatch; got %v", err)
	}
}
