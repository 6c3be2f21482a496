package cmd

import (
	"math"

	"github.com/spica-project/spica/spectral"
	"github.com/spica-project/spica/trace"
)

// checkerWall returns an analytic stand-in for the scene-traversal
// collaborator: an infinite checkerboard wall at z = distance emitting
// uniform spectral radiance bright or dark per cell (W/m^2/sr/nm).
// Rays heading away from the wall miss and contribute nothing.
func checkerWall(distance, cell, bright, dark float64) trace.TracerFunc {
	return func(ray trace.Ray, band spectral.Band) (spectral.Spectrum, error) {
		if ray.Dir.Z <= 0 {
			return nil, nil
		}

		t := (distance - ray.Origin.Z) / ray.Dir.Z
		hx := ray.Origin.X + t*ray.Dir.X
		hy := ray.Origin.Y + t*ray.Dir.Y

		level := dark
		ix := int(math.Floor(hx / cell))
		iy := int(math.Floor(hy / cell))
		if (ix+iy)%2 == 0 {
			level = bright
		}

		return wallEmission(band, level)
	}
}

// wallEmission builds the per-bin spectrum for a wall cell: a flat
// level with a zero-mean linear tilt toward the long-wavelength end.
// The tilt leaves the band integral at level * span, so the scalar
// pipelines see the plain level while the spectral ones get a slope.
func wallEmission(band spectral.Band, level float64) (spectral.Spectrum, error) {
	s := spectral.NewSpectrum(band)
	for i := range s {
		s[i] = 1
	}
	s.Scale(level)

	ramp := spectral.NewSpectrum(band)
	n := float64(band.Bins)
	for i := range ramp {
		ramp[i] = (2*float64(i)+1)/n - 1
	}
	if err := s.AddScaled(0.25*level, ramp); err != nil {
		return nil, err
	}
	return s, nil
}
