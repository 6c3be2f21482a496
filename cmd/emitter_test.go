package cmd

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"

	"github.com/spica-project/spica/spectral"
	"github.com/spica-project/spica/trace"
)

func TestCheckerWall(t *testing.T) {
	band := spectral.Band{Min: 400, Max: 500, Bins: 4}
	wall := checkerWall(1, 1, 5, 2)

	// Rays heading away from the wall miss.
	s, err := wall.Trace(trace.Ray{Dir: r3.Vector{Z: -1}}, band)
	if err != nil {
		t.Fatal(err)
	}
	if s != nil {
		t.Fatal("ray pointing away from the wall must miss")
	}

	// Hit in cell (0,0): bright. One cell over in x: dark.
	bright, err := wall.Trace(trace.Ray{Origin: r3.Vector{X: 0.5, Y: 0.5}, Dir: r3.Vector{Z: 1}}, band)
	if err != nil {
		t.Fatal(err)
	}
	dark, err := wall.Trace(trace.Ray{Origin: r3.Vector{X: 1.5, Y: 0.5}, Dir: r3.Vector{Z: 1}}, band)
	if err != nil {
		t.Fatal(err)
	}

	if got, _ := bright.Total(band); math.Abs(got-5*100) > 1e-12 {
		t.Fatalf("bright cell integral %g; want 500", got)
	}
	if got, _ := dark.Total(band); math.Abs(got-2*100) > 1e-12 {
		t.Fatalf("dark cell integral %g; want 200", got)
	}
}

func TestWallEmissionTilt(t *testing.T) {
	band := spectral.Band{Min: 400, Max: 500, Bins: 8}

	s, err := wallEmission(band, 3)
	if err != nil {
		t.Fatal(err)
	}

	// The tilt is zero-mean: the integral still matches the flat level.
	if got, _ := s.Total(band); math.Abs(got-3*100) > 1e-12 {
		t.Fatalf("tilted spectrum integral %g; want 300", got)
	}
	if s[0] >= s[len(s)-1] {
		t.Fatalf("expected a rising spectrum; got %g .. %g", s[0], s[len(s)-1])
	}
}
