package sampling

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
)

// A PointGenerator produces local-frame sample origins for one sensing
// element. Implementations are pure functions of the requested count
// and the supplied random stream; the stream is always owned by the
// caller (one per worker) so generators stay safe to share.
type PointGenerator interface {
	// Points returns n local-frame points. n == 0 yields an empty
	// slice, never an error.
	Points(n int, rng *rand.Rand) []r3.Vector
}

// SinglePoint places every sample at the element origin. Used when
// sub-sampling is disabled or for point sensors.
type SinglePoint struct{}

func (SinglePoint) Points(n int, rng *rand.Rand) []r3.Vector {
	return make([]r3.Vector, n)
}

// Rectangle jitters samples uniformly over a W x H footprint centred
// on the element origin in the local XY plane.
type Rectangle struct {
	Width  float64
	Height float64
}

func (g Rectangle) Points(n int, rng *rand.Rand) []r3.Vector {
	points := make([]r3.Vector, n)
	for i := range points {
		points[i] = r3.Vector{
			X: (rng.Float64() - 0.5) * g.Width,
			Y: (rng.Float64() - 0.5) * g.Height,
		}
	}
	return points
}

// Stratified jitters samples over a W x H footprint using a k x k
// stratum grid, k = floor(sqrt(n)): one sample uniform within each
// stratum, covering every stratum exactly once, with any remainder
// jittered uniformly over the whole footprint. The sample set stays an
// unbiased cover of the footprint while reducing clumping.
type Stratified struct {
	Width  float64
	Height float64
}

func (g Stratified) Points(n int, rng *rand.Rand) []r3.Vector {
	points := make([]r3.Vector, 0, n)
	if n == 0 {
		return points
	}

	k := int(math.Sqrt(float64(n)))
	dx := g.Width / float64(k)
	dy := g.Height / float64(k)
	for j := 0; j < k; j++ {
		for i := 0; i < k; i++ {
			points = append(points, r3.Vector{
				X: -0.5*g.Width + (float64(i)+rng.Float64())*dx,
				Y: -0.5*g.Height + (float64(j)+rng.Float64())*dy,
			})
		}
	}
	for len(points) < n {
		points = append(points, r3.Vector{
			X: (rng.Float64() - 0.5) * g.Width,
			Y: (rng.Float64() - 0.5) * g.Height,
		})
	}
	return points
}

// Disk samples a circular face of the given radius using concentric
// mapping, which covers the disk uniformly without rejection sampling.
type Disk struct {
	Radius float64
}

func (g Disk) Points(n int, rng *rand.Rand) []r3.Vector {
	points := make([]r3.Vector, n)
	for i := range points {
		u := 2*rng.Float64() - 1
		v := 2*rng.Float64() - 1
		if u == 0 && v == 0 {
			continue
		}

		var r, theta float64
		if math.Abs(u) > math.Abs(v) {
			r = u
			theta = math.Pi / 4 * (v / u)
		} else {
			r = v
			theta = math.Pi/2 - math.Pi/4*(u/v)
		}

		points[i] = r3.Vector{
			X: g.Radius * r * math.Cos(theta),
			Y: g.Radius * r * math.Sin(theta),
		}
	}
	return points
}
