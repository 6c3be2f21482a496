package sampling

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
)

// A WeightedDir is a unit sample direction together with the weight
// that keeps accumulation an unbiased estimator of the radiometric
// integral. Weight carries cos(theta)/pdf so that averaging
// radiance * Weight over many samples converges to the projected
// solid angle integral of the radiance over the sampled directions.
type WeightedDir struct {
	Dir    r3.Vector
	Weight float64
}

// A VectorGenerator produces local-frame sample directions. Directions
// point along the local +Z axis of the sensing element.
type VectorGenerator interface {
	// Vectors returns n weighted unit directions. n == 0 yields an
	// empty slice, never an error.
	Vectors(n int, rng *rand.Rand) []WeightedDir
}

// Fixed always returns the same direction with unit weight. Used by
// geometries that derive the ray direction themselves, e.g. a pinhole
// camera unprojecting image-plane points.
type Fixed struct {
	Dir r3.Vector
}

func (g Fixed) Vectors(n int, rng *rand.Rand) []WeightedDir {
	dirs := make([]WeightedDir, n)
	d := g.Dir.Normalize()
	for i := range dirs {
		dirs[i] = WeightedDir{Dir: d, Weight: 1}
	}
	return dirs
}

// HemisphereCosine samples the +Z hemisphere with a cosine-weighted
// density, pdf = cos(theta)/pi. The cosine cancels against the weight,
// leaving the constant pi: averaging radiance * pi estimates the full
// projected-solid-angle integral over the hemisphere.
type HemisphereCosine struct{}

func (HemisphereCosine) Vectors(n int, rng *rand.Rand) []WeightedDir {
	dirs := make([]WeightedDir, n)
	for i := range dirs {
		phi := 2 * math.Pi * rng.Float64()
		u := rng.Float64()
		r := math.Sqrt(u)
		dirs[i] = WeightedDir{
			Dir: r3.Vector{
				X: r * math.Cos(phi),
				Y: r * math.Sin(phi),
				Z: math.Sqrt(1 - u),
			},
			Weight: math.Pi,
		}
	}
	return dirs
}

// ConeUniform samples directions uniformly by solid angle within a
// cone of the given half angle (radians) around the local +Z axis.
// pdf = 1/omega over the cone, so Weight = cos(theta) * omega where
// omega = 2*pi*(1 - cos(halfAngle)).
type ConeUniform struct {
	HalfAngle float64
}

// SolidAngle of the sampled cone in steradians.
func (g ConeUniform) SolidAngle() float64 {
	return 2 * math.Pi * (1 - math.Cos(g.HalfAngle))
}

func (g ConeUniform) Vectors(n int, rng *rand.Rand) []WeightedDir {
	omega := g.SolidAngle()
	cosMax := math.Cos(g.HalfAngle)

	dirs := make([]WeightedDir, n)
	for i := range dirs {
		cosTheta := 1 - rng.Float64()*(1-cosMax)
		sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
		phi := 2 * math.Pi * rng.Float64()
		dirs[i] = WeightedDir{
			Dir: r3.Vector{
				X: sinTheta * math.Cos(phi),
				Y: sinTheta * math.Sin(phi),
				Z: cosTheta,
			},
			Weight: cosTheta * omega,
		}
	}
	return dirs
}
