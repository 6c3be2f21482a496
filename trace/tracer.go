package trace

import (
	"github.com/golang/geo/r3"

	"github.com/spica-project/spica/spectral"
)

// A Ray is one scene-frame sample ray: an origin and a unit direction.
type Ray struct {
	Origin r3.Vector
	Dir    r3.Vector
}

// A Tracer is the scene-traversal collaborator. It evaluates the
// spectral radiance arriving along a ray, sampled into the bins of the
// requested band.
//
// A nil spectrum means the ray hit nothing and contributes zero; it is
// not an error. A non-nil error signals an internal traversal fault
// and aborts the in-flight render chunk: failed samples are never
// retried or skipped, since either would bias the estimator.
type Tracer interface {
	Trace(ray Ray, band spectral.Band) (spectral.Spectrum, error)
}

// TracerFunc adapts a plain function to the Tracer interface.
type TracerFunc func(ray Ray, band spectral.Band) (spectral.Spectrum, error)

func (f TracerFunc) Trace(ray Ray, band spectral.Band) (spectral.Spectrum, error) {
	return f(ray, band)
}
