package observer

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/golang/geo/r3"

	"github.com/spica-project/spica/log"
	"github.com/spica-project/spica/pipeline"
	"github.com/spica-project/spica/render"
	"github.com/spica-project/spica/sampling"
	"github.com/spica-project/spica/spectral"
	"github.com/spica-project/spica/trace"
)

var logger = log.New("observer")

// geometry is the sensor-specific strategy behind an Observer: it owns
// the element grid, the per-sample calibration factors, the sampling
// generators and the element transforms. Derived quantities are
// recomputed by the concrete type's setters, never mid-render.
type geometry interface {
	// elements returns the element grid dimensions.
	elements() (w, h int)

	// area is the collecting area of one element in m^2.
	area() float64

	// projSolidAngle is the projected solid angle integrated by the
	// vector generator's weights, in sr.
	projSolidAngle() float64

	// generators returns the point and vector strategies for the
	// current geometry and sub-sampling policy.
	generators(subSample bool) (sampling.PointGenerator, sampling.VectorGenerator)

	// mapSample maps a local sample (point, dir) for element (x, y)
	// into the observer frame.
	mapSample(x, y int, point, dir r3.Vector) trace.Ray
}

// Observer drives the per-element sampling loop shared by every sensor
// model: generate sample points and directions, disperse the spectrum
// across bands, trace each ray, and route the contributions into every
// attached pipeline. Concrete sensors (CCD, Pinhole, Fibre) embed it
// and supply the geometry strategy.
type Observer struct {
	name string
	geom geometry

	pipes     []pipeline.Pipeline
	transform Transform

	minWavelength float64
	maxWavelength float64
	spectralRays  int
	spectralBins  int
	pixelSamples  int
	subSample     bool
	workers       int
	seed          int64
	onChunk       func(done, total int)

	// Derived once per configuration change; read-only while a render
	// is active.
	bands []spectral.Band
	dirty bool

	rendering atomic.Bool
	lastStats render.Stats
}

// init wires the shared machinery; called by the concrete constructors
// before their first geometry derivation.
func (o *Observer) init(name string, geom geometry, pipes []pipeline.Pipeline) error {
	if len(pipes) == 0 {
		return ErrNoPipelines
	}

	o.name = name
	o.geom = geom
	o.pipes = append([]pipeline.Pipeline(nil), pipes...)
	o.transform = Identity()
	o.minWavelength = spectral.DefaultMinWavelength
	o.maxWavelength = spectral.DefaultMaxWavelength
	o.spectralRays = spectral.DefaultRays
	o.spectralBins = spectral.DefaultBins
	o.pixelSamples = 100
	o.subSample = true
	o.seed = 1
	o.dirty = true
	return o.updateSpectral()
}

// guard rejects configuration changes while a render is active. The
// policy is report-and-fail, never block or queue.
func (o *Observer) guard() error {
	if o.rendering.Load() {
		return ErrRenderInProgress
	}
	return nil
}

// invalidate marks the pipeline layout stale so the next Observe
// reallocates accumulators instead of appending to mismatched state.
// Concrete geometry setters call this after re-deriving their caches.
func (o *Observer) invalidate() {
	o.dirty = true
}

func (o *Observer) updateSpectral() error {
	bands, err := spectral.Partition(o.minWavelength, o.maxWavelength, o.spectralRays, o.spectralBins)
	if err != nil {
		return err
	}
	o.bands = bands
	o.dirty = true
	return nil
}

// Name returns the observer's display name.
func (o *Observer) Name() string {
	return o.name
}

// Bands returns the spectral bands rendered by this observer, one per
// observation pass, in ascending wavelength order.
func (o *Observer) Bands() []spectral.Band {
	return append([]spectral.Band(nil), o.bands...)
}

// Pipelines returns the attached pipelines in routing order.
func (o *Observer) Pipelines() []pipeline.Pipeline {
	return append([]pipeline.Pipeline(nil), o.pipes...)
}

// Etendue returns the geometric throughput of one sensing element,
// area times projected solid angle, used to convert collected power to
// a calibrated flux.
func (o *Observer) Etendue() float64 {
	return o.geom.area() * o.geom.projSolidAngle()
}

// Stats returns statistics for the most recent render.
func (o *Observer) Stats() render.Stats {
	return o.lastStats
}

// SetTransform sets the placement of the observer in the scene frame.
func (o *Observer) SetTransform(t Transform) error {
	if err := o.guard(); err != nil {
		return err
	}
	o.transform = t
	return nil
}

// SetSpectralRange sets the observable wavelength range in nanometers.
func (o *Observer) SetSpectralRange(min, max float64) error {
	if err := o.guard(); err != nil {
		return err
	}
	if max <= min {
		return spectral.ErrInvalidRange
	}
	o.minWavelength, o.maxWavelength = min, max
	return o.updateSpectral()
}

// SetSpectralRays sets the number of spectral bands (rendering passes)
// the wavelength range is dispersed over.
func (o *Observer) SetSpectralRays(rays int) error {
	if err := o.guard(); err != nil {
		return err
	}
	if rays < 1 {
		return spectral.ErrInvalidRayCount
	}
	o.spectralRays = rays
	return o.updateSpectral()
}

// SetSpectralBins sets the number of wavelength bins per band.
func (o *Observer) SetSpectralBins(bins int) error {
	if err := o.guard(); err != nil {
		return err
	}
	if bins < 1 {
		return spectral.ErrInvalidBinCount
	}
	o.spectralBins = bins
	return o.updateSpectral()
}

// SetPixelSamples sets the number of samples taken per element and
// per band.
func (o *Observer) SetPixelSamples(n int) error {
	if err := o.guard(); err != nil {
		return err
	}
	if n < 1 {
		return ErrInvalidSamples
	}
	o.pixelSamples = n
	return nil
}

// SetSubSample toggles jittering of sample positions over the element
// footprint. When off, every sample originates at the element centre.
func (o *Observer) SetSubSample(enabled bool) error {
	if err := o.guard(); err != nil {
		return err
	}
	o.subSample = enabled
	return nil
}

// SetWorkers sets the parallel worker count. 0 or 1 renders
// synchronously on the calling goroutine with identical output.
func (o *Observer) SetWorkers(n int) error {
	if err := o.guard(); err != nil {
		return err
	}
	if n < 0 {
		return ErrInvalidWorkers
	}
	o.workers = n
	return nil
}

// SetSeed sets the base seed for the per-chunk random streams.
func (o *Observer) SetSeed(seed int64) error {
	if err := o.guard(); err != nil {
		return err
	}
	o.seed = seed
	return nil
}

// OnProgress installs a progressive-display hook invoked on the
// coordinating goroutine after each merged chunk. Finalizing the
// attached pipelines from the hook is safe and yields a consistent
// partial snapshot.
func (o *Observer) OnProgress(hook func(done, total int)) error {
	if err := o.guard(); err != nil {
		return err
	}
	o.onChunk = hook
	return nil
}

// Reset clears all attached pipelines to the current layout. The next
// Observe starts accumulating from scratch.
func (o *Observer) Reset() error {
	if err := o.guard(); err != nil {
		return err
	}
	for _, p := range o.pipes {
		p.Reset(o.layout())
	}
	o.dirty = false
	return nil
}

func (o *Observer) layout() pipeline.Layout {
	w, h := o.geom.elements()
	return pipeline.Layout{
		Width:    w,
		Height:   h,
		Bands:    len(o.bands),
		Bins:     o.spectralBins,
		BinWidth: o.bands[0].BinWidth(),
	}
}

// Observe runs a full observation: every element is sampled
// pixelSamples times for each spectral band and the traced
// contributions are folded into every attached pipeline.
//
// When the configuration has not changed since the previous Observe,
// new samples accumulate into the existing pipeline statistics; call
// Reset first to start over. A tracer error aborts the render: chunks
// already merged stay visible and the pipelines report Incomplete.
func (o *Observer) Observe(ctx context.Context, tr trace.Tracer) error {
	if tr == nil {
		return ErrNoTracer
	}
	if !o.rendering.CompareAndSwap(false, true) {
		return ErrRenderInProgress
	}
	defer o.rendering.Store(false)

	if o.dirty {
		for _, p := range o.pipes {
			p.Reset(o.layout())
		}
		o.dirty = false
	}

	w, h := o.geom.elements()
	points, vectors := o.geom.generators(o.subSample)

	// Chunks are element rows for imaging sensors and a single chunk
	// for point sensors; the decomposition never depends on the worker
	// count.
	chunks := render.Split(w*h, w)

	logger.Infof("%s: observing %dx%d elements, %d band(s) x %d bins, %d samples/element, %d workers",
		o.name, w, h, len(o.bands), o.spectralBins, o.pixelSamples, o.workers)

	stats, err := render.Run(ctx, chunks, o.pipes, render.Options{
		Workers: o.workers,
		Seed:    o.seed,
		OnChunk: o.onChunk,
	}, func(c render.Chunk, rng *rand.Rand, sinks []pipeline.Pipeline) error {
		return o.renderChunk(c, rng, tr, points, vectors, sinks)
	})
	o.lastStats = stats
	if err != nil {
		logger.Errorf("%s: render aborted: %v", o.name, err)
		return err
	}

	logger.Noticef("%s: render complete in %s (%d chunks)", o.name, stats.RenderTime, stats.Chunks)
	return nil
}

// renderChunk runs the per-element sampling loop for one chunk. It
// only touches worker-local state: the chunk's random stream and the
// forked pipeline sinks.
func (o *Observer) renderChunk(c render.Chunk, rng *rand.Rand, tr trace.Tracer,
	points sampling.PointGenerator, vectors sampling.VectorGenerator, sinks []pipeline.Pipeline) error {

	w, _ := o.geom.elements()
	area := o.geom.area()
	omega := o.geom.projSolidAngle()

	for elem := c.Start; elem < c.End; elem++ {
		x, y := elem%w, elem/w

		for bandIdx, band := range o.bands {
			pts := points.Points(o.pixelSamples, rng)
			dirs := vectors.Vectors(len(pts), rng)

			for i, p := range pts {
				ray := o.transform.Ray(o.geom.mapSample(x, y, p, dirs[i].Dir))

				spec, err := tr.Trace(ray, band)
				if err != nil {
					return fmt.Errorf("observer %s: element (%d,%d): %w", o.name, x, y, err)
				}

				s := pipeline.Sample{
					Band:           bandIdx,
					Spectrum:       spec,
					Weight:         dirs[i].Weight,
					Area:           area,
					ProjSolidAngle: omega,
				}
				for _, sink := range sinks {
					sink.Accumulate(elem, s)
				}
			}
		}
	}
	return nil
}
