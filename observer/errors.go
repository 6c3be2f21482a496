package observer

import "errors"

var (
	ErrNoPipelines       = errors.New("observer: no pipelines attached")
	ErrNoTracer          = errors.New("observer: no tracer supplied")
	ErrRenderInProgress  = errors.New("observer: render in progress")
	ErrInvalidPixelCount = errors.New("observer: pixel counts must be >= 1")
	ErrInvalidWidth      = errors.New("observer: width must be greater than 0")
	ErrInvalidFov        = errors.New("observer: field of view must be in (0, 180)")
	ErrInvalidRadius     = errors.New("observer: radius must be greater than 0")
	ErrInvalidAcceptance = errors.New("observer: acceptance angle must be in (0, 90]")
	ErrInvalidSamples    = errors.New("observer: samples per element must be >= 1")
	ErrInvalidWorkers    = errors.New("observer: worker count must be >= 0")
)
