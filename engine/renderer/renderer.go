package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

var (
	// ErrRendererClosed is returned by Render after Close.
	ErrRendererClosed = errors.New("renderer closed")

	// ErrNoSurface is returned when a surface-backed renderer is created without a surface.
	ErrNoSurface = errors.New("renderer backend requires a surface")
)

// Surface is the presentation target of a WebGPU renderer. window.Window implements it.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// Stats reports what the renderer has done so far.
type Stats struct {
	// Frames is the number of frames rendered successfully.
	Frames uint64

	// Draws is the number of draw calls in the most recent frame.
	Draws int

	// Width and Height are the current output size in pixels.
	Width  int
	Height int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *zap.Logger

	backendType RendererBackendType
	backend     RendererBackend

	width  int
	height int
	stats  Stats
	closed bool

	// Pre-creation config collected from builder options
	surface              Surface
	forceFallbackAdapter bool
	presentMode          *PresentMode
	msaa                 MSAASampleCount
}

// Renderer draws Frames to an output of a given size.
//
// The Renderer owns the backend and the output size. It is safe for concurrent use,
// but frames are drawn one at a time.
type Renderer interface {
	// Resize reconfigures the output for a new size in pixels. Non-positive sizes are ignored.
	//
	// Parameters:
	//   - width: the new width of the output in pixels
	//   - height: the new height of the output in pixels
	Resize(width, height int)

	// Size returns the current output size.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (int, int)

	// Render draws one frame.
	//
	// Parameters:
	//   - frame: the camera, lights and drawables to draw
	//
	// Returns:
	//   - error: ErrRendererClosed after Close, or a backend failure
	Render(frame Frame) error

	// Stats returns frame counters and the output size.
	//
	// Returns:
	//   - Stats: the current statistics
	Stats() Stats

	// SetPresentMode sets the surface present mode which controls how frames are delivered
	// to the display. The output is reconfigured immediately.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// Close releases the backend. Safe to call more than once.
	Close()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer with the specified backend.
// BackendTypeWGPU requires WithSurface; its initial size is the surface size.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured renderer
//   - error: an error if the backend could not be created
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		logger:      zap.NewNop(),
		backendType: backendType,
		width:       1280,
		height:      720,
		msaa:        MSAA4x,
	}

	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeHeadless:
		r.backend = newHeadlessRendererBackend(r.logger)
	case BackendTypeWGPU:
		if r.surface == nil {
			return nil, ErrNoSurface
		}
		b, err := newWGPURendererBackend(r.surface.SurfaceDescriptor(), r.forceFallbackAdapter, r.msaa, r.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create wgpu backend: %w", err)
		}
		r.backend = b
		r.width, r.height = r.surface.Width(), r.surface.Height()
	default:
		return nil, fmt.Errorf("unknown renderer backend %d", backendType)
	}

	if r.presentMode != nil {
		r.backend.SetPresentMode(*r.presentMode)
	}

	r.backend.ConfigureSurface(r.width, r.height)
	r.stats.Width, r.stats.Height = r.width, r.height
	return r, nil
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || (width == r.width && height == r.height) {
		return
	}
	r.width, r.height = width, height
	r.stats.Width, r.stats.Height = width, height
	r.backend.ConfigureSurface(width, height)
	r.logger.Debug("output resized", zap.Int("width", width), zap.Int("height", height))
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) Render(frame Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRendererClosed
	}

	draws, err := r.backend.DrawFrame(frame)
	if err != nil {
		return err
	}
	r.stats.Frames++
	r.stats.Draws = draws
	return nil
}

func (r *renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.backend.SetPresentMode(mode)
	r.backend.ConfigureSurface(r.width, r.height)
}

func (r *renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.backend.Release()
}
