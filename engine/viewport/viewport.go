// Package viewport maps a scene to pixels through a camera and a renderer, and keeps
// the camera projection in step with the output size.
package viewport

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"go.uber.org/zap"
)

// viewport is the implementation of the Viewport interface.
type viewport struct {
	mu       *sync.Mutex
	logger   *zap.Logger
	camera   camera.Camera
	renderer renderer.Renderer
}

// Viewport owns the camera and renderer used to draw a scene.
type Viewport interface {
	// Camera returns the viewport camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Renderer returns the renderer the viewport draws with.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Resize sets the renderer output size and the camera aspect to width/height.
	// The projection is recomputed before Resize returns. Zero or negative sizes,
	// as reported for a minimised window, are ignored.
	//
	// Parameters:
	//   - width: output width in pixels
	//   - height: output height in pixels
	Resize(width, height int)

	// Size returns the current output size.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (int, int)

	// Render refreshes the camera matrices and draws the scene. Inactive scenes are skipped.
	//
	// Parameters:
	//   - s: the scene to draw
	//
	// Returns:
	//   - error: the renderer error, if any
	Render(s scene.Scene) error
}

var _ Viewport = &viewport{}

// NewViewport creates a Viewport drawing through r. Without WithCamera the viewport
// creates a perspective camera driven by a default orbit controller.
//
// Parameters:
//   - r: the renderer to draw with
//   - options: variadic list of ViewportBuilderOption functions
//
// Returns:
//   - Viewport: the new viewport
func NewViewport(r renderer.Renderer, options ...ViewportBuilderOption) Viewport {
	v := &viewport{
		mu:       &sync.Mutex{},
		logger:   zap.NewNop(),
		renderer: r,
	}

	for _, opt := range options {
		opt(v)
	}

	if v.camera == nil {
		v.camera = camera.NewCamera(camera.WithController(camera.NewOrbitController()))
	}

	w, h := r.Size()
	if w > 0 && h > 0 {
		v.camera.SetAspect(float32(w) / float32(h))
	}
	return v
}

func (v *viewport) Camera() camera.Camera {
	return v.camera
}

func (v *viewport) Renderer() renderer.Renderer {
	return v.renderer
}

func (v *viewport) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	v.renderer.Resize(width, height)
	v.camera.SetAspect(float32(width) / float32(height))
	v.logger.Debug("viewport resized", zap.Int("width", width), zap.Int("height", height))
}

func (v *viewport) Size() (int, int) {
	return v.renderer.Size()
}

func (v *viewport) Render(s scene.Scene) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s == nil || !s.Active() {
		return nil
	}

	v.camera.Update()
	return v.renderer.Render(renderer.Frame{
		ViewProjection: v.camera.ViewProjectionMatrix(),
		Eye:            v.camera.Eye(),
		Lights:         s.Lights(),
		Drawables:      s.Drawables(),
	})
}
