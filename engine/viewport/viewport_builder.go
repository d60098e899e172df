package viewport

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"go.uber.org/zap"
)

// ViewportBuilderOption is a functional option applied to a viewport during construction via NewViewport.
type ViewportBuilderOption func(*viewport)

// WithCamera sets the camera the viewport draws through.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - ViewportBuilderOption: a function that applies the camera option to a viewport
func WithCamera(c camera.Camera) ViewportBuilderOption {
	return func(v *viewport) {
		v.camera = c
	}
}

// WithLogger sets the logger used for viewport diagnostics.
//
// Parameters:
//   - logger: the logger instance
//
// Returns:
//   - ViewportBuilderOption: a function that applies the logger option to a viewport
func WithLogger(logger *zap.Logger) ViewportBuilderOption {
	return func(v *viewport) {
		if logger != nil {
			v.logger = logger.Named("viewport")
		}
	}
}
