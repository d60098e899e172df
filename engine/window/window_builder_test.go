package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilderOptions(t *testing.T) {
	w := &engineWindow{width: 1280, height: 720}
	for _, opt := range []WindowBuilderOption{
		WithTitle("chair"),
		WithSize(0, 480),
		WithMinSize(640, -1),
		WithMaxSize(1920, 1080),
	} {
		opt(w)
	}

	assert.Equal(t, "chair", w.title)
	assert.Equal(t, 1280, w.width, "non-positive width keeps the default")
	assert.Equal(t, 480, w.height)
	assert.Equal(t, 640, w.minWidth)
	assert.Equal(t, 0, w.minHeight)
	assert.Equal(t, 1920, w.maxWidth)
	assert.Equal(t, 1080, w.maxHeight)
}
