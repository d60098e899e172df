package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTickReportsAfterInterval(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewProfiler(zap.New(core))
	p.SetInterval(time.Hour)

	assert.False(t, p.Tick())
	assert.Zero(t, logs.Len())

	p.SetInterval(time.Nanosecond)
	time.Sleep(time.Millisecond)
	require.True(t, p.Tick())

	entries := logs.FilterMessage("frame stats").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "profiler", entries[0].LoggerName)
	assert.Contains(t, entries[0].ContextMap(), "fps")
	assert.Greater(t, p.FPS(), 0.0)
}

func TestNilLoggerIsSafe(t *testing.T) {
	p := NewProfiler(nil)
	p.SetInterval(time.Nanosecond)
	time.Sleep(time.Millisecond)
	assert.True(t, p.Tick())
}
