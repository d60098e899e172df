package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, path string, calls *atomic.Int32) Watcher {
	t.Helper()
	w := NewWatcher(path, func(string) { calls.Add(1) }, WithDebounce(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	// Give fsnotify time to register the directory.
	time.Sleep(50 * time.Millisecond)
	return w
}

func TestNewWatcherHashesCurrentContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CHAIR.glb")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	w := NewWatcher(path, nil)
	h, ok := w.Hash()
	require.True(t, ok)
	assert.Equal(t, xxhash.Sum64([]byte("v1")), h)

	_, ok = NewWatcher(filepath.Join(t.TempDir(), "missing.glb"), nil).Hash()
	assert.False(t, ok)
}

func TestChangeFiresOnceAfterDebounce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CHAIR.glb")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	var calls atomic.Int32
	w := startWatcher(t, path, &calls)

	for _, chunk := range []string{"v2-a", "v2-ab", "v2-abc"} {
		require.NoError(t, os.WriteFile(path, []byte(chunk), 0o644))
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	h, _ := w.Hash()
	assert.Equal(t, xxhash.Sum64String("v2-abc"), h)
}

func TestSameContentDoesNotFire(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CHAIR.glb")
	require.NoError(t, os.WriteFile(path, []byte("same"), 0o644))

	var calls atomic.Int32
	startWatcher(t, path, &calls)

	require.NoError(t, os.WriteFile(path, []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.glb"), []byte("other"), 0o644))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}
