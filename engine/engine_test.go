package engine

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader/loadertest"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeHost struct {
	mu      sync.Mutex
	resize  func(width, height int)
	scroll  func(delta float32)
	key     func(keyCode uint32)
	drag    func(button common.MouseButton, dx, dy float32)
	running bool
	polls   int
	width   int
	height  int
}

func newFakeHost(w, h int) *fakeHost {
	return &fakeHost{running: true, width: w, height: h}
}

func (h *fakeHost) SetResizeCallback(cb func(width, height int)) { h.resize = cb }
func (h *fakeHost) SetScrollCallback(cb func(delta float32))     { h.scroll = cb }
func (h *fakeHost) SetKeyDownCallback(cb func(keyCode uint32))   { h.key = cb }
func (h *fakeHost) SetDragCallback(cb func(button common.MouseButton, dx, dy float32)) {
	h.drag = cb
}
func (h *fakeHost) Width() int  { return h.width }
func (h *fakeHost) Height() int { return h.height }

func (h *fakeHost) PollEvents() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.polls++
	return h.running
}

func (h *fakeHost) RequestClose() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.running = false
}

func (h *fakeHost) isRunning() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

func newTestEngine(t *testing.T, options ...EngineBuilderOption) (Engine, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	options = append([]EngineBuilderOption{WithLogger(zap.New(core))}, options...)
	e, err := NewEngine(options...)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e, logs
}

func chairPath(t *testing.T) string {
	t.Helper()
	return loadertest.WriteFile(t, t.TempDir(), "CHAIR.glb", loadertest.ChairGLB())
}

// loadAndApply waits for res and renders one frame so the engine applies it.
func loadAndApply(t *testing.T, e Engine, res loader.Result) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	<-waitDone(ctx, res)
	require.NoError(t, ctx.Err(), "load did not complete")
	require.NoError(t, e.RenderFrame())
}

func waitDone(ctx context.Context, res loader.Result) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		select {
		case <-res.Done():
		case <-ctx.Done():
		}
	}()
	return ch
}

func meshNodes(root scene.Node) []scene.Node {
	var out []scene.Node
	root.Traverse(func(n scene.Node) {
		if n.IsMesh() {
			out = append(out, n)
		}
	})
	return out
}

func TestLoadAppliesPostLoadTransform(t *testing.T) {
	e, logs := newTestEngine(t)

	res := e.Load(chairPath(t))
	_, ok := e.Registry().Get()
	assert.False(t, ok, "registry must stay empty until a frame applies the result")

	loadAndApply(t, e, res)

	node, ok := e.Registry().Get()
	require.True(t, ok)
	assert.Equal(t, loadertest.SceneName, node.Name())
	assert.Equal(t, mgl32.Vec3{3, 3, 3}, node.Scale())
	assert.Equal(t, mgl32.Vec3{0, -0.5, 0}, node.Position())
	assert.True(t, e.Scene().Contains(node))
	assert.Same(t, e.Scene().Root(), node.Parent())

	assert.Equal(t, loadertest.MeshNodeCount, logs.FilterMessage("mesh").Len())
	assert.Equal(t, 1, logs.FilterMessage("model loaded").Len())

	st := e.Status()
	assert.True(t, st.Loaded)
	assert.Equal(t, "succeeded", st.State)
	assert.Equal(t, uint64(1), st.Frames)
}

func TestPostLoadTransformOption(t *testing.T) {
	e, _ := newTestEngine(t, WithPostLoadTransform(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 2, 0}))
	loadAndApply(t, e, e.Load(chairPath(t)))

	node, ok := e.Registry().Get()
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, node.Scale())
	assert.Equal(t, mgl32.Vec3{0, 2, 0}, node.Position())
}

func TestFailedLoadLeavesRegistryEmpty(t *testing.T) {
	e, logs := newTestEngine(t)

	res := e.Load(filepath.Join(t.TempDir(), "missing.glb"))
	calls := 0
	var mu sync.Mutex
	res.OnComplete(func(scene.Node, error) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	loadAndApply(t, e, res)
	require.NoError(t, e.RenderFrame())

	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()

	_, ok := e.Registry().Get()
	assert.False(t, ok)
	assert.Empty(t, e.Scene().Root().Children())
	assert.Equal(t, 1, logs.FilterMessage("model load failed").Len())

	st := e.Status()
	assert.False(t, st.Loaded)
	assert.Equal(t, "failed", st.State)
	assert.NotEmpty(t, st.Error)
}

func TestChangeColorBeforeLoadWarns(t *testing.T) {
	e, logs := newTestEngine(t)

	assert.NotPanics(t, func() { e.ChangeColor("red") })

	warnings := logs.FilterMessage("model not loaded yet").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, zap.WarnLevel, warnings[0].Level)
	_, ok := e.Registry().Get()
	assert.False(t, ok)
}

func TestChangeColorRecolorsEveryMesh(t *testing.T) {
	e, _ := newTestEngine(t)
	loadAndApply(t, e, e.Load(chairPath(t)))

	root, ok := e.Registry().Get()
	require.True(t, ok)

	type transform struct{ pos, scale mgl32.Vec3 }
	before := map[uint64]transform{}
	root.Traverse(func(n scene.Node) {
		before[n.ID()] = transform{n.Position(), n.Scale()}
	})

	e.ChangeColor("#00ff00")

	green := common.Color{R: 0, G: 1, B: 0, A: 1}
	meshes := meshNodes(root)
	require.Len(t, meshes, loadertest.MeshNodeCount)
	for _, n := range meshes {
		assert.Equal(t, green, n.Mesh().Material.Color(), "mesh %s", n.Name())
	}
	root.Traverse(func(n scene.Node) {
		assert.Equal(t, before[n.ID()], transform{n.Position(), n.Scale()}, "node %s moved", n.Name())
	})
}

func TestChangeColorKeepsAlpha(t *testing.T) {
	e, _ := newTestEngine(t)
	path := loadertest.WriteFile(t, t.TempDir(), "GLASS.glb", loadertest.ChairGLBWithSeatColor([4]float32{0.2, 0.4, 0.6, 0.5}))
	loadAndApply(t, e, e.Load(path))

	root, ok := e.Registry().Get()
	require.True(t, ok)
	seat := root.Find(loadertest.SeatNode)
	require.NotNil(t, seat)
	require.Equal(t, float32(0.5), seat.Mesh().Material.Color().A)

	e.ChangeColor("red")

	assert.Equal(t, common.Color{R: 1, G: 0, B: 0, A: 0.5}, seat.Mesh().Material.Color())
	legs := root.Find(loadertest.LegsNode)
	require.NotNil(t, legs)
	for _, n := range meshNodes(legs) {
		assert.Equal(t, float32(1), n.Mesh().Material.Color().A, "mesh %s", n.Name())
	}
}

func TestChangeColorIgnoresInvalidValue(t *testing.T) {
	e, logs := newTestEngine(t)
	loadAndApply(t, e, e.Load(chairPath(t)))

	root, _ := e.Registry().Get()
	seat := root.Find(loadertest.SeatNode)
	require.NotNil(t, seat)
	want := seat.Mesh().Material.Color()

	e.ChangeColor("not-a-colour")

	assert.Equal(t, want, seat.Mesh().Material.Color())
	assert.Equal(t, 1, logs.FilterMessage("ignoring colour change").Len())
}

func TestHostResizeReachesViewport(t *testing.T) {
	host := newFakeHost(800, 600)
	e, _ := newTestEngine(t, WithHost(host))

	w, h := e.Viewport().Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	require.NotNil(t, host.resize)
	host.resize(1920, 1080)

	w, h = e.Viewport().Size()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
	assert.InDelta(t, 1920.0/1080.0, e.Viewport().Camera().Aspect(), 1e-6)

	host.resize(0, 0)
	w, _ = e.Viewport().Size()
	assert.Equal(t, 1920, w)
}

func TestHostInputDrivesController(t *testing.T) {
	host := newFakeHost(800, 600)
	e, _ := newTestEngine(t, WithHost(host))
	ctrl := e.Controller()
	radius := ctrl.Radius()

	for range 100 {
		host.scroll(5)
	}
	require.NoError(t, e.RenderFrame())
	for range 600 {
		ctrl.Update(1.0 / 60)
	}
	assert.InDelta(t, ctrl.MinRadius(), ctrl.Radius(), 1e-3)
	assert.Less(t, ctrl.Radius(), radius)

	az := ctrl.Azimuth()
	host.drag(common.MouseButtonLeft, 100, 0)
	e.ResetView()
	assert.InDelta(t, az, ctrl.Azimuth(), 1e-5)
	assert.InDelta(t, radius, ctrl.Radius(), 1e-5)
}

func TestPaletteKeysChangeColor(t *testing.T) {
	host := newFakeHost(800, 600)
	e, _ := newTestEngine(t, WithHost(host))
	loadAndApply(t, e, e.Load(chairPath(t)))

	host.key(uint32(common.Key1))
	root, _ := e.Registry().Get()
	for _, n := range meshNodes(root) {
		assert.Equal(t, common.Color{R: 1, G: 0, B: 0, A: 1}, n.Mesh().Material.Color())
	}

	host.key(uint32(common.KeyEsc))
	assert.False(t, host.isRunning())
}

func TestReloadReplacesModel(t *testing.T) {
	e, _ := newTestEngine(t)
	assert.ErrorIs(t, e.Reload(), ErrNoModel)

	loadAndApply(t, e, e.Load(chairPath(t)))
	first, ok := e.Registry().Get()
	require.True(t, ok)

	require.NoError(t, e.Reload())
	_, ok = e.Registry().Get()
	assert.False(t, ok)
	assert.False(t, e.Scene().Contains(first))

	require.Eventually(t, func() bool {
		_ = e.RenderFrame()
		_, ok := e.Registry().Get()
		return ok
	}, 5*time.Second, 10*time.Millisecond)

	second, _ := e.Registry().Get()
	assert.NotSame(t, first, second)
	assert.Len(t, e.Scene().Root().Children(), 1)
}

func TestRunStopsOnCancel(t *testing.T) {
	e, _ := newTestEngine(t, WithTickRate(500))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	require.Eventually(t, func() bool { return e.Status().Frames > 2 }, 5*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRunStopsOnQuitAndFrameLimit(t *testing.T) {
	e, _ := newTestEngine(t, WithTickRate(1000), WithFrameLimit(5))
	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, uint64(5), e.Status().Frames)

	q, _ := newTestEngine(t, WithTickRate(1000))
	q.Quit()
	q.Quit()
	require.NoError(t, q.Run(context.Background()))
}

func TestRunStopsWhenHostCloses(t *testing.T) {
	host := newFakeHost(640, 480)
	e, _ := newTestEngine(t, WithHost(host))

	var frames int
	e.SetRenderCallback(func(float32) {
		frames++
		if frames == 3 {
			host.RequestClose()
		}
	})

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 3, frames)
}
