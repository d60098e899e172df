package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewport"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ErrNoModel is returned by Reload when nothing has been requested yet.
var ErrNoModel = errors.New("no model requested")

// Host is the window the engine runs in. window.Window implements it.
type Host interface {
	SetResizeCallback(callback func(width, height int))
	SetScrollCallback(callback func(delta float32))
	SetKeyDownCallback(callback func(keyCode uint32))
	SetDragCallback(callback func(button common.MouseButton, dx, dy float32))
	PollEvents() bool
	RequestClose()
	Width() int
	Height() int
}

// Status is a snapshot of the engine's model state.
type Status struct {
	// Loaded reports whether a model is registered.
	Loaded bool `json:"loaded"`

	// State is the lifecycle state of the most recent load: none, pending, succeeded or failed.
	State string `json:"state"`

	// URL is the location of the most recent load.
	URL string `json:"url,omitempty"`

	// Error is the failure reason of the most recent load.
	Error string `json:"error,omitempty"`

	// Frames is the number of frames rendered.
	Frames uint64 `json:"frames"`
}

// engine implements the Engine interface.
type engine struct {
	mu     *sync.Mutex
	logger *zap.Logger

	loader     loader.Loader
	ownsLoader bool
	registry   model.Registry
	scene      scene.Scene
	renderer   renderer.Renderer
	camera     camera.Camera
	viewport   viewport.Viewport
	host       Host

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickRate         time.Duration // headless cadence
	renderFrameLimit time.Duration // minimum frame duration with a host; 0 = uncapped
	frameLimit       uint64        // Run returns after this many frames; 0 = unbounded
	renderCallback   func(deltaTime float32)

	postLoadScale    mgl32.Vec3
	postLoadPosition mgl32.Vec3

	// home is the initial orbit, restored by ResetView.
	home camera.CameraController

	url     string
	pending loader.Result
	last    loader.Result
	frames  uint64
	prev    time.Time

	quitChannel chan struct{}
	quitOnce    sync.Once
}

// Engine is the viewer application context. It owns the scene, the model registry,
// the viewport and the loader, and drives the render loop.
//
// ChangeColor, Load, Reload, Status and Quit are safe to call from any goroutine.
// RenderFrame and Run must be called from the goroutine that owns the window.
type Engine interface {
	// Load starts loading the asset at url. The result is applied by the next
	// RenderFrame after it completes. A newer Load supersedes a pending one.
	//
	// Parameters:
	//   - url: filesystem path or URL of a .glb or .gltf asset
	//
	// Returns:
	//   - loader.Result: the pending result of the load
	Load(url string) loader.Result

	// Reload removes the current model, clears the registry and loads the last URL again.
	//
	// Returns:
	//   - error: ErrNoModel if Load was never called
	Reload() error

	// ChangeColor sets the colour of every mesh in the current model. With no model loaded,
	// or with a value that is not a colour, it logs a warning and does nothing.
	// Accepted values are described by common.ParseColor.
	//
	// Parameters:
	//   - value: the colour
	ChangeColor(value any)

	// Status reports the model state.
	//
	// Returns:
	//   - Status: a snapshot of the current state
	Status() Status

	// RenderFrame applies a completed load, advances the camera controller and draws one frame.
	//
	// Returns:
	//   - error: the renderer error, if any
	RenderFrame() error

	// Run calls RenderFrame until ctx is cancelled, Quit is called, the host window closes
	// or the frame limit is reached. Without a host, frames are paced by the tick rate.
	// A panicking frame is recovered and logged.
	//
	// Parameters:
	//   - ctx: the stop token; context.Background() runs until Quit or the window closes
	//
	// Returns:
	//   - error: a fatal renderer error, otherwise nil
	Run(ctx context.Context) error

	// Quit stops Run and closes the host window. Safe to call multiple times.
	Quit()

	// Resize forwards a framebuffer size to the viewport.
	//
	// Parameters:
	//   - width: width in pixels
	//   - height: height in pixels
	Resize(width, height int)

	// HandleKey maps a key press: the number row picks palette colours, R resets the view, Esc quits.
	//
	// Parameters:
	//   - keyCode: the GLFW key code
	HandleKey(keyCode uint32)

	// HandleDrag maps pointer drags: left orbits, right pans, middle dollies.
	//
	// Parameters:
	//   - button: the held button
	//   - dx: horizontal cursor delta in pixels
	//   - dy: vertical cursor delta in pixels
	HandleDrag(button common.MouseButton, dx, dy float32)

	// HandleScroll dollies the camera. Positive deltas move closer.
	//
	// Parameters:
	//   - delta: scroll wheel delta
	HandleScroll(delta float32)

	// ResetView restores the initial orbit.
	ResetView()

	// Scene returns the scene the model is inserted into.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// Registry returns the model registry.
	//
	// Returns:
	//   - model.Registry: the registry
	Registry() model.Registry

	// Viewport returns the viewport.
	//
	// Returns:
	//   - viewport.Viewport: the viewport
	Viewport() viewport.Viewport

	// Controller returns the interaction controller.
	//
	// Returns:
	//   - camera.CameraController: the controller
	Controller() camera.CameraController

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderCallback registers a function called after each rendered frame.
	//
	// Parameters:
	//   - callback: function receiving the frame delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// Close stops the loader (when the engine created it) and releases the renderer.
	Close()
}

var _ Engine = &engine{}

// NewEngine creates the viewer context. Without WithRenderer it draws through a headless
// renderer; without WithScene it creates a scene lit by a white ambient light (1.5) and a
// white directional light (2) at (5,5,5).
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: an error if the default renderer could not be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		mu:               &sync.Mutex{},
		logger:           zap.NewNop(),
		registry:         model.NewRegistry(),
		tickRate:         time.Second / 60,
		postLoadScale:    mgl32.Vec3{3, 3, 3},
		postLoadPosition: mgl32.Vec3{0, -0.5, 0},
		quitChannel:      make(chan struct{}),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(e.logger)
	}

	if e.scene == nil {
		e.scene = scene.NewScene(scene.WithLights(
			light.NewAmbient(mgl32.Vec3{1, 1, 1}, 1.5),
			light.NewDirectional(mgl32.Vec3{1, 1, 1}, 2, mgl32.Vec3{5, 5, 5}),
		))
	}

	if e.loader == nil {
		e.loader = loader.NewLoader(loader.BackendTypeGLTF, loader.WithLogger(e.logger))
		e.ownsLoader = true
	}

	if e.renderer == nil {
		r, err := renderer.NewRenderer(renderer.BackendTypeHeadless, renderer.WithLogger(e.logger))
		if err != nil {
			return nil, fmt.Errorf("create renderer: %w", err)
		}
		e.renderer = r
	}

	viewportOptions := []viewport.ViewportBuilderOption{viewport.WithLogger(e.logger)}
	if e.camera != nil {
		viewportOptions = append(viewportOptions, viewport.WithCamera(e.camera))
	}
	e.viewport = viewport.NewViewport(e.renderer, viewportOptions...)

	if ctrl := e.Controller(); ctrl != nil {
		e.home = camera.NewOrbitController(
			camera.WithTarget(ctrl.Target()),
			camera.WithRadius(ctrl.Radius()),
			camera.WithAzimuth(ctrl.Azimuth()),
			camera.WithElevation(ctrl.Elevation()),
		)
	}

	if e.host != nil {
		e.host.SetResizeCallback(e.Resize)
		e.host.SetScrollCallback(e.HandleScroll)
		e.host.SetKeyDownCallback(e.HandleKey)
		e.host.SetDragCallback(e.HandleDrag)
		e.viewport.Resize(e.host.Width(), e.host.Height())
	}

	return e, nil
}

func (e *engine) Load(url string) loader.Result {
	res := e.loader.Load(url)

	e.mu.Lock()
	if e.pending != nil {
		e.logger.Debug("superseding pending load", zap.String("url", e.pending.URL()))
	}
	e.url = url
	e.pending = res
	e.last = res
	e.mu.Unlock()

	e.logger.Info("loading model", zap.String("url", url), zap.String("request_id", res.ID()))
	return res
}

func (e *engine) Reload() error {
	e.mu.Lock()
	url := e.url
	e.mu.Unlock()
	if url == "" {
		return ErrNoModel
	}

	if old := e.registry.Clear(); old != nil {
		e.scene.Remove(old)
	}
	e.Load(url)
	return nil
}

func (e *engine) ChangeColor(value any) {
	root, ok := e.registry.Get()
	if !ok {
		e.logger.Warn("model not loaded yet")
		return
	}

	c, err := common.ParseColor(value)
	if err != nil {
		e.logger.Warn("ignoring colour change", zap.Any("value", value), zap.Error(err))
		return
	}

	changed := 0
	root.Traverse(func(n scene.Node) {
		mesh := n.Mesh()
		if mesh == nil || mesh.Material == nil {
			return
		}
		mesh.Material.SetRGB(c)
		changed++
	})
	e.logger.Debug("colour changed", zap.String("color", c.Hex()), zap.Int("meshes", changed))
}

func (e *engine) Status() Status {
	_, loaded := e.registry.Get()

	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{Loaded: loaded, State: "none", Frames: e.frames}
	if e.last != nil {
		st.State = e.last.State().String()
		st.URL = e.last.URL()
		if err := e.last.Err(); err != nil {
			st.Error = err.Error()
		}
	}
	return st
}

func (e *engine) RenderFrame() error {
	e.mu.Lock()
	now := time.Now()
	var dt float32
	if !e.prev.IsZero() {
		dt = float32(now.Sub(e.prev).Seconds())
	}
	e.prev = now
	e.mu.Unlock()

	e.applyPending()

	if ctrl := e.Controller(); ctrl != nil {
		ctrl.Update(dt)
	}

	if err := e.viewport.Render(e.scene); err != nil {
		return err
	}

	e.mu.Lock()
	e.frames++
	callback := e.renderCallback
	profiling := e.profilingEnabled
	e.mu.Unlock()

	if profiling {
		e.profiler.Tick()
	}
	if callback != nil {
		callback(dt)
	}
	return nil
}

// applyPending inserts a completed load into the scene exactly once.
func (e *engine) applyPending() {
	e.mu.Lock()
	res := e.pending
	if res == nil || res.State() == loader.StatePending {
		e.mu.Unlock()
		return
	}
	e.pending = nil
	scale, position := e.postLoadScale, e.postLoadPosition
	e.mu.Unlock()

	if err := res.Err(); err != nil {
		e.logger.Error("model load failed", zap.String("url", res.URL()), zap.Error(err))
		return
	}

	node := res.Node()
	node.SetScale(scale)
	node.SetPosition(position)

	if old, ok := e.registry.Get(); ok {
		e.scene.Remove(old)
	}
	e.scene.Add(node)
	e.registry.Set(node)

	meshes := 0
	node.Traverse(func(n scene.Node) {
		if n.IsMesh() {
			meshes++
			e.logger.Debug("mesh", zap.String("name", n.Name()))
		}
	})
	e.logger.Info("model loaded", zap.String("url", res.URL()), zap.Int("meshes", meshes))
}

func (e *engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-e.quitChannel:
			return nil
		default:
		}

		if e.host != nil && !e.host.PollEvents() {
			return nil
		}

		start := time.Now()
		if err := e.safeFrame(); err != nil {
			if errors.Is(err, renderer.ErrRendererClosed) {
				return err
			}
			e.logger.Warn("frame failed", zap.Error(err))
		}

		e.mu.Lock()
		done := e.frameLimit > 0 && e.frames >= e.frameLimit
		e.mu.Unlock()
		if done {
			return nil
		}

		if e.host == nil {
			select {
			case <-ctx.Done():
				return nil
			case <-e.quitChannel:
				return nil
			case <-ticker.C:
			}
		} else if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// safeFrame runs one frame, converting a panic into an error.
func (e *engine) safeFrame() (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("render frame recovered from panic", zap.Any("panic", r))
			err = fmt.Errorf("render frame panic: %v", r)
		}
	}()
	return e.RenderFrame()
}

// Quit signals Run to return. Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
		if e.host != nil {
			e.host.RequestClose()
		}
	})
}

func (e *engine) Resize(width, height int) {
	e.viewport.Resize(width, height)
}

func (e *engine) HandleKey(keyCode uint32) {
	switch code := int(keyCode); code {
	case common.KeyEsc:
		e.Quit()
	case common.KeyR:
		e.ResetView()
	default:
		if name, ok := common.PaletteKeys[code]; ok {
			e.ChangeColor(name)
		}
	}
}

func (e *engine) HandleDrag(button common.MouseButton, dx, dy float32) {
	ctrl := e.Controller()
	if ctrl == nil {
		return
	}
	s := ctrl.MouseSensitivity()
	switch button {
	case common.MouseButtonLeft:
		ctrl.Rotate(-dx*s, dy*s)
	case common.MouseButtonRight:
		scale := s * ctrl.Radius()
		ctrl.Pan(-dx*scale, dy*scale)
	case common.MouseButtonMiddle:
		ctrl.Dolly(-dy * s * 10)
	}
}

func (e *engine) HandleScroll(delta float32) {
	if ctrl := e.Controller(); ctrl != nil {
		ctrl.Dolly(delta)
	}
}

func (e *engine) ResetView() {
	ctrl := e.Controller()
	if ctrl == nil || e.home == nil {
		return
	}
	ctrl.SetTarget(e.home.Target())
	ctrl.SetRadius(e.home.Radius())
	ctrl.SetAzimuth(e.home.Azimuth())
	ctrl.SetElevation(e.home.Elevation())
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Registry() model.Registry {
	return e.registry
}

func (e *engine) Viewport() viewport.Viewport {
	return e.viewport
}

func (e *engine) Controller() camera.CameraController {
	return e.viewport.Camera().Controller()
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderCallback = callback
}

func (e *engine) Close() {
	e.Quit()
	if e.ownsLoader {
		e.loader.Close()
	}
	e.renderer.Close()
}
