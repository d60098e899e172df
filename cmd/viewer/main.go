// Command viewer displays a glTF/GLB model with orbit controls and a colour control surface.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/control"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/watcher"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GLFW must be driven from the main thread.
func init() {
	runtime.LockOSThread()
}

type flags struct {
	configPath  string
	model       string
	width       int
	height      int
	color       string
	controlAddr string
	watch       bool
	headless    bool
	frames      uint64
	logLevel    string
	profile     bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "viewer [model.glb]",
		Short: "Interactive glTF/GLB model viewer",
		Long: `viewer - glTF/GLB model viewer

Loads a model, scales it by 3 and lowers it by 0.5, then shows it under an
ambient and a directional light with an orbit camera.

Controls:
  Left drag    - Orbit
  Right drag   - Pan
  Middle drag  - Dolly
  Scroll       - Zoom (distance clamped to [2,10] by default)
  1-9          - Palette colours
  R            - Reset view
  Esc          - Quit

With --control-addr the colour can also be changed over HTTP or WebSocket.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f, args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "Model path or URL (the positional argument wins)")
	cmd.Flags().IntVar(&f.width, "width", 0, "Window width")
	cmd.Flags().IntVar(&f.height, "height", 0, "Window height")
	cmd.Flags().StringVar(&f.color, "color", "", "Colour applied once the model has loaded")
	cmd.Flags().StringVar(&f.controlAddr, "control-addr", "", "Serve the HTTP/WebSocket control surface on this address")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "Reload the model when the file changes")
	cmd.Flags().BoolVar(&f.headless, "headless", false, "Render without a window")
	cmd.Flags().Uint64Var(&f.frames, "frames", 0, "Exit after this many frames (0 runs until closed)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.Flags().BoolVar(&f.profile, "profile", false, "Log a periodic frame report")

	cmd.AddCommand(newInfoCommand())
	return cmd
}

func newInfoCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "info <model.glb>",
		Short: "Display model information",
		Long:  "Decode a model and print its node, mesh, material and texture counts and its bounding box.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

// resolveConfig layers explicitly set flags over the config file.
func resolveConfig(cmd *cobra.Command, f *flags, args []string) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	set := cmd.Flags().Changed
	if set("model") {
		cfg.Model = f.model
	}
	if len(args) == 1 {
		cfg.Model = args[0]
	}
	if set("width") {
		cfg.Window.Width = f.width
	}
	if set("height") {
		cfg.Window.Height = f.height
	}
	if set("color") {
		cfg.Color = f.color
	}
	if set("control-addr") {
		cfg.Control.Enabled = f.controlAddr != ""
		cfg.Control.Addr = f.controlAddr
	}
	if set("watch") {
		cfg.Watch = f.watch
	}
	if set("headless") {
		cfg.Headless = f.headless
	}
	if set("frames") {
		cfg.Frames = f.frames
	}
	if set("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if set("profile") {
		cfg.Profile = f.profile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(parent context.Context, cfg *config.Config) error {
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	options, cleanup, err := engineOptions(cfg, logger)
	if err != nil {
		logger.Error("viewer setup failed", zap.Error(err))
		return err
	}
	defer cleanup()

	eng, err := engine.NewEngine(options...)
	if err != nil {
		logger.Error("engine setup failed", zap.Error(err))
		return err
	}
	defer eng.Close()

	var srv control.Server
	if cfg.Control.Enabled {
		srv = control.NewServer(eng, control.WithLogger(logger), control.WithAddr(cfg.Control.Addr))
	}
	eng.SetRenderCallback(newFrameHook(eng, cfg.Color, srv))

	eng.Load(cfg.Model)

	g, gctx := errgroup.WithContext(ctx)
	if srv != nil {
		g.Go(func() error {
			return srv.ListenAndServe(gctx)
		})
	}
	if cfg.Watch {
		if path, ok := localPath(cfg.Model); !ok {
			logger.Warn("watch ignored for remote model", zap.String("url", cfg.Model))
		} else {
			w := watcher.NewWatcher(path, func(string) {
				if err := eng.Reload(); err != nil {
					logger.Warn("reload failed", zap.Error(err))
				}
			}, watcher.WithLogger(logger))
			g.Go(func() error {
				return w.Run(gctx)
			})
		}
	}

	// The render loop stays on the main goroutine.
	runErr := eng.Run(gctx)
	stop()
	eng.Quit()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("background task failed", zap.Error(err))
		return err
	}
	if runErr != nil {
		logger.Error("render loop failed", zap.Error(runErr))
		return runErr
	}
	logger.Info("viewer stopped", zap.Uint64("frames", eng.Status().Frames))
	return nil
}

// engineOptions builds the scene, camera and presentation from the config.
// The returned cleanup releases the window, if one was opened.
func engineOptions(cfg *config.Config, logger *zap.Logger) ([]engine.EngineBuilderOption, func(), error) {
	ambient, err := common.ParseColor(cfg.Lights.AmbientColor)
	if err != nil {
		return nil, nil, err
	}
	key, err := common.ParseColor(cfg.Lights.DirectionalColor)
	if err != nil {
		return nil, nil, err
	}

	sc := scene.NewScene(scene.WithLights(
		light.NewAmbient(rgb(ambient), cfg.Lights.AmbientIntensity),
		light.NewDirectional(rgb(key), cfg.Lights.DirectionalIntensity, mgl32.Vec3(cfg.Lights.DirectionalPosition)),
	))

	cam := camera.NewCamera(
		camera.WithFov(mgl32.DegToRad(cfg.Camera.Fov)),
		camera.WithAspect(float32(cfg.Window.Width)/float32(cfg.Window.Height)),
		camera.WithNear(cfg.Camera.Near),
		camera.WithFar(cfg.Camera.Far),
		camera.WithController(camera.NewOrbitController(
			camera.WithTarget(mgl32.Vec3(cfg.Camera.Target)),
			camera.WithEye(mgl32.Vec3(cfg.Camera.Eye)),
			camera.WithRadiusBounds(cfg.Camera.MinDistance, cfg.Camera.MaxDistance),
			camera.WithDamping(cfg.Camera.Damping),
			camera.WithSpring(cfg.Camera.DampingFrequency, cfg.Camera.DampingRatio),
		)),
	)

	options := []engine.EngineBuilderOption{
		engine.WithLogger(logger),
		engine.WithScene(sc),
		engine.WithCamera(cam),
		engine.WithProfiling(cfg.Profile),
		engine.WithTickRate(cfg.TickRate),
		engine.WithFrameLimit(cfg.Frames),
		engine.WithPostLoadTransform(mgl32.Vec3(cfg.PostLoad.Scale), mgl32.Vec3(cfg.PostLoad.Position)),
	}

	if cfg.Headless {
		r, err := renderer.NewRenderer(
			renderer.BackendTypeHeadless,
			renderer.WithLogger(logger),
			renderer.WithSize(cfg.Window.Width, cfg.Window.Height),
		)
		if err != nil {
			return nil, nil, err
		}
		return append(options, engine.WithRenderer(r)), func() {}, nil
	}

	win, err := window.NewWindow(
		window.WithTitle(common.Coalesce(cfg.Window.Title, "oxy-viewer")),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithMinSize(cfg.Window.MinWidth, cfg.Window.MinHeight),
		window.WithMaxSize(cfg.Window.MaxWidth, cfg.Window.MaxHeight),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open window: %w", err)
	}

	presentMode := renderer.PresentModeVSync
	if !cfg.Window.VSync {
		presentMode = renderer.PresentModeUncapped
	}
	r, err := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		renderer.WithLogger(logger),
		renderer.WithSurface(win),
		renderer.WithPresentMode(presentMode),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Window.MSAA)),
		renderer.WithForceSoftwareRenderer(cfg.Window.Software),
	)
	if err != nil {
		_ = win.Close()
		return nil, nil, fmt.Errorf("create renderer: %w", err)
	}

	closeWindow := func() {
		if err := win.Close(); err != nil {
			logger.Warn("close window", zap.Error(err))
		}
	}
	return append(options, engine.WithRenderer(r), engine.WithHost(win)), closeWindow, nil
}

// newFrameHook applies the configured colour to each newly loaded model and
// pushes a status update to control clients whenever the load state changes.
func newFrameHook(eng engine.Engine, color string, srv control.Server) func(float32) {
	var (
		colored scene.Node
		last    engine.Status
	)
	return func(float32) {
		if node, ok := eng.Registry().Get(); ok && node != colored {
			colored = node
			if color != "" {
				eng.ChangeColor(color)
			}
		}
		if srv == nil {
			return
		}
		st := eng.Status()
		if st.Loaded != last.Loaded || st.State != last.State || st.URL != last.URL {
			last = st
			srv.Broadcast()
		}
	}
}

func runInfo(cmd *cobra.Command, location string, asJSON bool) error {
	l := loader.NewLoader(loader.BackendTypeGLTF)
	defer l.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	s, err := l.Inspect(ctx, location)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", location, err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	size := s.BoundsMax.Sub(s.BoundsMin)
	fmt.Fprintf(out, "Model:      %s\n", location)
	fmt.Fprintf(out, "Scene:      %s\n", s.Name)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Nodes:      %d\n", s.Nodes)
	fmt.Fprintf(out, "Meshes:     %d\n", s.Meshes)
	fmt.Fprintf(out, "Vertices:   %d\n", s.Vertices)
	fmt.Fprintf(out, "Triangles:  %d\n", s.Triangles)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Bounds:     (%.3f, %.3f, %.3f) to (%.3f, %.3f, %.3f)\n",
		s.BoundsMin[0], s.BoundsMin[1], s.BoundsMin[2], s.BoundsMax[0], s.BoundsMax[1], s.BoundsMax[2])
	fmt.Fprintf(out, "Size:       %.3f x %.3f x %.3f\n", size[0], size[1], size[2])
	if len(s.Materials) > 0 {
		fmt.Fprintf(out, "Materials:  %s\n", strings.Join(s.Materials, ", "))
	}
	for _, t := range s.Textures {
		if t.DecodeError != "" {
			fmt.Fprintf(out, "Texture:    %s/%s %s (undecodable: %s)\n", t.Material, t.Slot, t.MimeType, t.DecodeError)
			continue
		}
		fmt.Fprintf(out, "Texture:    %s/%s %s %dx%d\n", t.Material, t.Slot, t.MimeType, t.Width, t.Height)
	}
	return nil
}

func rgb(c common.Color) mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}

// localPath returns the filesystem path behind a model location, accepting plain
// paths and file:// URLs. It reports false for anything fetched over the network.
func localPath(location string) (string, bool) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return location, true
	}
	if u.Scheme == "file" {
		return filepath.FromSlash(u.Path), true
	}
	return "", false
}
