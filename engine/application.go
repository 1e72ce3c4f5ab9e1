package engine

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/volren/engine/config"
	"github.com/spaghettifunk/volren/engine/core"
	"github.com/spaghettifunk/volren/engine/debug"
	"github.com/spaghettifunk/volren/engine/platform"
	"github.com/spaghettifunk/volren/engine/renderer"
	"github.com/spaghettifunk/volren/engine/renderer/software"
	"github.com/spaghettifunk/volren/engine/renderer/vulkan"
	"github.com/spaghettifunk/volren/engine/volume"
)

// Application wires the platform window, renderer, camera controller, config
// watcher and debug server together and drives the frame loop.
type Application struct {
	cfg        *config.Config
	configPath string
	headless   bool

	platform   *platform.Platform
	renderer   *renderer.Renderer
	swBackend  *software.Renderer
	controller *renderer.CameraController
	watcher    *config.Watcher
	debug      *debug.Server

	clock    *core.Clock
	lastTime float64

	// reloaded configs are queued here and applied on the render thread
	// between frames
	reloads chan *config.Config

	isRunning   bool
	isSuspended bool

	shutdownOnce sync.Once
}

// New builds an application from a parsed configuration. configPath may be
// empty, in which case hot reload is disabled. A headless application renders
// on the CPU and streams frames to the debug server instead of a window.
func New(cfg *config.Config, configPath string, headless bool) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("application requires a configuration")
	}
	return &Application{
		cfg:        cfg,
		configPath: configPath,
		headless:   headless,
		clock:      core.NewClock(),
		reloads:    make(chan *config.Config, 1),
		isRunning:  true,
	}, nil
}

func (a *Application) Initialize() error {
	if err := core.InputInitialize(); err != nil {
		return err
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	dataset, err := volume.LoadDat(a.cfg.VolumePath)
	if err != nil {
		return err
	}
	lut, err := volume.BuildLUT(a.cfg.ControlPoints(), volume.DefaultLUTSize)
	if err != nil {
		return err
	}

	var backend renderer.Backend
	if a.headless {
		a.swBackend = software.New(a.cfg.SampleCount)
		backend = a.swBackend
	} else {
		p, err := platform.New()
		if err != nil {
			return err
		}
		if err := p.Startup(a.cfg.Window.Title, a.cfg.Window.Width, a.cfg.Window.Height); err != nil {
			return err
		}
		a.platform = p
		backend = vulkan.New(p, a.cfg.SampleCount)
	}

	a.renderer = renderer.New(backend)
	if err := a.renderer.Initialize(a.cfg.Window.Title, a.cfg.Window.Width, a.cfg.Window.Height, dataset, lut); err != nil {
		return err
	}
	a.renderer.SetShading(a.cfg.Shading)
	a.controller = renderer.NewCameraController(1.5)

	if a.platform != nil {
		a.platform.OnResize = a.onResized
	}

	if a.cfg.DebugAddress != "" {
		a.debug = debug.NewServer(a.cfg.DebugAddress)
		a.debug.Start()
	}

	if a.configPath != "" {
		w, err := config.NewWatcher(a.configPath, a.onConfigReload)
		if err != nil {
			core.LogWarn("config watcher disabled: %v", err)
		} else {
			a.watcher = w
		}
	}
	return nil
}

func (a *Application) Run() error {
	a.clock.Start()
	a.clock.Update()
	a.lastTime = a.clock.Elapsed()

	for a.isRunning {
		if a.platform != nil {
			a.platform.PumpMessages()
			if a.platform.ShouldClose() {
				a.isRunning = false
				break
			}
		}
		if core.InputIsKeyDown(core.KEY_ESCAPE) {
			a.isRunning = false
			break
		}

		if a.isSuspended {
			continue
		}

		a.clock.Update()
		currentTime := a.clock.Elapsed()
		delta := currentTime - a.lastTime

		select {
		case cfg := <-a.reloads:
			a.applyReload(cfg)
		default:
		}

		a.controller.Update(a.renderer.Camera, delta)

		if err := a.renderer.DrawFrame(); err != nil {
			if !core.IsTransient(err) {
				core.LogError("frame failed: %v", err)
				return err
			}
			core.LogDebug("frame skipped: %v", err)
		} else if a.debug != nil && a.swBackend != nil {
			a.debug.Publish(a.swBackend.Frame().ToRGBA())
		}

		core.MetricsUpdate(delta)

		// input state rolls over last, after everything for this frame
		// had a chance to read it
		core.InputUpdate(delta)
		a.lastTime = currentTime
	}
	return nil
}

// Shutdown tears the application down in reverse initialization order. Safe
// to call more than once; later calls are no-ops.
func (a *Application) Shutdown() error {
	var err error
	a.shutdownOnce.Do(func() { err = a.shutdown() })
	return err
}

func (a *Application) shutdown() error {
	a.isRunning = false

	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			core.LogWarn("config watcher close: %v", err)
		}
	}
	if a.debug != nil {
		if err := a.debug.Close(); err != nil {
			core.LogWarn("debug server close: %v", err)
		}
	}
	if a.renderer != nil {
		if err := a.renderer.Shutdown(); err != nil {
			return err
		}
	}
	if err := core.InputShutdown(); err != nil {
		return err
	}
	if a.platform != nil {
		return a.platform.Shutdown()
	}
	return nil
}

func (a *Application) onResized(width, height uint32) {
	if width == 0 || height == 0 {
		core.LogInfo("window minimized, suspending rendering")
		a.isSuspended = true
		return
	}
	if a.isSuspended {
		core.LogInfo("window restored, resuming rendering")
		a.isSuspended = false
	}
	a.renderer.OnResize(width, height)
}

// onConfigReload runs on the watcher goroutine; it only queues the config so
// the render thread applies it between frames.
func (a *Application) onConfigReload(cfg *config.Config) {
	select {
	case a.reloads <- cfg:
	default:
		// a reload is already pending, replace it
		select {
		case <-a.reloads:
		default:
		}
		a.reloads <- cfg
	}
}

// applyReload applies the hot-reloadable settings: shading parameters and the
// transfer function. Window size, sample count and the volume path need a
// restart.
func (a *Application) applyReload(cfg *config.Config) {
	a.renderer.SetShading(cfg.Shading)

	lut, err := volume.BuildLUT(cfg.ControlPoints(), volume.DefaultLUTSize)
	if err != nil {
		core.LogWarn("transfer function rejected: %v", err)
		return
	}
	if err := a.renderer.SetTransferFunction(lut); err != nil {
		core.LogWarn("transfer function upload failed: %v", err)
	}
}
