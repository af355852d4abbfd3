// Package viewer hosts the reliquary scene: it owns the window, the graphics
// backend and the input state, and runs the frame loop.
package viewer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/reliquary/internal/assets"
	"github.com/Faultbox/reliquary/internal/config"
	"github.com/Faultbox/reliquary/internal/engine/backend"
	"github.com/Faultbox/reliquary/internal/engine/debug"
	"github.com/Faultbox/reliquary/internal/engine/input"
	"github.com/Faultbox/reliquary/internal/engine/scene"
	"github.com/Faultbox/reliquary/internal/engine/window"
	"github.com/Faultbox/reliquary/internal/logger"
)

// Title is the window title.
const Title = "Reliquary"

// Viewer is the main application instance.
type Viewer struct {
	cfg     *config.Config
	log     *zap.Logger
	running bool

	window      *window.Window
	backend     *backend.GL
	assets      *assets.Manager
	scene       *scene.Scene
	input       *input.Input
	state       input.State
	screenshots *debug.ScreenshotCapture
}

// New opens the window and builds the scene. Asset loading honours ctx.
func New(ctx context.Context, cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:         cfg,
		log:         logger.Named("viewer"),
		state:       initialState(cfg.Scene),
		screenshots: debug.NewScreenshotCapture(cfg.Debug.ScreenshotDir, "reliquary"),
	}

	v.log.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.String("assets", cfg.Scene.AssetRoot),
	)

	var err error
	v.window, err = window.New(window.Config{
		Title:      Title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		Samples:    cfg.Graphics.Samples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The backend must be created after the window, since it needs the GL context.
	v.backend, err = backend.NewGL()
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to create backend: %w", err), v.Close())
	}

	v.assets = assets.NewManager()
	root, err := filepath.Abs(cfg.Scene.AssetRoot)
	if err == nil {
		err = v.assets.AddDir(root)
	}
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("asset root: %w", err), v.Close())
	}

	width, height := v.window.DrawableSize()
	v.scene, err = scene.Init(ctx, v.backend, v.assets, sceneSources(cfg), sceneOptions(cfg, width, height))
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to build scene: %w", err), v.Close())
	}

	v.input = input.New(width, height)

	v.log.Info("viewer initialized successfully")
	return v, nil
}

// Run drives the frame loop until the window closes or ESC is pressed.
func (v *Viewer) Run() error {
	v.running = true

	budget := frameBudget(v.cfg.Graphics)
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting frame loop", zap.Duration("frame_budget", budget))

	for v.running {
		frameStart := time.Now()

		if v.input.Update(&v.state) {
			v.running = false
			break
		}
		for _, event := range v.input.Events() {
			if event.Type == input.EventWindowResize {
				w, h := v.window.DrawableSize()
				v.scene.Resize(int32(w), int32(h))
			}
		}

		v.scene.OnFrame(&v.state)

		if v.state.Screenshot {
			v.state.Screenshot = false
			v.capture()
		}

		v.window.SwapBuffers()

		frameCount++
		if elapsed := time.Since(fpsTimer); elapsed >= time.Second {
			if v.cfg.Debug.ShowFPS {
				fps := float64(frameCount) / elapsed.Seconds()
				stats := v.scene.Stats()
				v.window.SetTitle(fmt.Sprintf("%s - %.0f FPS", Title, fps))
				v.log.Debug("fps",
					zap.Float64("fps", fps),
					zap.Uint64("frame", stats.Frame),
					zap.Int("draws", stats.Draws()),
				)
			}
			frameCount = 0
			fpsTimer = time.Now()
		}

		if budget > 0 {
			if rest := budget - time.Since(frameStart); rest > 0 {
				time.Sleep(rest)
			}
		}
	}

	return nil
}

// capture saves the back buffer of the frame just drawn.
func (v *Viewer) capture() {
	w, h := v.window.DrawableSize()
	pixels := v.backend.ReadPixels(int32(w), int32(h))
	if _, err := v.screenshots.CaptureFromPixels(pixels, w, h); err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
	}
}

// Close releases the backend, assets and window. It is safe to call on a
// partially built viewer.
func (v *Viewer) Close() error {
	v.log.Info("closing viewer")

	var err error
	if v.backend != nil {
		v.backend.Destroy()
		v.backend = nil
	}
	if v.assets != nil {
		hits, misses := v.assets.CacheStats()
		v.log.Debug("asset cache", zap.Int("hits", hits), zap.Int("misses", misses))
		v.assets.Close()
		v.assets = nil
	}
	if v.window != nil {
		err = multierr.Append(err, v.window.Close())
		v.window = nil
	}
	return err
}
