package viewer

import (
	"math/rand"
	"time"

	"github.com/Faultbox/reliquary/internal/config"
	"github.com/Faultbox/reliquary/internal/engine/camera"
	"github.com/Faultbox/reliquary/internal/engine/input"
	"github.com/Faultbox/reliquary/internal/engine/scene"
)

// sceneSources maps configured asset paths onto the scene's sources.
func sceneSources(cfg *config.Config) scene.Sources {
	objects := func(p config.ObjectPaths) scene.ObjectSources {
		return scene.ObjectSources{Pedestal: p.Pedestal, Skull: p.Skull, Diamond: p.Diamond}
	}
	sky := cfg.Scene.Skybox
	return scene.Sources{
		Meshes:   objects(cfg.Scene.Meshes),
		Textures: objects(cfg.Scene.Textures),
		Skybox: scene.SkyboxSources{
			Left: sky.Left, Right: sky.Right,
			Down: sky.Down, Up: sky.Up,
			Front: sky.Front, Back: sky.Back,
		},
	}
}

// newCamera builds the orbit camera from config.
func newCamera(cfg config.CameraConfig) *camera.Controller {
	c := camera.NewController()
	c.MinDistance = cfg.MinDistance
	c.MaxDistance = cfg.MaxDistance
	c.Sensitivity = cfg.Sensitivity
	c.TouchSensitivity = cfg.TouchSensitivity
	c.LookOffset = cfg.LookOffset
	c.HeightOffset = cfg.HeightOffset
	c.Distance = c.MinDistance
	c.AddZoom(cfg.Distance - c.MinDistance)
	return c
}

// sceneOptions derives scene options for a drawable of the given size.
func sceneOptions(cfg *config.Config, width, height int) scene.Options {
	seed := cfg.Scene.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return scene.Options{
		Width:    int32(width),
		Height:   int32(height),
		FOV:      cfg.Graphics.FOV,
		Near:     cfg.Graphics.Near,
		Far:      cfg.Graphics.Far,
		GemCount: cfg.Scene.GemCount,
		Rand:     rand.New(rand.NewSource(seed)),
		Camera:   newCamera(cfg.Camera),
	}
}

// initialState returns the interaction state the viewer starts with.
func initialState(cfg config.SceneConfig) input.State {
	return input.State{Animate: cfg.Animate, Reflect: cfg.Reflect, Toon: cfg.Toon}
}

// frameBudget is the minimum frame time for an FPS cap. Zero means no cap,
// and vsync already paces the loop.
func frameBudget(g config.GraphicsConfig) time.Duration {
	if g.VSync || g.FPSLimit <= 0 {
		return 0
	}
	return time.Second / time.Duration(g.FPSLimit)
}
