package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

// Validate reports every problem in the config at once.
func (c *Config) Validate() error {
	var err error

	g := c.Graphics
	if g.Width <= 0 || g.Height <= 0 {
		err = multierr.Append(err, invalid("graphics size %dx%d must be positive", g.Width, g.Height))
	}
	if g.FOV <= 0 || g.FOV >= 180 {
		err = multierr.Append(err, invalid("graphics.fov %v must be in (0, 180)", g.FOV))
	}
	if g.Near <= 0 || g.Far <= g.Near {
		err = multierr.Append(err, invalid("graphics near/far %v/%v must satisfy 0 < near < far", g.Near, g.Far))
	}
	if g.FPSLimit < 0 || g.Samples < 0 {
		err = multierr.Append(err, invalid("graphics fps_limit and samples must not be negative"))
	}

	cam := c.Camera
	if cam.MinDistance <= 0 || cam.MaxDistance < cam.MinDistance {
		err = multierr.Append(err, invalid("camera distance range [%v, %v] is empty", cam.MinDistance, cam.MaxDistance))
	} else if cam.Distance < cam.MinDistance || cam.Distance > cam.MaxDistance {
		err = multierr.Append(err, invalid("camera.distance %v outside [%v, %v]", cam.Distance, cam.MinDistance, cam.MaxDistance))
	}
	if cam.Sensitivity <= 0 || cam.TouchSensitivity <= 0 {
		err = multierr.Append(err, invalid("camera sensitivities must be positive"))
	}

	s := c.Scene
	if s.GemCount < 0 {
		err = multierr.Append(err, invalid("scene.gem_count %d must not be negative", s.GemCount))
	}
	paths := []struct{ key, value string }{
		{"meshes.pedestal", s.Meshes.Pedestal},
		{"meshes.skull", s.Meshes.Skull},
		{"meshes.diamond", s.Meshes.Diamond},
		{"textures.pedestal", s.Textures.Pedestal},
		{"textures.skull", s.Textures.Skull},
		{"textures.diamond", s.Textures.Diamond},
		{"skybox.left", s.Skybox.Left},
		{"skybox.right", s.Skybox.Right},
		{"skybox.down", s.Skybox.Down},
		{"skybox.up", s.Skybox.Up},
		{"skybox.front", s.Skybox.Front},
		{"skybox.back", s.Skybox.Back},
	}
	for _, p := range paths {
		if p.value == "" {
			err = multierr.Append(err, invalid("scene.%s is empty", p.key))
		}
	}

	if c.Logging.Level != "" {
		if _, lerr := zapcore.ParseLevel(c.Logging.Level); lerr != nil {
			err = multierr.Append(err, invalid("logging.level %q", c.Logging.Level))
		}
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		err = multierr.Append(err, invalid("logging.format %q must be console or json", c.Logging.Format))
	}

	return err
}
