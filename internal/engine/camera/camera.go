// Package camera provides the orbit camera that circles the reliquary.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/reliquary/pkg/math"
)

// Default camera tuning.
const (
	DefaultDistance         = 5.0
	DefaultMinDistance      = 2.0
	DefaultMaxDistance      = 8.0
	DefaultSensitivity      = 100.0
	DefaultTouchSensitivity = 200.0
	DefaultLookOffset       = 0.45
	DefaultHeightOffset     = 3.1
)

// Controller orbits the camera around the vertical axis.
// The light is placed at the eye, so orbiting also moves the light.
type Controller struct {
	// Distance from the axis, always within [MinDistance, MaxDistance].
	Distance    float32
	MinDistance float32
	MaxDistance float32

	// Accumulated pointer deltas, in radians. Unbounded.
	Yaw   float32
	Pitch float32

	// Speed scales pointer deltas before the sensitivity divisors.
	Speed            float32
	Sensitivity      float32 // divisor for mouse motion
	TouchSensitivity float32 // divisor for horizontal touch motion

	// LookOffset raises the look target above the tracked height.
	LookOffset float32
	// HeightOffset raises the eye above the distance.
	HeightOffset float32
}

// NewController creates a camera with default settings.
func NewController() *Controller {
	return &Controller{
		Distance:         DefaultDistance,
		MinDistance:      DefaultMinDistance,
		MaxDistance:      DefaultMaxDistance,
		Speed:            1,
		Sensitivity:      DefaultSensitivity,
		TouchSensitivity: DefaultTouchSensitivity,
		LookOffset:       DefaultLookOffset,
		HeightOffset:     DefaultHeightOffset,
	}
}

// AddPointerDelta accumulates a mouse drag. Pitch is tracked but does not
// move the eye.
func (c *Controller) AddPointerDelta(dx, dy float32) {
	c.Yaw += -dx * c.Speed / c.Sensitivity
	c.Pitch += -dy * c.Speed / c.Sensitivity
}

// AddTouchDelta accumulates a horizontal touch drag into the yaw.
func (c *Controller) AddTouchDelta(dx float32) {
	c.Yaw += -dx / c.TouchSensitivity
}

// AddZoom changes the distance and clamps it immediately.
func (c *Controller) AddZoom(delta float32) {
	c.Distance += delta
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

// Eye returns the camera position: a circle of radius Distance at azimuth
// Yaw, lifted by Distance+HeightOffset.
func (c *Controller) Eye() math.Vec3 {
	return math.Vec3{
		X: math32.Sin(c.Yaw) * c.Distance,
		Y: c.Distance + c.HeightOffset,
		Z: math32.Cos(c.Yaw) * c.Distance,
	}
}

// Target returns the look-at point above the given height.
func (c *Controller) Target(height float32) math.Vec3 {
	return math.Vec3{Y: height + c.LookOffset}
}

// ViewMatrix looks from the eye toward the point above height.
func (c *Controller) ViewMatrix(height float32) math.Mat4 {
	return math.LookAt(c.Eye(), c.Target(height), math.Vec3{Y: 1})
}

// LightPosition returns the eye as a positional light (w=1).
func (c *Controller) LightPosition() math.Vec4 {
	return c.Eye().Vec4(1)
}
