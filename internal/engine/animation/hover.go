// Package animation derives the per-frame transforms of the animated scene
// objects: the hovering skull and the ring of decorative gems.
package animation

import (
	"github.com/Faultbox/reliquary/pkg/math"
)

// HoverState is the direction the hovering object is moving in.
type HoverState int

// Hover states.
const (
	Rising HoverState = iota
	Falling
)

// String returns the state name.
func (s HoverState) String() string {
	if s == Rising {
		return "rising"
	}
	return "falling"
}

// Hover tuning, in world units and radians per tick.
const (
	HoverLift      = 0.35
	HoverAmplitude = 0.60
	RiseStep       = 0.002
	FallStep       = 0.0022
	TiltStep       = 0.0008
)

// Hover is the skull hover state machine. It only moves while enabled; a
// disabled Step holds every field.
type Hover struct {
	State      HoverState
	Height     float32
	BaseHeight float32
	Pitch      float32

	// FirstCycle is true until the first Rising to Falling transition.
	// The tilt is only applied while it is set.
	FirstCycle bool
}

// NewHover starts a hover at rest height. BaseHeight is fixed here and never
// changes afterwards.
func NewHover(restHeight float32) *Hover {
	return &Hover{
		State:      Falling,
		Height:     restHeight,
		BaseHeight: restHeight + HoverLift,
		FirstCycle: true,
	}
}

// Top is the height at which a rising hover turns around.
func (h *Hover) Top() float32 {
	return h.BaseHeight + HoverAmplitude
}

// Step advances the state machine by one tick.
func (h *Hover) Step(enabled bool) {
	if !enabled {
		return
	}

	switch h.State {
	case Rising:
		h.Height += RiseStep
		if h.FirstCycle {
			h.Pitch += TiltStep
		}
		if h.Height >= h.Top() {
			h.State = Falling
			h.FirstCycle = false
		}
	case Falling:
		h.Height -= FallStep
		if h.Height <= h.BaseHeight {
			h.State = Rising
		}
	}
}

// World returns the world matrix at the current height and tilt.
func (h *Hover) World(x, z float32) math.Mat4 {
	return math.Translate(x, h.Height, z).Mul(math.RotateX(h.Pitch))
}
