package input

// State is the interaction state shared between the event pump and the
// frame driver. The host owns it; the pump writes it and the frame reads it,
// both on the render goroutine.
type State struct {
	// Accumulated since the last Consume.
	PointerDX, PointerDY float32 // mouse drag, pixels
	TouchDX              float32 // horizontal touch drag, pixels
	ZoomDelta            float32 // camera distance units

	Animate bool
	Reflect bool
	Toon    bool

	// Screenshot is a one-shot request cleared by the host.
	Screenshot bool
}

// Deltas is the motion drained from a State by Consume.
type Deltas struct {
	PointerDX, PointerDY float32
	TouchDX              float32
	Zoom                 float32
}

// PointerDelta accumulates a mouse drag.
func (s *State) PointerDelta(dx, dy float32) {
	s.PointerDX += dx
	s.PointerDY += dy
}

// TouchDelta accumulates a horizontal touch drag.
func (s *State) TouchDelta(dx float32) {
	s.TouchDX += dx
}

// AddZoom accumulates a zoom change.
func (s *State) AddZoom(delta float32) {
	s.ZoomDelta += delta
}

// ToggleAnimation flips the skull hover on or off.
func (s *State) ToggleAnimation() {
	s.Animate = !s.Animate
}

// ToggleReflection flips skybox reflection on the skull.
func (s *State) ToggleReflection() {
	s.Reflect = !s.Reflect
}

// ToggleToonShading flips the toon shading mode.
func (s *State) ToggleToonShading() {
	s.Toon = !s.Toon
}

// Consume returns the accumulated motion and zeroes it. Toggles are kept.
func (s *State) Consume() Deltas {
	d := Deltas{
		PointerDX: s.PointerDX,
		PointerDY: s.PointerDY,
		TouchDX:   s.TouchDX,
		Zoom:      s.ZoomDelta,
	}
	s.PointerDX, s.PointerDY, s.TouchDX, s.ZoomDelta = 0, 0, 0, 0
	return d
}
