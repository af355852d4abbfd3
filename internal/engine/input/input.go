// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Event types for viewer use
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
	EventFingerDown
	EventFingerMotion
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
	Button uint8

	// Relative motion: pixels for mouse and touch, notches for the wheel.
	DX, DY float32

	// Fingers is the number of fingers down on the touch device.
	Fingers int
}

// Scaling from raw input units to camera units.
const (
	WheelZoomStep   = 1.0   // distance per wheel notch
	TouchZoomDivide = 100.0 // pixels of vertical touch drag per distance unit
)

// Input handles all input processing.
type Input struct {
	events []Event

	// Window size in pixels, for converting normalized touch motion.
	width, height int
	dragging      bool
}

// New creates a new input handler.
func New(width, height int) *Input {
	return &Input{
		events: make([]Event, 0, 16),
		width:  width,
		height: height,
	}
}

// Update polls SDL events, converts them, and applies them to s.
// Returns true if the viewer should quit.
func (i *Input) Update(s *State) bool {
	i.events = i.events[:0] // Clear previous events

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}
			if e.Type == sdl.KEYDOWN {
				i.events = append(i.events, Event{Type: EventKeyDown, Key: e.Keysym.Scancode})
			} else if e.Type == sdl.KEYUP {
				i.events = append(i.events, Event{Type: EventKeyUp, Key: e.Keysym.Scancode})
			}

		case *sdl.MouseMotionEvent:
			i.events = append(i.events, Event{
				Type:   EventMouseMove,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				DX:     float32(e.XRel),
				DY:     float32(e.YRel),
			})

		case *sdl.MouseButtonEvent:
			ev := Event{MouseX: int(e.X), MouseY: int(e.Y), Button: e.Button}
			if e.Type == sdl.MOUSEBUTTONDOWN {
				ev.Type = EventMouseDown
			} else {
				ev.Type = EventMouseUp
			}
			i.events = append(i.events, ev)

		case *sdl.MouseWheelEvent:
			dy := float32(e.Y)
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				dy = -dy
			}
			i.events = append(i.events, Event{Type: EventMouseWheel, DY: dy})

		case *sdl.TouchFingerEvent:
			switch e.Type {
			case sdl.FINGERDOWN:
				i.events = append(i.events, Event{
					Type:    EventFingerDown,
					Fingers: sdl.GetNumTouchFingers(e.TouchID),
				})
			case sdl.FINGERMOTION:
				i.events = append(i.events, Event{
					Type: EventFingerMotion,
					DX:   e.DX * float32(i.width),
					DY:   e.DY * float32(i.height),
				})
			}
		}
	}

	quit := false
	for _, e := range i.events {
		if i.Apply(e, s) {
			quit = true
		}
	}
	return quit
}

// Apply translates one event into s. Returns true for quit requests.
func (i *Input) Apply(e Event, s *State) bool {
	switch e.Type {
	case EventQuit:
		return true

	case EventWindowResize:
		i.width, i.height = e.Width, e.Height

	case EventKeyDown:
		switch e.Key {
		case sdl.SCANCODE_ESCAPE:
			return true
		case sdl.SCANCODE_F12:
			s.Screenshot = true
		}

	case EventKeyUp:
		switch e.Key {
		case sdl.SCANCODE_SPACE:
			s.ToggleAnimation()
		case sdl.SCANCODE_R:
			s.ToggleReflection()
		case sdl.SCANCODE_T:
			s.ToggleToonShading()
		}

	case EventMouseDown:
		i.dragging = true

	case EventMouseUp:
		i.dragging = false

	case EventMouseMove:
		if i.dragging {
			s.PointerDelta(e.DX, e.DY)
		}

	case EventMouseWheel:
		// Wheel up moves the camera closer.
		s.AddZoom(-e.DY * WheelZoomStep)

	case EventFingerDown:
		if e.Fingers == 2 {
			s.ToggleAnimation()
		}

	case EventFingerMotion:
		s.TouchDelta(e.DX)
		s.AddZoom(e.DY / TouchZoomDivide)
	}
	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Dragging reports whether a mouse button is held.
func (i *Input) Dragging() bool {
	return i.dragging
}
