// Package input turns SDL2 events into viewer input events.
package input

import (
	"time"

	"github.com/veandco/go-sdl2/sdl"
)

// EventType enumerates the events the viewer reacts to.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventPointerDown
	EventPointerMove
	EventPointerUp
	EventWheel
)

// Button is a pointer button. Left is primary; right and middle are
// secondary (pan).
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// Event is one processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	X, Y   float32
	Button Button
	Wheel  float32 // positive zooms in
	At     time.Time
}

// Input collects events once per frame.
type Input struct {
	events []Event
	start  time.Time // SDL timestamps count milliseconds from here
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
		start:  time.Now().Add(-time.Duration(sdl.GetTicks()) * time.Millisecond),
	}
}

// Update polls SDL events. It returns true when the window should close.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		ev, ok := i.translate(event)
		if !ok {
			continue
		}
		i.events = append(i.events, ev)
		if ev.Type == EventQuit {
			quit = true
		}
	}
	return quit
}

func (i *Input) at(ms uint32) time.Time {
	return i.start.Add(time.Duration(ms) * time.Millisecond)
}

func button(b uint8) Button {
	if b == sdl.BUTTON_LEFT {
		return ButtonPrimary
	}
	return ButtonSecondary
}

func (i *Input) translate(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			return Event{Type: EventWindowResize, Width: int(e.Data1), Height: int(e.Data2)}, true
		}

	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
			return Event{Type: EventKeyDown, Key: e.Keysym.Scancode, At: i.at(e.Timestamp)}, true
		}

	case *sdl.MouseMotionEvent:
		return Event{Type: EventPointerMove, X: float32(e.X), Y: float32(e.Y), At: i.at(e.Timestamp)}, true

	case *sdl.MouseButtonEvent:
		typ := EventPointerDown
		if e.Type == sdl.MOUSEBUTTONUP {
			typ = EventPointerUp
		}
		return Event{
			Type:   typ,
			X:      float32(e.X),
			Y:      float32(e.Y),
			Button: button(e.Button),
			At:     i.at(e.Timestamp),
		}, true

	case *sdl.MouseWheelEvent:
		y := float32(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			y = -y
		}
		return Event{Type: EventWheel, Wheel: y, At: i.at(e.Timestamp)}, true
	}
	return Event{}, false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}
