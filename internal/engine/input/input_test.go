package input

import (
	"testing"
	"time"

	"github.com/veandco/go-sdl2/sdl"
)

func TestTranslate(t *testing.T) {
	start := time.Unix(1000, 0)
	in := &Input{start: start}

	tests := []struct {
		name  string
		event sdl.Event
		want  Event
		ok    bool
	}{
		{
			name:  "left press",
			event: &sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Timestamp: 250, Button: sdl.BUTTON_LEFT, X: 10, Y: 20},
			want:  Event{Type: EventPointerDown, X: 10, Y: 20, Button: ButtonPrimary, At: start.Add(250 * time.Millisecond)},
			ok:    true,
		},
		{
			name:  "right release",
			event: &sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, Timestamp: 300, Button: sdl.BUTTON_RIGHT, X: 1, Y: 2},
			want:  Event{Type: EventPointerUp, X: 1, Y: 2, Button: ButtonSecondary, At: start.Add(300 * time.Millisecond)},
			ok:    true,
		},
		{
			name:  "flipped wheel",
			event: &sdl.MouseWheelEvent{Y: 2, Direction: sdl.MOUSEWHEEL_FLIPPED},
			want:  Event{Type: EventWheel, Wheel: -2, At: start},
			ok:    true,
		},
		{
			name:  "resize",
			event: &sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESIZED, Data1: 800, Data2: 600},
			want:  Event{Type: EventWindowResize, Width: 800, Height: 600},
			ok:    true,
		},
		{
			name:  "key repeat ignored",
			event: &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1},
			ok:    false,
		},
		{
			name:  "quit",
			event: &sdl.QuitEvent{},
			want:  Event{Type: EventQuit},
			ok:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := in.translate(tt.event)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
