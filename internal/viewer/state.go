// Package viewer implements the interactive product model viewer: a
// single-threaded state machine driven by completion signals, pointer
// events and explicit frame deltas, plus an asynchronous loading session.
package viewer

import (
	"time"

	"github.com/Faultbox/valvesite/internal/config"
)

// State is the viewer's interaction state.
type State int

const (
	// ShowingFallback is the initial state. The fallback image is shown
	// while the model loads, or permanently when the product has no model.
	ShowingFallback State = iota
	// ModelReady means the model is decoded, finished and auto-rotating.
	ModelReady
	// UserDragging means the orbit control is being manipulated.
	UserDragging
	// AnimatingToPoint means a camera fly-to is in progress.
	AnimatingToPoint
	// LoadFailed means the model could not be fetched or decoded. The
	// fallback image stays visible.
	LoadFailed
)

var stateNames = [...]string{
	ShowingFallback:  "showing_fallback",
	ModelReady:       "model_ready",
	UserDragging:     "user_dragging",
	AnimatingToPoint: "animating_to_point",
	LoadFailed:       "load_failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// FallbackVisible reports whether the fallback image is displayed in s.
func (s State) FallbackVisible() bool {
	return s == ShowingFallback || s == LoadFailed
}

// Config holds viewer tuning.
type Config struct {
	Width, Height    float32
	RotationSpeed    float32 // radians per second
	FlyToDuration    time.Duration
	ClickMaxDuration time.Duration
	DragThreshold    float32 // pixels
	MinFlyDistance   float32 // closest a fly-to may place the camera to the hit point
}

// DefaultConfig returns the stock viewer settings.
func DefaultConfig() Config {
	return Config{
		Width:            480,
		Height:           650,
		RotationSpeed:    0.5,
		FlyToDuration:    800 * time.Millisecond,
		ClickMaxDuration: 50 * time.Millisecond,
		DragThreshold:    4,
		MinFlyDistance:   1,
	}
}

// ConfigFrom maps the viewer section of the application config.
func ConfigFrom(c config.ViewerConfig) Config {
	cfg := DefaultConfig()
	if c.Width > 0 && c.Height > 0 {
		cfg.Width, cfg.Height = float32(c.Width), float32(c.Height)
	}
	if c.RotationSpeed != 0 {
		cfg.RotationSpeed = c.RotationSpeed
	}
	if c.FlyToDuration > 0 {
		cfg.FlyToDuration = c.FlyToDuration
	}
	if c.ClickMaxDuration > 0 {
		cfg.ClickMaxDuration = c.ClickMaxDuration
	}
	if c.DragThreshold > 0 {
		cfg.DragThreshold = c.DragThreshold
	}
	if c.MinFlyDistance > 0 {
		cfg.MinFlyDistance = c.MinFlyDistance
	}
	return cfg
}

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary   Button = iota // orbit, click-to-zoom
	ButtonSecondary               // pan
)

// PointerEvent is a pointer sample in viewport pixels.
type PointerEvent struct {
	X, Y   float32
	Button Button
	At     time.Time
}
