package viewer

// Snapshot is one serialisable frame of viewer state.
type Snapshot struct {
	State           string      `json:"state"`
	Loading         bool        `json:"loading"`
	FallbackVisible bool        `json:"fallback_visible"`
	FallbackImage   string      `json:"fallback_image"`
	ModelPath       string      `json:"model_path,omitempty"`
	Eye             [3]float32  `json:"eye"`
	Target          [3]float32  `json:"target"`
	Yaw             float32     `json:"yaw"`
	FlyTarget       *[3]float32 `json:"fly_target,omitempty"`
	FlyProgress     float32     `json:"fly_progress,omitempty"`
	LoadError       string      `json:"load_error,omitempty"`
}

// Snapshot captures the current frame.
func (v *Viewer) Snapshot() Snapshot {
	eye, target := v.camera.Pose()
	s := Snapshot{
		State:           v.state.String(),
		Loading:         v.Loading(),
		FallbackVisible: v.state.FallbackVisible(),
		FallbackImage:   v.fallbackImage,
		ModelPath:       v.modelPath,
		Eye:             eye.Array(),
		Target:          target.Array(),
		Yaw:             v.yaw,
	}
	if p, ok := v.FlyTarget(); ok {
		a := p.Array()
		s.FlyTarget = &a
	}
	if v.flight != nil {
		s.FlyProgress = v.flight.progress()
	}
	if v.loadErr != nil {
		s.LoadError = v.loadErr.Error()
	}
	return s
}
