package viewer

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/valvesite/internal/engine/scene"
	"github.com/Faultbox/valvesite/internal/logger"
)

// ErrClosed is returned by Load after Close.
var ErrClosed = errors.New("viewer: session closed")

// ModelLoader fetches and decodes a model reference.
type ModelLoader interface {
	LoadModel(ctx context.Context, path string) (*scene.Model, error)
}

// ImageLoader fetches and decodes a fallback image reference.
type ImageLoader interface {
	LoadImage(ctx context.Context, path string) (image.Image, error)
}

type pending[T any] struct {
	gen    uint64
	future *Future[T]
}

// Session owns a Viewer and the loads running for it. Loads run on their own
// goroutines and resolve futures; Update polls them without blocking and
// applies only results from the current generation.
type Session struct {
	mu     sync.Mutex
	viewer *Viewer
	models ModelLoader
	images ImageLoader
	log    *zap.Logger

	gen    uint64
	cancel context.CancelFunc
	model  *pending[*scene.Model]
	image  *pending[image.Image]
	// decoded fallback of the current generation, nil until it settles
	fallback image.Image
	closed   bool

	wg sync.WaitGroup
}

// NewSession creates a session with an empty viewer.
func NewSession(cfg Config, models ModelLoader, images ImageLoader) *Session {
	return &Session{
		viewer: New(cfg),
		models: models,
		images: images,
		log:    logger.Named("viewer"),
	}
}

// Load switches to a new product. The previous product's loads are cancelled
// and their results discarded.
func (s *Session) Load(ctx context.Context, modelPath, fallbackImage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	s.model, s.image = nil, nil
	s.fallback = nil
	s.viewer.Reset(modelPath, fallbackImage)

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	gen := s.gen

	if modelPath != "" && s.models != nil {
		f := newFuture[*scene.Model]()
		s.model = &pending[*scene.Model]{gen: gen, future: f}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			f.run(func() (*scene.Model, error) {
				m, err := s.models.LoadModel(ctx, modelPath)
				if err != nil {
					return nil, err
				}
				// Both passes are independent and happen before the model can show.
				m.ApplyMachinedFinish()
				m.FitScale(scene.DefaultFitSize)
				return m, nil
			})
		}()
	}

	if fallbackImage != "" && s.images != nil {
		f := newFuture[image.Image]()
		s.image = &pending[image.Image]{gen: gen, future: f}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			f.run(func() (image.Image, error) {
				return s.images.LoadImage(ctx, fallbackImage)
			})
		}()
	} else {
		// Nothing to preload.
		s.viewer.ImageSettled(nil)
	}

	s.log.Debug("load started",
		zap.Uint64("generation", gen),
		zap.String("model", modelPath),
		zap.String("image", fallbackImage))
	return nil
}

// Update applies finished loads and advances the viewer by dt.
func (s *Session) Update(dt time.Duration) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.poll()
	s.viewer.Update(dt)
	return s.viewer.Snapshot()
}

func (s *Session) poll() {
	if p := s.image; p != nil {
		if img, ok, err := p.future.Poll(); ok {
			s.image = nil
			if p.gen == s.gen {
				if err != nil {
					s.log.Warn("fallback image failed", zap.String("image", s.viewer.FallbackImage()), zap.Error(err))
				} else {
					s.fallback = img
				}
				s.viewer.ImageSettled(err)
			}
		}
	}
	if p := s.model; p != nil {
		if m, ok, err := p.future.Poll(); ok {
			s.model = nil
			if p.gen != s.gen {
				return
			}
			if err != nil {
				s.log.Warn("model load failed", zap.String("model", s.viewer.ModelPath()), zap.Error(err))
				s.viewer.ModelFailed(err)
				return
			}
			s.log.Debug("model loaded",
				zap.String("model", s.viewer.ModelPath()),
				zap.Int("triangles", m.TriangleCount()))
			s.viewer.ModelLoaded(m)
		}
	}
}

// Do runs fn with exclusive access to the viewer, for input events.
func (s *Session) Do(fn func(v *Viewer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.viewer)
}

// Snapshot returns the current frame without advancing time.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewer.Snapshot()
}

// Fallback returns the decoded fallback image of the current product, or nil
// while it is loading or when it failed.
func (s *Session) Fallback() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fallback
}

// Generation returns the number of Load calls so far.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Close cancels in-flight loads and waits for their goroutines.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
