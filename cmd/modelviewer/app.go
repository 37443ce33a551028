package main

import (
	"context"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/valvesite/internal/assets"
	"github.com/Faultbox/valvesite/internal/catalog"
	"github.com/Faultbox/valvesite/internal/config"
	"github.com/Faultbox/valvesite/internal/engine/input"
	"github.com/Faultbox/valvesite/internal/engine/lighting"
	"github.com/Faultbox/valvesite/internal/engine/renderer"
	"github.com/Faultbox/valvesite/internal/engine/scene"
	"github.com/Faultbox/valvesite/internal/engine/window"
	"github.com/Faultbox/valvesite/internal/logger"
	"github.com/Faultbox/valvesite/internal/viewer"
	"github.com/Faultbox/valvesite/pkg/math"
)

const screenshotDir = "screenshots"

// app owns the window, the GL renderer and one viewer session. Everything
// here runs on the main thread; only asset loads run elsewhere.
type app struct {
	cfg      *config.Config
	products []catalog.ProductRef
	current  int

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	session  *viewer.Session
	fetcher  *assets.Fetcher

	// what is on the GPU right now
	uploaded     *scene.Model
	fallbackGen  uint64
	fallbackSent bool

	captureNext bool

	log *zap.Logger
}

func newApp(cfg *config.Config, products []catalog.ProductRef) (*app, error) {
	a := &app{
		cfg:      cfg,
		products: products,
		log:      logger.Named("modelviewer"),
	}

	var err error
	a.window, err = window.New(window.Config{
		Title:      "Valve Viewer",
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	dw, dh := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{Width: dw, Height: dh}, lighting.Studio())
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	a.fetcher = assets.NewFetcher(cfg.Assets)
	vcfg := viewer.ConfigFrom(cfg.Viewer)
	ww, wh := a.window.Size()
	vcfg.Width, vcfg.Height = float32(ww), float32(wh)
	a.session = viewer.NewSession(vcfg, assets.NewModelLoader(a.fetcher), assets.NewImageLoader(a.fetcher))
	a.input = input.New()
	return a, nil
}

// Close releases GL resources before the context goes away.
func (a *app) Close() {
	a.session.Close()
	a.renderer.Close()
	a.window.Close()
}

// Run shows products[start] and loops until the window closes.
func (a *app) Run(start int) error {
	if err := a.show(start); err != nil {
		return err
	}

	last := time.Now()
	for {
		if a.input.Update() {
			return nil
		}
		for _, ev := range a.input.Events() {
			quit, err := a.handle(ev)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}

		now := time.Now()
		snap := a.session.Update(now.Sub(last))
		last = now

		a.sync()
		a.draw(snap)
		if a.captureNext {
			a.captureNext = false
			a.screenshot()
		}
		a.window.SwapBuffers()

		if !a.cfg.Viewer.VSync {
			// Without vsync, cap at the tick rate.
			if wait := time.Second/time.Duration(a.cfg.Viewer.TickRate) - time.Since(now); wait > 0 {
				time.Sleep(wait)
			}
		}
	}
}

// show switches the session to products[i].
func (a *app) show(i int) error {
	n := len(a.products)
	a.current = ((i % n) + n) % n
	ref := a.products[a.current]

	a.window.SetTitle(ref.Product.Name + " | Valve Viewer")
	a.log.Info("showing product",
		zap.String("product", ref.Path()),
		zap.Bool("model", ref.Product.HasModel()))
	return a.session.Load(context.Background(), ref.Product.Model3D, ref.Product.ImageURL)
}

func (a *app) handle(ev input.Event) (quit bool, err error) {
	switch ev.Type {
	case input.EventKeyDown:
		switch ev.Key {
		case sdl.SCANCODE_ESCAPE, sdl.SCANCODE_Q:
			return true, nil
		case sdl.SCANCODE_RIGHT, sdl.SCANCODE_N:
			return false, a.show(a.current + 1)
		case sdl.SCANCODE_LEFT, sdl.SCANCODE_P:
			return false, a.show(a.current - 1)
		case sdl.SCANCODE_R:
			// Reread the files so edits on disk show up.
			p := a.products[a.current].Product
			a.fetcher.Forget(p.Model3D)
			a.fetcher.Forget(p.ImageURL)
			return false, a.show(a.current)
		case sdl.SCANCODE_S, sdl.SCANCODE_F12:
			a.captureNext = true
		}

	case input.EventWindowResize:
		dw, dh := a.window.DrawableSize()
		a.renderer.Resize(dw, dh)
		a.session.Do(func(v *viewer.Viewer) { v.Resize(float32(ev.Width), float32(ev.Height)) })

	case input.EventPointerDown:
		a.session.Do(func(v *viewer.Viewer) { v.PointerDown(pointer(ev)) })
	case input.EventPointerMove:
		a.session.Do(func(v *viewer.Viewer) { v.PointerMove(pointer(ev)) })
	case input.EventPointerUp:
		a.session.Do(func(v *viewer.Viewer) { v.PointerUp(pointer(ev)) })
	case input.EventWheel:
		a.session.Do(func(v *viewer.Viewer) { v.Wheel(ev.Wheel) })
	}
	return false, nil
}

func (a *app) screenshot() {
	path, err := renderer.SaveScreenshot(a.renderer.Capture(), screenshotDir, a.products[a.current].Product.ID)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

func pointer(ev input.Event) viewer.PointerEvent {
	b := viewer.ButtonPrimary
	if ev.Button == input.ButtonSecondary {
		b = viewer.ButtonSecondary
	}
	return viewer.PointerEvent{X: ev.X, Y: ev.Y, Button: b, At: ev.At}
}

// sync uploads the session's model and fallback image when they change.
func (a *app) sync() {
	var m *scene.Model
	a.session.Do(func(v *viewer.Viewer) { m = v.Model() })
	if m != a.uploaded {
		if m == nil {
			a.renderer.ClearModel()
		} else {
			a.renderer.UploadModel(m)
		}
		a.uploaded = m
	}

	gen := a.session.Generation()
	if gen != a.fallbackGen {
		a.fallbackGen, a.fallbackSent = gen, false
		a.renderer.SetFallbackImage(nil)
	}
	if !a.fallbackSent {
		if img := a.session.Fallback(); img != nil {
			a.renderer.SetFallbackImage(img)
			a.fallbackSent = true
		}
	}
}

func (a *app) draw(snap viewer.Snapshot) {
	a.renderer.Begin()
	defer a.renderer.End()

	if snap.FallbackVisible || !a.renderer.HasModel() {
		a.renderer.DrawFallback()
		return
	}

	var viewProj, model math.Mat4
	var eye math.Vec3
	a.session.Do(func(v *viewer.Viewer) {
		w, h := v.Viewport()
		cam := v.Camera()
		viewProj = cam.ViewProjection(w, h)
		model = v.ModelMatrix()
		eye = cam.Position()
	})
	a.renderer.DrawModel(viewProj, model, eye)
}
