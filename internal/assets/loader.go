package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"

	// Fallback image formats used by the catalog.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/Faultbox/valvesite/internal/engine/scene"
	"github.com/Faultbox/valvesite/pkg/glb"
)

// ModelLoader fetches and decodes GLB models.
type ModelLoader struct {
	fetcher *Fetcher
}

// NewModelLoader creates a model loader backed by f.
func NewModelLoader(f *Fetcher) *ModelLoader {
	return &ModelLoader{fetcher: f}
}

// LoadModel fetches ref and decodes it into a scene model.
func (l *ModelLoader) LoadModel(ctx context.Context, ref string) (*scene.Model, error) {
	data, err := l.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	f, err := glb.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", ref, err)
	}
	m, err := scene.FromFile(f)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", ref, err)
	}
	m.Name = ref
	return m, nil
}

// ImageLoader fetches and decodes fallback images.
type ImageLoader struct {
	fetcher *Fetcher
}

// NewImageLoader creates an image loader backed by f.
func NewImageLoader(f *Fetcher) *ImageLoader {
	return &ImageLoader{fetcher: f}
}

// LoadImage fetches ref and decodes it.
func (l *ImageLoader) LoadImage(ctx context.Context, ref string) (image.Image, error) {
	data, err := l.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", ref, err)
	}
	return img, nil
}

// ImageInfo fetches ref and reads only its header.
func (l *ImageLoader) ImageInfo(ctx context.Context, ref string) (image.Config, string, error) {
	data, err := l.fetcher.Fetch(ctx, ref)
	if err != nil {
		return image.Config{}, "", err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("decoding %s: %w", ref, err)
	}
	return cfg, format, nil
}
