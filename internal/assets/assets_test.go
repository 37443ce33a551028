package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/valvesite/internal/catalog"
	"github.com/Faultbox/valvesite/internal/config"
	"github.com/Faultbox/valvesite/pkg/glb"
)

// 1x1 lossless WebP.
const tinyWebP = "UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA=="

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func glbBytes(t *testing.T) []byte {
	t.Helper()
	b := glb.NewBuilder("assets test")
	pos, idx := glb.Box([3]float32{-1, -1, -1}, [3]float32{1, 1, 1})
	b.AddMesh("body", pos, idx, b.AddMaterial("steel", [4]float32{1, 1, 1, 1}, 0, 1))
	var buf bytes.Buffer
	require.NoError(t, b.WriteTo(&buf))
	return buf.Bytes()
}

func writeFile(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
}

func testConfig(dir string) config.AssetsConfig {
	cfg := config.Default().Assets
	cfg.StaticDir = dir
	cfg.FetchRetries = 0
	cfg.FetchTimeout = 5 * time.Second
	cfg.CheckRate = 0
	return cfg
}

// server serves path -> body and counts requests.
func server(t *testing.T, files map[string][]byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/broken" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		data, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFetchLocalCaches(t *testing.T) {
	dir := t.TempDir()
	data := pngBytes(t, 2, 2)
	writeFile(t, dir, "assets/product/images/valve.png", data)

	f := NewFetcher(testConfig(dir))
	ctx := context.Background()

	got, err := f.Fetch(ctx, "/assets/product/images/valve.png")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = f.Fetch(ctx, "/assets/product/images/valve.png")
	require.NoError(t, err)

	hits, misses := f.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	f.Forget("/assets/product/images/valve.png")
	_, err = f.Fetch(ctx, "/assets/product/images/valve.png")
	require.NoError(t, err)
	_, misses = f.Stats()
	assert.Equal(t, 2, misses)
}

func TestLocalPathStaysInStaticDir(t *testing.T) {
	f := NewFetcher(testConfig("/srv/public"))

	tests := map[string]string{
		"/assets/a.png":          filepath.Join("/srv/public", "assets", "a.png"),
		"/../../etc/passwd":      filepath.Join("/srv/public", "etc", "passwd"),
		"assets/../../x.glb":     filepath.Join("/srv/public", "x.glb"),
		"/assets/./b//c.webp":    filepath.Join("/srv/public", "assets", "b", "c.webp"),
		"/assets/3d model/x.glb": filepath.Join("/srv/public", "assets", "3d model", "x.glb"),
	}
	for ref, want := range tests {
		assert.Equal(t, want, f.LocalPath(ref), ref)
	}
}

func TestFetchErrors(t *testing.T) {
	srv, _ := server(t, nil)
	f := NewFetcher(testConfig(t.TempDir()))
	ctx := context.Background()

	_, err := f.Fetch(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyRef)

	_, err = f.Fetch(ctx, "/assets/missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.Fetch(ctx, srv.URL+"/missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.Fetch(ctx, srv.URL+"/broken")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestFetchRemoteCaches(t *testing.T) {
	data := pngBytes(t, 3, 1)
	srv, hits := server(t, map[string][]byte{"/img/valve.png": data})
	f := NewFetcher(testConfig(t.TempDir()))

	for i := 0; i < 3; i++ {
		got, err := f.Fetch(context.Background(), srv.URL+"/img/valve.png")
		require.NoError(t, err)
		assert.Equal(t, data, got)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestLoadModel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "assets/models/cube.glb", glbBytes(t))
	writeFile(t, dir, "assets/models/corrupt.glb", []byte("not a model at all"))

	l := NewModelLoader(NewFetcher(testConfig(dir)))

	m, err := l.LoadModel(context.Background(), "/assets/models/cube.glb")
	require.NoError(t, err)
	assert.Equal(t, 12, m.TriangleCount())
	assert.Equal(t, "/assets/models/cube.glb", m.Name)

	_, err = l.LoadModel(context.Background(), "/assets/models/corrupt.glb")
	assert.ErrorIs(t, err, glb.ErrInvalidMagic)
}

func TestLoadImageFormats(t *testing.T) {
	webp, err := base64.StdEncoding.DecodeString(tinyWebP)
	require.NoError(t, err)

	dir := t.TempDir()
	writeFile(t, dir, "assets/images/a.png", pngBytes(t, 4, 3))
	writeFile(t, dir, "assets/images/b.webp", webp)
	writeFile(t, dir, "assets/images/c.png", []byte("garbage"))

	l := NewImageLoader(NewFetcher(testConfig(dir)))
	ctx := context.Background()

	img, err := l.LoadImage(ctx, "/assets/images/a.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	cfg, format, err := l.ImageInfo(ctx, "/assets/images/b.webp")
	require.NoError(t, err)
	assert.Equal(t, "webp", format)
	assert.Equal(t, 1, cfg.Width)

	_, err = l.LoadImage(ctx, "/assets/images/c.png")
	assert.Error(t, err)
}

func TestReferences(t *testing.T) {
	cat, err := catalog.New([]catalog.CategorySource{{
		Title: "BUTTERFLY VALVES",
		Products: []catalog.ProductSource{
			{Name: "Wafer Butterfly Valve", ImageURL: "/assets/a.png"},
			{Name: "Lug Butterfly Valve", ImageURL: "/assets/b.png", Model3D: "/assets/b.glb"},
		},
	}})
	require.NoError(t, err)

	want := []Ref{
		{Kind: KindImage, Ref: "/assets/a.png", Category: "butterfly-valves", Product: "wafer-butterfly-valve"},
		{Kind: KindImage, Ref: "/assets/b.png", Category: "butterfly-valves", Product: "lug-butterfly-valve"},
		{Kind: KindModel, Ref: "/assets/b.glb", Category: "butterfly-valves", Product: "lug-butterfly-valve"},
	}
	assert.Equal(t, want, References(cat))
}

func TestChecker(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "assets/images/local.png", pngBytes(t, 8, 8))
	writeFile(t, dir, "assets/models/local.glb", glbBytes(t))
	srv, _ := server(t, map[string][]byte{"/remote.png": pngBytes(t, 16, 9)})

	refs := []Ref{
		{Kind: KindImage, Ref: "/assets/images/local.png"},
		{Kind: KindModel, Ref: "/assets/models/local.glb"},
		{Kind: KindImage, Ref: srv.URL + "/remote.png"},
		{Kind: KindImage, Ref: "/assets/images/missing.png"},
		{Kind: KindModel, Ref: "/assets/images/local.png"}, // not a GLB
	}

	cfg := testConfig(dir)
	cfg.CheckRate = 100
	cfg.CheckWorkers = 2
	report, err := NewChecker(NewFetcher(cfg), cfg).Check(context.Background(), refs)
	require.NoError(t, err)
	require.Len(t, report.Results, len(refs))

	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, "png 8x8", report.Results[0].Detail)
	assert.Equal(t, "1 meshes, 12 triangles", report.Results[1].Detail)
	assert.Equal(t, "png 16x9", report.Results[2].Detail)
	assert.ErrorIs(t, report.Results[3].Err, ErrNotFound)
	assert.ErrorIs(t, report.Results[4].Err, glb.ErrInvalidMagic)
	for i, r := range report.Results {
		assert.Equal(t, refs[i], r.Ref, "results keep input order")
	}
}

func TestCheckerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig(t.TempDir())
	_, err := NewChecker(NewFetcher(cfg), cfg).Check(ctx, []Ref{{Kind: KindImage, Ref: "/assets/x.png"}})
	assert.ErrorIs(t, err, context.Canceled)
}
