// Package assets fetches product models and images from the local static
// directory or over HTTP, and decodes them for the viewer.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/Faultbox/valvesite/internal/config"
	"github.com/Faultbox/valvesite/internal/logger"
)

var (
	// ErrNotFound is returned when a reference does not resolve to anything.
	ErrNotFound = errors.New("assets: not found")
	// ErrEmptyRef is returned for an empty reference.
	ErrEmptyRef = errors.New("assets: empty reference")
)

// IsRemote reports whether ref is fetched over HTTP rather than from the
// static directory.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Fetcher resolves asset references. Site-relative references ("/assets/...")
// are read from the static directory; http(s) URLs are downloaded. Results
// are cached by reference.
type Fetcher struct {
	staticDir string
	client    *resty.Client
	cache     *Cache
	log       *zap.Logger
}

// NewFetcher creates a fetcher for the given assets settings.
func NewFetcher(cfg config.AssetsConfig) *Fetcher {
	client := resty.New().
		SetTimeout(cfg.FetchTimeout).
		SetRetryCount(cfg.FetchRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("User-Agent", "valvesite-assets/1.0")

	return &Fetcher{
		staticDir: cfg.StaticDir,
		client:    client,
		cache:     NewCache(),
		log:       logger.Named("assets"),
	}
}

// Fetch returns the bytes behind ref.
func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" {
		return nil, ErrEmptyRef
	}
	if data, ok := f.cache.Get(ref); ok {
		return data, nil
	}

	var (
		data []byte
		err  error
	)
	if IsRemote(ref) {
		data, err = f.fetchRemote(ctx, ref)
	} else {
		data, err = f.readLocal(ref)
	}
	if err != nil {
		return nil, err
	}

	f.cache.Set(ref, data)
	f.log.Debug("fetched", zap.String("ref", ref), zap.Int("bytes", len(data)))
	return data, nil
}

// LocalPath maps a site-relative reference into the static directory. The
// reference is cleaned first so it cannot climb out of the directory.
func (f *Fetcher) LocalPath(ref string) string {
	clean := path.Clean("/" + ref)
	return filepath.Join(f.staticDir, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
}

func (f *Fetcher) readLocal(ref string) ([]byte, error) {
	p := f.LocalPath(ref)
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	return data, nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("fetching %s: %w", url, ctx.Err())
		}
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetching %s: HTTP %s", url, resp.Status())
	}
	return resp.Bytes(), nil
}

// Stats returns cache hit and miss counts.
func (f *Fetcher) Stats() (hits, misses int) {
	return f.cache.Stats()
}

// Forget drops ref from the cache so the next Fetch goes to the source.
func (f *Fetcher) Forget(ref string) {
	f.cache.Delete(ref)
}

// Cache is an in-memory cache of fetched asset bytes.
type Cache struct {
	mu   sync.Mutex
	data map[string][]byte

	// Stats
	hits   int
	misses int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item and counts the hit or miss.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Delete removes an item.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
