package assets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/valvesite/internal/catalog"
	"github.com/Faultbox/valvesite/internal/config"
)

// Kind is the type of asset a reference points at.
type Kind string

const (
	KindImage Kind = "image"
	KindModel Kind = "model"
)

// Ref is one asset reference made by a catalog product.
type Ref struct {
	Kind     Kind
	Ref      string
	Category string
	Product  string
}

// References lists every image and model reference in c, in catalog order.
func References(c *catalog.Catalog) []Ref {
	var refs []Ref
	for _, cat := range c.Categories() {
		for _, p := range cat.Products {
			refs = append(refs, Ref{Kind: KindImage, Ref: p.ImageURL, Category: cat.Slug, Product: p.ID})
			if p.HasModel() {
				refs = append(refs, Ref{Kind: KindModel, Ref: p.Model3D, Category: cat.Slug, Product: p.ID})
			}
		}
	}
	return refs
}

// Result is the outcome of checking one reference.
type Result struct {
	Ref
	Detail  string // decoded summary, e.g. "webp 600x600" or "1024 triangles"
	Elapsed time.Duration
	Err     error
}

// OK reports whether the reference fetched and decoded.
func (r Result) OK() bool { return r.Err == nil }

// Report collects results in the order the references were given.
type Report struct {
	Results []Result
	Failed  int
}

// Checker verifies that catalog assets fetch and decode.
type Checker struct {
	images  *ImageLoader
	models  *ModelLoader
	limiter ratelimit.Limiter
	workers int
	log     *zap.Logger
}

// NewChecker creates a checker. Remote fetches are limited to
// cfg.CheckRate per second; at most cfg.CheckWorkers checks run at once.
func NewChecker(f *Fetcher, cfg config.AssetsConfig) *Checker {
	limiter := ratelimit.NewUnlimited()
	if cfg.CheckRate > 0 {
		limiter = ratelimit.New(cfg.CheckRate)
	}
	workers := cfg.CheckWorkers
	if workers <= 0 {
		workers = 1
	}
	return &Checker{
		images:  NewImageLoader(f),
		models:  NewModelLoader(f),
		limiter: limiter,
		workers: workers,
		log:     f.log.Named("check"),
	}
}

// Check fetches and decodes every reference. Individual failures are
// reported in the result; the error is only set when ctx ends early.
func (c *Checker) Check(ctx context.Context, refs []Ref) (Report, error) {
	results := make([]Result, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, ref := range refs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.checkOne(gctx, ref)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	report := Report{Results: results}
	for _, r := range results {
		if !r.OK() {
			report.Failed++
			c.log.Warn("asset check failed",
				zap.String("kind", string(r.Kind)),
				zap.String("ref", r.Ref.Ref),
				zap.String("product", r.Category+"/"+r.Product),
				zap.Error(r.Err))
		}
	}
	return report, nil
}

func (c *Checker) checkOne(ctx context.Context, ref Ref) Result {
	if IsRemote(ref.Ref) {
		c.limiter.Take()
	}
	start := time.Now()
	res := Result{Ref: ref}

	switch ref.Kind {
	case KindModel:
		m, err := c.models.LoadModel(ctx, ref.Ref)
		if err != nil {
			res.Err = err
			break
		}
		res.Detail = fmt.Sprintf("%d meshes, %d triangles", len(m.Meshes), m.TriangleCount())
	default:
		cfg, format, err := c.images.ImageInfo(ctx, ref.Ref)
		if err != nil {
			res.Err = err
			break
		}
		res.Detail = fmt.Sprintf("%s %dx%d", format, cfg.Width, cfg.Height)
	}

	res.Elapsed = time.Since(start)
	return res
}
