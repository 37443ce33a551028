// modelviewer shows one catalog product in a desktop window with the same
// viewer behaviour as the website: auto-rotation, orbit, zoom, pan and
// click-to-fly.
//
// Usage:
//
//	modelviewer [flags] [category product]
//
// Without arguments the first product that has a 3D model is shown.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/valvesite/internal/catalog"
	"github.com/Faultbox/valvesite/internal/config"
	"github.com/Faultbox/valvesite/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	c, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		logger.Error("failed to load catalog", zap.Error(err))
		os.Exit(1)
	}
	products := c.WithModel()
	for _, cat := range c.Categories() {
		for _, p := range cat.Products {
			if !p.HasModel() {
				products = append(products, catalog.ProductRef{CategorySlug: cat.Slug, Product: p})
			}
		}
	}
	if len(products) == 0 {
		logger.Error("catalog has no products")
		os.Exit(1)
	}

	start := 0
	if args := flag.Args(); len(args) > 0 {
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "Usage: modelviewer [flags] [category product]")
			os.Exit(2)
		}
		start = -1
		for i, ref := range products {
			if ref.CategorySlug == args[0] && ref.Product.ID == args[1] {
				start = i
				break
			}
		}
		if start < 0 {
			fmt.Fprintf(os.Stderr, "Product %s/%s not found\n", args[0], args[1])
			os.Exit(1)
		}
	}

	logger.Info("=== Valve Model Viewer ===", zap.Int("products", len(products)))

	a, err := newApp(cfg, products)
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(start); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("viewer closed normally")
}
