package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/valvesite/internal/assets"
	"github.com/Faultbox/valvesite/internal/catalog"
	"github.com/Faultbox/valvesite/internal/inquiry"
	"github.com/Faultbox/valvesite/internal/logger"
	"github.com/Faultbox/valvesite/internal/site"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog website",
	Long: `Serve the HTML pages, JSON API, sitemap and viewer websocket.

With --watch and --catalog, edits to the catalog file are picked up without a
restart; a file that fails to load leaves the previous catalog serving.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := openCatalog()
	if err != nil {
		return err
	}
	holder := catalog.NewHolder(c)

	fetcher := assets.NewFetcher(cfg.Assets)
	srv, err := site.New(site.Options{
		Config:    cfg,
		Catalog:   holder,
		Inquiries: inquiry.New(cfg.Inquiry),
		Models:    assets.NewModelLoader(fetcher),
		Images:    assets.NewImageLoader(fetcher),
	})
	if err != nil {
		return err
	}

	logger.Info("=== Valve Catalog ===",
		zap.Int("categories", c.Len()),
		zap.Int("models", len(c.WithModel())),
		zap.String("addr", cfg.Server.Addr))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if cfg.Catalog.Watch {
		g.Go(func() error { return holder.Watch(gctx, cfg.Catalog.Path, 0) })
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

// openCatalog loads the configured catalog file, or the embedded one.
func openCatalog() (*catalog.Catalog, error) {
	return catalog.Open(cfg.Catalog.Path)
}
