// Package site serves the catalog website: HTML pages, the JSON API, the
// sitemap, inquiry submission and the interactive viewer stream.
package site

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/valvesite/internal/catalog"
	"github.com/Faultbox/valvesite/internal/config"
	"github.com/Faultbox/valvesite/internal/inquiry"
	"github.com/Faultbox/valvesite/internal/logger"
	"github.com/Faultbox/valvesite/internal/viewer"
)

// Options wires the server's collaborators.
type Options struct {
	Config    *config.Config
	Catalog   *catalog.Holder
	Inquiries inquiry.Submitter
	Models    viewer.ModelLoader
	Images    viewer.ImageLoader
	Company   *Company // nil = DefaultCompany
}

// Server is the HTTP shell around the catalog and the viewer.
type Server struct {
	cfg       *config.Config
	catalog   *catalog.Holder
	inquiries inquiry.Submitter
	models    viewer.ModelLoader
	images    viewer.ImageLoader
	company   Company
	pages     *pageSet
	upgrader  websocket.Upgrader
	log       *zap.Logger
}

// New creates a server. Templates are parsed here so a broken template fails
// at startup rather than on first request.
func New(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Catalog == nil || opts.Inquiries == nil {
		return nil, errors.New("site: config, catalog and inquiry submitter are required")
	}
	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	company := DefaultCompany
	if opts.Company != nil {
		company = *opts.Company
	}

	return &Server{
		cfg:       opts.Config,
		catalog:   opts.Catalog,
		inquiries: opts.Inquiries,
		models:    opts.Models,
		images:    opts.Images,
		company:   company,
		pages:     pages,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		log: logger.Named("site"),
	}, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/sitemap.xml", s.handleSitemap)

	// Static files keep their /assets/... path inside the static directory,
	// matching how catalog references are written.
	r.Handle("/assets/*", http.FileServer(http.Dir(s.cfg.Assets.StaticDir)))

	r.Get("/", s.handleHome)
	r.Get("/about", s.handleAbout)
	r.Get("/contact", s.handleContact)
	r.Post("/contact", s.handleContactSubmit)
	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.handleProducts)
		r.Get("/{category}", s.handleCategory)
		r.Get("/{category}/{productID}", s.handleProduct)
		r.Post("/{category}/{productID}", s.handleProductInquiry)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", s.apiCategories)
		r.Get("/categories/{slug}", s.apiCategory)
		r.Get("/categories/{slug}/products", s.apiCategoryProducts)
		r.Get("/products", s.apiProducts)
		r.Get("/products/{category}/{productID}", s.apiProduct)
		r.Post("/inquiries", s.apiSubmitInquiry)
	})

	r.Get("/ws/viewer/{category}/{productID}", s.handleViewerSocket)

	r.NotFound(s.handleNotFound)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// current returns the catalog being served right now. Handlers take it once
// per request so a reload never splits a response across two catalogs.
func (s *Server) current() *catalog.Catalog {
	return s.catalog.Get()
}
