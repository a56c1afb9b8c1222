package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"steeleworks.org/atelier-web/internal/background"
	"steeleworks.org/atelier-web/internal/blog"
	"steeleworks.org/atelier-web/internal/catalog"
	"steeleworks.org/atelier-web/internal/checkout"
	"steeleworks.org/atelier-web/internal/config"
	"steeleworks.org/atelier-web/internal/content"
	mw "steeleworks.org/atelier-web/internal/middleware"
	"steeleworks.org/atelier-web/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := observability.NewLogger()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	app, err := newApp(cfg, logger)
	if err != nil {
		logger.Fatal("bootstrap", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("web listening", zap.String("addr", srv.Addr), zap.Bool("dev", cfg.Server.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// app wires configuration, content stores, and the payment provider behind
// the HTTP handlers.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	catalog  *catalog.Store
	index    *content.Store
	blog     *blog.Repo
	bg       *background.Provider
	payments checkout.Provider
}

func newApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		log:     logger,
		catalog: catalog.NewStore(cfg.Content.AssetsDir, cfg.Content.CatalogTTL),
		index:   content.NewStore(cfg.Content.AssetsDir, cfg.Content.CatalogTTL),
		blog:    blog.NewRepo(cfg.Content.ContentDir),
		bg:      background.NewProvider(cfg.Content.AssetsDir+"/backgrounds", cfg.Background.TTL),
	}

	if cfg.Checkout.StripeAPIKey != "" {
		provider, err := checkout.NewStripeProvider(checkout.StripeProviderConfig{
			APIKey: cfg.Checkout.StripeAPIKey,
		})
		if err != nil {
			return nil, err
		}
		a.payments = provider
	} else {
		logger.Warn("no STRIPE_API_KEY set; using the fake payment provider")
		a.payments = checkout.NewFakeProvider()
	}

	devMode = cfg.Server.Dev
	templatesDir = cfg.Content.TemplatesDir
	if !devMode {
		tc, err := parseTemplates()
		if err != nil {
			return nil, err
		}
		tmplCache = tc
	}
	return a, nil
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(observability.TraceMiddleware)
	r.Use(mw.HTMX)
	r.Use(mw.Session)
	r.Use(mw.RequestLogger(a.log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	assets := http.StripPrefix("/assets", mw.AssetsWithCache(a.cfg.Content.AssetsDir))
	r.Handle("/assets/*", assets)
	static := http.StripPrefix("/static", mw.AssetsWithCache(a.cfg.Content.PublicDir))
	r.Handle("/static/*", static)

	r.Get("/", a.HomeHandler)

	r.Get("/gallery", a.GalleryHandler)
	r.Get("/gallery/lightbox", a.GalleryLightboxFrag)
	r.Get("/music", a.MusicHandler)
	r.Get("/blog", a.BlogIndexHandler)
	r.Get("/blog/{slug}", a.BlogPostHandler)

	r.Get("/shop", a.ShopHandler)
	r.Get("/shop/{slug}", a.ProductHandler)

	r.Get("/search", a.SearchHandler)
	r.Get("/search/results", a.SearchResultsFrag)
	r.Get("/search.json", a.SearchJSONHandler)

	r.Get("/cart", a.CartHandler)
	r.Get("/cart/badge", a.CartBadgeFrag)
	r.Post("/cart/items", a.CartAddHandler)
	r.Post("/cart/items/{id}/remove", a.CartRemoveHandler)
	r.Post("/cart/items/{id}/quantity", a.CartQuantityHandler)
	r.Post("/cart/clear", a.CartClearHandler)
	r.Post("/cart/checkout", a.CheckoutHandler)
	r.Get("/cart/confirm", a.CheckoutConfirmHandler)

	r.Post("/theme", a.ThemeToggleHandler)
	r.Post("/sidebar/{section}", a.SidebarToggleHandler)
	r.Get("/background.json", a.BackgroundHandler)

	r.Get("/feed.xml", a.FeedHandler)
	r.Get("/sitemap.xml", a.SitemapHandler)

	return r
}
