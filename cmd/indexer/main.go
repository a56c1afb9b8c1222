// Command indexer rebuilds the derived JSON indexes, the feed and sitemap,
// and optionally the daily background images. Run it whenever content under
// assets/ or content/ changes.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"steeleworks.org/atelier-web/internal/background"
	"steeleworks.org/atelier-web/internal/config"
	"steeleworks.org/atelier-web/internal/feed"
	"steeleworks.org/atelier-web/internal/indexer"
	"steeleworks.org/atelier-web/internal/observability"
)

func main() {
	var (
		fetchBackgrounds bool
		skipFeeds        bool
	)
	flag.BoolVar(&fetchBackgrounds, "backgrounds", false, "fetch fresh background images")
	flag.BoolVar(&skipFeeds, "skip-feeds", false, "do not regenerate feed.xml and sitemap.xml")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := observability.NewLogger()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	b := &indexer.Builder{
		AssetsDir:  cfg.Content.AssetsDir,
		ContentDir: cfg.Content.ContentDir,
		Log:        logger,
	}

	if _, err := b.BuildGallery(); err != nil {
		logger.Fatal("build gallery", zap.Error(err))
	}
	if _, err := b.BuildMusic(); err != nil {
		logger.Fatal("build music", zap.Error(err))
	}
	if _, err := b.BuildShop(); err != nil {
		logger.Fatal("build shop", zap.Error(err))
	}
	if _, err := b.BuildSearchIndex(); err != nil {
		logger.Fatal("build search index", zap.Error(err))
	}

	if !skipFeeds {
		opts := feed.Options{
			Title:    cfg.Site.Name,
			Subtitle: "Portfolio and workshop notes",
			SiteURL:  cfg.Site.BaseURL,
			Author:   cfg.Site.Name,
		}
		if err := b.WriteFeeds(cfg.Content.PublicDir, opts); err != nil {
			logger.Fatal("write feeds", zap.Error(err))
		}
	}

	if fetchBackgrounds {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		f := &background.Fetcher{
			NASAAPIKey:   cfg.Background.NASAAPIKey,
			PexelsAPIKey: cfg.Background.PexelsAPIKey,
		}
		dir := cfg.Content.AssetsDir + "/backgrounds"
		if meta, err := f.FetchDark(ctx, dir); err != nil {
			logger.Error("fetch dark background", zap.Error(err))
		} else {
			logger.Info("dark background updated", zap.String("title", meta.Title))
		}
		if meta, err := f.FetchLight(ctx, dir); err != nil {
			logger.Error("fetch light background", zap.Error(err))
		} else {
			logger.Info("light background updated", zap.String("title", meta.Title))
		}
	}
}
