package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"MegaStore/internal/catalog"
	"MegaStore/pkg/kit"
)

const minSecretLen = 32

func main() {
	service := "catalog"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	src, closeSrc := newSource(cfg, log)
	defer closeSrc()

	metrics := catalog.NewMetrics(reg)
	holder := catalog.NewHolder(src, log, metrics)
	if _, err := holder.Reload(ctx); err != nil {
		log.Fatal("initial catalog load failed", zap.Error(err))
	}

	s := &catalog.Server{
		Holder:  holder,
		Log:     log,
		Metrics: metrics,
	}
	if cfg.AdminJWTSecret != "" {
		if len(cfg.AdminJWTSecret) < minSecretLen {
			log.Fatal("ADMIN_JWT_SECRET must be at least 32 chars")
		}
		s.Admin = catalog.NewTokenMaker(cfg.AdminJWTSecret)
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:               log,
		Service:           service,
		Registry:          reg,
		MetricsEnabled:    true,
		MetricsToken:      cfg.MetricsToken,
		RateLimit:         cfg.RateLimit,
		RateWindowSeconds: cfg.RateWindowSeconds,
		TrustProxy:        cfg.TrustProxy,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return kit.RunHTTPServer(gctx, ":"+cfg.Port, h, log)
	})
	if path, ok := watchPath(cfg, src, log); ok {
		g.Go(func() error {
			return holder.WatchFile(gctx, path)
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatal("catalog service stopped", zap.Error(err))
	}
}

func newSource(cfg config, log *zap.Logger) (catalog.Source, func()) {
	if cfg.DatabaseURL != "" {
		db, err := catalog.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("open database failed", zap.Error(err))
		}
		return catalog.NewPostgresSource(db), func() { _ = db.Close() }
	}

	if _, err := os.Stat(cfg.ProductsFile); err != nil {
		log.Warn("products file unavailable, serving demo catalog",
			zap.String("path", cfg.ProductsFile), zap.Error(err))
		return catalog.NewDemoSource(), func() {}
	}
	return catalog.NewFileSource(cfg.ProductsFile, log), func() {}
}

// watchPath reports the file to watch when WATCH is set. Only a file source
// can be watched; the demo and Postgres sources log why WATCH is ignored.
func watchPath(cfg config, src catalog.Source, log *zap.Logger) (string, bool) {
	if !cfg.Watch {
		return "", false
	}
	fs, ok := src.(*catalog.FileSource)
	if !ok {
		log.Warn("WATCH ignored: catalog is not served from a products file",
			zap.String("source", src.Name()), zap.String("path", cfg.ProductsFile))
		return "", false
	}
	return fs.Path, true
}
