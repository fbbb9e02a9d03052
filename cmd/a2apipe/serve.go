package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"a2apipe/agents/blogpost"
	"a2apipe/agents/research"
	"a2apipe/config"
	"a2apipe/host"
	"a2apipe/internal/metrics"
)

func runServeResearch(args []string) {
	cfg := loadConfig("serve-research", args, nil)
	logger := buildLogger(cfg.Log)
	defer logger.Sync()

	collector := maybeMetrics(cfg, logger)
	server := researchHost(cfg, logger, collector)
	serveAll(logger, cfg, server)
}

func runServeBlog(args []string) {
	cfg := loadConfig("serve-blog", args, nil)
	logger := buildLogger(cfg.Log)
	defer logger.Sync()

	collector := maybeMetrics(cfg, logger)
	server := blogHost(cfg, logger, collector)
	serveAll(logger, cfg, server)
}

func runServeDemo(args []string) {
	cfg := loadConfig("serve-demo", args, nil)
	logger := buildLogger(cfg.Log)
	defer logger.Sync()

	collector := maybeMetrics(cfg, logger)
	serveAll(logger, cfg,
		researchHost(cfg, logger, collector),
		blogHost(cfg, logger, collector),
	)
}

func researchHost(cfg *config.Config, logger *zap.Logger, collector *metrics.Collector) *host.Server {
	return host.NewServer(&host.ServerConfig{
		Addr:    cfg.Research.Addr,
		BaseURL: cfg.Research.BaseURL,
		Logger:  logger,
		Metrics: collector,
	}, research.New(logger))
}

func blogHost(cfg *config.Config, logger *zap.Logger, collector *metrics.Collector) *host.Server {
	agent := blogpost.New(&blogpost.Config{
		OutputDir: cfg.Blog.OutputDir,
		Logger:    logger,
		Metrics:   collector,
	})
	return host.NewServer(&host.ServerConfig{
		Addr:    cfg.Blog.Addr,
		BaseURL: cfg.Blog.BaseURL,
		Logger:  logger,
		Metrics: collector,
	}, agent)
}

// serveAll runs the given hosts (plus the metrics endpoint when enabled)
// until a signal arrives, then shuts them down gracefully.
func serveAll(logger *zap.Logger, cfg *config.Config, servers ...*host.Server) {
	ctx, stop := signalContext()
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, server := range servers {
		g.Go(server.ListenAndServe)
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		g.Go(func() error {
			logger.Info("metrics endpoint listening", zap.String("addr", cfg.Metrics.Addr))
			if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, server := range servers {
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Warn("host shutdown failed", zap.Error(err))
			}
		}
		if metricsServer != nil {
			_ = metricsServer.Shutdown(shutdownCtx)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("serve failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// maybeMetrics returns a collector when the metrics endpoint is enabled.
// Components accept a nil collector, so disabled metrics cost nothing.
func maybeMetrics(cfg *config.Config, logger *zap.Logger) *metrics.Collector {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.NewCollector(cfg.Metrics.Namespace, nil, logger)
}
