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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/acheong08/neuromap/internal/config"
	"github.com/acheong08/neuromap/internal/generate"
	"github.com/acheong08/neuromap/internal/logging"
	"github.com/acheong08/neuromap/internal/metrics"
	"github.com/acheong08/neuromap/internal/proxy"
	"github.com/acheong08/neuromap/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	collector := metrics.New()

	backend, err := newBackend(ctx, cfg)
	switch {
	case errors.Is(err, proxy.ErrNotConfigured):
		logger.Warn("No API key for the generation backend, proxy will reject requests",
			zap.String("backend", cfg.ProxyBackend))
	case err != nil:
		return err
	}

	client := generate.NewClient(cfg.GenerationEndpoint,
		generate.WithModel(cfg.GenerationModel),
		generate.WithTemperature(cfg.RoadmapTemperature),
		generate.WithLogger(logger),
	)

	srv := server.New(ctx, server.Services{
		Generator: client,
		Details:   client,
		Layout:    cfg.Layout,
		Style:     cfg.Style,
		Logger:    logger,
		Metrics:   collector,
	}, proxy.NewHandler(backend, cfg.Breaker, collector, logger), cfg.AllowedOrigins)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting",
			zap.String("port", cfg.Port),
			zap.String("backend", cfg.ProxyBackend),
			zap.String("generation_endpoint", cfg.GenerationEndpoint))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newBackend returns a nil Backend with ErrNotConfigured when the key is missing
func newBackend(ctx context.Context, cfg *config.Config) (proxy.Backend, error) {
	switch cfg.ProxyBackend {
	case "openai":
		b, err := proxy.NewOpenAI(ctx, cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		b, err := proxy.NewGemini(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}
