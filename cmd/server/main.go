package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/genericrx/backend/config"
	httpDelivery "github.com/genericrx/backend/internal/delivery/http"
	"github.com/genericrx/backend/internal/infrastructure/cache"
	"github.com/genericrx/backend/internal/infrastructure/normalizer"
	"github.com/genericrx/backend/internal/infrastructure/pinecone"
	"github.com/genericrx/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logging
	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	logger.Info("starting genericrx backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("index", cfg.Store.Index),
	)

	// Infrastructure dependencies, constructed explicitly and passed
	// down: no package-level handles, no import side effects.
	memo := cache.NewLRUMemo(cfg.Cache.MemoCapacity, cache.WithTTL(cfg.Cache.MemoTTL))

	store := pinecone.NewClient(cfg.Store.APIKey, cfg.Store.BaseURL)

	nameNormalizer := normalizer.NewClient(
		cfg.Normalizer.APIKey,
		cfg.Normalizer.BaseURL,
		normalizer.WithTimeout(cfg.Normalizer.Timeout),
	)

	// Usecase layer
	resolver := usecase.NewResolutionService(
		store,
		nameNormalizer,
		memo,
		usecase.ResolutionConfig{
			Retailers:        cfg.Resolver.Retailers,
			FetchConcurrency: cfg.Resolver.FetchConcurrency,
		},
	)

	logger.Info("resolver configured",
		zap.Strings("retailers", cfg.Resolver.Retailers),
		zap.Int("fetch_concurrency", cfg.Resolver.FetchConcurrency),
		zap.Int("memo_capacity", cfg.Cache.MemoCapacity),
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(resolver)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// newLogger builds the process logger: human-readable in development,
// JSON in production.
func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
