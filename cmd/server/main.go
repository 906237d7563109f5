package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/quoteflow/backend/config"
	httpDelivery "github.com/quoteflow/backend/internal/delivery/http"
	"github.com/quoteflow/backend/internal/domain"
	"github.com/quoteflow/backend/internal/infrastructure/auth"
	"github.com/quoteflow/backend/internal/infrastructure/cache"
	"github.com/quoteflow/backend/internal/infrastructure/mongostore"
	"github.com/quoteflow/backend/internal/infrastructure/remote"
	"github.com/quoteflow/backend/internal/infrastructure/sqlite"
	"github.com/quoteflow/backend/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting QuoteFlow Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Corpus source: %s (cache TTL %s)", cfg.Corpus.Source, cfg.Corpus.CacheTTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()
	log.Printf("[SQLITE] opened %s", cfg.Storage.Path)

	corpus, closeCorpus, err := newCorpusProvider(ctx, cfg, store)
	if err != nil {
		log.Fatalf("Failed to initialize corpus provider: %v", err)
	}
	defer closeCorpus()

	// Initialize usecase layer
	similarityService := usecase.NewSimilarityService(
		corpus,
		cache.NewMemoryCache(),
		usecase.SimilarityServiceConfig{
			CorpusCacheTTL:     cfg.Corpus.CacheTTL,
			EnableDebugLogging: cfg.Matching.EnableDebugLogging,
		},
	)
	notificationService := usecase.NewNotificationService(cache.NewMemoryCache(), cfg.Notifications.TTL)
	wlids := usecase.NewWLIDGenerator(store, usecase.WLIDConfig{
		Width:    cfg.WLID.Width,
		Prefixes: cfg.WLID.Prefixes,
	})
	rfqService := usecase.NewRFQService(store, store, wlids, notificationService, similarityService)

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	handler := httpDelivery.NewHandler(similarityService, rfqService, notificationService)
	router := httpDelivery.SetupRouter(cfg, handler, tokens)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down (timeout %s)", cfg.Server.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}

// newCorpusProvider builds the configured corpus source and its cleanup
func newCorpusProvider(ctx context.Context, cfg *config.Config, store *sqlite.Store) (domain.CorpusProvider, func(), error) {
	switch cfg.Corpus.Source {
	case config.CorpusSourceMongo:
		provider, err := mongostore.NewProvider(ctx, mongostore.Config{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
			Timeout:    cfg.Mongo.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return provider, func() {
			if err := provider.Close(); err != nil {
				log.Printf("[MONGO] disconnect failed: %v", err)
			}
		}, nil

	case config.CorpusSourceRemote:
		client := remote.NewClient(remote.Config{
			BaseURL:           cfg.Remote.BaseURL,
			APIKey:            cfg.Remote.APIKey,
			RequestsPerSecond: cfg.Remote.RequestsPerSecond,
			Burst:             cfg.Remote.Burst,
		})
		if cfg.Server.Environment == "development" {
			client.SetDebug(true)
			log.Printf("Remote corpus client debug mode enabled")
		}
		return client, func() {}, nil

	default:
		return store, func() {}, nil
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
