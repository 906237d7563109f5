package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/quoteflow/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// corpusCacheKey is the cache slot holding the current corpus snapshot
const corpusCacheKey = "corpus:snapshot"

// SimilarityServiceConfig holds configuration for the similarity service
type SimilarityServiceConfig struct {
	CorpusCacheTTL     time.Duration
	EnableDebugLogging bool
}

// SimilarityService loads the historical corpus (cached per process) and
// runs the similar-quote matcher against it
type SimilarityService struct {
	corpus             domain.CorpusProvider
	cache              domain.CacheRepository
	cacheTTL           time.Duration
	enableDebugLogging bool
}

// NewSimilarityService creates a new similarity service with dependencies
func NewSimilarityService(
	corpus domain.CorpusProvider,
	cache domain.CacheRepository,
	config SimilarityServiceConfig,
) *SimilarityService {
	cacheTTL := config.CorpusCacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	return &SimilarityService{
		corpus:             corpus,
		cache:              cache,
		cacheTTL:           cacheTTL,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// FindSimilar returns up to three historical quotes similar to query
func (s *SimilarityService) FindSimilar(ctx context.Context, query *domain.Product) ([]domain.Quote, error) {
	if query == nil {
		return nil, domain.ErrInvalidRequest
	}

	corpus, err := s.loadCorpus(ctx)
	if err != nil {
		return nil, err
	}

	quotes, err := FindSimilarQuotes(query, corpus)
	if err != nil {
		return nil, err
	}

	if s.enableDebugLogging {
		log.Printf("[SIMILAR] series=%q requests=%d matches=%d",
			query.Series.String(), len(corpus.Requests), len(quotes))
	}

	return quotes, nil
}

// FindSimilarForProducts matches every product of a draft request against a
// single corpus snapshot. Results are positional: results[i] belongs to products[i].
func (s *SimilarityService) FindSimilarForProducts(ctx context.Context, products []domain.Product) ([][]domain.Quote, error) {
	if len(products) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	corpus, err := s.loadCorpus(ctx)
	if err != nil {
		return nil, err
	}

	results := make([][]domain.Quote, len(products))
	g, gCtx := errgroup.WithContext(ctx)
	for i := range products {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			quotes, err := FindSimilarQuotes(&products[i], corpus)
			if err != nil {
				return err
			}
			results[i] = quotes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Invalidate drops the cached corpus so the next lookup reloads it
func (s *SimilarityService) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, corpusCacheKey); err != nil {
		log.Printf("[SIMILAR] failed to invalidate corpus cache: %v", err)
	}
}

// loadCorpus returns the cached snapshot or fetches a fresh one
func (s *SimilarityService) loadCorpus(ctx context.Context) (*domain.Corpus, error) {
	if cached, err := s.cache.Get(ctx, corpusCacheKey); err == nil {
		if corpus, ok := cached.(*domain.Corpus); ok {
			return corpus, nil
		}
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		log.Printf("[SIMILAR] corpus cache read failed, loading directly: %v", err)
	}

	start := time.Now()
	corpus, err := s.corpus.LoadCorpus(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorpusUnavailable, err)
	}
	if corpus == nil {
		return nil, fmt.Errorf("%w: provider returned no corpus", domain.ErrCorpusUnavailable)
	}

	if s.enableDebugLogging {
		log.Printf("[SIMILAR] loaded corpus: %d requests in %s", len(corpus.Requests), time.Since(start))
	}

	if err := s.cache.Set(ctx, corpusCacheKey, corpus, s.cacheTTL); err != nil {
		// Log but don't fail if caching fails
		log.Printf("[SIMILAR] failed to cache corpus: %v", err)
	}

	return corpus, nil
}
