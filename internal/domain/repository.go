package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for key-value caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
}

// CorpusProvider supplies the full set of historical requests for matching
type CorpusProvider interface {
	LoadCorpus(ctx context.Context) (*Corpus, error)
}

// RequestRepository persists requests for quotation and their products
type RequestRepository interface {
	CreateRequest(ctx context.Context, req *Request) error
	GetRequest(ctx context.Context, id string) (*Request, error)
	ListRequests(ctx context.Context) ([]Request, error)
	UpdateRequestStatus(ctx context.Context, id string, status RequestStatus, at time.Time) error
}

// QuoteRepository persists quotes
type QuoteRepository interface {
	// CreateQuote stores q and moves its request from open to quoted in one
	// step. It returns ErrRequestClosed if the request is closed.
	CreateQuote(ctx context.Context, q *Quote) error
	GetQuote(ctx context.Context, id string) (*Quote, error)
	// UpdateQuoteStatus moves a quote from one status to another and returns
	// ErrConflict if the stored status is no longer from.
	UpdateQuoteStatus(ctx context.Context, id string, from, to QuoteStatus) error
}

// SequenceRepository hands out monotonically increasing per-prefix counters
type SequenceRepository interface {
	NextSequence(ctx context.Context, prefix string) (int, error)
	SeedSequence(ctx context.Context, prefix string, atLeast int) error
}
