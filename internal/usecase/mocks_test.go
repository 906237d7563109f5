package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/quoteflow/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu          sync.Mutex
	data        map[string]interface{}
	getError    error
	setError    error
	getCalls    int
	deleteCalls int
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string]interface{}),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *MockCacheRepository) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]interface{})
	return nil
}

// MockCorpusProvider is a mock implementation of domain.CorpusProvider
type MockCorpusProvider struct {
	mu     sync.Mutex
	corpus *domain.Corpus
	err    error
	calls  int
}

func (m *MockCorpusProvider) LoadCorpus(ctx context.Context) (*domain.Corpus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.corpus, nil
}

// MockStore is an in-memory implementation of the request, quote and sequence repositories
type MockStore struct {
	mu        sync.Mutex
	requests  map[string]*domain.Request
	quotes    map[string]*domain.Quote
	sequences map[string]int
	createErr error
}

func NewMockStore() *MockStore {
	return &MockStore{
		requests:  make(map[string]*domain.Request),
		quotes:    make(map[string]*domain.Quote),
		sequences: make(map[string]int),
	}
}

func (m *MockStore) CreateRequest(ctx context.Context, req *domain.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	stored := *req
	stored.Products = append([]domain.Product(nil), req.Products...)
	m.requests[req.ID] = &stored
	return nil
}

func (m *MockStore) GetRequest(ctx context.Context, id string) (*domain.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *req
	out.Products = append([]domain.Product(nil), req.Products...)
	out.Quotes = []domain.Quote{}
	for _, q := range m.quotes {
		if q.RequestID == id {
			out.Quotes = append(out.Quotes, *q)
		}
	}
	return &out, nil
}

func (m *MockStore) ListRequests(ctx context.Context) ([]domain.Request, error) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.requests))
	for id := range m.requests {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var out []domain.Request
	for _, id := range ids {
		req, err := m.GetRequest(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, nil
}

func (m *MockStore) UpdateRequestStatus(ctx context.Context, id string, status domain.RequestStatus, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return domain.ErrNotFound
	}
	req.Status = status
	req.UpdatedAt = at
	return nil
}

func (m *MockStore) CreateQuote(ctx context.Context, q *domain.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[q.RequestID]
	if !ok {
		return domain.ErrNotFound
	}
	if req.Status == domain.RequestStatusClosed {
		return domain.ErrRequestClosed
	}
	if req.Status == domain.RequestStatusOpen {
		req.Status = domain.RequestStatusQuoted
	}
	req.UpdatedAt = q.SubmittedAt
	stored := *q
	m.quotes[q.ID] = &stored
	return nil
}

func (m *MockStore) GetQuote(ctx context.Context, id string) (*domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *q
	return &out, nil
}

func (m *MockStore) UpdateQuoteStatus(ctx context.Context, id string, from, to domain.QuoteStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotes[id]
	if !ok {
		return domain.ErrNotFound
	}
	if q.Status != from {
		return domain.ErrConflict
	}
	q.Status = to
	return nil
}

func (m *MockStore) NextSequence(ctx context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[prefix]++
	return m.sequences[prefix], nil
}

func (m *MockStore) SeedSequence(ctx context.Context, prefix string, atLeast int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sequences[prefix] < atLeast {
		m.sequences[prefix] = atLeast
	}
	return nil
}

// MockNotifier records published notifications
type MockNotifier struct {
	mu        sync.Mutex
	published []domain.Notification
}

func (m *MockNotifier) Publish(ctx context.Context, n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, n)
	return nil
}

// MockInvalidator counts invalidations
type MockInvalidator struct {
	calls int
}

func (m *MockInvalidator) Invalidate(ctx context.Context) {
	m.calls++
}

// closingStore closes the request right after handing out a snapshot of it,
// simulating a close that lands between the read and the quote insert
type closingStore struct {
	*MockStore
}

func (c *closingStore) GetRequest(ctx context.Context, id string) (*domain.Request, error) {
	req, err := c.MockStore.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.MockStore.UpdateRequestStatus(ctx, id, domain.RequestStatusClosed, req.UpdatedAt); err != nil {
		return nil, err
	}
	return req, nil
}
