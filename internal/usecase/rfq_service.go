package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Notifier delivers informational notifications
type Notifier interface {
	Publish(ctx context.Context, n domain.Notification) error
}

// CorpusInvalidator is told when the historical corpus has changed
type CorpusInvalidator interface {
	Invalidate(ctx context.Context)
}

// CreateRequestInput is a draft request for quotation
type CreateRequestInput struct {
	Title    string           `json:"title"`
	Customer string           `json:"customer"`
	Products []domain.Product `json:"products"`
}

// SubmitQuoteInput is a purchaser's offer for one product
type SubmitQuoteInput struct {
	ProductID    string
	Price        decimal.Decimal
	DeliveryDate time.Time
	Notes        string
}

// RFQService implements the request-for-quotation workflow
type RFQService struct {
	requests    domain.RequestRepository
	quotes      domain.QuoteRepository
	wlids       *WLIDGenerator
	notifier    Notifier
	invalidator CorpusInvalidator
	now         func() time.Time
}

// NewRFQService creates a new RFQ service with dependencies
func NewRFQService(
	requests domain.RequestRepository,
	quotes domain.QuoteRepository,
	wlids *WLIDGenerator,
	notifier Notifier,
	invalidator CorpusInvalidator,
) *RFQService {
	return &RFQService{
		requests:    requests,
		quotes:      quotes,
		wlids:       wlids,
		notifier:    notifier,
		invalidator: invalidator,
		now:         time.Now,
	}
}

// CreateRequest validates a draft, assigns identifiers and product codes, and persists it
func (s *RFQService) CreateRequest(ctx context.Context, actor domain.Actor, input CreateRequestInput) (*domain.Request, error) {
	if !actor.HasRole(domain.RoleSales, domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidRequest)
	}
	if len(input.Products) == 0 {
		return nil, fmt.Errorf("%w: at least one product is required", domain.ErrInvalidRequest)
	}

	now := s.now().UTC()
	req := &domain.Request{
		ID:        uuid.New().String(),
		Title:     title,
		Customer:  strings.TrimSpace(input.Customer),
		CreatedBy: actor.ID,
		Status:    domain.RequestStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
		Products:  make([]domain.Product, 0, len(input.Products)),
		Quotes:    []domain.Quote{},
	}

	for i, p := range input.Products {
		series, ok := p.Series.Get()
		if !ok || strings.TrimSpace(series) == "" {
			return nil, fmt.Errorf("%w: product %d has no product series", domain.ErrInvalidRequest, i+1)
		}
		if p.Quantity < 0 {
			return nil, fmt.Errorf("%w: product %d has a negative quantity", domain.ErrInvalidRequest, i+1)
		}
		if p.Quantity == 0 {
			p.Quantity = 1
		}

		wlid, err := s.wlids.Next(ctx, series)
		if err != nil {
			return nil, err
		}

		p.ID = uuid.New().String()
		p.RequestID = req.ID
		p.WLID = wlid
		req.Products = append(req.Products, p)
	}

	if err := s.requests.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("saving request: %w", err)
	}

	log.Printf("[RFQ] request %s created by %s with %d products", req.ID, actor.ID, len(req.Products))

	s.invalidate(ctx)
	s.notify(ctx, domain.Notification{
		Recipient: domain.RoleRecipient(domain.RolePurchasing),
		Kind:      NotificationRequestCreated,
		Message:   fmt.Sprintf("New request for quotation: %s", req.Title),
		RequestID: req.ID,
	})

	return req, nil
}

// GetRequest returns a request with its products and quotes
func (s *RFQService) GetRequest(ctx context.Context, id string) (*domain.Request, error) {
	if id == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.requests.GetRequest(ctx, id)
}

// ListRequests returns all requests, oldest first
func (s *RFQService) ListRequests(ctx context.Context) ([]domain.Request, error) {
	return s.requests.ListRequests(ctx)
}

// SubmitQuote records a pending quote against a product of an open request
func (s *RFQService) SubmitQuote(ctx context.Context, actor domain.Actor, requestID string, input SubmitQuoteInput) (*domain.Quote, error) {
	if !actor.HasRole(domain.RolePurchasing, domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	if !input.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrInvalidRequest)
	}
	if input.DeliveryDate.IsZero() {
		return nil, fmt.Errorf("%w: delivery date is required", domain.ErrInvalidRequest)
	}

	req, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status == domain.RequestStatusClosed {
		return nil, domain.ErrRequestClosed
	}
	if req.FindProduct(input.ProductID) == nil {
		return nil, fmt.Errorf("%w: product %q is not part of request %s", domain.ErrInvalidRequest, input.ProductID, req.ID)
	}

	now := s.now().UTC()
	quote := &domain.Quote{
		ID:           uuid.New().String(),
		RequestID:    req.ID,
		ProductID:    input.ProductID,
		PurchaserID:  actor.ID,
		Price:        input.Price,
		DeliveryDate: input.DeliveryDate.UTC(),
		SubmittedAt:  now,
		Status:       domain.QuoteStatusPending,
		Notes:        strings.TrimSpace(input.Notes),
	}

	// the store re-checks the request status atomically with the insert
	if err := s.quotes.CreateQuote(ctx, quote); err != nil {
		if errors.Is(err, domain.ErrRequestClosed) {
			return nil, err
		}
		return nil, fmt.Errorf("saving quote: %w", err)
	}

	log.Printf("[RFQ] quote %s submitted by %s for request %s", quote.ID, actor.ID, req.ID)

	s.invalidate(ctx)
	s.notify(ctx, domain.Notification{
		Recipient: req.CreatedBy,
		Kind:      NotificationQuoteSubmitted,
		Message:   fmt.Sprintf("New quote of %s for %s", quote.Price.StringFixed(2), req.Title),
		RequestID: req.ID,
		QuoteID:   quote.ID,
	})

	return quote, nil
}

// UpdateQuoteStatus moves a pending quote to accepted, rejected or withdrawn.
// Sales and admins accept or reject; the submitting purchaser or an admin withdraws.
func (s *RFQService) UpdateQuoteStatus(ctx context.Context, actor domain.Actor, quoteID string, status domain.QuoteStatus) (*domain.Quote, error) {
	if quoteID == "" || !status.Valid() {
		return nil, domain.ErrInvalidRequest
	}

	quote, err := s.quotes.GetQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if !quote.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, quote.Status, status)
	}

	switch status {
	case domain.QuoteStatusWithdrawn:
		if actor.ID != quote.PurchaserID && !actor.HasRole(domain.RoleAdmin) {
			return nil, domain.ErrForbidden
		}
	default:
		if !actor.HasRole(domain.RoleSales, domain.RoleAdmin) {
			return nil, domain.ErrForbidden
		}
	}

	if err := s.quotes.UpdateQuoteStatus(ctx, quote.ID, quote.Status, status); err != nil {
		return nil, err
	}
	quote.Status = status

	log.Printf("[RFQ] quote %s -> %s by %s", quote.ID, status, actor.ID)

	s.invalidate(ctx)
	s.notify(ctx, domain.Notification{
		Recipient: quote.PurchaserID,
		Kind:      NotificationQuoteStatus,
		Message:   fmt.Sprintf("Your quote was %s", status),
		RequestID: quote.RequestID,
		QuoteID:   quote.ID,
	})

	return quote, nil
}

// CloseRequest stops a request from accepting new quotes
func (s *RFQService) CloseRequest(ctx context.Context, actor domain.Actor, id string) (*domain.Request, error) {
	if !actor.HasRole(domain.RoleSales, domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}

	req, err := s.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status == domain.RequestStatusClosed {
		return req, nil
	}

	now := s.now().UTC()
	if err := s.requests.UpdateRequestStatus(ctx, req.ID, domain.RequestStatusClosed, now); err != nil {
		return nil, fmt.Errorf("closing request: %w", err)
	}
	req.Status = domain.RequestStatusClosed
	req.UpdatedAt = now

	s.invalidate(ctx)
	return req, nil
}

// notify publishes n; delivery failures never fail the operation
func (s *RFQService) notify(ctx context.Context, n domain.Notification) {
	if s.notifier == nil || n.Recipient == "" {
		return
	}
	if err := s.notifier.Publish(ctx, n); err != nil {
		log.Printf("[RFQ] notification %s to %s failed: %v", n.Kind, n.Recipient, err)
	}
}

func (s *RFQService) invalidate(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
}
