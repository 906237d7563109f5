package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain"
)

// Notification kinds
const (
	NotificationRequestCreated = "request_created"
	NotificationQuoteSubmitted = "quote_submitted"
	NotificationQuoteStatus    = "quote_status_changed"
)

// NotificationService keeps per-recipient inboxes in an injected store
type NotificationService struct {
	store domain.CacheRepository
	ttl   time.Duration
	now   func() time.Time
	mu    sync.Mutex
}

// NewNotificationService creates a notification service over store
func NewNotificationService(store domain.CacheRepository, ttl time.Duration) *NotificationService {
	if ttl == 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &NotificationService{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

func inboxKey(recipient string) string {
	return "notifications:" + recipient
}

// Publish appends n to the recipient's inbox, assigning id and timestamp
func (s *NotificationService) Publish(ctx context.Context, n domain.Notification) error {
	if n.Recipient == "" {
		return domain.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inbox, err := s.inbox(ctx, n.Recipient)
	if err != nil {
		return err
	}

	n.ID = uuid.New().String()
	n.CreatedAt = s.now().UTC()
	n.Read = false
	inbox = append(inbox, n)

	if err := s.store.Set(ctx, inboxKey(n.Recipient), inbox, s.ttl); err != nil {
		return fmt.Errorf("storing notification: %w", err)
	}

	log.Printf("[NOTIFY] %s -> %s", n.Kind, n.Recipient)
	return nil
}

// List returns the notifications of all recipients, newest first
func (s *NotificationService) List(ctx context.Context, recipients ...string) ([]domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := []domain.Notification{}
	for _, r := range recipients {
		inbox, err := s.inbox(ctx, r)
		if err != nil {
			return nil, err
		}
		all = append(all, inbox...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

// MarkRead flags notification id as read in whichever recipient inbox holds it
func (s *NotificationService) MarkRead(ctx context.Context, id string, recipients ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range recipients {
		inbox, err := s.inbox(ctx, r)
		if err != nil {
			return err
		}
		for i := range inbox {
			if inbox[i].ID != id {
				continue
			}
			inbox[i].Read = true
			return s.store.Set(ctx, inboxKey(r), inbox, s.ttl)
		}
	}
	return domain.ErrNotFound
}

// Clear empties the recipient's inbox
func (s *NotificationService) Clear(ctx context.Context, recipient string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.Delete(ctx, inboxKey(recipient))
}

// inbox returns a copy of the stored inbox; callers must hold s.mu
func (s *NotificationService) inbox(ctx context.Context, recipient string) ([]domain.Notification, error) {
	value, err := s.store.Get(ctx, inboxKey(recipient))
	if errors.Is(err, domain.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading notifications: %w", err)
	}

	stored, ok := value.([]domain.Notification)
	if !ok {
		return nil, nil
	}
	inbox := make([]domain.Notification, len(stored))
	copy(inbox, stored)
	return inbox, nil
}
