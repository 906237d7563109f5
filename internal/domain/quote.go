package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStatus is the lifecycle state of a quote
type QuoteStatus string

const (
	QuoteStatusPending   QuoteStatus = "pending"
	QuoteStatusAccepted  QuoteStatus = "accepted"
	QuoteStatusRejected  QuoteStatus = "rejected"
	QuoteStatusWithdrawn QuoteStatus = "withdrawn"
)

// Valid reports whether s is one of the known statuses
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusPending, QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusWithdrawn:
		return true
	}
	return false
}

// CanTransitionTo reports whether a quote in status s may move to next.
// Only pending quotes change state; every other status is terminal.
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	if s != QuoteStatusPending {
		return false
	}
	switch next {
	case QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusWithdrawn:
		return true
	}
	return false
}

// Quote is a purchaser's price and delivery offer for one product of a request
type Quote struct {
	ID           string          `json:"id"`
	RequestID    string          `json:"requestId"`
	ProductID    string          `json:"productId"`
	PurchaserID  string          `json:"purchaserId"`
	Price        decimal.Decimal `json:"price"`
	DeliveryDate time.Time       `json:"deliveryDate"`
	SubmittedAt  time.Time       `json:"submittedAt"`
	Status       QuoteStatus     `json:"status"`
	Notes        string          `json:"notes,omitempty"`
}

// DedupKey identifies a quote by request, product and submitter.
func (q *Quote) DedupKey() string {
	return q.RequestID + "\x00" + q.ProductID + "\x00" + q.PurchaserID
}
