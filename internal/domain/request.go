package domain

import "time"

// RequestStatus is the lifecycle state of a request for quotation
type RequestStatus string

const (
	RequestStatusOpen   RequestStatus = "open"
	RequestStatusQuoted RequestStatus = "quoted"
	RequestStatusClosed RequestStatus = "closed"
)

// Request is a sales-initiated request for quotation (RFQ)
type Request struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Customer  string        `json:"customer,omitempty"`
	CreatedBy string        `json:"createdBy"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Products  []Product     `json:"products"`
	Quotes    []Quote       `json:"quotes"`
}

// FindProduct returns the product with the given id, or nil.
func (r *Request) FindProduct(id string) *Product {
	for i := range r.Products {
		if r.Products[i].ID == id {
			return &r.Products[i]
		}
	}
	return nil
}

// Corpus is a read-only snapshot of historical requests used for similarity matching
type Corpus struct {
	Requests []Request `json:"requests"`
}

// Role is the caller's role in the quoting workflow
type Role string

const (
	RoleSales      Role = "sales"
	RolePurchasing Role = "purchasing"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleSales, RolePurchasing, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated caller of a usecase operation
type Actor struct {
	ID   string
	Role Role
}

// HasRole reports whether the actor holds one of roles
func (a Actor) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// Notification is an informational message delivered to a user or role inbox
type Notification struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	RequestID string    `json:"requestId,omitempty"`
	QuoteID   string    `json:"quoteId,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// RoleRecipient returns the inbox name shared by everyone with role r
func RoleRecipient(r Role) string {
	return "role:" + string(r)
}
