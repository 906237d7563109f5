package http

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quoteflow/backend/internal/domain"
	"github.com/quoteflow/backend/internal/usecase"
	"github.com/shopspring/decimal"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	similarity    *usecase.SimilarityService
	rfq           *usecase.RFQService
	notifications *usecase.NotificationService
}

// NewHandler creates a new HTTP handler. Nil services make their endpoints
// answer 501 Not Implemented.
func NewHandler(
	similarity *usecase.SimilarityService,
	rfq *usecase.RFQService,
	notifications *usecase.NotificationService,
) *Handler {
	return &Handler{
		similarity:    similarity,
		rfq:           rfq,
		notifications: notifications,
	}
}

type batchSimilarRequest struct {
	Products []domain.Product `json:"products"`
}

type submitQuoteRequest struct {
	ProductID    string          `json:"productId" binding:"required"`
	Price        decimal.Decimal `json:"price"`
	DeliveryDate time.Time       `json:"deliveryDate"`
	Notes        string          `json:"notes"`
}

type quoteStatusRequest struct {
	Status domain.QuoteStatus `json:"status" binding:"required"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "quoteflow-backend",
		"version": "1.0.0",
	})
}

// FindSimilarQuotes returns up to three recent quotes for products similar to the posted one
func (h *Handler) FindSimilarQuotes(c *gin.Context) {
	if h.similarity == nil {
		notConfigured(c, "similar quote search")
		return
	}

	var query domain.Product
	if err := c.ShouldBindJSON(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	quotes, err := h.similarity.FindSimilar(c.Request.Context(), &query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quotes": quotes})
}

// FindSimilarQuotesBatch matches every product of a draft request, keeping input order
func (h *Handler) FindSimilarQuotesBatch(c *gin.Context) {
	if h.similarity == nil {
		notConfigured(c, "similar quote search")
		return
	}

	var req batchSimilarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	results, err := h.similarity.FindSimilarForProducts(c.Request.Context(), req.Products)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// CreateRequest creates a request for quotation
func (h *Handler) CreateRequest(c *gin.Context) {
	if h.rfq == nil {
		notConfigured(c, "requests")
		return
	}

	var input usecase.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	req, err := h.rfq.CreateRequest(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, req)
}

// ListRequests lists all requests for quotation
func (h *Handler) ListRequests(c *gin.Context) {
	if h.rfq == nil {
		notConfigured(c, "requests")
		return
	}

	requests, err := h.rfq.ListRequests(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if requests == nil {
		requests = []domain.Request{}
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// GetRequest returns one request with its products and quotes
func (h *Handler) GetRequest(c *gin.Context) {
	if h.rfq == nil {
		notConfigured(c, "requests")
		return
	}

	req, err := h.rfq.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, req)
}

// CloseRequest closes a request to new quotes
func (h *Handler) CloseRequest(c *gin.Context) {
	if h.rfq == nil {
		notConfigured(c, "requests")
		return
	}

	req, err := h.rfq.CloseRequest(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, req)
}

// SubmitQuote records a purchaser's quote for a product of the request
func (h *Handler) SubmitQuote(c *gin.Context) {
	if h.rfq == nil {
		notConfigured(c, "quotes")
		return
	}

	var body submitQuoteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	quote, err := h.rfq.SubmitQuote(c.Request.Context(), actorFrom(c), c.Param("id"), usecase.SubmitQuoteInput{
		ProductID:    body.ProductID,
		Price:        body.Price,
		DeliveryDate: body.DeliveryDate,
		Notes:        body.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quote)
}

// UpdateQuoteStatus accepts, rejects or withdraws a pending quote
func (h *Handler) UpdateQuoteStatus(c *gin.Context) {
	if h.rfq == nil {
		notConfigured(c, "quotes")
		return
	}

	var body quoteStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	quote, err := h.rfq.UpdateQuoteStatus(c.Request.Context(), actorFrom(c), c.Param("id"), body.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// ListNotifications returns the caller's personal and role notifications
func (h *Handler) ListNotifications(c *gin.Context) {
	if h.notifications == nil {
		notConfigured(c, "notifications")
		return
	}

	actor := actorFrom(c)
	list, err := h.notifications.List(c.Request.Context(), actor.ID, domain.RoleRecipient(actor.Role))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

// MarkNotificationRead flags one of the caller's notifications as read
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if h.notifications == nil {
		notConfigured(c, "notifications")
		return
	}

	actor := actorFrom(c)
	err := h.notifications.MarkRead(c.Request.Context(), c.Param("id"), actor.ID, domain.RoleRecipient(actor.Role))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ClearNotifications empties the caller's personal inbox
func (h *Handler) ClearNotifications(c *gin.Context) {
	if h.notifications == nil {
		notConfigured(c, "notifications")
		return
	}

	if err := h.notifications.Clear(c.Request.Context(), actorFrom(c).ID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func notConfigured(c *gin.Context, feature string) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": feature + " is not configured"})
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrRequestClosed):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, domain.ErrCorpusUnavailable):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
