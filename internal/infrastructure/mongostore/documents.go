package mongostore

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/quoteflow/backend/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

// requestDocument is a request stored with its products and quotes embedded.
// Loosely typed fields stay raw so that only BSON strings become attributes.
type requestDocument struct {
	ID        bson.RawValue     `bson:"_id"`
	Title     bson.RawValue     `bson:"title"`
	Customer  bson.RawValue     `bson:"customer"`
	CreatedBy bson.RawValue     `bson:"createdBy"`
	Status    bson.RawValue     `bson:"status"`
	CreatedAt bson.RawValue     `bson:"createdAt"`
	UpdatedAt bson.RawValue     `bson:"updatedAt"`
	Products  []productDocument `bson:"products"`
	Quotes    []quoteDocument   `bson:"quotes"`
}

type productDocument struct {
	ID        bson.RawValue `bson:"id"`
	WLID      bson.RawValue `bson:"wlid"`
	Series    bson.RawValue `bson:"productSeries"`
	HairFiber bson.RawValue `bson:"hairFiber"`
	Cap       bson.RawValue `bson:"cap"`
	CapSize   bson.RawValue `bson:"capSize"`
	Length    bson.RawValue `bson:"length"`
	Density   bson.RawValue `bson:"density"`
	Color     bson.RawValue `bson:"color"`
	CurlStyle bson.RawValue `bson:"curlStyle"`
	Quantity  bson.RawValue `bson:"quantity"`
	Notes     bson.RawValue `bson:"notes"`
}

type quoteDocument struct {
	ID           bson.RawValue `bson:"id"`
	RequestID    bson.RawValue `bson:"requestId"`
	ProductID    bson.RawValue `bson:"productId"`
	PurchaserID  bson.RawValue `bson:"purchaserId"`
	Price        bson.RawValue `bson:"price"`
	DeliveryDate bson.RawValue `bson:"deliveryDate"`
	SubmittedAt  bson.RawValue `bson:"submittedAt"`
	Status       bson.RawValue `bson:"status"`
	Notes        bson.RawValue `bson:"notes"`
}

func (d *requestDocument) toDomain() domain.Request {
	id := idFrom(d.ID)
	req := domain.Request{
		ID:        id,
		Title:     stringFrom(d.Title),
		Customer:  stringFrom(d.Customer),
		CreatedBy: stringFrom(d.CreatedBy),
		Status:    domain.RequestStatus(stringFrom(d.Status)),
		CreatedAt: timeFrom(d.CreatedAt),
		UpdatedAt: timeFrom(d.UpdatedAt),
		Products:  make([]domain.Product, 0, len(d.Products)),
		Quotes:    make([]domain.Quote, 0, len(d.Quotes)),
	}
	if req.Status == "" {
		req.Status = domain.RequestStatusOpen
	}

	for _, p := range d.Products {
		req.Products = append(req.Products, p.toDomain(id))
	}

	for _, q := range d.Quotes {
		req.Quotes = append(req.Quotes, q.toDomain(id))
	}
	return req
}

func (d *productDocument) toDomain(requestID string) domain.Product {
	quantity, ok := intFrom(d.Quantity)
	if !ok {
		quantity = 1
	}
	return domain.Product{
		ID:        idFrom(d.ID),
		RequestID: requestID,
		WLID:      stringFrom(d.WLID),
		Series:    attributeFrom(d.Series),
		HairFiber: attributeFrom(d.HairFiber),
		Cap:       attributeFrom(d.Cap),
		CapSize:   attributeFrom(d.CapSize),
		Length:    attributeFrom(d.Length),
		Density:   attributeFrom(d.Density),
		Color:     attributeFrom(d.Color),
		CurlStyle: attributeFrom(d.CurlStyle),
		Quantity:  quantity,
		Notes:     stringFrom(d.Notes),
	}
}

// toDomain never fails: a missing or unreadable price decodes as zero so one
// bad record cannot take the whole corpus down.
func (d *quoteDocument) toDomain(requestID string) domain.Quote {
	q := domain.Quote{
		ID:           idFrom(d.ID),
		RequestID:    stringFrom(d.RequestID),
		ProductID:    idFrom(d.ProductID),
		PurchaserID:  idFrom(d.PurchaserID),
		DeliveryDate: timeFrom(d.DeliveryDate),
		SubmittedAt:  timeFrom(d.SubmittedAt),
		Status:       domain.QuoteStatus(stringFrom(d.Status)),
		Notes:        stringFrom(d.Notes),
	}
	if q.RequestID == "" {
		q.RequestID = requestID
	}
	if q.Status == "" {
		q.Status = domain.QuoteStatusPending
	}

	price, err := decimalFrom(d.Price)
	if err != nil {
		log.Printf("[MONGO] request %s quote %s: %v, using 0", q.RequestID, q.ID, err)
	}
	q.Price = price
	return q
}

// attributeFrom keeps BSON strings only
func attributeFrom(v bson.RawValue) domain.Attribute {
	if s, ok := v.StringValueOK(); ok {
		return domain.Text(s)
	}
	return domain.Attribute{}
}

func stringFrom(v bson.RawValue) string {
	s, _ := v.StringValueOK()
	return s
}

// idFrom accepts string and ObjectID identifiers
func idFrom(v bson.RawValue) string {
	if s, ok := v.StringValueOK(); ok {
		return s
	}
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex()
	}
	return ""
}

func intFrom(v bson.RawValue) (int, bool) {
	if i, ok := v.Int32OK(); ok {
		return int(i), true
	}
	if i, ok := v.Int64OK(); ok {
		return int(i), true
	}
	if f, ok := v.DoubleOK(); ok {
		return int(f), true
	}
	return 0, false
}

// timeFrom accepts BSON datetimes and RFC 3339 strings; anything else is the zero time
func timeFrom(v bson.RawValue) time.Time {
	if ms, ok := v.DateTimeOK(); ok {
		return time.UnixMilli(ms).UTC()
	}
	if s, ok := v.StringValueOK(); ok {
		if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s)); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// decimalFrom reads a price. A missing or null price is zero without error.
func decimalFrom(v bson.RawValue) (decimal.Decimal, error) {
	if v.IsZero() || v.Type == bson.TypeNull {
		return decimal.Zero, nil
	}
	if f, ok := v.DoubleOK(); ok {
		return decimal.NewFromFloat(f), nil
	}
	if i, ok := v.Int32OK(); ok {
		return decimal.NewFromInt(int64(i)), nil
	}
	if i, ok := v.Int64OK(); ok {
		return decimal.NewFromInt(i), nil
	}
	if s, ok := v.StringValueOK(); ok {
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return decimal.Zero, fmt.Errorf("price %q: %w", s, err)
		}
		return d, nil
	}
	if d128, ok := v.Decimal128OK(); ok {
		d, err := decimal.NewFromString(d128.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("price %s: %w", d128.String(), err)
		}
		return d, nil
	}
	return decimal.Zero, fmt.Errorf("unsupported price type %s", v.Type)
}
