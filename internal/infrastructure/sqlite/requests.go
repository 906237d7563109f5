package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/quoteflow/backend/internal/domain"
)

const productColumns = `id, request_id, wlid, product_series, hair_fiber, cap, cap_size,
	length, density, color, curl_style, quantity, notes`

const quoteColumns = `id, request_id, product_id, purchaser_id, price, delivery_date,
	submitted_at, status, notes`

// CreateRequest stores a request with its products in one transaction
func (s *Store) CreateRequest(ctx context.Context, req *domain.Request) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertRequest(ctx, tx, req); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: request %s already exists", domain.ErrConflict, req.ID)
		}
		return err
	}
	return tx.Commit()
}

// ImportRequest replaces any stored request with the same id, including its
// products and quotes.
func (s *Store) ImportRequest(ctx context.Context, req *domain.Request) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM quotes WHERE request_id = ?",
		"DELETE FROM products WHERE request_id = ?",
		"DELETE FROM requests WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, req.ID); err != nil {
			return fmt.Errorf("clearing request %s: %w", req.ID, err)
		}
	}

	if err := insertRequest(ctx, tx, req); err != nil {
		return err
	}
	for i := range req.Quotes {
		if err := insertQuote(ctx, tx, &req.Quotes[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertRequest(ctx context.Context, tx *sql.Tx, req *domain.Request) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO requests (id, title, customer, created_by, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.Title, req.Customer, req.CreatedBy, string(req.Status),
		formatTime(req.CreatedAt), formatTime(req.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting request %s: %w", req.ID, err)
	}

	for i, p := range req.Products {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, request_id, position, wlid, product_series, hair_fiber, cap,
				cap_size, length, density, color, curl_style, quantity, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, req.ID, i, p.WLID, p.Series, p.HairFiber, p.Cap,
			p.CapSize, p.Length, p.Density, p.Color, p.CurlStyle, p.Quantity, p.Notes,
		)
		if err != nil {
			return fmt.Errorf("inserting product %s: %w", p.ID, err)
		}
	}
	return nil
}

// GetRequest returns one request with its products and quotes
func (s *Store) GetRequest(ctx context.Context, id string) (*domain.Request, error) {
	requests, err := s.loadRequests(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, domain.ErrNotFound
	}
	return &requests[0], nil
}

// ListRequests returns all requests ordered by creation time
func (s *Store) ListRequests(ctx context.Context) ([]domain.Request, error) {
	return s.loadRequests(ctx, "")
}

// LoadCorpus implements domain.CorpusProvider over the stored requests
func (s *Store) LoadCorpus(ctx context.Context) (*domain.Corpus, error) {
	requests, err := s.loadRequests(ctx, "")
	if err != nil {
		return nil, err
	}
	return &domain.Corpus{Requests: requests}, nil
}

// UpdateRequestStatus sets the status of a request
func (s *Store) UpdateRequestStatus(ctx context.Context, id string, status domain.RequestStatus, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE requests SET status = ?, updated_at = ? WHERE id = ?",
		string(status), formatTime(at), id,
	)
	if err != nil {
		return fmt.Errorf("updating request %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// loadRequests reads requests (all, or just id) and attaches their products
// and quotes. Each query is drained before the next one runs because the
// store holds a single connection.
func (s *Store) loadRequests(ctx context.Context, id string) ([]domain.Request, error) {
	filter, args := "", []interface{}{}
	if id != "" {
		filter, args = " WHERE id = ?", []interface{}{id}
	}

	requests, err := s.queryRequests(ctx,
		"SELECT id, title, customer, created_by, status, created_at, updated_at FROM requests"+filter+
			" ORDER BY created_at ASC, id ASC", args...)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return []domain.Request{}, nil
	}

	byID := make(map[string]*domain.Request, len(requests))
	for i := range requests {
		byID[requests[i].ID] = &requests[i]
	}

	childFilter := ""
	if id != "" {
		childFilter = " WHERE request_id = ?"
	}

	products, err := s.queryProducts(ctx,
		"SELECT "+productColumns+" FROM products"+childFilter+" ORDER BY request_id, position", args...)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if req, ok := byID[p.RequestID]; ok {
			req.Products = append(req.Products, p)
		}
	}

	quotes, err := s.queryQuotes(ctx,
		"SELECT "+quoteColumns+" FROM quotes"+childFilter+" ORDER BY submitted_at ASC, id ASC", args...)
	if err != nil {
		return nil, err
	}
	for _, q := range quotes {
		if req, ok := byID[q.RequestID]; ok {
			req.Quotes = append(req.Quotes, q)
		}
	}

	return requests, nil
}

func (s *Store) queryRequests(ctx context.Context, query string, args ...interface{}) ([]domain.Request, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying requests: %w", err)
	}
	defer rows.Close()

	var out []domain.Request
	for rows.Next() {
		var (
			r                    domain.Request
			status               string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Customer, &r.CreatedBy, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		r.Status = domain.RequestStatus(status)
		if r.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("request %s created_at: %w", r.ID, err)
		}
		if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("request %s updated_at: %w", r.ID, err)
		}
		r.Products = []domain.Product{}
		r.Quotes = []domain.Quote{}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) queryProducts(ctx context.Context, query string, args ...interface{}) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.RequestID, &p.WLID, &p.Series, &p.HairFiber, &p.Cap, &p.CapSize,
			&p.Length, &p.Density, &p.Color, &p.CurlStyle, &p.Quantity, &p.Notes); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) queryQuotes(ctx context.Context, query string, args ...interface{}) ([]domain.Quote, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying quotes: %w", err)
	}
	defer rows.Close()

	var out []domain.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuote(row rowScanner) (*domain.Quote, error) {
	var (
		q                         domain.Quote
		status                    string
		deliveryDate, submittedAt string
	)
	err := row.Scan(&q.ID, &q.RequestID, &q.ProductID, &q.PurchaserID, &q.Price,
		&deliveryDate, &submittedAt, &status, &q.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	q.Status = domain.QuoteStatus(status)
	if q.DeliveryDate, err = parseTime(deliveryDate); err != nil {
		return nil, fmt.Errorf("quote %s delivery_date: %w", q.ID, err)
	}
	if q.SubmittedAt, err = parseTime(submittedAt); err != nil {
		return nil, fmt.Errorf("quote %s submitted_at: %w", q.ID, err)
	}
	return &q, nil
}
