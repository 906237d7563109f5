package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/quoteflow/backend/internal/domain"
)

// CreateQuote stores a new quote against an open or quoted request and moves
// an open request to quoted. The status check and the insert share one
// transaction, so a quote never lands on a request closed in between.
func (s *Store) CreateQuote(ctx context.Context, q *domain.Quote) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE requests
		SET status = CASE WHEN status = ? THEN ? ELSE status END, updated_at = ?
		WHERE id = ? AND status != ?`,
		string(domain.RequestStatusOpen), string(domain.RequestStatusQuoted),
		formatTime(q.SubmittedAt), q.RequestID, string(domain.RequestStatusClosed),
	)
	if err != nil {
		return fmt.Errorf("updating request %s: %w", q.RequestID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM requests WHERE id = ?", q.RequestID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrRequestClosed
	}

	if err := insertQuote(ctx, tx, q); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: quote %s already exists", domain.ErrConflict, q.ID)
		}
		return err
	}
	return tx.Commit()
}

func insertQuote(ctx context.Context, tx *sql.Tx, q *domain.Quote) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO quotes (`+quoteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.RequestID, q.ProductID, q.PurchaserID, q.Price.String(),
		formatTime(q.DeliveryDate), formatTime(q.SubmittedAt), string(q.Status), q.Notes,
	)
	if err != nil {
		return fmt.Errorf("inserting quote %s: %w", q.ID, err)
	}
	return nil
}

// GetQuote returns a quote by id
func (s *Store) GetQuote(ctx context.Context, id string) (*domain.Quote, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+quoteColumns+" FROM quotes WHERE id = ?", id)
	return scanQuote(row)
}

// UpdateQuoteStatus moves quote id from one status to another in a single
// conditional statement, so only one of two racing transitions wins.
func (s *Store) UpdateQuoteStatus(ctx context.Context, id string, from, to domain.QuoteStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE quotes SET status = ? WHERE id = ? AND status = ?",
		string(to), id, string(from),
	)
	if err != nil {
		return fmt.Errorf("updating quote %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM quotes WHERE id = ?", id).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%w: quote %s is no longer %s", domain.ErrConflict, id, from)
}

// NextSequence atomically increments and returns the counter for prefix.
// The first call for a prefix returns 1.
func (s *Store) NextSequence(ctx context.Context, prefix string) (int, error) {
	var value int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO wlid_sequences (prefix, value) VALUES (?, 1)
		ON CONFLICT(prefix) DO UPDATE SET value = value + 1
		RETURNING value`, prefix,
	).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("next sequence for %s: %w", prefix, err)
	}
	return value, nil
}

// SeedSequence raises the counter for prefix to at least atLeast
func (s *Store) SeedSequence(ctx context.Context, prefix string, atLeast int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wlid_sequences (prefix, value) VALUES (?, ?)
		ON CONFLICT(prefix) DO UPDATE SET value = MAX(value, excluded.value)`,
		prefix, atLeast,
	)
	if err != nil {
		return fmt.Errorf("seeding sequence for %s: %w", prefix, err)
	}
	return nil
}
