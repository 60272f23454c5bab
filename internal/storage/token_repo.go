package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// TokenRecord is one user's consumable balance. The remaining column is
// maintained alongside total and used so the `remaining = total - used`
// invariant is checked by the schema on every write.
type TokenRecord struct {
	UserID    string `json:"userId"`
	Total     int    `json:"total"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
}

// TokenStore defines the interface for balance persistence. Balance records
// are created once per user and never deleted.
type TokenStore interface {
	// Get returns the balance record, or ErrNotFound.
	Get(ctx context.Context, userID string) (*TokenRecord, error)
	// Create inserts a fresh record. If one already exists it is left
	// unchanged and no error is returned.
	Create(ctx context.Context, rec *TokenRecord) error
	// Deduct atomically consumes cost from the balance. It reports false,
	// with the record untouched, when remaining < cost.
	Deduct(ctx context.Context, userID string, cost int) (bool, error)
	// Credit atomically raises total and remaining by amount.
	Credit(ctx context.Context, userID string, amount int) error
}

// TokenRepo provides balance operations backed by SQLite.
// It implements the TokenStore interface.
type TokenRepo struct {
	db *sql.DB
}

// NewTokenRepo creates a new TokenRepo.
func NewTokenRepo(db *sql.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// Get returns the balance record, or ErrNotFound.
func (r *TokenRepo) Get(ctx context.Context, userID string) (*TokenRecord, error) {
	var rec TokenRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, total, used, remaining FROM tokens WHERE user_id = ?`,
		userID,
	).Scan(&rec.UserID, &rec.Total, &rec.Used, &rec.Remaining)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	return &rec, nil
}

// Create inserts a fresh record; an existing record is left unchanged.
func (r *TokenRepo) Create(ctx context.Context, rec *TokenRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tokens (user_id, total, used, remaining) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id) DO NOTHING`,
		rec.UserID, rec.Total, rec.Used, rec.Remaining,
	)
	if err != nil {
		return fmt.Errorf("failed to create token record: %w", err)
	}
	return nil
}

// Deduct consumes cost in a single conditional update, so check-then-act is
// safe with concurrent writers. A refused deduction changes nothing.
func (r *TokenRepo) Deduct(ctx context.Context, userID string, cost int) (bool, error) {
	if cost < 0 {
		return false, fmt.Errorf("cost must not be negative, got %d", cost)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE tokens SET used = used + ?, remaining = remaining - ?
		 WHERE user_id = ? AND remaining >= ?`,
		cost, cost, userID, cost,
	)
	if err != nil {
		return false, fmt.Errorf("failed to deduct tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read deduct result: %w", err)
	}
	return n > 0, nil
}

// Credit raises total and remaining by amount (top-up / refund path).
func (r *TokenRepo) Credit(ctx context.Context, userID string, amount int) error {
	if amount < 0 {
		return fmt.Errorf("amount must not be negative, got %d", amount)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE tokens SET total = total + ?, remaining = remaining + ? WHERE user_id = ?`,
		amount, amount, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to credit tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read credit result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
