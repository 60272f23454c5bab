// Package ledger meters per-user token balances and gates priced actions.
// The ledger is mode-agnostic: pricing policy lives with the mode table and
// arrives here as a plain cost parameter.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"secrecy-ai/internal/storage"
)

// Ledger tracks consumable balances. Records are created lazily with a fixed
// starting allowance on first access and are never deleted.
type Ledger struct {
	store     storage.TokenStore
	allowance int
	logger    *slog.Logger
}

// New creates a Ledger granting initialAllowance tokens to new users.
func New(store storage.TokenStore, initialAllowance int) *Ledger {
	return &Ledger{
		store:     store,
		allowance: initialAllowance,
		logger:    slog.Default(),
	}
}

// Initialize returns the user's balance, creating it with the starting
// allowance when absent. Calling it again returns the existing record
// unchanged.
func (l *Ledger) Initialize(ctx context.Context, userID string) (*storage.TokenRecord, error) {
	rec, err := l.store.Get(ctx, userID)
	if err == nil {
		return rec, nil
	}
	if err != storage.ErrNotFound {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}

	fresh := &storage.TokenRecord{
		UserID:    userID,
		Total:     l.allowance,
		Used:      0,
		Remaining: l.allowance,
	}
	if err := l.store.Create(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to create balance: %w", err)
	}
	l.logger.InfoContext(ctx, "initialized token balance", "user_id", userID, "allowance", l.allowance)

	// Re-read: a concurrent initializer may have won the insert.
	rec, err = l.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	return rec, nil
}

// Get returns the user's balance with the same create-if-absent semantics
// as Initialize.
func (l *Ledger) Get(ctx context.Context, userID string) (*storage.TokenRecord, error) {
	return l.Initialize(ctx, userID)
}

// Deduct consumes cost from the user's balance. It reports false, leaving
// the record untouched, when the remaining balance cannot cover the cost.
func (l *Ledger) Deduct(ctx context.Context, userID string, cost int) (bool, error) {
	if _, err := l.Initialize(ctx, userID); err != nil {
		return false, err
	}

	ok, err := l.store.Deduct(ctx, userID, cost)
	if err != nil {
		return false, fmt.Errorf("failed to deduct: %w", err)
	}
	if !ok {
		l.logger.InfoContext(ctx, "deduction refused", "user_id", userID, "cost", cost)
	}
	return ok, nil
}

// Credit raises the user's total and remaining balance by amount and
// returns the updated record (top-up / refund path).
func (l *Ledger) Credit(ctx context.Context, userID string, amount int) (*storage.TokenRecord, error) {
	if _, err := l.Initialize(ctx, userID); err != nil {
		return nil, err
	}

	if err := l.store.Credit(ctx, userID, amount); err != nil {
		return nil, fmt.Errorf("failed to credit: %w", err)
	}
	rec, err := l.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	l.logger.InfoContext(ctx, "credited tokens", "user_id", userID, "amount", amount, "remaining", rec.Remaining)
	return rec, nil
}
