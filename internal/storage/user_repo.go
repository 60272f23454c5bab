package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = errors.New("email already used")

// UserRecord is one registered account.
type UserRecord struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserStore defines the interface for account persistence.
type UserStore interface {
	// Create inserts a new account, assigning an id when empty.
	// Returns ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, u *UserRecord) error
	// GetByEmail returns the account for email, or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)
	// GetByID returns the account by id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*UserRecord, error)
}

// UserRepo provides account operations backed by SQLite.
// It implements the UserStore interface.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new account. Returns ErrEmailTaken on a duplicate email.
func (r *UserRepo) Create(ctx context.Context, u *UserRecord) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	if existing, err := r.GetByEmail(ctx, u.Email); err == nil && existing != nil {
		return ErrEmailTaken
	} else if err != nil && err != ErrNotFound {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, formatTime(u.CreatedAt),
	)
	if err != nil {
		// The unique index closes the check-then-insert race.
		return ErrEmailTaken
	}
	return nil
}

// GetByEmail returns the account for email, or ErrNotFound.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*UserRecord, error) {
	return r.getBy(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email)
}

// GetByID returns the account by id, or ErrNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*UserRecord, error) {
	return r.getBy(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (r *UserRepo) getBy(ctx context.Context, query string, arg any) (*UserRecord, error) {
	var u UserRecord
	var createdAt string

	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return &u, nil
}
