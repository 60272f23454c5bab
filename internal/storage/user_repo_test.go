package storage

import (
	"context"
	"errors"
	"testing"
)

func TestUserRepo_CreateAndGet(t *testing.T) {
	repo := NewUserRepo(testDB(t))
	ctx := context.Background()

	u := UserRecord{Email: "user@example.com", PasswordHash: "hash"}
	if err := repo.Create(ctx, &u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if u.ID == "" {
		t.Error("Create() did not assign an id")
	}
	if u.CreatedAt.IsZero() {
		t.Error("Create() did not set CreatedAt")
	}

	byEmail, err := repo.GetByEmail(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if byEmail.ID != u.ID || byEmail.PasswordHash != "hash" {
		t.Errorf("GetByEmail() = %+v", byEmail)
	}

	byID, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.Email != "user@example.com" {
		t.Errorf("GetByID() email = %q", byID.Email)
	}
}

func TestUserRepo_Create_DuplicateEmail(t *testing.T) {
	repo := NewUserRepo(testDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, &UserRecord{Email: "user@example.com", PasswordHash: "a"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	err := repo.Create(ctx, &UserRecord{Email: "user@example.com", PasswordHash: "b"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Create() duplicate error = %v, want ErrEmailTaken", err)
	}
}

func TestUserRepo_Get_Missing(t *testing.T) {
	repo := NewUserRepo(testDB(t))
	ctx := context.Background()

	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByEmail() error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}
