package storage

import (
	"context"
	"testing"
)

func freshTokens(t *testing.T, repo *TokenRepo, userID string, total int) {
	t.Helper()
	err := repo.Create(context.Background(), &TokenRecord{
		UserID: userID, Total: total, Used: 0, Remaining: total,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func TestTokenRepo_CreateIsIdempotent(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepo(db)
	ctx := context.Background()

	freshTokens(t, repo, "user-1", 2000)

	ok, err := repo.Deduct(ctx, "user-1", 100)
	if err != nil || !ok {
		t.Fatalf("Deduct() = %v, %v", ok, err)
	}

	// A second Create must not reset the balance.
	freshTokens(t, repo, "user-1", 2000)

	rec, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.Used != 100 || rec.Remaining != 1900 {
		t.Errorf("balance after re-create = %+v, want used=100 remaining=1900", rec)
	}
}

func TestTokenRepo_Get_Missing(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepo(db)

	if _, err := repo.Get(context.Background(), "nobody"); err != ErrNotFound {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestTokenRepo_Deduct(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepo(db)
	ctx := context.Background()
	freshTokens(t, repo, "user-1", 100)

	tests := []struct {
		name          string
		cost          int
		wantOK        bool
		wantErr       bool
		wantRemaining int
	}{
		{"partial deduction", 30, true, false, 70},
		{"deduct to exactly zero", 70, true, false, 0},
		{"refused when exhausted", 1, false, false, 0},
		{"negative cost rejected", -5, false, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := repo.Deduct(ctx, "user-1", tt.cost)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Deduct() error = %v, wantErr %v", err, tt.wantErr)
			}
			if ok != tt.wantOK {
				t.Fatalf("Deduct() = %v, want %v", ok, tt.wantOK)
			}

			rec, err := repo.Get(ctx, "user-1")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if rec.Remaining != tt.wantRemaining {
				t.Errorf("remaining = %d, want %d", rec.Remaining, tt.wantRemaining)
			}
			if rec.Remaining != rec.Total-rec.Used {
				t.Errorf("invariant broken: remaining %d != total %d - used %d",
					rec.Remaining, rec.Total, rec.Used)
			}
		})
	}
}

func TestTokenRepo_RefusedDeductLeavesRecordUntouched(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepo(db)
	ctx := context.Background()
	freshTokens(t, repo, "user-1", 50)

	before, _ := repo.Get(ctx, "user-1")

	ok, err := repo.Deduct(ctx, "user-1", 51)
	if err != nil {
		t.Fatalf("Deduct() error = %v", err)
	}
	if ok {
		t.Fatal("Deduct() over balance succeeded, want refusal")
	}

	after, _ := repo.Get(ctx, "user-1")
	if *after != *before {
		t.Errorf("record changed by refused deduct: %+v -> %+v", before, after)
	}
}

func TestTokenRepo_Credit(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepo(db)
	ctx := context.Background()
	freshTokens(t, repo, "user-1", 100)

	if _, err := repo.Deduct(ctx, "user-1", 100); err != nil {
		t.Fatalf("Deduct() error = %v", err)
	}
	if err := repo.Credit(ctx, "user-1", 500); err != nil {
		t.Fatalf("Credit() error = %v", err)
	}

	rec, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.Total != 600 || rec.Used != 100 || rec.Remaining != 500 {
		t.Errorf("after credit = %+v, want total=600 used=100 remaining=500", rec)
	}

	if err := repo.Credit(ctx, "nobody", 10); err != ErrNotFound {
		t.Errorf("Credit() unknown user error = %v, want ErrNotFound", err)
	}
}
