package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJWT_SignAndVerify(t *testing.T) {
	j := NewJWT("test-secret")

	token, err := j.Sign("user-123")
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	uid, err := j.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if uid != "user-123" {
		t.Errorf("Verify() = %q, want user-123", uid)
	}
}

func TestJWT_Verify_WrongSecret(t *testing.T) {
	token, err := NewJWT("secret-a").Sign("user-123")
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	if _, err := NewJWT("secret-b").Verify(token); err == nil {
		t.Error("Verify() expected error for token signed with different secret")
	}
}

func TestJWT_Verify_Garbage(t *testing.T) {
	if _, err := NewJWT("test-secret").Verify("not-a-token"); err == nil {
		t.Error("Verify() expected error for malformed token")
	}
}

func TestRequireAuth(t *testing.T) {
	j := NewJWT("test-secret")
	var gotUserID string
	handler := RequireAuth(j)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := j.Sign("user-7")
		if err != nil {
			t.Fatalf("Sign() error = %v", err)
		}
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if gotUserID != "user-7" {
			t.Errorf("user ID in context = %q, want user-7", gotUserID)
		}
	})
}

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !ComparePassword(hash, "hunter2") {
		t.Error("ComparePassword() = false for correct password")
	}
	if ComparePassword(hash, "wrong") {
		t.Error("ComparePassword() = true for wrong password")
	}
}

func TestContextWithUserID(t *testing.T) {
	ctx := ContextWithUserID(context.Background(), "user-9")
	uid, ok := UserIDFromContext(ctx)
	if !ok || uid != "user-9" {
		t.Errorf("UserIDFromContext() = %q, %v; want user-9, true", uid, ok)
	}
}
