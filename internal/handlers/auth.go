package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"secrecy-ai/internal/auth"
	"secrecy-ai/internal/contextutil"
	"secrecy-ai/internal/ledger"
	"secrecy-ai/internal/storage"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	users  storage.UserStore
	jwt    *auth.JWT
	tokens *ledger.Ledger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users storage.UserStore, jwt *auth.JWT, tokens *ledger.Ledger) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt, tokens: tokens}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the payload returned after a successful register or login.
type AuthResponse struct {
	Token string `json:"token"`
}

// Register creates an account, grants the starting token allowance, and
// returns a signed token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Email and a password of at least 8 characters are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.ErrorContext(ctx, "failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	u := storage.UserRecord{Email: req.Email, PasswordHash: hash}
	if err := h.users.Create(ctx, &u); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "Email already used")
			return
		}
		logger.ErrorContext(ctx, "failed to create user", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	if _, err := h.tokens.Initialize(ctx, u.ID); err != nil {
		// The account exists; the allowance will be granted lazily on first use.
		logger.WarnContext(ctx, "failed to grant starting allowance", "user_id", u.ID, "error", err)
	}

	token, err := h.jwt.Sign(u.ID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to sign token", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	logger.InfoContext(ctx, "user registered", "user_id", u.ID)
	writeJSON(w, http.StatusCreated, AuthResponse{Token: token})
}

// Login verifies credentials and returns a signed token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	u, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !auth.ComparePassword(u.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.jwt.Sign(u.ID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to sign token", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token})
}
