package handlers

import (
	"encoding/json"
	"net/http"

	"secrecy-ai/internal/auth"
	"secrecy-ai/internal/contextutil"
	"secrecy-ai/internal/ledger"
)

// TokenHandler exposes the user's token balance.
type TokenHandler struct {
	tokens *ledger.Ledger
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(tokens *ledger.Ledger) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// Get returns the user's balance, creating the starting allowance on first
// sight of the user.
func (h *TokenHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	uid, _ := auth.UserIDFromContext(ctx)

	rec, err := h.tokens.Get(ctx, uid)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load balance", "user_id", uid, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load balance")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type creditRequest struct {
	Amount int `json:"amount"`
}

// Credit adds tokens to the user's balance.
func (h *TokenHandler) Credit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	uid, _ := auth.UserIDFromContext(ctx)

	var req creditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "Amount must be positive")
		return
	}

	rec, err := h.tokens.Credit(ctx, uid, req.Amount)
	if err != nil {
		logger.ErrorContext(ctx, "failed to credit tokens", "user_id", uid, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to credit tokens")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
