package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"secrecy-ai/internal/auth"
	"secrecy-ai/internal/chat"
	"secrecy-ai/internal/modes"
	"secrecy-ai/internal/service"
)

// ChatHandler handles conversation endpoints.
type ChatHandler struct {
	svc service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(svc service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// List returns all of the user's chats.
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, _ := auth.UserIDFromContext(ctx)

	chats, err := h.svc.ListChats(ctx, uid)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list chats")
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

// Create starts an empty chat.
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, _ := auth.UserIDFromContext(ctx)

	c, err := h.svc.CreateChat(ctx, uid)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to create chat")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Get returns one chat with its full history.
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, _ := auth.UserIDFromContext(ctx)

	c, err := h.svc.GetChat(ctx, uid, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load chat")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// SendMessageRequest is the payload for sending a message.
type SendMessageRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

// SendMessageResponse is the payload returned after a completed send.
type SendMessageResponse struct {
	Chat        *chat.Chat   `json:"chat"`
	UserMessage chat.Message `json:"userMessage"`
	Reply       chat.Message `json:"reply"`
	ReplyFailed bool         `json:"replyFailed"`
	Cost        int          `json:"cost"`
}

// Send runs the send-message pipeline on a chat.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, _ := auth.UserIDFromContext(ctx)

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	mode, err := modes.Parse(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown mode")
		return
	}

	result, err := h.svc.SendMessage(ctx, service.SendRequest{
		ChatID: chi.URLParam(r, "id"),
		UserID: uid,
		Text:   req.Text,
		Mode:   mode,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to send message")
		return
	}

	writeJSON(w, http.StatusOK, SendMessageResponse{
		Chat:        result.Chat,
		UserMessage: result.UserMessage,
		Reply:       result.Reply,
		ReplyFailed: result.ReplyFailed,
		Cost:        result.Cost,
	})
}

type renameRequest struct {
	Title string `json:"title"`
}

// Rename sets a user-chosen title.
func (h *ChatHandler) Rename(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, _ := auth.UserIDFromContext(ctx)

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.svc.RenameChat(ctx, uid, chi.URLParam(r, "id"), req.Title)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to rename chat")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type pinRequest struct {
	Pinned bool `json:"pinned"`
}

// Pin updates the chat's pin state.
func (h *ChatHandler) Pin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, _ := auth.UserIDFromContext(ctx)

	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.svc.SetPinned(ctx, uid, chi.URLParam(r, "id"), req.Pinned)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to update pin state")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Clear empties the chat's message history.
func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, _ := auth.UserIDFromContext(ctx)

	c, err := h.svc.ClearChat(ctx, uid, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to clear chat")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Delete removes the chat.
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, _ := auth.UserIDFromContext(ctx)

	if err := h.svc.DeleteChat(ctx, uid, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, ctx, err, "Failed to delete chat")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
