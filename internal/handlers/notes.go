package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"secrecy-ai/internal/auth"
	"secrecy-ai/internal/export"
	"secrecy-ai/internal/service"
)

// NoteHandler handles note endpoints, including search and export.
type NoteHandler struct {
	svc      service.NoteService
	exporter *export.Exporter
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(svc service.NoteService, exporter *export.Exporter) *NoteHandler {
	return &NoteHandler{svc: svc, exporter: exporter}
}

// List returns all of the user's notes.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, _ := auth.UserIDFromContext(ctx)

	notes, err := h.svc.ListNotes(ctx, uid)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list notes")
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// CreateNoteRequest is the payload for creating a note, either free-standing
// or pinned from a chat message.
type CreateNoteRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
}

// Create creates a note. When chatId and messageId are set, the note is
// pinned from that message and inherits its text.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, _ := auth.UserIDFromContext(ctx)

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ChatID != "" && req.MessageID != "" {
		n, err := h.svc.CreateNoteFromMessage(ctx, uid, req.ChatID, req.MessageID, req.Title)
		if err != nil {
			handleServiceError(w, ctx, err, "Failed to pin message")
			return
		}
		writeJSON(w, http.StatusCreated, n)
		return
	}

	n, err := h.svc.CreateNote(ctx, uid, req.Title, req.Content)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to create note")
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// Get returns one note.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, _ := auth.UserIDFromContext(ctx)

	n, err := h.svc.GetNote(ctx, uid, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load note")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

type updateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Update replaces the note's title and content.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, _ := auth.UserIDFromContext(ctx)

	var req updateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	n, err := h.svc.UpdateNote(ctx, uid, chi.URLParam(r, "id"), req.Title, req.Content)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to update note")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// Delete removes the note.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, _ := auth.UserIDFromContext(ctx)

	if err := h.svc.DeleteNote(ctx, uid, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, ctx, err, "Failed to delete note")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search finds notes matching the q query parameter.
func (h *NoteHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, _ := auth.UserIDFromContext(ctx)

	k := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		k = parsed
	}

	notes, err := h.svc.SearchNotes(ctx, uid, r.URL.Query().Get("q"), k)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to search notes")
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// Export renders the note as a downloadable document. The format query
// parameter selects txt, html, or doc.
func (h *NoteHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, _ := auth.UserIDFromContext(ctx)

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown export format")
		return
	}

	n, err := h.svc.GetNote(ctx, uid, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load note")
		return
	}

	body, filename, err := h.exporter.Render(*n, format)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to render note")
		return
	}

	w.Header().Set("Content-Type", format.MIMEType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
