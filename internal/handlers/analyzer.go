package handlers

import (
	"encoding/json"
	"net/http"

	"secrecy-ai/internal/auth"
	"secrecy-ai/internal/service"
)

// AnalyzerHandler handles competitor analysis endpoints.
type AnalyzerHandler struct {
	svc service.AnalyzerService
}

// NewAnalyzerHandler creates a new AnalyzerHandler.
func NewAnalyzerHandler(svc service.AnalyzerService) *AnalyzerHandler {
	return &AnalyzerHandler{svc: svc}
}

type analyzeRequest struct {
	URL string `json:"url"`
}

// Analyze runs a competitor analysis on the given URL.
func (h *AnalyzerHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, _ := auth.UserIDFromContext(ctx)

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	analysis, err := h.svc.Analyze(ctx, uid, req.URL)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to analyze site")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// Pin saves an analysis report as a note.
func (h *AnalyzerHandler) Pin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, _ := auth.UserIDFromContext(ctx)

	var analysis service.CompetitorAnalysis
	if err := json.NewDecoder(r.Body).Decode(&analysis); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if analysis.Title == "" || analysis.URL == "" {
		writeError(w, http.StatusBadRequest, "Analysis title and url are required")
		return
	}

	note, err := h.svc.PinToNotes(ctx, uid, &analysis)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to pin analysis")
		return
	}
	writeJSON(w, http.StatusCreated, note)
}
