package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/openpic/openpic/internal/database"
	"github.com/openpic/openpic/internal/ingest"
)

// MatchesHandler handles the match status polling endpoint.
type MatchesHandler struct {
	coordinator Coordinator
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(coordinator Coordinator) *MatchesHandler {
	return &MatchesHandler{coordinator: coordinator}
}

type matchResponse struct {
	PhotoID string `json:"photoId"`
	URL     string `json:"url"`
}

// Status reports the matching state of a submitted selfie. Completed
// responses carry freshly minted access URLs, so clients can keep polling
// after earlier URLs expired.
func (h *MatchesHandler) Status(w http.ResponseWriter, r *http.Request) {
	selfieID := r.URL.Query().Get("selfieId")
	if selfieID == "" {
		respondError(w, http.StatusBadRequest, "selfieId is required")
		return
	}

	result, err := h.coordinator.MatchStatus(r.Context(), selfieID)
	switch {
	case errors.Is(err, ingest.ErrNotFound):
		respondError(w, http.StatusNotFound, "selfie not found")
		return
	case err != nil:
		log.Printf("match status for %s failed: %v", sanitizeForLog(selfieID), err)
		respondError(w, http.StatusInternalServerError, "failed to load match status")
		return
	}

	if result.Status != database.StatusCompleted {
		respondJSON(w, http.StatusOK, map[string]string{"status": result.Status})
		return
	}

	matches := make([]matchResponse, 0, len(result.Matches))
	for _, m := range result.Matches {
		matches = append(matches, matchResponse{PhotoID: m.PhotoID, URL: m.URL})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  result.Status,
		"matches": matches,
	})
}
