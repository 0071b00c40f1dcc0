package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/openpic/openpic/internal/ingest"
)

// maxSelfieSize caps the selfie request body at 15 MB.
const maxSelfieSize = 15 << 20

// SelfiesHandler handles the synchronous selfie intake endpoint.
type SelfiesHandler struct {
	coordinator Coordinator
}

// NewSelfiesHandler creates a new selfies handler.
func NewSelfiesHandler(coordinator Coordinator) *SelfiesHandler {
	return &SelfiesHandler{coordinator: coordinator}
}

// Submit takes a raw image body, runs the full intake pipeline, and returns
// the selfie id with its owner token. A resubmission of the same bytes is a
// conflict, not a success.
func (h *SelfiesHandler) Submit(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSelfieSize))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "image too large")
		return
	}

	receipt, err := h.coordinator.IntakeSelfie(r.Context(), data)
	switch {
	case errors.Is(err, ingest.ErrEmptyImage):
		respondError(w, http.StatusBadRequest, "empty image")
		return
	case errors.Is(err, ingest.ErrDuplicateContent):
		respondError(w, http.StatusConflict, "duplicate selfie")
		return
	case err != nil:
		log.Printf("selfie intake failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to process selfie")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"selfieId":   receipt.SelfieID,
		"ownerToken": receipt.OwnerToken,
	})
}
