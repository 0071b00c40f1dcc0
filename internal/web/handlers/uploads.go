package handlers

import (
	"encoding/json"
	"net/http"
)

// maxBatchSize caps how many fingerprints a single request may carry.
const maxBatchSize = 500

// UploadsHandler handles the event photo batch endpoints.
type UploadsHandler struct {
	coordinator Coordinator
}

// NewUploadsHandler creates a new uploads handler.
func NewUploadsHandler(coordinator Coordinator) *UploadsHandler {
	return &UploadsHandler{coordinator: coordinator}
}

type uploadsRequest struct {
	Hashes []string `json:"hashes"`
}

// Request filters a batch of fingerprints and returns a presigned upload URL
// for each genuinely new one. Fingerprints absent from both maps are
// duplicates the client must skip.
func (h *UploadsHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req uploadsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.Hashes) == 0 {
		respondError(w, http.StatusBadRequest, "hashes is required")
		return
	}
	if len(req.Hashes) > maxBatchSize {
		respondError(w, http.StatusBadRequest, "too many hashes in one batch")
		return
	}

	grants := h.coordinator.RequestUploads(r.Context(), req.Hashes)

	respondJSON(w, http.StatusOK, map[string]any{
		"presignedUrls": grants.URLs,
		"failed":        grants.Failed,
	})
}

// Confirm finalizes fingerprints the client uploaded: ledger confirm,
// metadata record, queue hand-off.
func (h *UploadsHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req uploadsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.Hashes) == 0 {
		respondError(w, http.StatusBadRequest, "hashes is required")
		return
	}
	if len(req.Hashes) > maxBatchSize {
		respondError(w, http.StatusBadRequest, "too many hashes in one batch")
		return
	}

	result := h.coordinator.ConfirmUploads(r.Context(), req.Hashes)

	respondJSON(w, http.StatusOK, map[string]any{
		"success":    len(result.Failed) == 0,
		"confirmed":  result.Confirmed,
		"duplicates": result.Duplicates,
		"failed":     result.Failed,
	})
}
