package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/openpic/openpic/internal/ingest"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// Coordinator is the ingestion surface the handlers drive.
type Coordinator interface {
	RequestUploads(ctx context.Context, fps []string) ingest.UploadGrants
	ConfirmUploads(ctx context.Context, fps []string) ingest.ConfirmResult
	IntakeSelfie(ctx context.Context, data []byte) (*ingest.SelfieReceipt, error)
	MatchStatus(ctx context.Context, selfieID string) (*ingest.MatchResult, error)
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
