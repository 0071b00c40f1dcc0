package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openpic/openpic/internal/ingest"
)

func TestSelfiesSubmit_ReturnsReceipt(t *testing.T) {
	coord := &fakeCoordinator{
		receipt: &ingest.SelfieReceipt{
			SelfieID:   "fp-selfie",
			OwnerToken: "token-123",
		},
	}
	handler := NewSelfiesHandler(coord)

	body := []byte("selfie bytes")
	req := httptest.NewRequest("POST", "/api/v1/selfies", bytes.NewReader(body))
	recorder := httptest.NewRecorder()
	handler.Submit(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)

	var resp map[string]string
	parseJSONResponse(t, recorder, &resp)
	if resp["selfieId"] != "fp-selfie" {
		t.Errorf("expected selfieId 'fp-selfie', got '%s'", resp["selfieId"])
	}
	if resp["ownerToken"] != "token-123" {
		t.Errorf("expected ownerToken 'token-123', got '%s'", resp["ownerToken"])
	}
	if !bytes.Equal(coord.gotBody, body) {
		t.Error("expected the raw body forwarded to the coordinator")
	}
}

func TestSelfiesSubmit_EmptyBody(t *testing.T) {
	coord := &fakeCoordinator{intakeErr: ingest.ErrEmptyImage}
	handler := NewSelfiesHandler(coord)

	req := httptest.NewRequest("POST", "/api/v1/selfies", nil)
	recorder := httptest.NewRecorder()
	handler.Submit(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "empty image")
}

func TestSelfiesSubmit_Duplicate(t *testing.T) {
	coord := &fakeCoordinator{intakeErr: ingest.ErrDuplicateContent}
	handler := NewSelfiesHandler(coord)

	req := httptest.NewRequest("POST", "/api/v1/selfies", bytes.NewReader([]byte("same bytes")))
	recorder := httptest.NewRecorder()
	handler.Submit(recorder, req)

	assertStatusCode(t, recorder, http.StatusConflict)
	assertJSONError(t, recorder, "duplicate selfie")
}

func TestSelfiesSubmit_BackendFailure(t *testing.T) {
	coord := &fakeCoordinator{intakeErr: errBackendDown}
	handler := NewSelfiesHandler(coord)

	req := httptest.NewRequest("POST", "/api/v1/selfies", bytes.NewReader([]byte("selfie bytes")))
	recorder := httptest.NewRecorder()
	handler.Submit(recorder, req)

	assertStatusCode(t, recorder, http.StatusInternalServerError)
	assertJSONError(t, recorder, "failed to process selfie")
}
