package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/openpic/openpic/internal/ingest"
)

var errBackendDown = errors.New("backend unavailable")

// fakeCoordinator returns canned results and records what it was called with
type fakeCoordinator struct {
	grants  ingest.UploadGrants
	confirm ingest.ConfirmResult

	receipt   *ingest.SelfieReceipt
	intakeErr error

	matchResult *ingest.MatchResult
	matchErr    error

	gotHashes   []string
	gotBody     []byte
	gotSelfieID string
}

func (f *fakeCoordinator) RequestUploads(ctx context.Context, fps []string) ingest.UploadGrants {
	f.gotHashes = fps
	if f.grants.URLs == nil {
		f.grants.URLs = map[string]string{}
	}
	if f.grants.Failed == nil {
		f.grants.Failed = map[string]string{}
	}
	return f.grants
}

func (f *fakeCoordinator) ConfirmUploads(ctx context.Context, fps []string) ingest.ConfirmResult {
	f.gotHashes = fps
	if f.confirm.Failed == nil {
		f.confirm.Failed = map[string]string{}
	}
	return f.confirm
}

func (f *fakeCoordinator) IntakeSelfie(ctx context.Context, data []byte) (*ingest.SelfieReceipt, error) {
	f.gotBody = data
	if f.intakeErr != nil {
		return nil, f.intakeErr
	}
	return f.receipt, nil
}

func (f *fakeCoordinator) MatchStatus(ctx context.Context, selfieID string) (*ingest.MatchResult, error) {
	f.gotSelfieID = selfieID
	if f.matchErr != nil {
		return nil, f.matchErr
	}
	return f.matchResult, nil
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
