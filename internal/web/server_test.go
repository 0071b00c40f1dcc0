package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openpic/openpic/internal/ingest"
)

// stubCoordinator returns zero values; routing tests only care about wiring.
type stubCoordinator struct{}

func (stubCoordinator) RequestUploads(ctx context.Context, fps []string) ingest.UploadGrants {
	return ingest.UploadGrants{URLs: map[string]string{}, Failed: map[string]string{}}
}

func (stubCoordinator) ConfirmUploads(ctx context.Context, fps []string) ingest.ConfirmResult {
	return ingest.ConfirmResult{Failed: map[string]string{}}
}

func (stubCoordinator) IntakeSelfie(ctx context.Context, data []byte) (*ingest.SelfieReceipt, error) {
	return &ingest.SelfieReceipt{SelfieID: "s", OwnerToken: "t"}, nil
}

func (stubCoordinator) MatchStatus(ctx context.Context, selfieID string) (*ingest.MatchResult, error) {
	return &ingest.MatchResult{Status: "pending"}, nil
}

func TestRoutes_Registered(t *testing.T) {
	server := NewServer(stubCoordinator{}, 8080, "localhost")

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{"GET", "/api/v1/health", ""},
		{"POST", "/api/v1/uploads", `{"hashes":["x"]}`},
		{"POST", "/api/v1/uploads/confirm", `{"hashes":["x"]}`},
		{"POST", "/api/v1/selfies", "img"},
		{"GET", "/api/v1/matches?selfieId=s", ""},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			recorder := httptest.NewRecorder()
			server.Router().ServeHTTP(recorder, req)

			if recorder.Code == http.StatusNotFound || recorder.Code == http.StatusMethodNotAllowed {
				t.Errorf("route not wired: got %d", recorder.Code)
			}
		})
	}
}

func TestRoutes_UnknownPath(t *testing.T) {
	server := NewServer(stubCoordinator{}, 8080, "localhost")

	req := httptest.NewRequest("GET", "/api/v1/nope", nil)
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown route, got %d", recorder.Code)
	}
}

func TestPreflightHandled(t *testing.T) {
	server := NewServer(stubCoordinator{}, 8080, "localhost")

	req := httptest.NewRequest("OPTIONS", "/api/v1/uploads", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected preflight 200, got %d", recorder.Code)
	}
	if recorder.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Error("expected localhost origin allowed")
	}
}
