// Package client is a thin HTTP client for the coordinator API, used by the
// batch upload command.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a running coordinator instance.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// New creates a client for the coordinator at rawURL.
func New(rawURL string) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(rawURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid coordinator URL %s: %w", rawURL, err)
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

// readErrorBody reads the response body for error messages.
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(body) == 0 {
		return "(no body)"
	}
	return string(body)
}

// UploadGrants is the response of the batch upload request endpoint.
type UploadGrants struct {
	PresignedURLs map[string]string `json:"presignedUrls"`
	Failed        map[string]string `json:"failed"`
}

// ConfirmSummary is the response of the confirm endpoint.
type ConfirmSummary struct {
	Success    bool              `json:"success"`
	Confirmed  int               `json:"confirmed"`
	Duplicates int               `json:"duplicates"`
	Failed     map[string]string `json:"failed"`
}

func (c *Client) postJSON(ctx context.Context, path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL.JoinPath(path).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, readErrorBody(resp.Body))
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// RequestUploads asks the coordinator which fingerprints are new and gets a
// presigned upload URL for each.
func (c *Client) RequestUploads(ctx context.Context, hashes []string) (*UploadGrants, error) {
	var grants UploadGrants
	payload := map[string][]string{"hashes": hashes}
	if err := c.postJSON(ctx, "/api/v1/uploads", payload, &grants); err != nil {
		return nil, err
	}
	return &grants, nil
}

// ConfirmUploads reports successfully uploaded fingerprints back to the
// coordinator.
func (c *Client) ConfirmUploads(ctx context.Context, hashes []string) (*ConfirmSummary, error) {
	var summary ConfirmSummary
	payload := map[string][]string{"hashes": hashes}
	if err := c.postJSON(ctx, "/api/v1/uploads/confirm", payload, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// UploadFile PUTs image bytes to a presigned URL.
func (c *Client) UploadFile(ctx context.Context, presignedURL string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, presignedURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	req.ContentLength = int64(len(data))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload: status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}
	return nil
}
