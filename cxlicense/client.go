package cxlicense

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 1 << 20 // 1 MB
)

// Client talks to the CX License Server over HTTPS. Every call carries the
// current machine's canonical fingerprint as the binding claim, and every
// state-changing call persists the resulting record through the Store.
//
// Calls are single round trips with no built-in retries; transient failures
// surface immediately and the caller owns retry and cancellation policy via
// the context.
type Client struct {
	serverURL   string
	store       *Store
	fingerprint HardwareFingerprint
	httpClient  *http.Client
	timeout     time.Duration // applied after all options
	userAgent   string
}

// NewClient creates a client for the license server at serverURL
// (e.g. "https://license.cxlinux.ai/api/v1"). Activated and refreshed
// licenses are persisted through store.
func NewClient(serverURL string, store *Store, opts ...ClientOption) *Client {
	c := &Client{
		serverURL:   strings.TrimRight(serverURL, "/"),
		store:       store,
		fingerprint: GenerateFingerprint(),
		timeout:     defaultTimeout,
		userAgent:   "cx-license-sdk-go/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	// Apply timeout after all options so ordering doesn't matter.
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	c.httpClient.Timeout = c.timeout
	return c
}

// Fingerprint returns the machine fingerprint the client binds against.
func (c *Client) Fingerprint() HardwareFingerprint {
	return c.fingerprint
}

// Activate redeems a license key for this machine. On success the server's
// full license record is persisted and returned. A rejected key (any
// non-2xx status) is ErrInvalidKey; this call does not distinguish server
// failure modes because an unactivated caller has no record to fall back on.
func (c *Client) Activate(ctx context.Context, licenseKey string) (*License, error) {
	status, body, err := c.post(ctx, "/activate", activateRequest{
		LicenseKey:          licenseKey,
		HardwareFingerprint: c.fingerprint.String(),
	})
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: activation rejected with status %d", ErrInvalidKey, status)
	}

	var lic License
	if err := json.Unmarshal(body, &lic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if lic.Metadata == nil {
		lic.Metadata = make(map[string]string)
	}
	if err := c.store.Save(&lic); err != nil {
		return nil, err
	}
	return &lic, nil
}

// ValidateOnline re-checks the license with the server. On success it stamps
// LastValidated and persists the record; this is the only way the offline
// grace clock resets. On any failure the record is left untouched, in memory
// and on disk.
func (c *Client) ValidateOnline(ctx context.Context, lic *License) error {
	status, _, err := c.post(ctx, "/validate", validateRequest{
		LicenseID:           lic.ID,
		LicenseKey:          lic.Key,
		HardwareFingerprint: c.fingerprint.String(),
	})
	if err != nil {
		return err
	}
	switch {
	case status >= 200 && status <= 299:
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: license key rejected", ErrInvalidKey)
	case status == http.StatusGone:
		return ErrRevoked
	default:
		return fmt.Errorf("%w: server returned status %d", ErrNetwork, status)
	}

	now := time.Now().UTC()
	lic.LastValidated = &now
	return c.store.Save(lic)
}

// Deactivate releases the license. The server call is best-effort: its
// outcome is ignored, and the local license file is deleted regardless, so
// deactivation succeeds locally even when the server is unreachable.
func (c *Client) Deactivate(ctx context.Context, lic *License) error {
	_, _, _ = c.post(ctx, "/deactivate", validateRequest{
		LicenseID:           lic.ID,
		LicenseKey:          lic.Key,
		HardwareFingerprint: c.fingerprint.String(),
	})
	return c.store.Delete()
}

// post sends one JSON POST and returns the status and capped response body.
// Transport-level failures come back wrapped in ErrServerUnreachable.
func (c *Client) post(ctx context.Context, path string, body any) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrServerUnreachable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}
	return resp.StatusCode, respBody, nil
}
