package cxlicense

import (
	"net/http"
	"time"
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
// The client's Timeout will be overridden by WithTimeout (or the default 10s).
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithTimeout sets the HTTP timeout. Default is 10 seconds.
// Option ordering does not matter: timeout is always applied after all options.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with requests.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithClientFingerprint overrides the machine fingerprint sent as the
// binding claim. Without it the current machine is probed once at
// construction.
func WithClientFingerprint(fp HardwareFingerprint) ClientOption {
	return func(c *Client) {
		c.fingerprint = fp
	}
}
