// SPDX-License-Identifier: MPL-2.0

package update

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// maxManifestBytes is the upper bound on manifest response size (10 MB).
// Prevents unbounded memory consumption from malformed or hostile responses.
const maxManifestBytes = 10 << 20

type (
	// VersionData is one published release descriptor from the manifest.
	// Immutable once stored in the cache.
	VersionData struct {
		Version string `json:"version"` // dotted-numeric version string
		Date    string `json:"date"`    // publication date, informational
		Notes   string `json:"notes"`   // release notes
		URL     string `json:"url"`     // archive download URL
	}

	// Client fetches the remote version manifest: a JSON array of
	// VersionData, newest entries wherever the publisher put them — order is
	// preserved end to end.
	Client struct {
		httpClient *http.Client
		userAgent  string
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)
)

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy
// configurations.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(m *Client) {
		m.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(m *Client) {
		m.userAgent = ua
	}
}

// NewClient creates a manifest Client. Defaults: http.DefaultClient and
// userAgent "scriptup/dev".
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		userAgent:  "scriptup/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves and decodes the manifest at manifestURL. Any transport
// failure, non-success status, or undecodable body yields a *FetchError.
func (c *Client) Fetch(ctx context.Context, manifestURL string) ([]VersionData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, nil)
	if err != nil {
		return nil, &FetchError{URL: manifestURL, Cause: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: manifestURL, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: manifestURL, Status: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
	}

	var versions []VersionData
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxManifestBytes)).Decode(&versions); err != nil {
		return nil, &FetchError{URL: manifestURL, Cause: err}
	}
	return versions, nil
}
