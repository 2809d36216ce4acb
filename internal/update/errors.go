// SPDX-License-Identifier: MPL-2.0

package update

import "fmt"

type (
	// FetchError reports a failed manifest request: either the request
	// itself failed (Cause set, Status zero) or the server answered with a
	// non-success status. The cache is left untouched when it occurs.
	FetchError struct {
		URL    string
		Status int    // HTTP status code, 0 when the request never completed
		Reason string // status text from the response, if any
		Cause  error  // transport-level cause, if any
	}

	// DownloadError reports a non-success response while downloading an
	// update archive. It carries the original URL and the response status so
	// the CLI can show actionable diagnostics, and is distinguishable from
	// the generic FetchError of a manifest check.
	DownloadError struct {
		URL    string
		Status int
		Reason string
	}

	// ConversionError reports a response body that could not be read into a
	// storable byte buffer.
	ConversionError struct {
		URL   string
		Cause error
	}
)

// Error formats the fetch failure.
func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetching manifest %s: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("fetching manifest %s: unexpected status %d %s", e.URL, e.Status, e.Reason)
}

// Unwrap returns the transport-level cause, if any.
func (e *FetchError) Unwrap() error { return e.Cause }

// Error formats the download failure with URL and response status.
func (e *DownloadError) Error() string {
	return fmt.Sprintf("downloading %s: unexpected status %d %s", e.URL, e.Status, e.Reason)
}

// Error formats the body conversion failure.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("reading response body from %s: %v", e.URL, e.Cause)
}

// Unwrap returns the underlying read error.
func (e *ConversionError) Unwrap() error { return e.Cause }
