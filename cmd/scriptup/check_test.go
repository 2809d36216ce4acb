// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/schl3ck/scriptup/internal/store"
	"github.com/schl3ck/scriptup/internal/update"
	"github.com/schl3ck/scriptup/internal/version"
)

// newTestChecker builds a checker backed by an in-memory store and the given
// manifest server.
func newTestChecker(t *testing.T, srv *httptest.Server) *update.Checker {
	t.Helper()

	cache := update.NewCache(store.NewMemStore(), "demo-script")
	client := update.NewClient(update.WithHTTPClient(srv.Client()))
	return update.NewChecker(cache, client)
}

func TestRunCheckListsNewerVersions(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"version": "2.0", "date": "2024-03-01", "notes": "New features", "url": "https://example.com/2.0.zip"},
			{"version": "1.5", "url": "https://example.com/1.5.zip"},
			{"version": "1.0", "url": "https://example.com/1.0.zip"}
		]`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	p := checkParams{
		stdout:         &out,
		checker:        newTestChecker(t, srv),
		manifestURL:    srv.URL,
		currentVersion: "1.2",
		interval:       update.IntervalEveryTime,
	}

	if err := runCheck(context.Background(), p); err != nil {
		t.Fatalf("runCheck: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Current version: 1.2", "2 newer version(s)", "2.0", "2024-03-01", "New features", "1.5", "scriptup upgrade"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "1.0") && strings.Index(got, "1.0") < strings.Index(got, "newer") {
		t.Errorf("output should not list 1.0 as an update:\n%s", got)
	}
}

func TestRunCheckUpToDate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"version": "1.0", "url": "https://example.com/1.0.zip"}]`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	p := checkParams{
		stdout:         &out,
		checker:        newTestChecker(t, srv),
		manifestURL:    srv.URL,
		currentVersion: "1.0",
		interval:       update.IntervalEveryTime,
	}

	if err := runCheck(context.Background(), p); err != nil {
		t.Fatalf("runCheck: %v", err)
	}
	if !strings.Contains(out.String(), "up to date") {
		t.Errorf("output missing up-to-date notice:\n%s", out.String())
	}
}

func TestRunCheckFetchFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := checkParams{
		stdout:         &bytes.Buffer{},
		checker:        newTestChecker(t, srv),
		manifestURL:    srv.URL,
		currentVersion: "1.0",
		interval:       update.IntervalEveryTime,
	}

	err := runCheck(context.Background(), p)
	var fetchErr *update.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("err = %v, want *update.FetchError", err)
	}
	if classifyCheckExitCode(err) != 2 {
		t.Errorf("exit code = %d, want 2", classifyCheckExitCode(err))
	}

	// The remediation guide for an unreachable manifest is appended.
	formatted := formatCheckError(err)
	if !strings.Contains(formatted, fetchErr.Error()) {
		t.Errorf("formatted error missing the failure itself:\n%s", formatted)
	}
	if !strings.Contains(formatted, "manifest") || !strings.Contains(formatted, "config") {
		t.Errorf("formatted error missing remediation guide:\n%s", formatted)
	}
}

func TestCheckErrorClassification(t *testing.T) {
	t.Parallel()

	invalid := &version.ValidationError{Param: "currentVersion", Value: "1.2-beta"}
	if classifyCheckExitCode(invalid) != 1 {
		t.Errorf("validation error exit code = %d, want 1", classifyCheckExitCode(invalid))
	}
	if !strings.Contains(formatCheckError(invalid), "dot-separated") {
		t.Errorf("formatted validation error missing hint:\n%s", formatCheckError(invalid))
	}

	generic := errors.New("some failure")
	if classifyCheckExitCode(generic) != 2 {
		t.Errorf("generic error exit code = %d, want 2", classifyCheckExitCode(generic))
	}
	if formatCheckError(generic) != "some failure" {
		t.Errorf("generic error should format as-is, got %q", formatCheckError(generic))
	}
}

func TestParseIntervalFlagPrecedence(t *testing.T) {
	t.Parallel()

	got, err := parseIntervalFlag("weekly", "daily")
	if err != nil {
		t.Fatalf("parseIntervalFlag: %v", err)
	}
	if got != update.IntervalWeekly {
		t.Errorf("flag should win over config, got %q", got)
	}

	got, err = parseIntervalFlag("", "monthly")
	if err != nil {
		t.Fatalf("parseIntervalFlag: %v", err)
	}
	if got != update.IntervalMonthly {
		t.Errorf("config should apply without flag, got %q", got)
	}

	if _, err := parseIntervalFlag("hourly", "daily"); err == nil {
		t.Error("unknown interval should error")
	}
}
