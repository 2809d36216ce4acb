// SPDX-License-Identifier: MPL-2.0

package update

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/schl3ck/scriptup/internal/store"
	"github.com/schl3ck/scriptup/internal/version"
)

// fixedNow is a deterministic "current moment" mid-day so start-of-day
// truncation is observable: 2024-03-15 14:30 local time.
var fixedNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.Local)

func TestCutoff(t *testing.T) {
	t.Parallel()

	startOfDay := time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)

	tests := []struct {
		interval Interval
		want     time.Time
	}{
		{IntervalEveryTime, fixedNow},
		{IntervalDaily, startOfDay},
		{IntervalWeekly, startOfDay.AddDate(0, 0, -7)},
		{IntervalMonthly, startOfDay.AddDate(0, -1, 0)},
	}

	for _, tt := range tests {
		if got := Cutoff(tt.interval, fixedNow); !got.Equal(tt.want) {
			t.Errorf("Cutoff(%q) = %v, want %v", tt.interval, got, tt.want)
		}
	}
}

func TestParseInterval(t *testing.T) {
	t.Parallel()

	if got, err := ParseInterval("  Daily "); err != nil || got != IntervalDaily {
		t.Errorf("ParseInterval(\"  Daily \") = %q, %v", got, err)
	}
	if got, err := ParseInterval("EVERY TIME"); err != nil || got != IntervalEveryTime {
		t.Errorf("ParseInterval(\"EVERY TIME\") = %q, %v", got, err)
	}
	if _, err := ParseInterval("hourly"); err == nil {
		t.Error("ParseInterval(\"hourly\") succeeded, want error")
	}
}

// manifestServer serves the given versions and counts requests.
func manifestServer(t *testing.T, versions []VersionData, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(versions); err != nil {
			t.Errorf("encoding manifest: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestChecker(cache *Cache) *Checker {
	return NewChecker(cache, NewClient(), WithNow(func() time.Time { return fixedNow }))
}

func TestCheckForUpdate_FiltersNewerInManifestOrder(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := manifestServer(t, []VersionData{
		{Version: "1.0", URL: "https://example.com/1.0.zip"},
		{Version: "2.0", URL: "https://example.com/2.0.zip"},
		{Version: "1.5", URL: "https://example.com/1.5.zip"},
	}, &hits)

	checker := newTestChecker(NewCache(store.NewMemStore(), "my-script"))

	got, err := checker.CheckForUpdate(context.Background(), srv.URL, IntervalEveryTime, "1.2")
	if err != nil {
		t.Fatalf("CheckForUpdate: %v", err)
	}

	want := []string{"2.0", "1.5"}
	if len(got) != len(want) {
		t.Fatalf("got %d versions, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Version != w {
			t.Errorf("result[%d] = %q, want %q (manifest order must be preserved)", i, got[i].Version, w)
		}
	}
}

func TestCheckForUpdate_FreshCacheSkipsFetch(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := manifestServer(t, nil, &hits)

	ctx := context.Background()
	cache := NewCache(store.NewMemStore(), "my-script")

	// The cache was refreshed "now"; a daily interval must reuse it.
	seed := StorageData{
		LastChecked: fixedNow.UnixMilli(),
		Versions:    []VersionData{{Version: "3.0"}},
	}
	if err := cache.Save(ctx, seed); err != nil {
		t.Fatalf("Save: %v", err)
	}

	checker := newTestChecker(cache)
	got, err := checker.CheckForUpdate(ctx, srv.URL, IntervalDaily, "1.0")
	if err != nil {
		t.Fatalf("CheckForUpdate: %v", err)
	}

	if hits.Load() != 0 {
		t.Errorf("manifest fetched %d times with a fresh cache, want 0", hits.Load())
	}
	if len(got) != 1 || got[0].Version != "3.0" {
		t.Errorf("result = %v, want cached [3.0]", got)
	}
}

func TestCheckForUpdate_EveryTimeAlwaysFetches(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := manifestServer(t, []VersionData{{Version: "2.0"}}, &hits)

	ctx := context.Background()
	cache := NewCache(store.NewMemStore(), "my-script")
	if err := cache.Save(ctx, StorageData{LastChecked: fixedNow.UnixMilli()}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	checker := newTestChecker(cache)
	if _, err := checker.CheckForUpdate(ctx, srv.URL, IntervalEveryTime, "1.0"); err != nil {
		t.Fatalf("CheckForUpdate: %v", err)
	}
	if _, err := checker.CheckForUpdate(ctx, srv.URL, IntervalEveryTime, "1.0"); err != nil {
		t.Fatalf("CheckForUpdate (second): %v", err)
	}

	if hits.Load() != 2 {
		t.Errorf("manifest fetched %d times under \"every time\", want 2", hits.Load())
	}
}

func TestCheckForUpdate_EmptyCacheFetchesEvenWhenNotDue(t *testing.T) {
	t.Parallel()

	// First call ever, monthly interval: lastChecked=0 precedes every
	// cutoff, so the check must still fetch.
	var hits atomic.Int32
	srv := manifestServer(t, []VersionData{{Version: "1.1"}}, &hits)

	checker := newTestChecker(NewCache(store.NewMemStore(), "my-script"))

	got, err := checker.CheckForUpdate(context.Background(), srv.URL, IntervalMonthly, "1.0")
	if err != nil {
		t.Fatalf("CheckForUpdate: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("manifest fetched %d times on first-ever check, want 1", hits.Load())
	}
	if len(got) != 1 || got[0].Version != "1.1" {
		t.Errorf("result = %v, want [1.1]", got)
	}
}

func TestCheckForUpdate_RefreshReplacesVersionsWholesale(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := manifestServer(t, []VersionData{{Version: "4.0"}}, &hits)

	ctx := context.Background()
	cache := NewCache(store.NewMemStore(), "my-script")
	stale := StorageData{
		LastChecked: fixedNow.AddDate(0, 0, -30).UnixMilli(),
		Versions:    []VersionData{{Version: "2.0"}, {Version: "3.0"}},
	}
	if err := cache.Save(ctx, stale); err != nil {
		t.Fatalf("Save: %v", err)
	}

	checker := newTestChecker(cache)
	if _, err := checker.CheckForUpdate(ctx, srv.URL, IntervalWeekly, "1.0"); err != nil {
		t.Fatalf("CheckForUpdate: %v", err)
	}

	data, err := cache.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(data.Versions) != 1 || data.Versions[0].Version != "4.0" {
		t.Errorf("cached versions = %v, want full replacement [4.0]", data.Versions)
	}
	if data.LastChecked != fixedNow.UnixMilli() {
		t.Errorf("LastChecked = %d, want %d", data.LastChecked, fixedNow.UnixMilli())
	}
}

func TestCheckForUpdate_FetchFailureLeavesCacheAlone(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	cache := NewCache(store.NewMemStore(), "my-script")
	seed := StorageData{
		LastChecked: 12345,
		Versions:    []VersionData{{Version: "2.0"}},
	}
	if err := cache.Save(ctx, seed); err != nil {
		t.Fatalf("Save: %v", err)
	}

	checker := newTestChecker(cache)
	_, err := checker.CheckForUpdate(ctx, srv.URL, IntervalEveryTime, "1.0")

	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if ferr.Status != http.StatusInternalServerError {
		t.Errorf("FetchError.Status = %d, want %d", ferr.Status, http.StatusInternalServerError)
	}

	data, err := cache.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if data.LastChecked != 12345 || len(data.Versions) != 1 {
		t.Errorf("cache mutated after failed fetch: %+v", data)
	}
}

func TestCheckForUpdate_SaveFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := manifestServer(t, []VersionData{{Version: "2.0"}}, &hits)

	cache := NewCache(&failingStore{Store: store.NewMemStore(), failSet: true}, "my-script")
	checker := newTestChecker(cache)

	got, err := checker.CheckForUpdate(context.Background(), srv.URL, IntervalEveryTime, "1.0")
	if err != nil {
		t.Fatalf("CheckForUpdate with failing cache save: %v", err)
	}
	if len(got) != 1 || got[0].Version != "2.0" {
		t.Errorf("result = %v, want [2.0] from the in-memory refresh", got)
	}
}

func TestCheckForUpdate_InvalidCurrentVersion(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := manifestServer(t, []VersionData{{Version: "2.0"}}, &hits)

	cache := NewCache(store.NewMemStore(), "my-script")
	checker := newTestChecker(cache)

	_, err := checker.CheckForUpdate(context.Background(), srv.URL, IntervalEveryTime, "1.2-beta")
	var verr *version.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *version.ValidationError", err)
	}
	if verr.Param != "currentVersion" {
		t.Errorf("ValidationError.Param = %q, want %q", verr.Param, "currentVersion")
	}

	// The bad version must fail before anything else happens: no manifest
	// request, no bumped lastChecked.
	if got := hits.Load(); got != 0 {
		t.Errorf("manifest hits = %d, want 0", got)
	}
	data, loadErr := cache.Load(context.Background())
	if loadErr != nil {
		t.Fatalf("loading cache: %v", loadErr)
	}
	if data.LastChecked != 0 || len(data.Versions) != 0 {
		t.Errorf("cache mutated by failed check: %+v", data)
	}
}

func TestCheckForUpdate_InvalidCurrentVersionEmptyManifest(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := manifestServer(t, nil, &hits)

	checker := newTestChecker(NewCache(store.NewMemStore(), "my-script"))

	// Even when no manifest entry would reach the comparator, the invalid
	// version must not be silently accepted.
	_, err := checker.CheckForUpdate(context.Background(), srv.URL, IntervalEveryTime, "not-a-version")
	var verr *version.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *version.ValidationError", err)
	}
}
