package usage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func writeSuccess(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func TestCheckUsage(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/usage/check" {
			t.Errorf("path = %s, want /api/v1/usage/check", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q, want Bearer tok-1", got)
		}

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["feature_type"] != "summary" {
			t.Errorf("feature_type = %q, want summary", body["feature_type"])
		}

		writeSuccess(w, CheckResult{Allowed: true, Tier: "free", MonthlyQuota: 5})
	})

	client := NewClient(srv.URL, "tok-1")
	result, err := client.CheckUsage(context.Background(), "summary")
	if err != nil {
		t.Fatalf("CheckUsage: %v", err)
	}
	if !result.Allowed {
		t.Error("Allowed = false, want true")
	}
	if result.MonthlyQuota != 5 {
		t.Errorf("MonthlyQuota = %d, want 5", result.MonthlyQuota)
	}
}

func TestCheckUsage_QuotaExceeded(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   map[string]string{"type": "quota_exceeded", "message": "monthly limit reached"},
		})
	})

	client := NewClient(srv.URL, "tok-1")
	_, err := client.CheckUsage(context.Background(), "summary")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsQuotaExceeded(err) {
		t.Errorf("IsQuotaExceeded(%v) = false, want true", err)
	}
}

func TestGetStats_CachedWithinTTL(t *testing.T) {
	var calls atomic.Int64
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeSuccess(w, Stats{Tier: "plus", MonthlyUsed: 7})
	})

	client := NewClient(srv.URL, "tok-1")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		stats, err := client.GetStats(ctx, false)
		if err != nil {
			t.Fatalf("GetStats: %v", err)
		}
		if stats.MonthlyUsed != 7 {
			t.Errorf("MonthlyUsed = %d, want 7", stats.MonthlyUsed)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("server calls = %d, want 1 (cache should absorb repeats)", got)
	}
}

func TestGetStats_ForceRefreshBypassesCache(t *testing.T) {
	var calls atomic.Int64
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("force_refresh") != "true" && calls.Load() > 1 {
			t.Error("expected force_refresh=true on refresh call")
		}
		writeSuccess(w, Stats{MonthlyUsed: calls.Load()})
	})

	client := NewClient(srv.URL, "tok-1")
	ctx := context.Background()

	if _, err := client.GetStats(ctx, false); err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	stats, err := client.GetStats(ctx, true)
	if err != nil {
		t.Fatalf("GetStats force: %v", err)
	}
	if stats.MonthlyUsed != 2 {
		t.Errorf("MonthlyUsed = %d, want 2", stats.MonthlyUsed)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server calls = %d, want 2", got)
	}
}

func TestGetStats_StaleFallbackOnFetchFailure(t *testing.T) {
	var fail atomic.Bool
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"success":false}`))
			return
		}
		writeSuccess(w, Stats{Tier: "plus", MonthlyUsed: 9})
	})

	client := NewClient(srv.URL, "tok-1", WithStatsTTL(time.Nanosecond))
	ctx := context.Background()

	if _, err := client.GetStats(ctx, false); err != nil {
		t.Fatalf("GetStats warm-up: %v", err)
	}

	fail.Store(true)
	time.Sleep(time.Millisecond) // let the entry expire

	stats, err := client.GetStats(ctx, false)
	if err != nil {
		t.Fatalf("GetStats should fall back to stale data, got error: %v", err)
	}
	if stats.MonthlyUsed != 9 {
		t.Errorf("MonthlyUsed = %d, want stale 9", stats.MonthlyUsed)
	}
}

func TestRecordUsage_InvalidatesCaches(t *testing.T) {
	var statsCalls atomic.Int64
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/usage/stats":
			statsCalls.Add(1)
			writeSuccess(w, Stats{MonthlyUsed: statsCalls.Load()})
		case "/api/v1/usage/record":
			writeSuccess(w, RecordResult{SID: "uevt_1", MonthlyUsed: 2})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	client := NewClient(srv.URL, "tok-1")
	ctx := context.Background()

	if _, err := client.GetStats(ctx, false); err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	result, err := client.RecordUsage(ctx, RecordRequest{IdempotencyKey: "k1", FeatureType: "summary"})
	if err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}
	if result.SID != "uevt_1" {
		t.Errorf("SID = %q, want uevt_1", result.SID)
	}

	if _, err := client.GetStats(ctx, false); err != nil {
		t.Fatalf("GetStats after record: %v", err)
	}
	if got := statsCalls.Load(); got != 2 {
		t.Errorf("stats calls = %d, want 2 (recording must invalidate the cache)", got)
	}
}

func TestListPlans(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, map[string]any{"plans": []Plan{
			{Tier: "free"}, {Tier: "plus"}, {Tier: "pro"},
		}})
	})

	client := NewClient(srv.URL, "tok-1")
	plans, err := client.ListPlans(context.Background())
	if err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
	if len(plans) != 3 {
		t.Fatalf("len(plans) = %d, want 3", len(plans))
	}
	if plans[2].Tier != "pro" {
		t.Errorf("plans[2].Tier = %q, want pro", plans[2].Tier)
	}
}

func TestListEvents_QueryParams(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("period_month") != "2026-08" {
			t.Errorf("period_month = %q, want 2026-08", q.Get("period_month"))
		}
		if q.Get("page") != "2" || q.Get("page_size") != "10" {
			t.Errorf("pagination = %s/%s, want 2/10", q.Get("page"), q.Get("page_size"))
		}
		writeSuccess(w, ListEventsPage{Total: 15, Page: 2, PageSize: 10})
	})

	client := NewClient(srv.URL, "tok-1")
	page, err := client.ListEvents(context.Background(), "2026-08", 2, 10)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if page.Total != 15 {
		t.Errorf("Total = %d, want 15", page.Total)
	}
}
