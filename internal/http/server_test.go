package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"toybudget/internal/core"
	"toybudget/internal/services"
	"toybudget/internal/source/memory"
)

type fakePublisher struct {
	reasons []string
}

func (f *fakePublisher) PublishRefresh(ctx context.Context, reason string) error {
	f.reasons = append(f.reasons, reason)
	return nil
}

func newTestServer(t *testing.T) (*Server, *fakePublisher) {
	t.Helper()

	store := memory.New([]core.Transaction{
		{ClientName: "Ann", Amount: core.Money{Cents: 2500}, Purchased: true, Date: core.NewDate(2020, 1, 15)},
		{ClientName: "Bob", Amount: core.Money{Cents: 1200}},
	})

	svc := services.NewDashboardService(store, core.Money{Cents: 2500}, 6, time.Minute)
	pub := &fakePublisher{}
	return NewServer(":0", svc, pub), pub
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := do(t, s, http.MethodGet, path)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestIndexPage(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Toy Budget") {
		t.Error("index should contain the page title")
	}
	// Every status appears as a filter option.
	for _, st := range core.AllStatuses() {
		if !strings.Contains(body, st.Label()) {
			t.Errorf("index missing status option %q", st.Label())
		}
	}
}

func TestIndex_NotFoundForOtherPaths(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /nope = %d, want 404", rec.Code)
	}
}

func TestDashboardPartial(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/ui/dashboard")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /ui/dashboard = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Ann") || !strings.Contains(body, "Bob") {
		t.Error("dashboard should list both clients")
	}
	// Ann bought $25 in 2020: cycle long elapsed, so she is eligible again.
	if !strings.Contains(body, "Eligible") {
		t.Error("dashboard should show the Eligible status")
	}
	if !strings.Contains(body, "$25.00") {
		t.Error("dashboard should show the purchased total")
	}
}

func TestDashboardPartial_ClientFilter(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/ui/dashboard?client=ann")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /ui/dashboard?client=ann = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Ann") {
		t.Error("filtered dashboard should keep Ann")
	}
	if strings.Contains(body, "Bob") {
		t.Error("filtered dashboard should drop Bob")
	}
}

func TestDashboardPartial_MethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/ui/dashboard")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /ui/dashboard = %d, want 405", rec.Code)
	}
}

func TestRefresh(t *testing.T) {
	s, pub := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/refresh")
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /refresh = %d, want 200", rec.Code)
	}
	if rec.Header().Get("HX-Trigger") != "dashboard:refresh" {
		t.Errorf("HX-Trigger = %q", rec.Header().Get("HX-Trigger"))
	}
	if len(pub.reasons) != 1 || pub.reasons[0] != "manual" {
		t.Errorf("published reasons = %v, want [manual]", pub.reasons)
	}

	rec = do(t, s, http.MethodGet, "/refresh")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /refresh = %d, want 405", rec.Code)
	}
}

func TestAPISummary(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/summary = %d, want 200", rec.Code)
	}

	var resp struct {
		TotalPurchasedCents int64 `json:"total_purchased_cents"`
		TotalPendingCents   int64 `json:"total_pending_cents"`
		NotEligible         int   `json:"not_eligible"`
		Clients             int   `json:"clients"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if resp.Clients != 2 {
		t.Errorf("clients = %d, want 2", resp.Clients)
	}
	if resp.TotalPurchasedCents != 2500 {
		t.Errorf("total_purchased_cents = %d, want 2500", resp.TotalPurchasedCents)
	}
	if resp.TotalPendingCents != 1200 {
		t.Errorf("total_pending_cents = %d, want 1200", resp.TotalPendingCents)
	}
	if resp.NotEligible != 0 {
		t.Errorf("not_eligible = %d, want 0", resp.NotEligible)
	}
}

func TestAPIClients_StatusFilter(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/clients?status=eligible")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/clients = %d, want 200", rec.Code)
	}

	var resp struct {
		Clients []struct {
			Name        string `json:"name"`
			Status      string `json:"status"`
			StatusLabel string `json:"status_label"`
		} `json:"clients"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode clients: %v", err)
	}
	// Ann's 2020 purchase is past the cycle and Bob never purchased, so
	// both are eligible.
	if len(resp.Clients) != 2 {
		t.Fatalf("clients = %+v, want 2 eligible", resp.Clients)
	}
	for _, c := range resp.Clients {
		if c.Status != "eligible" {
			t.Errorf("client %s status = %q, want eligible", c.Name, c.Status)
		}
		if c.StatusLabel != "Eligible" {
			t.Errorf("client %s status_label = %q, want Eligible", c.Name, c.StatusLabel)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/ui/dashboard")
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options header")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing X-Frame-Options header")
	}
}

func TestFormatDollars(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{2500, "$25.00"},
		{123456, "$1234.56"},
		{-1250, "-$12.50"},
	}
	for _, tt := range tests {
		if got := formatDollars(tt.cents); got != tt.want {
			t.Errorf("formatDollars(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
