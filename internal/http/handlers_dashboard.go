package http

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"toybudget/internal/amqp"
	"toybudget/internal/core"
	applog "toybudget/internal/log"
	"toybudget/internal/services"
)

// parseFilter builds the dashboard filter from query parameters. Unknown
// status values are logged and skipped rather than failing the request.
func (s *Server) parseFilter(r *http.Request) services.Filter {
	var f services.Filter
	for _, raw := range r.URL.Query()["status"] {
		if raw == "" {
			continue
		}
		st, ok := core.ParseActionStatus(raw)
		if !ok {
			slog.WarnContext(r.Context(), "Ignoring unknown status filter", "status", raw)
			continue
		}
		f.Statuses = append(f.Statuses, st)
	}
	f.Client = sanitizeInput(r.URL.Query().Get("client"))
	return f
}

type clientView struct {
	Name        string
	Status      string
	StatusClass string
	Committed   string
	Remaining   string
	Pending     string
	LastAnchor  string
	Warnings    []string
}

type dashboardView struct {
	TotalPurchased string
	TotalPending   string
	NotEligible    int
	Clients        []clientView
	Issues         []string
	FetchedAt      string
	HasData        bool
}

func statusClass(st core.ActionStatus) string {
	switch st {
	case core.StatusEligible:
		return "status--eligible"
	case core.StatusPurchased:
		return "status--purchased"
	case core.StatusPlaceOrder:
		return "status--place-order"
	case core.StatusOverBudgetPending:
		return "status--over-budget"
	case core.StatusNotEligibleWait:
		return "status--wait"
	default:
		return ""
	}
}

func (s *Server) dashboardView(dash services.Dashboard) dashboardView {
	view := dashboardView{
		TotalPurchased: formatDollars(dash.Totals.TotalPurchased.Cents),
		TotalPending:   formatDollars(dash.Totals.TotalPending.Cents),
		NotEligible:    dash.Totals.NotEligible,
		HasData:        len(dash.Clients) > 0,
	}
	for _, c := range dash.Clients {
		anchor := "-"
		if !c.CycleAnchor.IsNone() {
			anchor = c.CycleAnchor.Format("2006-01-02")
		}
		view.Clients = append(view.Clients, clientView{
			Name:        c.ClientName,
			Status:      c.Status.Label(),
			StatusClass: statusClass(c.Status),
			Committed:   formatDollars(c.Committed.Cents),
			Remaining:   formatDollars(c.Remaining.Cents),
			Pending:     formatDollars(c.Pending.Cents),
			LastAnchor:  anchor,
			Warnings:    c.Warnings,
		})
	}
	for _, issue := range dash.Issues {
		view.Issues = append(view.Issues, issue.String())
	}
	if !dash.FetchedAt.IsZero() {
		view.FetchedAt = dash.FetchedAt.UTC().Format("2006-01-02 15:04 UTC")
	}
	return view
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	type statusOption struct {
		Value string
		Label string
	}
	var options []statusOption
	for _, st := range core.AllStatuses() {
		options = append(options, statusOption{Value: string(st), Label: st.Label()})
	}

	data := struct {
		Statuses []statusOption
	}{
		Statuses: options,
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleDashboardPartial renders the dashboard partial: KPI cards plus the
// per-client table, honoring any status/client filters in the query.
func (s *Server) handleDashboardPartial(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	dash, err := s.dashboards.Dashboard(ctx, s.parseFilter(r))
	if err != nil {
		slog.ErrorContext(ctx, "Dashboard error", "error", err)
		_, _ = w.Write([]byte(`<section id="dashboard" class="dashboard"><div class="placeholder">Error loading dashboard</div></section>`))
		return
	}

	view := s.dashboardView(dash)
	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="dashboard" class="dashboard"><div class="placeholder">Total purchased: ` +
			template.HTMLEscapeString(view.TotalPurchased) + `</div></section>`))
		return
	}

	if err := s.templates.ExecuteTemplate(w, "dashboard.html", view); err != nil {
		slog.ErrorContext(ctx, "Dashboard template execution failed", "error", err, "template", "dashboard.html")
		_, _ = w.Write([]byte(`<section id="dashboard" class="dashboard"><div class="placeholder">Error rendering dashboard</div></section>`))
	}
}

// handleRefresh drops the cached evaluation and, when a broker is wired,
// asks the snapshot worker to re-fetch the sheet.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.dashboards.Invalidate()

	if s.publisher != nil {
		if err := s.publisher.PublishRefresh(r.Context(), amqp.ReasonManual); err != nil {
			// The cache is already dropped, so the next read still picks up
			// whatever the backend has. Report the degraded refresh.
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Failed to publish refresh message", "error", err)
		}
	}

	w.Header().Set("HX-Trigger", "dashboard:refresh")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Refreshing...</div>`))
}

// handleAPISummary returns the KPI totals as JSON.
func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	dash, err := s.dashboards.Dashboard(ctx, s.parseFilter(r))
	if err != nil {
		slog.ErrorContext(ctx, "Summary error", "error", err)
		http.Error(w, "failed to load summary", http.StatusInternalServerError)
		return
	}

	resp := struct {
		TotalPurchasedCents int64     `json:"total_purchased_cents"`
		TotalPendingCents   int64     `json:"total_pending_cents"`
		NotEligible         int       `json:"not_eligible"`
		Clients             int       `json:"clients"`
		Issues              int       `json:"issues"`
		FetchedAt           time.Time `json:"fetched_at"`
	}{
		TotalPurchasedCents: dash.Totals.TotalPurchased.Cents,
		TotalPendingCents:   dash.Totals.TotalPending.Cents,
		NotEligible:         dash.Totals.NotEligible,
		Clients:             len(dash.Clients),
		Issues:              len(dash.Issues),
		FetchedAt:           dash.FetchedAt,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// handleAPIClients returns per-client budget states as JSON, honoring the
// same status/client filters as the dashboard partial.
func (s *Server) handleAPIClients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	dash, err := s.dashboards.Dashboard(ctx, s.parseFilter(r))
	if err != nil {
		slog.ErrorContext(ctx, "Clients error", "error", err)
		http.Error(w, "failed to load clients", http.StatusInternalServerError)
		return
	}

	type clientJSON struct {
		Name           string   `json:"name"`
		Status         string   `json:"status"`
		StatusLabel    string   `json:"status_label"`
		CommittedCents int64    `json:"committed_cents"`
		RemainingCents int64    `json:"remaining_cents"`
		PendingCents   int64    `json:"pending_cents"`
		CycleAnchor    string   `json:"cycle_anchor,omitempty"`
		Warnings       []string `json:"warnings,omitempty"`
	}

	clients := make([]clientJSON, 0, len(dash.Clients))
	for _, c := range dash.Clients {
		cj := clientJSON{
			Name:           c.ClientName,
			Status:         string(c.Status),
			StatusLabel:    c.Status.Label(),
			CommittedCents: c.Committed.Cents,
			RemainingCents: c.Remaining.Cents,
			PendingCents:   c.Pending.Cents,
			Warnings:       c.Warnings,
		}
		if !c.CycleAnchor.IsNone() {
			cj.CycleAnchor = c.CycleAnchor.Format("2006-01-02")
		}
		clients = append(clients, cj)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Clients []clientJSON `json:"clients"`
	}{Clients: clients})
}
