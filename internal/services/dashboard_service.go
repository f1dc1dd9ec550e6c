package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"toybudget/internal/cache"
	"toybudget/internal/core"
	"toybudget/internal/source"
)

// Filter narrows the dashboard to a subset of clients. Zero value means no
// filtering. KPI totals are computed over the filtered set, so a filtered
// view shows the totals of what is on screen.
type Filter struct {
	Statuses []core.ActionStatus
	Client   string
}

// IsZero reports whether the filter selects everything.
func (f Filter) IsZero() bool {
	return len(f.Statuses) == 0 && strings.TrimSpace(f.Client) == ""
}

// Dashboard is the full view model for one render: per-client states,
// KPI totals, row issues from the last fetch, and the fetch timestamp.
type Dashboard struct {
	Clients   []core.ClientBudgetState
	Totals    core.Totals
	Issues    []core.RowIssue
	FetchedAt time.Time
}

// evaluation is the cached unit: everything derived from one snapshot.
// Filters are applied per request on top of it.
type evaluation struct {
	states    []core.ClientBudgetState
	issues    []core.RowIssue
	fetchedAt time.Time
}

const evaluationCacheKey = "dashboard"

// DashboardService evaluates the transaction source into the dashboard view.
// Evaluations are cached with a short TTL so HTMX polling does not re-read
// the source on every request; Invalidate drops the cache after a refresh.
type DashboardService struct {
	source      source.TransactionSource
	cache       *cache.LRUCache[evaluation]
	allowance   core.Money
	cycleMonths int
	nowFn       func() time.Time
}

func NewDashboardService(src source.TransactionSource, allowance core.Money, cycleMonths int, ttl time.Duration) *DashboardService {
	return &DashboardService{
		source:      src,
		cache:       cache.NewLRUCache[evaluation](1, ttl),
		allowance:   allowance,
		cycleMonths: cycleMonths,
		nowFn:       time.Now,
	}
}

// CleanExpired implements cache.Cleaner so the service can be registered
// with the cache manager.
func (s *DashboardService) CleanExpired() int {
	return s.cache.CleanExpired()
}

// Dashboard returns the dashboard view for the given filter.
func (s *DashboardService) Dashboard(ctx context.Context, f Filter) (Dashboard, error) {
	eval, err := s.evaluate(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	clients := eval.states
	if !f.IsZero() {
		clients = make([]core.ClientBudgetState, 0, len(eval.states))
		for _, state := range eval.states {
			if f.matches(state) {
				clients = append(clients, state)
			}
		}
	}

	return Dashboard{
		Clients:   clients,
		Totals:    core.Aggregate(clients),
		Issues:    eval.issues,
		FetchedAt: eval.fetchedAt,
	}, nil
}

// Invalidate drops the cached evaluation so the next request re-reads the
// source. Called after a manual refresh.
func (s *DashboardService) Invalidate() {
	s.cache.Delete(evaluationCacheKey)
}

func (s *DashboardService) evaluate(ctx context.Context) (evaluation, error) {
	if cached, ok := s.cache.Get(evaluationCacheKey); ok {
		return cached, nil
	}

	snap, err := s.source.ListTransactions(ctx)
	if err != nil {
		return evaluation{}, fmt.Errorf("list transactions: %w", err)
	}

	policy := core.Policy{
		Allowance:   s.allowance,
		CycleMonths: s.cycleMonths,
		Now:         s.nowFn(),
	}
	if err := policy.Validate(); err != nil {
		return evaluation{}, fmt.Errorf("budget policy: %w", err)
	}

	states, evalIssues := core.Evaluate(snap.Rows, policy)

	// Parse issues from the source come first, then evaluation issues.
	issues := make([]core.RowIssue, 0, len(snap.Issues)+len(evalIssues))
	issues = append(issues, snap.Issues...)
	issues = append(issues, evalIssues...)

	eval := evaluation{
		states:    states,
		issues:    issues,
		fetchedAt: snap.FetchedAt,
	}
	s.cache.Set(evaluationCacheKey, eval)

	slog.DebugContext(ctx, "Dashboard evaluated",
		"clients", len(states),
		"rows", len(snap.Rows),
		"issues", len(issues))

	return eval, nil
}

func (f Filter) matches(state core.ClientBudgetState) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if state.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if needle := strings.TrimSpace(f.Client); needle != "" {
		if !strings.Contains(strings.ToLower(state.ClientName), strings.ToLower(needle)) {
			return false
		}
	}
	return true
}
