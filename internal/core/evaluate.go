package core

import (
	"fmt"
	"sort"
	"strings"
)

type (
	// ClientBudgetState is the per-client view computed on every refresh.
	// It is never persisted; it exists only to be rendered and aggregated.
	ClientBudgetState struct {
		ClientID    string
		ClientName  string
		CycleAnchor Date
		Committed   Money
		Remaining   Money
		Pending     Money
		Status      ActionStatus
		Warnings    []string
	}

	// RowIssue flags a source row that could not be used. Issues degrade the
	// affected client's record; they never abort the batch.
	RowIssue struct {
		Row    int // 1-based source row, 0 when unknown
		Client string
		Reason string
	}

	// Totals are the three dashboard KPIs.
	Totals struct {
		TotalPurchased Money
		TotalPending   Money
		NotEligible    int
	}
)

func (i RowIssue) String() string {
	if i.Row > 0 {
		return fmt.Sprintf("row %d (%s): %s", i.Row, i.Client, i.Reason)
	}
	return fmt.Sprintf("%s: %s", i.Client, i.Reason)
}

// Evaluate computes the budget state for every client found in rows.
//
// Rows of inactive clients are dropped up front. Rows failing validation
// (negative amount, purchased row without a date, no client) are excluded
// and reported as issues; the client is still evaluated with whatever valid
// rows remain, with the warnings attached to its record. Multiple pending
// rows for one client are summed into a single pending amount before
// classification. The result is sorted by client name so rendering is
// stable regardless of source row order.
func Evaluate(rows []Transaction, p Policy) ([]ClientBudgetState, []RowIssue) {
	var issues []RowIssue

	grouped := make(map[string][]Transaction)
	warnings := make(map[string][]string)
	order := make([]string, 0)
	note := func(key string) {
		if _, seen := grouped[key]; !seen {
			grouped[key] = nil
			order = append(order, key)
		}
	}

	for i, t := range rows {
		if t.Inactive {
			continue
		}
		key := t.Key()
		if err := t.Validate(); err != nil {
			name := strings.TrimSpace(t.ClientName)
			if name == "" {
				name = "(unknown)"
			}
			issues = append(issues, RowIssue{Row: i + 1, Client: name, Reason: err.Error()})
			if key != "" {
				note(key)
				warnings[key] = append(warnings[key], err.Error())
			}
			continue
		}
		note(key)
		grouped[key] = append(grouped[key], t)
	}

	states := make([]ClientBudgetState, 0, len(grouped))
	for _, key := range order {
		state := evaluateClient(key, grouped[key], p)
		state.Warnings = warnings[key]
		states = append(states, state)
	}

	sort.Slice(states, func(i, j int) bool {
		if states[i].ClientName != states[j].ClientName {
			return states[i].ClientName < states[j].ClientName
		}
		return states[i].ClientID < states[j].ClientID
	})
	return states, issues
}

func evaluateClient(key string, txs []Transaction, p Policy) ClientBudgetState {
	name := key
	for _, t := range txs {
		if n := strings.TrimSpace(t.ClientName); n != "" {
			name = n
			break
		}
	}

	var pending int64
	for _, t := range txs {
		if !t.Purchased {
			pending += t.Amount.Cents
		}
	}

	res := Resolve(txs, p)
	out, err := Classify(res, Money{Cents: pending}, p)
	if err != nil {
		// Negative inputs are filtered before grouping; a failure here
		// degrades the client to the most restrictive status.
		out = Outcome{Remaining: Money{Cents: 0}, Status: StatusNotEligibleWait}
	}

	return ClientBudgetState{
		ClientID:    key,
		ClientName:  name,
		CycleAnchor: res.Anchor,
		Committed:   res.Committed,
		Remaining:   out.Remaining,
		Pending:     Money{Cents: pending},
		Status:      out.Status,
	}
}

// Aggregate reduces client states into the three KPI totals. Sum and count
// are commutative, so the result is independent of client order.
func Aggregate(states []ClientBudgetState) Totals {
	var t Totals
	for _, s := range states {
		t.TotalPurchased.Cents += s.Committed.Cents
		t.TotalPending.Cents += s.Pending.Cents
		if s.Status == StatusNotEligibleWait {
			t.NotEligible++
		}
	}
	return t
}
