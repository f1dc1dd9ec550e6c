package core

import (
	"testing"
	"time"
)

func TestClassifyScenarios(t *testing.T) {
	now := func(y, m, d int) time.Time {
		return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name          string
		res           Resolution
		pendingCents  int64
		now           time.Time
		wantRemaining int64
		wantStatus    ActionStatus
	}{
		{
			name:          "never purchased",
			res:           Resolution{},
			now:           now(2024, 3, 1),
			wantRemaining: 2500,
			wantStatus:    StatusEligible,
		},
		{
			name:          "partial spend, nothing pending",
			res:           Resolution{Anchor: NewDate(2024, 1, 1), Committed: Money{Cents: 1000}},
			now:           now(2024, 3, 1),
			wantRemaining: 1500,
			wantStatus:    StatusPurchased,
		},
		{
			name:          "pending fits the remainder",
			res:           Resolution{Anchor: NewDate(2024, 1, 1), Committed: Money{Cents: 1000}},
			pendingCents:  1500,
			now:           now(2024, 3, 1),
			wantRemaining: 1500,
			wantStatus:    StatusPlaceOrder,
		},
		{
			name:          "pending exceeds the remainder",
			res:           Resolution{Anchor: NewDate(2024, 1, 1), Committed: Money{Cents: 1500}},
			pendingCents:  2000,
			now:           now(2024, 2, 1),
			wantRemaining: 1000,
			wantStatus:    StatusOverBudgetPending,
		},
		{
			name:          "fully used, pending unfulfillable mid-cycle",
			res:           Resolution{Anchor: NewDate(2024, 1, 1), Committed: Money{Cents: 2500}},
			pendingCents:  500,
			now:           now(2024, 3, 1),
			wantRemaining: 0,
			wantStatus:    StatusNotEligibleWait,
		},
		{
			name:          "fully used, cycle elapsed, no pending",
			res:           Resolution{Anchor: NewDate(2024, 1, 1), Committed: Money{Cents: 2500}},
			now:           now(2024, 8, 1),
			wantRemaining: 2500,
			wantStatus:    StatusEligible,
		},
		{
			name:          "reset exactly at anchor plus cycle",
			res:           Resolution{Anchor: NewDate(2024, 1, 1), Committed: Money{Cents: 2500}},
			now:           now(2024, 7, 1),
			wantRemaining: 2500,
			wantStatus:    StatusEligible,
		},
		{
			name:          "one day before reset still waits",
			res:           Resolution{Anchor: NewDate(2024, 1, 1), Committed: Money{Cents: 2500}},
			now:           now(2024, 6, 30),
			wantRemaining: 0,
			wantStatus:    StatusNotEligibleWait,
		},
		{
			name:          "reset with pending that fits the fresh allowance",
			res:           Resolution{Anchor: NewDate(2024, 1, 1), Committed: Money{Cents: 2500}},
			pendingCents:  2000,
			now:           now(2024, 8, 1),
			wantRemaining: 2500,
			wantStatus:    StatusPlaceOrder,
		},
		{
			name:          "reset with pending above the full allowance",
			res:           Resolution{Anchor: NewDate(2024, 1, 1), Committed: Money{Cents: 2500}},
			pendingCents:  3000,
			now:           now(2024, 8, 1),
			wantRemaining: 2500,
			wantStatus:    StatusOverBudgetPending,
		},
		{
			name:          "over-committed data clamps remaining to zero",
			res:           Resolution{Anchor: NewDate(2024, 1, 1), Committed: Money{Cents: 4000}},
			now:           now(2024, 3, 1),
			wantRemaining: 0,
			wantStatus:    StatusNotEligibleWait,
		},
		{
			name:          "anchor with zero committed degrades to eligible",
			res:           Resolution{Anchor: NewDate(2024, 1, 1)},
			now:           now(2024, 3, 1),
			wantRemaining: 2500,
			wantStatus:    StatusEligible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy(tt.now)
			out, err := Classify(tt.res, Money{Cents: tt.pendingCents}, p)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Remaining.Cents != tt.wantRemaining {
				t.Errorf("remaining = %d, want %d", out.Remaining.Cents, tt.wantRemaining)
			}
			if out.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", out.Status, tt.wantStatus)
			}
		})
	}
}

func TestClassifyRejectsNegativePending(t *testing.T) {
	p := DefaultPolicy(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if _, err := Classify(Resolution{}, Money{Cents: -1}, p); err == nil {
		t.Fatal("expected error for negative pending amount")
	}
}

func TestClassifyRemainingBounds(t *testing.T) {
	// Remaining must stay within [0, allowance] for any committed value.
	p := DefaultPolicy(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	anchor := NewDate(2024, 1, 1)
	for _, committed := range []int64{0, 1, 1250, 2499, 2500, 2501, 9999} {
		out, err := Classify(Resolution{Anchor: anchor, Committed: Money{Cents: committed}}, Money{}, p)
		if err != nil {
			t.Fatalf("committed=%d: %v", committed, err)
		}
		if out.Remaining.Cents < 0 || out.Remaining.Cents > p.Allowance.Cents {
			t.Errorf("committed=%d: remaining %d out of bounds", committed, out.Remaining.Cents)
		}
	}
}

func TestClassifyCustomPolicy(t *testing.T) {
	// Allowance and cycle length come from the policy, not constants.
	p := Policy{
		Allowance:   Money{Cents: 10000},
		CycleMonths: 3,
		Now:         time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
	}
	res := Resolution{Anchor: NewDate(2024, 1, 1), Committed: Money{Cents: 10000}}
	out, err := Classify(res, Money{}, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != StatusEligible || out.Remaining.Cents != 10000 {
		t.Fatalf("3-month cycle elapsed: got %s remaining %d", out.Status, out.Remaining.Cents)
	}
}
