package core

import (
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	good := purchase("Ann", 1000, 2024, 1, 1)
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Pending rows may omit the date; only purchased rows need one.
	pendingNoDate := Transaction{ClientName: "Ann", Amount: Money{Cents: 100}}
	if err := pendingNoDate.Validate(); err != nil {
		t.Fatalf("pending without date should validate, got %v", err)
	}

	bads := []Transaction{
		{Amount: Money{Cents: 100}},                                               // no client
		{ClientName: "Ann", Amount: Money{Cents: -1}},                             // negative amount
		{ClientName: "Ann", Amount: Money{Cents: 100}, Purchased: true},           // purchased, no date
		{ClientName: "   ", Amount: Money{Cents: 100}, Date: NewDate(2024, 1, 1)}, // blank client
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Errorf("case %d expected error", i)
		}
	}
}

func TestTransactionKey(t *testing.T) {
	if got := (Transaction{ClientName: "  Ann Smith "}).Key(); got != "ann smith" {
		t.Errorf("name key = %q", got)
	}
	if got := (Transaction{ClientID: "c-17", ClientName: "Ann"}).Key(); got != "c-17" {
		t.Errorf("explicit id key = %q", got)
	}
}

func TestPolicyValidate(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if err := DefaultPolicy(now).Validate(); err != nil {
		t.Fatalf("default policy should validate, got %v", err)
	}
	bads := []Policy{
		{Allowance: Money{Cents: 0}, CycleMonths: 6, Now: now},
		{Allowance: Money{Cents: 2500}, CycleMonths: 0, Now: now},
		{Allowance: Money{Cents: 2500}, CycleMonths: 6},
	}
	for i, p := range bads {
		if err := p.Validate(); err == nil {
			t.Errorf("case %d expected error", i)
		}
	}
}

func TestParseActionStatus(t *testing.T) {
	cases := []struct {
		in   string
		want ActionStatus
		ok   bool
	}{
		{"eligible", StatusEligible, true},
		{"Eligible", StatusEligible, true},
		{"place_order", StatusPlaceOrder, true},
		{"Place Order", StatusPlaceOrder, true},
		{"Not Eligible — Wait 6 Months", StatusNotEligibleWait, true},
		{"over_budget_pending", StatusOverBudgetPending, true},
		{"bogus", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseActionStatus(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("%q: got (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
