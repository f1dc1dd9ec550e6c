package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusEligible          ActionStatus = "eligible"
	StatusPurchased         ActionStatus = "purchased"
	StatusPlaceOrder        ActionStatus = "place_order"
	StatusOverBudgetPending ActionStatus = "over_budget_pending"
	StatusNotEligibleWait   ActionStatus = "not_eligible_wait"
)

type (
	// ActionStatus is the per-client classification produced by Classify.
	// Exactly one status applies per client per evaluation.
	ActionStatus string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is one immutable row from the raw sheet: either a
	// committed purchase (Purchased=true) or a pending request.
	Transaction struct {
		ClientID   string
		ClientName string
		Amount     Money
		Purchased  bool
		Date       Date
		Inactive   bool
	}

	// Policy carries the budget constants. It is passed explicitly into
	// Resolve/Classify/Evaluate so tests can vary allowance, cycle length
	// and the evaluation instant independently.
	Policy struct {
		Allowance   Money
		CycleMonths int
		Now         time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrMissingDate   = errors.New("purchased row has no date")
	ErrEmptyClient   = errors.New("empty client")
	ErrInvalidPolicy = errors.New("invalid policy")
)

// DefaultAllowanceCents is $25.00, granted once per cycle.
const DefaultAllowanceCents int64 = 2500

// DefaultCycleMonths is the reset window: six calendar months.
const DefaultCycleMonths = 6

// DefaultPolicy returns the standard $25 / 6-month policy evaluated at now.
func DefaultPolicy(now time.Time) Policy {
	return Policy{
		Allowance:   Money{Cents: DefaultAllowanceCents},
		CycleMonths: DefaultCycleMonths,
		Now:         now,
	}
}

func (p Policy) Validate() error {
	if p.Allowance.Cents <= 0 {
		return ErrInvalidPolicy
	}
	if p.CycleMonths < 1 {
		return ErrInvalidPolicy
	}
	if p.Now.IsZero() {
		return ErrInvalidPolicy
	}
	return nil
}

// NewDate creates a new Date from year, month, day (UTC, midnight).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsNone reports whether the date is absent (zero value).
func (d Date) IsNone() bool {
	return d.IsZero()
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Key returns the grouping key for the transaction's client: the explicit
// ClientID when present, otherwise the trimmed lowercased client name
// (the raw sheet identifies clients by name only).
func (t Transaction) Key() string {
	if k := strings.TrimSpace(t.ClientID); k != "" {
		return k
	}
	return strings.ToLower(strings.TrimSpace(t.ClientName))
}

func (t Transaction) Validate() error {
	if t.Key() == "" {
		return ErrEmptyClient
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Purchased && t.Date.IsNone() {
		return ErrMissingDate
	}
	return nil
}

// Label returns the human-readable action string shown on the dashboard.
func (s ActionStatus) Label() string {
	switch s {
	case StatusEligible:
		return "Eligible"
	case StatusPurchased:
		return "Purchased"
	case StatusPlaceOrder:
		return "Place Order"
	case StatusOverBudgetPending:
		return "Over Budget — Pending"
	case StatusNotEligibleWait:
		return "Not Eligible — Wait 6 Months"
	default:
		return string(s)
	}
}

// AllStatuses lists every classification in display order.
func AllStatuses() []ActionStatus {
	return []ActionStatus{
		StatusEligible,
		StatusPurchased,
		StatusPlaceOrder,
		StatusOverBudgetPending,
		StatusNotEligibleWait,
	}
}

// ParseActionStatus resolves a status tag or display label, case-insensitively.
func ParseActionStatus(s string) (ActionStatus, bool) {
	needle := strings.TrimSpace(s)
	for _, st := range AllStatuses() {
		if strings.EqualFold(needle, string(st)) || strings.EqualFold(needle, st.Label()) {
			return st, true
		}
	}
	return "", false
}
