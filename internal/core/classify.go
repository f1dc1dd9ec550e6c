package core

// Outcome is the classifier's result for one client.
type Outcome struct {
	Remaining Money
	Status    ActionStatus
}

// Classify assigns the single action status for a client given the resolved
// cycle and the client's total pending (requested but unpurchased) amount.
//
// The rules are ordered; the first match wins, which is what makes the
// statuses mutually exclusive:
//
//  1. no anchor (never purchased)          -> Eligible, full allowance
//  2. partial spend within the open cycle  -> Purchased / PlaceOrder /
//     OverBudgetPending depending on how the pending amount compares to
//     what remains
//  3. allowance fully used and the cycle has elapsed -> reset: full
//     allowance again, re-ranked against the pending amount
//  4. allowance fully used, cycle still running      -> NotEligibleWait
//     (pending requests are unfulfillable and do not change the status)
//
// Remaining is clamped to [0, allowance]: over-committed source data (manual
// overrides) degrades to zero remaining, never negative.
func Classify(res Resolution, pending Money, p Policy) (Outcome, error) {
	if pending.Cents < 0 {
		return Outcome{}, ErrInvalidAmount
	}
	if res.Committed.Cents < 0 {
		return Outcome{}, ErrInvalidAmount
	}

	remaining := p.Allowance.Cents - res.Committed.Cents
	if remaining < 0 {
		remaining = 0
	}

	// Never purchased, or resolver reported an anchor with no spend: the
	// full allowance is available.
	if res.Anchor.IsNone() || res.Committed.Cents == 0 {
		return Outcome{Remaining: Money{Cents: p.Allowance.Cents}, Status: StatusEligible}, nil
	}

	if res.Committed.Cents < p.Allowance.Cents {
		return Outcome{Remaining: Money{Cents: remaining}, Status: rankPending(pending.Cents, remaining, false)}, nil
	}

	// Allowance fully used. Reset only once a full cycle has elapsed since
	// the anchor.
	resetAt := res.Anchor.AddDate(0, p.CycleMonths, 0)
	if !p.Now.Before(resetAt) {
		fresh := p.Allowance.Cents
		return Outcome{Remaining: Money{Cents: fresh}, Status: rankPending(pending.Cents, fresh, true)}, nil
	}

	return Outcome{Remaining: Money{Cents: remaining}, Status: StatusNotEligibleWait}, nil
}

// rankPending orders a pending amount against the available remainder.
// afterReset distinguishes "no pending on a fresh allowance" (Eligible)
// from "no pending mid-cycle" (Purchased).
func rankPending(pending, remaining int64, afterReset bool) ActionStatus {
	switch {
	case pending == 0 && afterReset:
		return StatusEligible
	case pending == 0:
		return StatusPurchased
	case pending <= remaining:
		return StatusPlaceOrder
	default:
		return StatusOverBudgetPending
	}
}
