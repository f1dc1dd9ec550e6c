package core

import "sort"

// Resolution is the cycle resolver's output: the date anchoring the active
// cycle (zero when the client has never purchased) and the spend committed
// within that cycle.
type Resolution struct {
	Anchor    Date
	Committed Money
}

// Resolve determines the active cycle for one client's transactions.
//
// Only purchased rows matter here; pending requests never move the anchor or
// the committed total. The anchor is the most recent purchase date: the cycle
// clock resets when a new purchase lands, it does not slide continuously.
// Committed spend is accumulated by walking purchases backward from the
// anchor and stopping at the first gap of a full cycle length or more between
// consecutive purchase dates; everything before such a gap belongs to an
// expired cycle. Same-day purchases are all summed into the same cycle.
//
// Whether the allowance has since reset (now past anchor + cycle) is an
// eligibility question and is decided by Classify, not here.
func Resolve(txs []Transaction, p Policy) Resolution {
	purchases := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Purchased && !t.Date.IsNone() {
			purchases = append(purchases, t)
		}
	}
	if len(purchases) == 0 {
		return Resolution{}
	}

	sort.SliceStable(purchases, func(i, j int) bool {
		return purchases[i].Date.After(purchases[j].Date.Time)
	})

	anchor := purchases[0].Date
	committed := int64(0)
	prev := anchor
	for _, t := range purchases {
		// A purchase dated a full cycle (or more) before the previous one
		// belongs to an earlier, already-expired cycle.
		boundary := prev.AddDate(0, -p.CycleMonths, 0)
		if !t.Date.After(boundary) {
			break
		}
		committed += t.Amount.Cents
		prev = t.Date
	}
	return Resolution{Anchor: anchor, Committed: Money{Cents: committed}}
}
