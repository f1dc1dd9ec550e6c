package google

import (
	"fmt"
	"strings"
	"time"

	"toybudget/internal/core"
)

// Sheet column headers, as maintained by the team in the raw tab.
const (
	headerClient    = "Clients"
	headerAmount    = "Clean Cost"
	headerPurchased = "Purchased"
	headerInactive  = "Inactive"
	headerDate      = "Timestamp"
)

// dateLayouts are tried in order when coercing the Timestamp column. The
// sheet mixes ISO dates with US-style entries typed by hand.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
	"1/2/2006 15:04:05",
	"01/02/2006",
}

// parseTransactionRows converts a values matrix (as returned by the Sheets
// API) into transaction rows. The first row must be the header; column
// positions are resolved by name so the team can reorder columns freely.
//
// Coercion rules follow the sheet's conventions: booleans accept
// true/yes/1, amounts may carry dollar signs and thousands commas, and a
// blank cost cell on a pending row means "not priced yet" (zero). A
// purchased row with an unparseable date or amount is excluded and flagged;
// it must not silently distort a client's committed total.
func parseTransactionRows(values [][]interface{}) ([]core.Transaction, []core.RowIssue, error) {
	if len(values) == 0 {
		return nil, nil, nil
	}

	headers := toStrings(values[0])
	colClient := indexOf(headers, headerClient)
	colAmount := indexOf(headers, headerAmount)
	colPurchased := indexOf(headers, headerPurchased)
	colDate := indexOf(headers, headerDate)
	colInactive := indexOf(headers, headerInactive) // optional
	if colClient == -1 || colAmount == -1 || colPurchased == -1 || colDate == -1 {
		missing := make([]string, 0, 4)
		for _, h := range []struct {
			name string
			col  int
		}{
			{headerClient, colClient},
			{headerAmount, colAmount},
			{headerPurchased, colPurchased},
			{headerDate, colDate},
		} {
			if h.col == -1 {
				missing = append(missing, h.name)
			}
		}
		return nil, nil, fmt.Errorf("unexpected sheet header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	var rows []core.Transaction
	var issues []core.RowIssue
	for i := 1; i < len(values); i++ {
		cols := toStrings(values[i])
		rowNum := i + 1 // 1-based, counting the header

		client := strings.TrimSpace(safeGet(cols, colClient))
		if client == "" {
			// Trailing blank rows are normal sheet noise, not data issues.
			if strings.TrimSpace(strings.Join(cols, "")) == "" {
				continue
			}
			issues = append(issues, core.RowIssue{Row: rowNum, Client: "(unknown)", Reason: "missing client name"})
			continue
		}

		purchased := parseSheetBool(safeGet(cols, colPurchased))
		inactive := false
		if colInactive != -1 {
			inactive = parseSheetBool(safeGet(cols, colInactive))
		}

		cents, err := core.ParseAmountToCents(safeGet(cols, colAmount))
		if err != nil {
			issues = append(issues, core.RowIssue{
				Row:    rowNum,
				Client: client,
				Reason: fmt.Sprintf("unparseable amount %q", safeGet(cols, colAmount)),
			})
			continue
		}

		date, ok := parseSheetDate(safeGet(cols, colDate))
		if !ok && purchased {
			// The resolver cannot order a purchase it cannot date.
			issues = append(issues, core.RowIssue{
				Row:    rowNum,
				Client: client,
				Reason: fmt.Sprintf("unparseable date %q on purchased row", safeGet(cols, colDate)),
			})
			continue
		}

		rows = append(rows, core.Transaction{
			ClientName: client,
			Amount:     core.Money{Cents: cents},
			Purchased:  purchased,
			Date:       date,
			Inactive:   inactive,
		})
	}
	return rows, issues, nil
}

// parseSheetBool applies the sheet's lenient truthiness: true/yes/1.
func parseSheetBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}

func parseSheetDate(s string) (core.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			// Normalize to midnight UTC; the cycle math works on calendar days.
			return core.NewDate(t.Year(), int(t.Month()), t.Day()), true
		}
	}
	return core.Date{}, false
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
