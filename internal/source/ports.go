package source

import (
	"context"
	"time"

	"toybudget/internal/core"
)

// Snapshot is one complete read of the raw transaction table, taken at
// FetchedAt. Issues carry the rows that could not be coerced; they are
// surfaced to the presentation layer, never silently dropped.
type Snapshot struct {
	Rows      []core.Transaction
	Issues    []core.RowIssue
	FetchedAt time.Time
}

// TransactionSource is the read-only port to the external tabular source.
// The budget engine never writes back through it.
type TransactionSource interface {
	ListTransactions(ctx context.Context) (Snapshot, error)
}
