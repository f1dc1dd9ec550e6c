package memory

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"toybudget/internal/core"
	"toybudget/internal/source"
)

// Store is an in-process transaction source for development and tests.
type Store struct {
	mu     sync.Mutex
	rows   []core.Transaction
	issues []core.RowIssue
}

var _ source.TransactionSource = (*Store)(nil)

func New(rows []core.Transaction) *Store {
	s := &Store{}
	s.Replace(rows, nil)
	return s
}

// NewFromFiles seeds the store from <base>/seed_transactions.csv when it
// exists (columns: client, amount, purchased, date, inactive). A missing or
// empty seed file yields an empty store, which renders as an empty dashboard.
func NewFromFiles(base string) *Store {
	return New(readSeed(filepath.Join(base, "seed_transactions.csv")))
}

// Replace swaps the full row set, mirroring how a fresh sheet fetch replaces
// the previous snapshot.
func (s *Store) Replace(rows []core.Transaction, issues []core.RowIssue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append([]core.Transaction(nil), rows...)
	s.issues = append([]core.RowIssue(nil), issues...)
}

// ListTransactions implements source.TransactionSource.
func (s *Store) ListTransactions(_ context.Context) (source.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return source.Snapshot{
		Rows:      append([]core.Transaction(nil), s.rows...),
		Issues:    append([]core.RowIssue(nil), s.issues...),
		FetchedAt: time.Now(),
	}, nil
}

func readSeed(path string) []core.Transaction {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil
	}

	var rows []core.Transaction
	for i, rec := range records {
		if len(rec) < 4 {
			continue
		}
		client := strings.TrimSpace(rec[0])
		if client == "" || (i == 0 && strings.EqualFold(client, "client")) {
			continue
		}
		cents, err := core.ParseAmountToCents(rec[1])
		if err != nil {
			continue
		}
		tx := core.Transaction{
			ClientName: client,
			Amount:     core.Money{Cents: cents},
			Purchased:  truthy(rec[2]),
		}
		if d := strings.TrimSpace(rec[3]); d != "" {
			if t, err := time.Parse("2006-01-02", d); err == nil {
				tx.Date = core.NewDate(t.Year(), int(t.Month()), t.Day())
			}
		}
		if len(rec) > 4 {
			tx.Inactive = truthy(rec[4])
		}
		rows = append(rows, tx)
	}
	return rows
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true
	}
	return false
}
