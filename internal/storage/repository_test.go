package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"toybudget/internal/core"
	"toybudget/internal/source"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "toybudget.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestEmptyRepository(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	snap, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(snap.Rows) != 0 || len(snap.Issues) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}

	last, err := repo.LastSyncedAt(ctx)
	if err != nil {
		t.Fatalf("last synced: %v", err)
	}
	if !last.IsZero() {
		t.Fatalf("expected zero sync time, got %v", last)
	}
}

func TestReplaceSnapshotRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	fetchedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	snap := source.Snapshot{
		Rows: []core.Transaction{
			{ClientName: "Ann", Amount: core.Money{Cents: 1250}, Purchased: true, Date: core.NewDate(2024, 1, 15)},
			{ClientName: "Bob", Amount: core.Money{Cents: 500}},
			{ClientName: "Gone", Amount: core.Money{Cents: 300}, Purchased: true, Date: core.NewDate(2024, 2, 1), Inactive: true},
		},
		Issues:    []core.RowIssue{{Row: 7, Client: "Cleo", Reason: "unparseable amount \"x\""}},
		FetchedAt: fetchedAt,
	}
	if err := repo.ReplaceSnapshot(ctx, snap); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got.Rows))
	}
	ann := got.Rows[0]
	if ann.ClientName != "Ann" || ann.Amount.Cents != 1250 || !ann.Purchased {
		t.Errorf("ann = %+v", ann)
	}
	if !ann.Date.Equal(core.NewDate(2024, 1, 15).Time) {
		t.Errorf("ann date = %v", ann.Date)
	}
	if !got.Rows[1].Date.IsNone() {
		t.Errorf("bob should have no date: %+v", got.Rows[1])
	}
	if !got.Rows[2].Inactive {
		t.Errorf("gone should be inactive: %+v", got.Rows[2])
	}
	if len(got.Issues) != 1 || got.Issues[0].Client != "Cleo" {
		t.Errorf("issues = %+v", got.Issues)
	}
	if !got.FetchedAt.Equal(fetchedAt) {
		t.Errorf("fetched_at = %v, want %v", got.FetchedAt, fetchedAt)
	}

	// A second replace fully supersedes the first snapshot.
	next := source.Snapshot{
		Rows:      []core.Transaction{{ClientName: "Dot", Amount: core.Money{Cents: 100}}},
		FetchedAt: fetchedAt.Add(time.Hour),
	}
	if err := repo.ReplaceSnapshot(ctx, next); err != nil {
		t.Fatalf("second replace: %v", err)
	}
	got, err = repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list after replace: %v", err)
	}
	if len(got.Rows) != 1 || got.Rows[0].ClientName != "Dot" || len(got.Issues) != 0 {
		t.Fatalf("snapshot not replaced: %+v", got)
	}

	last, err := repo.LastSyncedAt(ctx)
	if err != nil {
		t.Fatalf("last synced: %v", err)
	}
	if !last.Equal(fetchedAt.Add(time.Hour)) {
		t.Fatalf("last synced = %v", last)
	}
}
