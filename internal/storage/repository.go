package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"toybudget/internal/core"
	"toybudget/internal/source"

	_ "modernc.org/sqlite"
)

// SQLiteRepository holds the last fetched sheet snapshot so the dashboard
// can serve without a round trip to the Sheets API. The snapshot worker
// replaces its contents wholesale on every sync.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ source.TransactionSource = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceSnapshot swaps the stored snapshot for the given one in a single
// transaction. Readers either see the previous snapshot or the new one,
// never a mix.
func (r *SQLiteRepository) ReplaceSnapshot(ctx context.Context, snap source.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.queries.clearSnapshot(ctx, tx); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	for i, row := range snap.Rows {
		if err := r.queries.insertTransaction(ctx, tx, i+1, row); err != nil {
			return fmt.Errorf("insert transaction row %d: %w", i+1, err)
		}
	}
	for _, issue := range snap.Issues {
		if err := r.queries.insertIssue(ctx, tx, issue); err != nil {
			return fmt.Errorf("insert row issue: %w", err)
		}
	}
	fetchedAt := snap.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	if err := r.queries.setMeta(ctx, tx, fetchedAt, len(snap.Rows)); err != nil {
		return fmt.Errorf("update snapshot meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot replaced",
		"rows", len(snap.Rows),
		"issues", len(snap.Issues),
		"fetched_at", fetchedAt)
	return nil
}

// ListTransactions implements source.TransactionSource from the stored
// snapshot. An empty database yields an empty snapshot, not an error.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) (source.Snapshot, error) {
	dbRows, err := r.queries.getTransactions(ctx)
	if err != nil {
		return source.Snapshot{}, fmt.Errorf("get transactions: %w", err)
	}
	issues, err := r.queries.getIssues(ctx)
	if err != nil {
		return source.Snapshot{}, fmt.Errorf("get row issues: %w", err)
	}

	rows := make([]core.Transaction, len(dbRows))
	for i, dr := range dbRows {
		tx := core.Transaction{
			ClientName: dr.ClientName,
			Amount:     core.Money{Cents: dr.AmountCents},
			Purchased:  dr.Purchased,
			Inactive:   dr.Inactive,
		}
		if dr.TxDate.Valid && dr.TxDate.String != "" {
			if t, err := time.Parse(dateFormat, dr.TxDate.String); err == nil {
				tx.Date = core.NewDate(t.Year(), int(t.Month()), t.Day())
			}
		}
		rows[i] = tx
	}

	fetchedAt, _, err := r.queries.getMeta(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return source.Snapshot{}, fmt.Errorf("get snapshot meta: %w", err)
	}

	return source.Snapshot{Rows: rows, Issues: issues, FetchedAt: fetchedAt}, nil
}

// LastSyncedAt reports when the stored snapshot was fetched, or zero when
// no sync has happened yet.
func (r *SQLiteRepository) LastSyncedAt(ctx context.Context) (time.Time, error) {
	fetchedAt, _, err := r.queries.getMeta(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get snapshot meta: %w", err)
	}
	return fetchedAt, nil
}
