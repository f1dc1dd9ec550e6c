package storage

import (
	"context"
	"database/sql"
	"time"

	"toybudget/internal/core"
)

// Queries holds the hand-written SQL used by the repository. All statements
// operate on the snapshot tables created by the embedded migrations.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

type txRow struct {
	RowNum      int64
	ClientName  string
	AmountCents int64
	Purchased   bool
	Inactive    bool
	TxDate      sql.NullString
}

const dateFormat = "2006-01-02"

func (q *Queries) insertTransaction(ctx context.Context, tx *sql.Tx, rowNum int, t core.Transaction) error {
	var date interface{}
	if !t.Date.IsNone() {
		date = t.Date.Format(dateFormat)
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (row_num, client_name, amount_cents, purchased, inactive, tx_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rowNum, t.ClientName, t.Amount.Cents, boolToInt(t.Purchased), boolToInt(t.Inactive), date)
	return err
}

func (q *Queries) insertIssue(ctx context.Context, tx *sql.Tx, i core.RowIssue) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO row_issues (row_num, client, reason) VALUES (?, ?, ?)`,
		i.Row, i.Client, i.Reason)
	return err
}

func (q *Queries) clearSnapshot(ctx context.Context, tx *sql.Tx) error {
	for _, stmt := range []string{
		`DELETE FROM transactions`,
		`DELETE FROM row_issues`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queries) setMeta(ctx context.Context, tx *sql.Tx, fetchedAt time.Time, rowCount int) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (id, fetched_at, row_count) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET fetched_at = excluded.fetched_at, row_count = excluded.row_count`,
		fetchedAt.UTC().Format(time.RFC3339), rowCount)
	return err
}

func (q *Queries) getMeta(ctx context.Context) (time.Time, int, error) {
	var fetchedAt string
	var rowCount int
	err := q.db.QueryRowContext(ctx,
		`SELECT fetched_at, row_count FROM snapshot_meta WHERE id = 1`).Scan(&fetchedAt, &rowCount)
	if err != nil {
		return time.Time{}, 0, err
	}
	t, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return time.Time{}, 0, err
	}
	return t, rowCount, nil
}

func (q *Queries) getTransactions(ctx context.Context) ([]txRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT row_num, client_name, amount_cents, purchased, inactive, tx_date
		 FROM transactions ORDER BY row_num, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []txRow
	for rows.Next() {
		var r txRow
		var purchased, inactive int64
		if err := rows.Scan(&r.RowNum, &r.ClientName, &r.AmountCents, &purchased, &inactive, &r.TxDate); err != nil {
			return nil, err
		}
		r.Purchased = purchased != 0
		r.Inactive = inactive != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) getIssues(ctx context.Context) ([]core.RowIssue, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT row_num, client, reason FROM row_issues ORDER BY row_num, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.RowIssue
	for rows.Next() {
		var i core.RowIssue
		if err := rows.Scan(&i.Row, &i.Client, &i.Reason); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
