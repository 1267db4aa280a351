// Package storage keeps the locally persisted side data: operator-entered
// account balances for reconciliation and the mirror copy of appended
// movements written by the worker. The ledger itself is never stored here;
// the external spreadsheet stays the source of truth.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"primanota/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

// MirrorMovement is one row of the local audit copy.
type MirrorMovement struct {
	ID          int64
	Transaction core.Transaction
	ReceivedAt  time.Time
}

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

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// UpsertBalances replaces the full set of account balances for one year.
// Balances are entered together from a physical bank statement, so a
// partial update would be misleading.
func (r *SQLiteRepository) UpsertBalances(ctx context.Context, year int, balances []core.AccountBalance) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin balances transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM account_balances WHERE year = ?`, year); err != nil {
		return fmt.Errorf("clear balances for %d: %w", year, err)
	}
	for _, b := range balances {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO account_balances (year, account, balance_cents) VALUES (?, ?, ?)`,
			year, b.Account, b.Balance.Cents)
		if err != nil {
			return fmt.Errorf("insert balance %q: %w", b.Account, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit balances: %w", err)
	}

	slog.InfoContext(ctx, "Account balances stored", "year", year, "accounts", len(balances))
	return nil
}

// GetBalances returns the stored balances for a year, ordered by account
// name for stable report output.
func (r *SQLiteRepository) GetBalances(ctx context.Context, year int) ([]core.AccountBalance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT account, balance_cents FROM account_balances WHERE year = ? ORDER BY account`, year)
	if err != nil {
		return nil, fmt.Errorf("query balances for %d: %w", year, err)
	}
	defer rows.Close()

	var out []core.AccountBalance
	for rows.Next() {
		var b core.AccountBalance
		if err := rows.Scan(&b.Account, &b.Balance.Cents); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// InsertMirrorMovement appends one movement to the local audit copy.
func (r *SQLiteRepository) InsertMirrorMovement(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO movement_mirror
		 (date, amount_cents, causale, cost_center, description, cassa, note, province)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Date.Format("2006-01-02"), t.Amount.Cents, t.Reason, t.Category,
		t.Description, t.PaymentMethod, t.Notes, t.Province)
	if err != nil {
		return 0, fmt.Errorf("insert mirror movement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("mirror movement id: %w", err)
	}

	slog.InfoContext(ctx, "Movement mirrored",
		"id", id,
		"date", t.Date.Format("2006-01-02"),
		"amount_cents", t.Amount.Cents)
	return id, nil
}

// ListMirrorMovements returns the newest mirrored movements, most recent
// first, up to limit.
func (r *SQLiteRepository) ListMirrorMovements(ctx context.Context, limit int) ([]MirrorMovement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, amount_cents, causale, cost_center, description, cassa, note, province, received_at
		 FROM movement_mirror ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query mirror movements: %w", err)
	}
	defer rows.Close()

	var out []MirrorMovement
	for rows.Next() {
		var m MirrorMovement
		var date string
		if err := rows.Scan(&m.ID, &date, &m.Transaction.Amount.Cents,
			&m.Transaction.Reason, &m.Transaction.Category, &m.Transaction.Description,
			&m.Transaction.PaymentMethod, &m.Transaction.Notes, &m.Transaction.Province,
			&m.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan mirror movement: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("mirror movement %d: %w", m.ID, err)
		}
		m.Transaction.Date = d
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountMirrorMovements reports the size of the audit copy.
func (r *SQLiteRepository) CountMirrorMovements(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movement_mirror`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count mirror movements: %w", err)
	}
	return n, nil
}
