package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/abdulaziz1076-hash/fifi/internal/core"

	_ "modernc.org/sqlite"
)

// SQLite is the file-backed Store. Transactions live in their own table;
// the budget and goal collections are persisted as JSON blobs in the
// snapshots table, mirroring the original key/value layout.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(dbPath string) (*SQLite, error) {
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

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLite) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (description, amount, date, kind, category) VALUES (?, ?, ?, ?, ?)`,
		in.Description, in.Amount, in.Date.String(), string(in.Kind), in.Category)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("last insert id: %w", err)
	}

	tx := core.Transaction{
		ID:          id,
		Description: in.Description,
		Amount:      in.Amount,
		Date:        in.Date,
		Kind:        in.Kind,
		Category:    in.Category,
	}

	slog.InfoContext(ctx, "Transaction saved",
		"component", "store",
		"id", id,
		"kind", in.Kind,
		"amount", in.Amount,
		"category", in.Category)

	return tx, nil
}

func (s *SQLite) UpdateTransaction(ctx context.Context, id int64, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET description = ?, amount = ?, date = ?, kind = ?, category = ? WHERE id = ?`,
		in.Description, in.Amount, in.Date.String(), string(in.Kind), in.Category, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}

	return core.Transaction{
		ID:          id,
		Description: in.Description,
		Amount:      in.Amount,
		Date:        in.Date,
		Kind:        in.Kind,
		Category:    in.Category,
	}, nil
}

func (s *SQLite) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (s *SQLite) Transactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, amount, date, kind, category FROM transactions ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx      core.Transaction
			dateStr string
			kind    string
		)
		if err := rows.Scan(&tx.ID, &tx.Description, &tx.Amount, &dateStr, &kind, &tx.Category); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		date, err := core.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("transaction %d has malformed date %q: %w", tx.ID, dateStr, err)
		}
		tx.Date = date
		tx.Kind = core.TransactionKind(kind)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (s *SQLite) LoadSnapshot(ctx context.Context, key string) ([]byte, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, `SELECT blob FROM snapshots WHERE key = ?`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", key, err)
	}
	return []byte(blob), nil
}

func (s *SQLite) SaveSnapshot(ctx context.Context, key string, blob []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (key, blob, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET blob = excluded.blob, updated_at = CURRENT_TIMESTAMP`,
		key, string(blob))
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", key, err)
	}
	return nil
}
