// Package storage persists the service's inputs and outputs in SQLite:
// transactions, per-category budgets, accounts and generated analysis reports.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finsight/internal/core"

	_ "modernc.org/sqlite"
)

// dateLayout is how transaction dates are stored. Plain calendar dates sort
// lexically in this form, which the user+date index relies on.
const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
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

	// Run migrations
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

// InsertTransaction stores one transaction and returns its row ID.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, userID string, tx core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, tx_date, description, amount_cents, category, kind)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, tx.Date.Format(dateLayout), tx.Description, tx.Amount.Cents, tx.Category, string(tx.Kind))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"user_id", userID,
		"category", tx.Category,
		"kind", tx.Kind,
		"amount_cents", tx.Amount.Cents)

	return id, nil
}

// ListTransactions returns a user's transactions ordered by date ascending.
// A positive days restricts to the trailing window ending today.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, days int) ([]core.Transaction, error) {
	query := `SELECT tx_date, description, amount_cents, category, kind
	          FROM transactions WHERE user_id = ?`
	args := []any{userID}
	if days > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -days)
		query += ` AND tx_date >= ?`
		args = append(args, cutoff.Format(dateLayout))
	}
	query += ` ORDER BY tx_date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			dateStr, description, category, kind string
			cents                                int64
		)
		if err := rows.Scan(&dateStr, &description, &cents, &category, &kind); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		day, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", dateStr, err)
		}
		txs = append(txs, core.Transaction{
			Date:        core.Date{Time: day},
			Description: description,
			Amount:      core.Money{Cents: cents},
			Category:    category,
			Kind:        core.Kind(kind),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return txs, nil
}

// UpsertBudget sets a user's monthly ceiling for a category.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, userID, category string, limit core.Money) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, category, limit_cents, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, category)
		 DO UPDATE SET limit_cents = excluded.limit_cents, updated_at = CURRENT_TIMESTAMP`,
		userID, category, limit.Cents)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved",
		"user_id", userID,
		"category", category,
		"limit_cents", limit.Cents)

	return nil
}

// ListBudgets returns a user's budget ceilings keyed by category.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID string) (map[string]core.Money, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, limit_cents FROM budgets WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := make(map[string]core.Money)
	for rows.Next() {
		var (
			category string
			cents    int64
		)
		if err := rows.Scan(&category, &cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets[category] = core.Money{Cents: cents}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}

	return budgets, nil
}

// UpsertAccount stores or updates an account by user+name.
func (r *SQLiteRepository) UpsertAccount(ctx context.Context, userID string, account core.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (user_id, name, account_type, balance_cents)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, name)
		 DO UPDATE SET account_type = excluded.account_type, balance_cents = excluded.balance_cents`,
		userID, account.Name, string(account.Type), account.Balance.Cents)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}

	slog.InfoContext(ctx, "Account saved",
		"user_id", userID,
		"name", account.Name,
		"type", account.Type,
		"balance_cents", account.Balance.Cents)

	return nil
}

// ListAccounts returns a user's accounts ordered by name.
func (r *SQLiteRepository) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, account_type, balance_cents FROM accounts WHERE user_id = ? ORDER BY name ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var (
			name, accountType string
			cents             int64
		)
		if err := rows.Scan(&name, &accountType, &cents); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, core.Account{
			Name:    name,
			Type:    core.AccountType(accountType),
			Balance: core.Money{Cents: cents},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

// ListUsers returns every user with at least one transaction, sorted.
func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM transactions ORDER BY user_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// SaveReport stores a generated analysis report snapshot (JSON payload).
func (r *SQLiteRepository) SaveReport(ctx context.Context, userID string, payload []byte) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (user_id, payload) VALUES (?, ?)`,
		userID, string(payload))
	if err != nil {
		return 0, fmt.Errorf("save report: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("report insert id: %w", err)
	}

	slog.InfoContext(ctx, "Report saved", "id", id, "user_id", userID, "bytes", len(payload))
	return id, nil
}

// LatestReport returns the newest report payload for a user, or sql.ErrNoRows.
func (r *SQLiteRepository) LatestReport(ctx context.Context, userID string) ([]byte, time.Time, error) {
	var payload, generatedStr string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload, generated_at FROM reports WHERE user_id = ? ORDER BY id DESC LIMIT 1`,
		userID).Scan(&payload, &generatedStr)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("latest report: %w", err)
	}
	generatedAt, err := time.Parse("2006-01-02 15:04:05", generatedStr)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parse report timestamp %q: %w", generatedStr, err)
	}
	return []byte(payload), generatedAt, nil
}
