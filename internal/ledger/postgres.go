package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger persists wallets and pending payment orders in PostgreSQL.
// Row-level FOR UPDATE locks serialize the check-then-mutate sections the
// same way the in-memory backend's mutex does; order ids come from the
// pay_orders BIGSERIAL, which keeps allocation strictly increasing.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgres constructs a Postgres-backed ledger implementation.
func NewPostgres(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// EnsureSchema creates the ledger tables if they do not exist.
func (l *PostgresLedger) EnsureSchema(ctx context.Context) error {
	const schema = `
        CREATE TABLE IF NOT EXISTS wallets (
            id      TEXT PRIMARY KEY,
            balance BIGINT NOT NULL
        );
        CREATE TABLE IF NOT EXISTS pay_orders (
            id     BIGSERIAL PRIMARY KEY,
            amount BIGINT NOT NULL
        );`
	if _, err := l.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure ledger schema: %w", err)
	}
	return nil
}

func (l *PostgresLedger) Balance(ctx context.Context, walletID string) (int64, error) {
	var balance int64
	err := l.db.QueryRow(ctx, `SELECT balance FROM wallets WHERE id = $1`, walletID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrWalletNotFound
		}
		return 0, err
	}
	return balance, nil
}

func (l *PostgresLedger) Reserve(ctx context.Context, walletID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInsufficientFunds
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var balance int64
	err = tx.QueryRow(ctx, `SELECT balance FROM wallets WHERE id = $1 FOR UPDATE`, walletID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrWalletNotFound
		}
		return 0, err
	}
	if balance < amount {
		return 0, ErrInsufficientFunds
	}

	var orderID int64
	if err := tx.QueryRow(ctx, `INSERT INTO pay_orders (amount) VALUES ($1) RETURNING id`, amount).Scan(&orderID); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `UPDATE wallets SET balance = balance - $1 WHERE id = $2`, amount, walletID); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return orderID, nil
}

func (l *PostgresLedger) Confirm(ctx context.Context, orderID, amount int64, walletID string) error {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var reserved int64
	err = tx.QueryRow(ctx, `SELECT amount FROM pay_orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&reserved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return err
	}
	if reserved != amount {
		return ErrAmountMismatch
	}

	tag, err := tx.Exec(ctx, `UPDATE wallets SET balance = balance + $1 WHERE id = $2`, amount, walletID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWalletNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM pay_orders WHERE id = $1`, orderID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (l *PostgresLedger) PendingOrders(ctx context.Context) (int64, error) {
	var pending int64
	if err := l.db.QueryRow(ctx, `SELECT COUNT(*) FROM pay_orders`).Scan(&pending); err != nil {
		return 0, err
	}
	return pending, nil
}

func (l *PostgresLedger) LoadWallet(ctx context.Context, walletID string, balance int64) error {
	_, err := l.db.Exec(ctx, `INSERT INTO wallets (id, balance) VALUES ($1, $2)
        ON CONFLICT (id) DO UPDATE SET balance = EXCLUDED.balance`, walletID, balance)
	return err
}

func (l *PostgresLedger) Snapshot(ctx context.Context) (map[string]int64, error) {
	rows, err := l.db.Query(ctx, `SELECT id, balance FROM wallets`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	wallets := make(map[string]int64)
	for rows.Next() {
		var id string
		var balance int64
		if err := rows.Scan(&id, &balance); err != nil {
			return nil, err
		}
		wallets[id] = balance
	}
	return wallets, rows.Err()
}
