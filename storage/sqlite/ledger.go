package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roster-bot/ledger"
	"roster-bot/metrics"
)

var _ ledger.Ledger = (*Store)(nil)

func balanceTx(ctx context.Context, tx *sql.Tx, user string) (int64, bool, error) {
	var bal int64
	err := tx.QueryRowContext(ctx, "SELECT balance FROM ledger_balances WHERE user_id = ?", user).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read balance: %w", err)
	}
	return bal, true, nil
}

func (s *Store) Deposit(ctx context.Context, user string, amount int64) (bal int64, err error) {
	defer func() { metrics.ObserveLedger("deposit", err) }()
	if err := ledger.Check(user, amount); err != nil {
		return 0, err
	}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		cur, _, err := balanceTx(ctx, tx, user)
		if err != nil {
			return err
		}
		bal = cur + amount
		_, err = tx.ExecContext(ctx, `
INSERT INTO ledger_balances (user_id, balance, updated_at) VALUES (?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET balance = excluded.balance, updated_at = excluded.updated_at
`, user, bal, time.Now().UTC().UnixMilli())
		if err != nil {
			return fmt.Errorf("write balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return bal, nil
}

func (s *Store) Withdraw(ctx context.Context, user string, amount int64) (bal int64, err error) {
	defer func() { metrics.ObserveLedger("withdraw", err) }()
	if err := ledger.Check(user, amount); err != nil {
		return 0, err
	}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		cur, _, err := balanceTx(ctx, tx, user)
		if err != nil {
			return err
		}
		if amount > cur {
			bal = cur
			return &ledger.InsufficientFundsError{Balance: cur, Requested: amount}
		}
		bal = cur - amount
		if bal == 0 {
			_, err = tx.ExecContext(ctx, "DELETE FROM ledger_balances WHERE user_id = ?", user)
		} else {
			_, err = tx.ExecContext(ctx, "UPDATE ledger_balances SET balance = ?, updated_at = ? WHERE user_id = ?",
				bal, time.Now().UTC().UnixMilli(), user)
		}
		if err != nil {
			return fmt.Errorf("write balance: %w", err)
		}
		return nil
	})
	return bal, err
}

func (s *Store) Balance(ctx context.Context, user string) (int64, error) {
	var bal int64
	err := s.sqlDB.QueryRowContext(ctx, "SELECT balance FROM ledger_balances WHERE user_id = ?", user).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return bal, nil
}

func (s *Store) ClearUser(ctx context.Context, user string) (cleared int64, err error) {
	defer func() { metrics.ObserveLedger("clear", err) }()
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		cur, found, err := balanceTx(ctx, tx, user)
		if err != nil {
			return err
		}
		if !found {
			return ledger.ErrNoBalance
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM ledger_balances WHERE user_id = ?", user); err != nil {
			return fmt.Errorf("clear balance: %w", err)
		}
		cleared = cur
		return nil
	})
	return cleared, err
}

func (s *Store) ClearAll(ctx context.Context) (n int, err error) {
	defer func() { metrics.ObserveLedger("clearall", err) }()
	res, err := s.sqlDB.ExecContext(ctx, "DELETE FROM ledger_balances")
	if err != nil {
		return 0, fmt.Errorf("clear balances: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear balances: %w", err)
	}
	return int(affected), nil
}

func (s *Store) ActiveUsers(ctx context.Context) ([]ledger.Account, error) {
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT user_id, balance FROM ledger_balances WHERE balance > 0 ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	accounts := make([]ledger.Account, 0)
	for rows.Next() {
		var a ledger.Account
		if err := rows.Scan(&a.UserID, &a.Balance); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balances: %w", err)
	}
	return accounts, nil
}
