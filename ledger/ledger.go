package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoBalance         = errors.New("no balance on record")
	ErrEmptyUser         = errors.New("user id is required")
)

// InsufficientFundsError carries the balance a withdrawal was refused against.
type InsufficientFundsError struct {
	Balance   int64
	Requested int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %d, requested %d", e.Balance, e.Requested)
}

func (e *InsufficientFundsError) Is(target error) bool { return target == ErrInsufficientFunds }

type Account struct {
	UserID  string
	Balance int64
}

// Ledger tracks per-user balances. A user whose balance reaches zero has no
// record at all.
type Ledger interface {
	Deposit(ctx context.Context, user string, amount int64) (int64, error)
	Withdraw(ctx context.Context, user string, amount int64) (int64, error)
	Balance(ctx context.Context, user string) (int64, error)
	// ClearUser removes the user's record and returns the cleared amount.
	ClearUser(ctx context.Context, user string) (int64, error)
	// ClearAll removes every record and returns how many users were cleared.
	ClearAll(ctx context.Context) (int, error)
	// ActiveUsers lists users with a positive balance ordered by user id.
	ActiveUsers(ctx context.Context) ([]Account, error)
}

// Check validates the arguments shared by Deposit and Withdraw.
func Check(user string, amount int64) error {
	if strings.TrimSpace(user) == "" {
		return ErrEmptyUser
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Total sums the balances of accounts.
func Total(accounts []Account) int64 {
	var sum int64
	for _, a := range accounts {
		sum += a.Balance
	}
	return sum
}
