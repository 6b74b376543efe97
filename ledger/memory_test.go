package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_DepositWithdraw(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		op      func(l Ledger) (int64, error)
		want    int64
		wantErr error
	}{
		{name: "deposit", op: func(l Ledger) (int64, error) { return l.Deposit(ctx, "u1", 50) }, want: 150},
		{name: "deposit zero", op: func(l Ledger) (int64, error) { return l.Deposit(ctx, "u1", 0) }, wantErr: ErrInvalidAmount},
		{name: "deposit negative", op: func(l Ledger) (int64, error) { return l.Deposit(ctx, "u1", -5) }, wantErr: ErrInvalidAmount},
		{name: "deposit no user", op: func(l Ledger) (int64, error) { return l.Deposit(ctx, " ", 5) }, wantErr: ErrEmptyUser},
		{name: "withdraw", op: func(l Ledger) (int64, error) { return l.Withdraw(ctx, "u1", 40) }, want: 60},
		{name: "withdraw too much", op: func(l Ledger) (int64, error) { return l.Withdraw(ctx, "u1", 101) }, want: 100, wantErr: ErrInsufficientFunds},
		{name: "withdraw unknown user", op: func(l Ledger) (int64, error) { return l.Withdraw(ctx, "u2", 1) }, want: 0, wantErr: ErrInsufficientFunds},
		{name: "withdraw zero", op: func(l Ledger) (int64, error) { return l.Withdraw(ctx, "u1", 0) }, wantErr: ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewMemory()
			_, err := l.Deposit(ctx, "u1", 100)
			require.NoError(t, err)

			got, err := tt.op(l)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemory_InsufficientFundsCarriesBalance(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()
	_, _ = l.Deposit(ctx, "u1", 30)

	_, err := l.Withdraw(ctx, "u1", 31)
	var insufficient *InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(30), insufficient.Balance)
	assert.Equal(t, int64(31), insufficient.Requested)

	bal, _ := l.Balance(ctx, "u1")
	assert.Equal(t, int64(30), bal, "refused withdrawal leaves balance intact")
}

func TestMemory_ZeroBalanceRemovesRecord(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()
	_, _ = l.Deposit(ctx, "u1", 10)
	_, _ = l.Deposit(ctx, "u2", 5)

	bal, err := l.Withdraw(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal)

	active, err := l.ActiveUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Account{{UserID: "u2", Balance: 5}}, active)

	_, err = l.ClearUser(ctx, "u1")
	assert.ErrorIs(t, err, ErrNoBalance)
}

func TestMemory_Clear(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()
	for _, u := range []string{"c", "a", "b"} {
		_, err := l.Deposit(ctx, u, 7)
		require.NoError(t, err)
	}

	active, err := l.ActiveUsers(ctx)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, "a", active[0].UserID)
	assert.Equal(t, "c", active[2].UserID)
	assert.Equal(t, int64(21), Total(active))

	cleared, err := l.ClearUser(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(7), cleared)

	n, err := l.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	active, err = l.ActiveUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	n, err = l.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
