package ledger

import (
	"context"
	"sort"
	"sync"

	"roster-bot/metrics"
)

// Memory is a process-local Ledger.
type Memory struct {
	mu       sync.RWMutex
	balances map[string]int64
}

func NewMemory() *Memory {
	return &Memory{balances: make(map[string]int64)}
}

func (m *Memory) Deposit(_ context.Context, user string, amount int64) (bal int64, err error) {
	defer func() { metrics.ObserveLedger("deposit", err) }()
	if err := Check(user, amount); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[user] += amount
	return m.balances[user], nil
}

func (m *Memory) Withdraw(_ context.Context, user string, amount int64) (bal int64, err error) {
	defer func() { metrics.ObserveLedger("withdraw", err) }()
	if err := Check(user, amount); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.balances[user]
	if amount > cur {
		return cur, &InsufficientFundsError{Balance: cur, Requested: amount}
	}
	cur -= amount
	if cur == 0 {
		delete(m.balances, user)
	} else {
		m.balances[user] = cur
	}
	return cur, nil
}

func (m *Memory) Balance(_ context.Context, user string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[user], nil
}

func (m *Memory) ClearUser(_ context.Context, user string) (cleared int64, err error) {
	defer func() { metrics.ObserveLedger("clear", err) }()
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.balances[user]
	if !ok {
		return 0, ErrNoBalance
	}
	delete(m.balances, user)
	return cur, nil
}

func (m *Memory) ClearAll(_ context.Context) (n int, err error) {
	defer func() { metrics.ObserveLedger("clearall", err) }()
	m.mu.Lock()
	defer m.mu.Unlock()
	n = len(m.balances)
	m.balances = make(map[string]int64)
	return n, nil
}

func (m *Memory) ActiveUsers(_ context.Context) ([]Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Account, 0, len(m.balances))
	for u, b := range m.balances {
		out = append(out, Account{UserID: u, Balance: b})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
