package outcall

import (
	"fmt"
	"sync"
)

// CycleLedger is the host's cycle balance. Debits are never refunded.
type CycleLedger struct {
	mu       sync.Mutex
	balance  uint64
	consumed uint64
}

// NewCycleLedger creates a ledger holding balance cycles.
func NewCycleLedger(balance uint64) *CycleLedger {
	return &CycleLedger{balance: balance}
}

// Debit withdraws cycles. It fails without withdrawing anything if the balance is too low.
func (l *CycleLedger) Debit(cycles uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cycles > l.balance {
		return fmt.Errorf("insufficient cycles: need %d, have %d", cycles, l.balance)
	}
	l.balance -= cycles
	l.consumed += cycles
	return nil
}

// Balance returns the remaining cycles.
func (l *CycleLedger) Balance() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Consumed returns the cycles debited so far.
func (l *CycleLedger) Consumed() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.consumed
}
