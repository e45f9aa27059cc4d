package outcall_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-eth-outcall/internal/outcall"
)

// TestCycleLedgerDebit verifies debits reduce the balance and are tracked.
func TestCycleLedgerDebit(t *testing.T) {
	ledger := outcall.NewCycleLedger(10)

	require.NoError(t, ledger.Debit(4))
	require.NoError(t, ledger.Debit(6))
	require.Equal(t, uint64(0), ledger.Balance())
	require.Equal(t, uint64(10), ledger.Consumed())

	err := ledger.Debit(1)
	require.Error(t, err, "debit beyond balance should fail")
	require.Contains(t, err.Error(), "insufficient cycles")
	require.Equal(t, uint64(10), ledger.Consumed(), "failed debit withdraws nothing")
}

// TestCycleLedgerConcurrentDebits verifies the ledger never overdraws under concurrency.
func TestCycleLedgerConcurrentDebits(t *testing.T) {
	ledger := outcall.NewCycleLedger(100)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ledger.Debit(3) == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 33, succeeded)
	require.Equal(t, uint64(1), ledger.Balance())
	require.Equal(t, uint64(99), ledger.Consumed())
}
