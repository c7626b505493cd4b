// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"sync"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
)

// Mempool represents an ordered cache of transactions waiting to be mined.
// Transactions leave the pool in the order they arrived.
type Mempool struct {
	mu   sync.RWMutex
	pool []database.Tx
}

// New constructs a new, empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends a transaction to the end of the pool and returns the number
// of transactions now in the pool. No validation is performed.
func (mp *Mempool) Add(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Copy returns the transactions in pool order.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make([]database.Tx, len(mp.pool))
	copy(cpy, mp.pool)

	return cpy
}

// RemoveFirst drops the n oldest transactions, the ones that were copied
// out to build a block. Transactions added after the copy are kept.
func (mp *Mempool) RemoveFirst(n int) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	switch {
	case n <= 0:
		return
	case n >= len(mp.pool):
		mp.pool = nil
	default:
		rest := make([]database.Tx, len(mp.pool)-n)
		copy(rest, mp.pool[n:])
		mp.pool = rest
	}
}
