// Package memory implements the ability to read and write the blockchain
// and ledger to memory.
package memory

import (
	"maps"
	"sync"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/storage"
)

// Memory represents the serialization implementation for reading and
// storing the chain and ledger in memory. This implements the
// storage.Storer interface. Nothing survives a restart.
type Memory struct {
	mu       sync.RWMutex
	blocks   []database.Block
	balances map[string]uint64
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// ReadChain returns a copy of the stored chain.
func (m *Memory) ReadChain() ([]database.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.blocks == nil {
		return nil, storage.ErrNotFound
	}

	return cloneBlocks(m.blocks), nil
}

// WriteChain replaces the stored chain with a copy of the specified blocks.
func (m *Memory) WriteChain(blocks []database.Block) error {
	cpy := cloneBlocks(blocks)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = cpy

	return nil
}

// ReadLedger returns a copy of the stored balances.
func (m *Memory) ReadLedger() (map[string]uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.balances == nil {
		return nil, storage.ErrNotFound
	}

	return maps.Clone(m.balances), nil
}

// WriteLedger replaces the stored balances with a copy of the specified ones.
func (m *Memory) WriteLedger(balances map[string]uint64) error {
	cpy := maps.Clone(balances)
	if cpy == nil {
		cpy = make(map[string]uint64)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.balances = cpy

	return nil
}

// =============================================================================

func cloneBlocks(blocks []database.Block) []database.Block {
	cpy := make([]database.Block, len(blocks))
	for i, block := range blocks {
		cpy[i] = block.Clone()
	}

	return cpy
}
