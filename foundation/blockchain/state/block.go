package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
)

// ErrChainChanged is returned when the chain tip moved while a block was
// being mined. The mined block is discarded.
var ErrChainChanged = errors.New("chain changed while mining")

// =============================================================================

// SubmitTransaction appends the transaction to the mempool and signals the
// worker that there is something to mine. The transaction is not validated
// until it is mined.
func (s *State) SubmitTransaction(tx database.Tx) {
	n := s.mempool.Add(tx)
	s.evHandler("state: SubmitTransaction: tx[%s]: mempool[%d]", tx, n)

	s.Worker.SignalStartMining()
}

// CreateBlock mines a new block holding the coinbase reward followed by the
// mempool transactions and appends it to the chain. The chain, ledger and
// mempool only change if mining completes, the tip did not move and the
// chain was persisted.
func (s *State) CreateBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: CreateBlock: MINING: started")
	defer s.evHandler("state: CreateBlock: MINING: completed")

	// Take a consistent view of the tip, the ledger and the pool. Mempool
	// commits only happen under the write lock.
	s.mu.RLock()
	prevBlock := s.blocks[len(s.blocks)-1]
	scratch := s.ledger.Clone()
	pool := s.mempool.Copy()
	s.mu.RUnlock()

	coinbase := database.NewCoinbaseTx(s.beneficiary)
	if err := scratch.Apply(coinbase); err != nil {
		return database.Block{}, err
	}

	// Only transactions that replay against the ledger make it into the
	// block. The others are dropped from the pool with the committed batch.
	trans := []database.Tx{coinbase}
	for i, tx := range pool {
		if tx.IsCoinbase() {
			s.evHandler("state: CreateBlock: MINING: REJECTED: pool[%d]: tx[%s]: coinbase sender not allowed", i, tx)
			continue
		}

		if err := scratch.Apply(tx); err != nil {
			s.evHandler("state: CreateBlock: MINING: REJECTED: pool[%d]: %s", i, err)
			continue
		}

		trans = append(trans, tx)
	}

	block, err := database.POW(ctx, database.POWArgs{
		PrevBlock: prevBlock,
		Trans:     trans,
		EvHandler: s.evHandler,
	})
	if err != nil {
		return database.Block{}, err
	}

	if err := s.commitBlock(block, len(pool)); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// =============================================================================

// commitBlock appends the mined block to the chain, persists it, updates the
// ledger and removes the n pool transactions that were considered for it.
func (s *State) commitBlock(block database.Block, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tip := s.blocks[len(s.blocks)-1]
	if block.Number != tip.Number+1 || block.PrevBlockHash != tip.Hash() {
		return ErrChainChanged
	}

	ldg := s.ledger.Clone()
	if err := ldg.ApplyBlock(block); err != nil {
		return fmt.Errorf("applying block[%d]: %w", block.Number, err)
	}

	blocks := make([]database.Block, len(s.blocks), len(s.blocks)+1)
	copy(blocks, s.blocks)
	blocks = append(blocks, block.Clone())

	s.evHandler("state: CreateBlock: MINING: write to storage: blk[%d]", block.Number)

	if err := s.storage.WriteChain(blocks); err != nil {
		return fmt.Errorf("writing chain: %w", err)
	}

	s.blocks = blocks
	s.ledger.Replace(ldg)
	s.mempool.RemoveFirst(n)

	// The ledger is rebuilt from the chain at startup, a failed write only
	// leaves a stale copy on storage.
	if err := s.storage.WriteLedger(ldg.Copy()); err != nil {
		s.evHandler("state: CreateBlock: MINING: WARNING: writing ledger: %s", err)
	}

	return nil
}
