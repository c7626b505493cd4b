package state

import (
	"fmt"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/ledger"
)

// candidate is a chain that passed verification together with the ledger
// its transactions replay into.
type candidate struct {
	blocks []database.Block
	ledger *ledger.Ledger
}

// Consensus looks for the longest valid chain among the candidates and
// replaces the local chain with it when it is longer, or when the local
// chain no longer verifies. Candidates are scanned in order and the first
// one of the winning length is kept. Rejected candidates are only reported
// through the event handler. It reports whether the local chain was
// replaced, an error is only returned when the adopted chain can't be
// persisted.
func (s *State) Consensus(candidates [][]database.Block) (bool, error) {
	s.evHandler("state: Consensus: started: candidates[%d]", len(candidates))
	defer s.evHandler("state: Consensus: completed")

	best, found := s.bestCandidate(candidates)
	if !found {
		s.evHandler("state: Consensus: no valid candidate")
		return false, nil
	}

	if !s.shouldAdopt(best.blocks) {
		s.evHandler("state: Consensus: local chain kept: candidate blocks[%d]", len(best.blocks))
		return false, nil
	}

	// Mining on top of the old tip is wasted work. The mining G will not
	// return until done is called, which happens after the swap.
	done := s.Worker.SignalCancelMining()
	defer func() {
		s.evHandler("state: Consensus: signal mining to continue")
		done()
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	// The local chain may have grown since the candidates were scanned.
	if !s.shouldAdoptLocked(best.blocks) {
		s.evHandler("state: Consensus: local chain kept: candidate blocks[%d]", len(best.blocks))
		return false, nil
	}

	if err := s.storage.WriteChain(best.blocks); err != nil {
		return false, fmt.Errorf("writing chain: %w", err)
	}

	s.blocks = best.blocks
	s.ledger.Replace(best.ledger)

	if err := s.storage.WriteLedger(best.ledger.Copy()); err != nil {
		s.evHandler("state: Consensus: WARNING: writing ledger: %s", err)
	}

	s.evHandler("state: Consensus: ADOPTED: blocks[%d]: latest[%s]", len(best.blocks), best.blocks[len(best.blocks)-1].Hash())

	return true, nil
}

// =============================================================================

// bestCandidate returns a private copy of the first longest candidate that
// passes verification and replays against the bootstrap allocation.
func (s *State) bestCandidate(candidates [][]database.Block) (candidate, bool) {
	var best candidate

	for i, blocks := range candidates {
		if len(blocks) <= len(best.blocks) {
			continue
		}

		if err := database.Verify(blocks); err != nil {
			s.evHandler("state: Consensus: REJECTED: candidate[%d]: %s", i, err)
			continue
		}

		// A chain that can't be replayed can't back the ledger.
		ldg, err := ledger.Rebuild(blocks, s.genesis.Balances)
		if err != nil {
			s.evHandler("state: Consensus: REJECTED: candidate[%d]: replay: %s", i, err)
			continue
		}

		best = candidate{blocks: blocks, ledger: ldg}
	}

	if best.blocks == nil {
		return candidate{}, false
	}

	cpy := make([]database.Block, len(best.blocks))
	for i, block := range best.blocks {
		cpy[i] = block.Clone()
	}
	best.blocks = cpy

	return best, true
}

func (s *State) shouldAdopt(blocks []database.Block) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.shouldAdoptLocked(blocks)
}

// shouldAdoptLocked must be called with the lock held.
func (s *State) shouldAdoptLocked(blocks []database.Block) bool {
	if len(blocks) > len(s.blocks) {
		return true
	}

	if err := database.Verify(s.blocks); err != nil {
		s.evHandler("state: Consensus: local chain invalid: %s", err)
		return true
	}

	return false
}
