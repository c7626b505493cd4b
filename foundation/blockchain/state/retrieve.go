package state

import (
	"errors"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/genesis"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/peer"
)

// ErrAccountNotFound is returned when the ledger has no such account.
var ErrAccountNotFound = errors.New("account not found")

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.blocks[len(s.blocks)-1].Clone()
}

// RetrieveBlocks returns a copy of the chain.
func (s *State) RetrieveBlocks() []database.Block {
	s.mu.RLock()
	blocks := s.blocks
	s.mu.RUnlock()

	// The published slice is never modified, only replaced.
	cpy := make([]database.Block, len(blocks))
	for i, block := range blocks {
		cpy[i] = block.Clone()
	}

	return cpy
}

// RetrieveBalances returns a copy of the ledger balances.
func (s *State) RetrieveBalances() map[string]uint64 {
	return s.ledger.Copy()
}

// QueryBalance returns the balance for the specified account.
func (s *State) QueryBalance(account string) (uint64, error) {
	balance, exists := s.ledger.Balance(account)
	if !exists {
		return 0, ErrAccountNotFound
	}

	return balance, nil
}

// RetrieveMempool returns a copy of the mempool in pool order.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// RetrieveStatus returns what this node reports about itself to peers.
func (s *State) RetrieveStatus() peer.Status {
	latest := s.RetrieveLatestBlock()

	return peer.Status{
		LatestBlockHash:   latest.Hash(),
		LatestBlockNumber: latest.Number,
		KnownPeers:        s.RetrieveKnownPeers(),
	}
}

// =============================================================================

// RegisterPeer adds the peer to the set of known peers. It returns false if
// the peer is already known or is this node.
func (s *State) RegisterPeer(pr peer.Peer) bool {
	if pr.Match(s.host) {
		return false
	}

	return s.knownPeers.Add(pr)
}

// RemoveKnownPeer drops the peer from the set of known peers.
func (s *State) RemoveKnownPeer(pr peer.Peer) {
	s.knownPeers.Remove(pr)
}
