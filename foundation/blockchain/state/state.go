// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/genesis"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/ledger"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/mempool"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/peer"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/storage"
)

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining and peer synchronization.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalMineBlock()
	SignalCancelMining() (done func())
}

// nopWorker is used until a worker registers itself with the state.
type nopWorker struct{}

func (nopWorker) Shutdown()                        {}
func (nopWorker) SignalStartMining()               {}
func (nopWorker) SignalMineBlock()                 {}
func (nopWorker) SignalCancelMining() (done func()) { return func() {} }

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Beneficiary string
	Host        string
	Storage     storage.Storer
	Genesis     genesis.Genesis
	KnownPeers  *peer.PeerSet
	EvHandler   EventHandler
}

// State manages the blockchain. The block slice is never modified in place:
// a new slice is built, persisted and then swapped in under the write lock.
type State struct {
	beneficiary string
	host        string
	evHandler   EventHandler

	mu     sync.RWMutex
	blocks []database.Block
	ledger *ledger.Ledger

	genesis    genesis.Genesis
	mempool    *mempool.Mempool
	knownPeers *peer.PeerSet
	storage    storage.Storer

	Worker Worker
}

// New constructs a new blockchain for data management. The chain is loaded
// from storage, or started from the genesis block when nothing has been
// persisted yet. A chain that fails verification is fatal.
func New(cfg Config) (*State, error) {
	if cfg.Storage == nil {
		return nil, errors.New("storage is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	blocks, err := cfg.Storage.ReadChain()
	switch {
	case errors.Is(err, storage.ErrNotFound):
		ev("state: New: no chain found: starting from genesis")
		blocks = []database.Block{database.Genesis()}
		if err := cfg.Storage.WriteChain(blocks); err != nil {
			return nil, fmt.Errorf("writing genesis: %w", err)
		}

	case err != nil:
		return nil, fmt.Errorf("reading chain: %w", err)
	}

	if err := database.Verify(blocks); err != nil {
		return nil, fmt.Errorf("verifying chain: %w", err)
	}

	state := State{
		beneficiary: cfg.Beneficiary,
		host:        cfg.Host,
		evHandler:   ev,

		blocks: blocks,
		ledger: ledger.New(nil),

		genesis:    cfg.Genesis,
		mempool:    mempool.New(),
		knownPeers: knownPeers,
		storage:    cfg.Storage,

		// The worker package replaces this when it runs.
		Worker: nopWorker{},
	}

	// The ledger is derived from the chain, so it is rebuilt instead of
	// trusting what was persisted.
	if err := state.RebuildLedger(); err != nil {
		return nil, err
	}

	ev("state: New: loaded blocks[%d]", len(blocks))

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	s.Worker.Shutdown()

	// Make sure the storage is properly closed.
	return s.storage.Close()
}

// RebuildLedger replays the whole chain from the genesis allocation and
// replaces the ledger with the result.
func (s *State) RebuildLedger() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ldg, err := ledger.Rebuild(s.blocks, s.genesis.Balances)
	if err != nil {
		return fmt.Errorf("rebuilding ledger: %w", err)
	}

	if err := s.storage.WriteLedger(ldg.Copy()); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}

	s.ledger.Replace(ldg)

	return nil
}
