// Package worker runs the background processes of a node: mining blocks
// from the mempool and keeping the chain in sync with known peers.
package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/state"
)

// DefaultPeerUpdateInterval represents the interval of finding new peer nodes
// and running consensus against their chains.
const DefaultPeerUpdateInterval = time.Minute

// =============================================================================

// Worker owns the mining and peer goroutines of a node. It registers itself
// with the state so state changes can start and cancel mining.
type Worker struct {
	state     *state.State
	evHandler state.EventHandler

	wg     sync.WaitGroup
	ticker *time.Ticker
	shut   chan struct{}

	// A pending start signal mines an empty block only when mineEmpty was
	// set by an explicit request.
	startMining  chan struct{}
	mineEmpty    atomic.Bool
	cancelMining chan chan struct{}
}

// Run syncs the node with its peers, then starts the peer and mining
// goroutines. Transactions already in the mempool are mined right away.
func Run(st *state.State, interval time.Duration, evHandler state.EventHandler) *Worker {
	if interval <= 0 {
		interval = DefaultPeerUpdateInterval
	}

	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	w := Worker{
		state:        st,
		evHandler:    evHandler,
		ticker:       time.NewTicker(interval),
		shut:         make(chan struct{}),
		startMining:  make(chan struct{}, 1),
		cancelMining: make(chan chan struct{}, 1),
	}

	st.Worker = &w

	// Mining on a stale tip would only produce a block the network drops.
	w.Sync()

	w.wg.Go(w.peerOperations)
	w.wg.Go(w.miningOperations)

	if st.QueryMempoolLength() > 0 {
		w.SignalStartMining()
	}

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown stops the ticker, cancels any mining in progress and waits for
// the goroutines to return.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.ticker.Stop()

	done := w.SignalCancelMining()
	done()

	close(w.shut)
	w.wg.Wait()
}

// SignalStartMining asks for the mempool to be mined. The request is
// dropped when the mempool is empty by the time the miner looks at it.
func (w *Worker) SignalStartMining() {
	w.signal()
	w.evHandler("worker: SignalStartMining: mining signaled")
}

// SignalMineBlock asks for a block to be mined even when the mempool is
// empty, in which case the block only pays the mining reward.
func (w *Worker) SignalMineBlock() {
	w.mineEmpty.Store(true)
	w.signal()
	w.evHandler("worker: SignalMineBlock: mining signaled")
}

// SignalCancelMining stops the block being mined. The mining goroutine
// holds until done is called so the caller can swap the chain first.
func (w *Worker) SignalCancelMining() (done func()) {
	wait := make(chan struct{})

	select {
	case w.cancelMining <- wait:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")

	return func() { close(wait) }
}

// =============================================================================

// signal leaves a start request for the miner. One pending request is
// enough, the miner reads the mempool when it runs.
func (w *Worker) signal() {
	select {
	case w.startMining <- struct{}{}:
	default:
	}
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
