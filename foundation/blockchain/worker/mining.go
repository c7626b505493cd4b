package worker

import (
	"context"
	"errors"
	"time"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/state"
)

// miningOperations mines a block for every start request until shutdown.
// While transactions remain in the mempool it keeps asking for more.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case <-w.startMining:
			if w.isShutdown() {
				continue
			}

			explicit := w.mineEmpty.Swap(false)
			if n := w.state.QueryMempoolLength(); n == 0 && !explicit {
				w.evHandler("worker: miningOperations: MINING: nothing to mine")
				continue
			}

			w.mineBlock()

			if n := w.state.QueryMempoolLength(); n > 0 && !w.isShutdown() {
				w.evHandler("worker: miningOperations: MINING: mempool[%d]: signal again", n)
				w.SignalStartMining()
			}

		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// mined is the outcome of a CreateBlock call.
type mined struct {
	block database.Block
	err   error
}

// mineBlock runs a single CreateBlock call. A cancel request aborts the
// search, then this goroutine holds until the requester calls done.
func (w *Worker) mineBlock() {
	w.evHandler("worker: mineBlock: MINING: started")
	defer w.evHandler("worker: mineBlock: MINING: completed")

	// A request left over from an earlier block has nothing to cancel.
	select {
	case <-w.cancelMining:
		w.evHandler("worker: mineBlock: MINING: dropped stale cancel")
	default:
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result := make(chan mined, 1)
	go func() {
		start := time.Now()
		block, err := w.state.CreateBlock(ctx)
		w.evHandler("worker: mineBlock: MINING: duration[%v]", time.Since(start))
		result <- mined{block: block, err: err}
	}()

	select {
	case res := <-result:
		w.report(res)

	case wait := <-w.cancelMining:
		w.evHandler("worker: mineBlock: MINING: CANCEL: requested")
		cancel()
		w.report(<-result)

		w.evHandler("worker: mineBlock: MINING: CANCEL: waiting")
		<-wait
		w.evHandler("worker: mineBlock: MINING: CANCEL: released")
	}
}

// report logs the outcome of a mining operation and shares a new block
// with the network.
func (w *Worker) report(res mined) {
	switch {
	case res.err == nil:
		w.evHandler("worker: mineBlock: MINING: SOLVED: blk[%d]: txs[%d]", res.block.Number, len(res.block.Transactions))
		w.state.NetSendChainToPeers()

	case errors.Is(res.err, state.ErrChainChanged):
		w.evHandler("worker: mineBlock: MINING: WARNING: chain changed while mining")

	case errors.Is(res.err, context.Canceled):
		w.evHandler("worker: mineBlock: MINING: CANCEL: complete")

	default:
		w.evHandler("worker: mineBlock: MINING: ERROR: %s", res.err)
	}
}
