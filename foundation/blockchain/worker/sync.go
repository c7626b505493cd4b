package worker

import (
	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
)

// peerOperations syncs with the known peers on every tick until shutdown.
func (w *Worker) peerOperations() {
	w.evHandler("worker: peerOperations: G started")
	defer w.evHandler("worker: peerOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.Sync()
			}
		case <-w.shut:
			return
		}
	}
}

// Sync updates the peer list and runs consensus against the chains of the
// peers that are ahead of this node. Peers that can't be reached are
// dropped from the list.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	latest := w.state.RetrieveLatestBlock()

	var candidates [][]database.Block
	for _, pr := range w.state.RetrieveKnownPeers() {

		// Retrieve the status of this peer.
		peerStatus, err := w.state.NetRequestPeerStatus(pr)
		if err != nil {
			w.evHandler("worker: sync: queryPeerStatus: %s: ERROR: %s", pr.Host, err)
			w.state.RemoveKnownPeer(pr)
			continue
		}

		// Learn about the peers this peer knows.
		for _, known := range peerStatus.KnownPeers {
			if w.state.RegisterPeer(known) {
				w.evHandler("worker: sync: new peer %s", known.Host)
			}
		}

		// Let the peer know about this node.
		if err := w.state.NetRequestAddPeer(pr); err != nil {
			w.evHandler("worker: sync: addPeer: %s: ERROR: %s", pr.Host, err)
		}

		// Only chains longer than ours can replace it.
		if peerStatus.LatestBlockNumber <= latest.Number {
			continue
		}

		w.evHandler("worker: sync: retrievePeerChain: %s: latestBlockNumber[%d]", pr.Host, peerStatus.LatestBlockNumber)

		blocks, err := w.state.NetRequestPeerChain(pr)
		if err != nil {
			w.evHandler("worker: sync: retrievePeerChain: %s: ERROR: %s", pr.Host, err)
			continue
		}

		candidates = append(candidates, blocks)
	}

	if len(candidates) == 0 {
		return
	}

	adopted, err := w.state.Consensus(candidates)
	if err != nil {
		w.evHandler("worker: sync: consensus: ERROR: %s", err)
		return
	}

	w.evHandler("worker: sync: consensus: adopted[%v]", adopted)
}
