// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"net/http"

	"github.com/ardanlabs/fiatlux/business/web/errs"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/ledger"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/peer"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/state"
	"github.com/ardanlabs/fiatlux/foundation/validate"
	"github.com/ardanlabs/fiatlux/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveStatus(), http.StatusOK)
}

// Chain returns the full chain so a peer can run consensus against it.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveBlocks(), http.StatusOK)
}

// ProposeChain takes a chain from a peer and runs consensus against it.
func (h Handlers) ProposeChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var blocks []database.Block
	if err := web.Decode(r, &blocks); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	// Consensus only logs a candidate it refuses, so run the same checks
	// here to tell the peer why it was refused.
	if err := database.Verify(blocks); err != nil {
		return errs.FromDomain(err)
	}

	if _, err := ledger.Rebuild(blocks, h.State.RetrieveGenesis().Balances); err != nil {
		return errs.FromDomain(err)
	}

	adopted, err := h.State.Consensus([][]database.Block{blocks})
	if err != nil {
		return errs.FromDomain(err)
	}

	h.Log.Infow("propose chain", "traceid", web.GetTraceID(ctx), "blocks", len(blocks), "adopted", adopted)

	resp := struct {
		Adopted bool `json:"adopted"`
	}{
		Adopted: adopted,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// AddPeer registers the peer making the request with this node.
func (h Handlers) AddPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var pr peer.Peer
	if err := web.Decode(r, &pr); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(pr); err != nil {
		return err
	}

	if h.State.RegisterPeer(pr) {
		h.Log.Infow("add peer", "traceid", web.GetTraceID(ctx), "host", pr.Host)
	}

	return web.Respond(ctx, w, nil, http.StatusNoContent)
}
