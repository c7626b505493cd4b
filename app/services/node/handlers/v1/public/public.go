// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/ardanlabs/fiatlux/business/web/errs"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/state"
	"github.com/ardanlabs/fiatlux/foundation/events"
	"github.com/ardanlabs/fiatlux/foundation/validate"
	"github.com/ardanlabs/fiatlux/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, open := <-ch:
			if !open {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Balances returns the current balances for all accounts, or the one
// specified in the path.
func (h Handlers) Balances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account := web.Param(r, "account")

	var bals []balance
	switch account {
	case "":
		for acct, bal := range h.State.RetrieveBalances() {
			bals = append(bals, balance{Account: acct, Balance: bal})
		}
		sort.Slice(bals, func(i, j int) bool { return bals[i].Account < bals[j].Account })

	default:
		bal, err := h.State.QueryBalance(account)
		if err != nil {
			if errors.Is(err, state.ErrAccountNotFound) {
				return errs.NewTrusted(err, http.StatusNotFound)
			}
			return err
		}
		bals = append(bals, balance{Account: account, Balance: bal})
	}

	resp := balances{
		LatestBlock: h.State.RetrieveLatestBlock().Hash(),
		Uncommitted: h.State.QueryMempoolLength(),
		Balances:    bals,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Blocks returns the chain. When an account is specified only the blocks
// holding a transaction from or to that account are returned.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account := web.Param(r, "account")

	dbBlocks := h.State.RetrieveBlocks()
	if account == "" {
		return web.Respond(ctx, w, toBlocks(dbBlocks), http.StatusOK)
	}

	var matched []database.Block
	for _, blk := range dbBlocks {
		for _, tx := range blk.Transactions {
			if tx.SenderAddress == account || tx.RecipientAddress == account {
				matched = append(matched, blk)
				break
			}
		}
	}

	return web.Respond(ctx, w, toBlocks(matched), http.StatusOK)
}

// LatestBlock returns the block at the tip of the chain.
func (h Handlers) LatestBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latest := h.State.RetrieveLatestBlock()
	return web.Respond(ctx, w, block{Hash: latest.Hash(), Block: latest}, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveMempool(), http.StatusOK)
}

// SubmitTransaction adds a new transaction to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var ntx NewTx
	if err := web.Decode(r, &ntx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(ntx); err != nil {
		return err
	}

	tx := ntx.toDatabaseTx()

	h.Log.Infow("submit tran", "traceid", web.GetTraceID(ctx), "tx", tx.String())
	h.State.SubmitTransaction(tx)

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transaction added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SignalMining signals the node to mine a block. An empty mempool still
// produces a block paying the mining reward.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.State.Worker.SignalMineBlock()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signalled",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
