package public

import (
	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
)

// NewTx is what a client submits to add a transaction to the mempool.
type NewTx struct {
	SenderAddress    string `json:"senderAddress" validate:"required,ne=<COINBASE>"`
	RecipientAddress string `json:"recipientAddress" validate:"required"`
	Value            uint64 `json:"value"`
}

// toDatabaseTx converts the submitted transaction into a chain transaction.
func (ntx NewTx) toDatabaseTx() database.Tx {
	return database.NewTx(ntx.SenderAddress, ntx.RecipientAddress, ntx.Value)
}

// balance is the balance of a single account.
type balance struct {
	Account string `json:"account"`
	Balance uint64 `json:"balance"`
}

// balances is the response for the balances endpoints.
type balances struct {
	LatestBlock string    `json:"latestBlock"`
	Uncommitted int       `json:"uncommitted"`
	Balances    []balance `json:"balances"`
}

// block is a block plus the hash that identifies it. The hash is computed
// on the way out and never stored.
type block struct {
	Hash string `json:"hash"`
	database.Block
}

func toBlocks(dbBlocks []database.Block) []block {
	blocks := make([]block, len(dbBlocks))
	for i, b := range dbBlocks {
		blocks[i] = block{Hash: b.Hash(), Block: b}
	}
	return blocks
}
