// Package storage defines the contract for persisting the blockchain and
// the ledger derived from it, plus the JSON codec every back end shares.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
)

// ErrNotFound is returned when nothing has been persisted yet. A node that
// receives it starts from the genesis block.
var ErrNotFound = errors.New("not found")

// Storer represents the behavior required to persist the chain and ledger.
// WriteChain replaces the whole chain, so an implementation must never
// leave a partially written chain behind.
type Storer interface {
	ReadChain() ([]database.Block, error)
	WriteChain(blocks []database.Block) error
	ReadLedger() (map[string]uint64, error)
	WriteLedger(balances map[string]uint64) error
	Close() error
}

// =============================================================================

// EncodeChain serializes the chain as a JSON array of blocks.
func EncodeChain(blocks []database.Block) ([]byte, error) {
	if blocks == nil {
		blocks = []database.Block{}
	}

	data, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding chain: %w", err)
	}

	return data, nil
}

// DecodeChain deserializes a JSON array of blocks.
func DecodeChain(data []byte) ([]database.Block, error) {
	var blocks []database.Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("decoding chain: %w", err)
	}

	return blocks, nil
}

// EncodeLedger serializes the balances as a JSON object of address to balance.
func EncodeLedger(balances map[string]uint64) ([]byte, error) {
	if balances == nil {
		balances = map[string]uint64{}
	}

	data, err := json.MarshalIndent(balances, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding ledger: %w", err)
	}

	return data, nil
}

// DecodeLedger deserializes a JSON object of address to balance.
func DecodeLedger(data []byte) (map[string]uint64, error) {
	balances := make(map[string]uint64)
	if err := json.Unmarshal(data, &balances); err != nil {
		return nil, fmt.Errorf("decoding ledger: %w", err)
	}

	return balances, nil
}
