package database

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Difficulty is the fixed number of leading zero bits the proof of work
// target demands. There is no difficulty adjustment.
const Difficulty = 4

// GenesisPrevBlockHash is the previous block hash carried by the genesis block.
const GenesisPrevBlockHash = "fiat lux"

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// target is the largest hash value, as a 256 bit unsigned integer, that
// solves the proof of work puzzle: 2^(256 - Difficulty).
var target = new(big.Int).Lsh(big.NewInt(1), 256-Difficulty)

// =============================================================================

// Block represents a group of transactions batched together. The hash of
// a block is its identity and is never stored, only recomputed.
type Block struct {
	Number        uint64 `json:"blockNumber"`   // Position of the block in the chain.
	Transactions  []Tx   `json:"transactions"`  // Ordered transactions, coinbase first.
	TimeStamp     int64  `json:"timestamp"`     // Unix seconds when the block was mined.
	Nonce         uint64 `json:"nonce"`         // Value identified to solve the hash solution.
	PrevBlockHash string `json:"prevBlockHash"` // Hash of the previous block in the chain.
}

// Genesis returns the fixed first block shared by every node. A new value
// is returned on each call so callers can't mutate the shared constant.
func Genesis() Block {
	return Block{
		Number:        0,
		Transactions:  []Tx{},
		TimeStamp:     0,
		Nonce:         0,
		PrevBlockHash: GenesisPrevBlockHash,
	}
}

// Hash returns the unique hash for the Block. Every field takes part in
// the hash and a nil transaction list hashes the same as an empty one.
func (b Block) Hash() string {
	if b.Transactions == nil {
		b.Transactions = []Tx{}
	}

	return hash(b)
}

// Equal reports whether both blocks carry identical field values.
func (b Block) Equal(other Block) bool {
	if b.Number != other.Number ||
		b.TimeStamp != other.TimeStamp ||
		b.Nonce != other.Nonce ||
		b.PrevBlockHash != other.PrevBlockHash ||
		len(b.Transactions) != len(other.Transactions) {
		return false
	}

	for i := range b.Transactions {
		if b.Transactions[i] != other.Transactions[i] {
			return false
		}
	}

	return true
}

// Clone returns a copy of the block that shares no memory with the original.
func (b Block) Clone() Block {
	trans := make([]Tx, len(b.Transactions))
	copy(trans, b.Transactions)
	b.Transactions = trans

	return b
}

// =============================================================================

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	PrevBlock Block
	Trans     []Tx
	EvHandler func(v string, args ...any)
}

// POW constructs a new Block on top of the previous block and performs the
// work to find a nonce that solves the cryptographic POW puzzle. The search
// has no upper bound and only ends when solved or the context is cancelled.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	trans := make([]Tx, len(args.Trans))
	copy(trans, args.Trans)

	nb := Block{
		Number:        args.PrevBlock.Number + 1,
		Transactions:  trans,
		TimeStamp:     time.Now().UTC().Unix(),
		Nonce:         0, // Will be identified by the POW algorithm.
		PrevBlockHash: args.PrevBlock.Hash(),
	}

	if err := nb.performPOW(ctx, ev); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// performPOW does the work of mining to find a valid hash for a specified
// block. Pointer semantics are being used since a nonce is being discovered.
func (b *Block) performPOW(ctx context.Context, ev func(v string, args ...any)) error {
	ev("database: PerformPOW: MINING: started: blk[%d]", b.Number)
	defer ev("database: PerformPOW: MINING: completed: blk[%d]", b.Number)

	for _, tx := range b.Transactions {
		ev("database: PerformPOW: MINING: tx[%s]", tx)
	}

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: PerformPOW: MINING: attempts[%d]", attempts)
		}

		// Did we get cancelled trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: PerformPOW: MINING: CANCELLED")
			return ctx.Err()
		}

		hash := b.Hash()
		if !IsPoWValid(hash) {
			b.Nonce++
			continue
		}

		ev("database: PerformPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: attempts[%d]", b.PrevBlockHash, hash, attempts)

		return nil
	}
}

// =============================================================================

// IsPoWValid interprets the hash as a 256 bit unsigned integer and reports
// whether it is less than or equal to the target. The 0x prefix is optional.
// Any malformed hash is reported as not valid.
func IsPoWValid(hash string) bool {
	if !has0xPrefix(hash) {
		hash = "0x" + hash
	}

	data, err := hexutil.Decode(hash)
	if err != nil || len(data) == 0 || len(data) > sha256.Size {
		return false
	}

	return new(big.Int).SetBytes(data).Cmp(target) <= 0
}

// has0xPrefix validates the hash starts with a 0x.
func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// hash returns a unique string for the value.
func hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}
