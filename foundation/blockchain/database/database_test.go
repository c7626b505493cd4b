package database_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_Hash(t *testing.T) {
	t.Log("Given the need to hash blocks deterministically.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling the genesis block.", testID)
		{
			g1 := database.Genesis()
			g2 := database.Block{PrevBlockHash: database.GenesisPrevBlockHash}

			if g1.Hash() != g2.Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould hash a nil and an empty transaction list the same.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould hash a nil and an empty transaction list the same.", success, testID)

			if len(g1.Hash()) != 66 {
				t.Fatalf("\t%s\tTest %d:\tShould produce a 0x prefixed 32 byte hex hash: %s", failed, testID, g1.Hash())
			}
			t.Logf("\t%s\tTest %d:\tShould produce a 0x prefixed 32 byte hex hash.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen changing any single field.", testID)
		{
			base := database.Block{
				Number:        1,
				Transactions:  []database.Tx{database.NewTx("Alice", "Bob", 10)},
				TimeStamp:     100,
				Nonce:         7,
				PrevBlockHash: database.Genesis().Hash(),
			}

			mutations := map[string]func(b *database.Block){
				"number":    func(b *database.Block) { b.Number++ },
				"timestamp": func(b *database.Block) { b.TimeStamp++ },
				"nonce":     func(b *database.Block) { b.Nonce++ },
				"prevhash":  func(b *database.Block) { b.PrevBlockHash = database.ZeroHash },
				"value":     func(b *database.Block) { b.Transactions[0].Value++ },
				"sender":    func(b *database.Block) { b.Transactions[0].SenderAddress = "Carol" },
				"recipient": func(b *database.Block) { b.Transactions[0].RecipientAddress = "Carol" },
				"trans":     func(b *database.Block) { b.Transactions = append(b.Transactions, database.NewTx("Bob", "Alice", 1)) },
			}

			for name, mutate := range mutations {
				blk := base.Clone()
				mutate(&blk)

				if blk.Hash() == base.Hash() {
					t.Errorf("\t%s\tTest %d:\tShould change the hash when %s changes.", failed, testID, name)
					continue
				}
				t.Logf("\t%s\tTest %d:\tShould change the hash when %s changes.", success, testID, name)
			}

			if base.Clone().Hash() != base.Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould hash a clone identically.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould hash a clone identically.", success, testID)
		}
	}
}

func Test_IsPoWValid(t *testing.T) {
	target := new(big.Int).Lsh(big.NewInt(1), 256-database.Difficulty)
	targetPlusOne := new(big.Int).Add(target, big.NewInt(1))

	type table struct {
		name string
		hash string
		exp  bool
	}

	tt := []table{
		{name: "target", hash: hexutil.Encode(pad32(target)), exp: true},
		{name: "target+1", hash: hexutil.Encode(pad32(targetPlusOne)), exp: false},
		{name: "zero", hash: database.ZeroHash, exp: true},
		{name: "no-prefix", hash: database.ZeroHash[2:], exp: true},
		{name: "max", hash: "0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", exp: false},
		{name: "empty", hash: "", exp: false},
		{name: "prefix-only", hash: "0x", exp: false},
		{name: "not-hex", hash: "0xzz00000000000000000000000000000000000000000000000000000000000000", exp: false},
		{name: "odd-length", hash: "0x000", exp: false},
		{name: "too-long", hash: database.ZeroHash + "00", exp: false},
	}

	t.Log("Given the need to validate the proof of work of a hash.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				got := database.IsPoWValid(tst.hash)
				if got != tst.exp {
					t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, got)
					t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.exp)
					t.Fatalf("\t%s\tTest %d:\tShould validate %s correctly.", failed, testID, tst.name)
				}
				t.Logf("\t%s\tTest %d:\tShould validate %s correctly.", success, testID, tst.name)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_POW(t *testing.T) {
	t.Log("Given the need to mine a new block.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen mining on top of the genesis block.", testID)
		{
			genesis := database.Genesis()
			trans := []database.Tx{database.NewCoinbaseTx("miner1"), database.NewTx("Alice", "Bob", 5)}

			block, err := database.POW(context.Background(), database.POWArgs{PrevBlock: genesis, Trans: trans})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine a block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to mine a block.", success, testID)

			if !database.IsPoWValid(block.Hash()) {
				t.Fatalf("\t%s\tTest %d:\tShould produce a hash that solves the puzzle: %s", failed, testID, block.Hash())
			}
			t.Logf("\t%s\tTest %d:\tShould produce a hash that solves the puzzle.", success, testID)

			if block.PrevBlockHash != genesis.Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould point to the genesis block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould point to the genesis block.", success, testID)

			if block.Number != 1 || len(block.Transactions) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould be block 1 with both transactions: %d %d", failed, testID, block.Number, len(block.Transactions))
			}
			t.Logf("\t%s\tTest %d:\tShould be block 1 with both transactions.", success, testID)

			trans[1].Value = 999
			if block.Transactions[1].Value != 5 {
				t.Fatalf("\t%s\tTest %d:\tShould not share the caller's transaction slice.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not share the caller's transaction slice.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the mining is cancelled.", testID)
		{
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := database.POW(ctx, database.POWArgs{PrevBlock: database.Genesis()})
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest %d:\tShould stop with a cancelled error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould stop with a cancelled error.", success, testID)
		}
	}
}

func Test_Verify(t *testing.T) {
	valid := mineChain(t, 4)

	type table struct {
		name   string
		blocks func() []database.Block
		index  int
		err    error
	}

	tt := []table{
		{
			name:   "valid",
			blocks: func() []database.Block { return valid },
		},
		{
			name:   "genesis-only",
			blocks: func() []database.Block { return []database.Block{database.Genesis()} },
		},
		{
			name:   "empty",
			blocks: func() []database.Block { return nil },
			err:    database.ErrEmptyChain,
		},
		{
			name: "bad-genesis",
			blocks: func() []database.Block {
				blocks := cloneChain(valid)
				blocks[0].PrevBlockHash = "let there be light"
				return blocks
			},
			err: database.ErrInvalidGenesis,
		},
		{
			name:   "missing-genesis",
			blocks: func() []database.Block { return cloneChain(valid)[1:] },
			err:    database.ErrInvalidGenesis,
		},
		{
			name: "bad-number",
			blocks: func() []database.Block {
				blocks := cloneChain(valid)
				blocks[2].Number = 7
				return blocks
			},
			index: 2,
			err:   database.ErrBadBlockNumber,
		},
		{
			name: "broken-link",
			blocks: func() []database.Block {
				blocks := cloneChain(valid)
				blocks[3].PrevBlockHash = database.ZeroHash
				return blocks
			},
			index: 3,
			err:   database.ErrBrokenLink,
		},
		{
			name: "insufficient-work",
			blocks: func() []database.Block {
				blocks := cloneChain(valid)
				blocks[1] = unsolve(blocks[1])
				return blocks[:2]
			},
			index: 1,
			err:   database.ErrInsufficientWork,
		},
	}

	t.Log("Given the need to verify a chain of blocks.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				blocks := tst.blocks()
				err := database.Verify(blocks)

				if tst.err == nil {
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould verify the chain: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould verify the chain.", success, testID)
					return
				}

				if !errors.Is(err, tst.err) {
					t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
					t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.err)
					t.Fatalf("\t%s\tTest %d:\tShould fail with the right error.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould fail with the right error.", success, testID)

				var ve *database.ValidationError
				if !errors.As(err, &ve) || ve.Index != tst.index {
					t.Fatalf("\t%s\tTest %d:\tShould identify block %d: %v", failed, testID, tst.index, err)
				}
				t.Logf("\t%s\tTest %d:\tShould identify block %d.", success, testID, tst.index)

				if err2 := database.Verify(blocks); err2 == nil || err2.Error() != err.Error() {
					t.Fatalf("\t%s\tTest %d:\tShould return the same result when called again.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould return the same result when called again.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_VerifyMutations(t *testing.T) {
	valid := mineChain(t, 4)

	mutations := map[string]func(b *database.Block){
		"number":    func(b *database.Block) { b.Number += 10 },
		"prevhash":  func(b *database.Block) { b.PrevBlockHash = database.ZeroHash },
		"timestamp": func(b *database.Block) { b.TimeStamp++ },
		"nonce":     func(b *database.Block) { b.Nonce++ },
		"value":     func(b *database.Block) { b.Transactions[0].Value++ },
		"recipient": func(b *database.Block) { b.Transactions[0].RecipientAddress = "thief" },
	}

	t.Log("Given the need to detect any change to a verified chain.")
	{
		for i := 1; i < len(valid); i++ {
			t.Logf("\tTest %d:\tWhen mutating block %d.", i, i)
			{
				for name, mutate := range mutations {
					blocks := cloneChain(valid)
					mutate(&blocks[i])

					// The tip has no child linking to it, so a content change
					// there is only visible through the work check.
					if i == len(blocks)-1 && database.IsPoWValid(blocks[i].Hash()) && blocks[i].Number == uint64(i) && blocks[i].PrevBlockHash == valid[i].PrevBlockHash {
						blocks[i] = unsolve(blocks[i])
					}

					if err := database.Verify(blocks); err == nil {
						t.Errorf("\t%s\tTest %d:\tShould fail verification after changing %s.", failed, i, name)
						continue
					}
					t.Logf("\t%s\tTest %d:\tShould fail verification after changing %s.", success, i, name)
				}
			}
		}
	}
}

// =============================================================================

// mineChain mines a chain holding the genesis block plus n-1 blocks.
func mineChain(t *testing.T, n int) []database.Block {
	blocks := []database.Block{database.Genesis()}

	for len(blocks) < n {
		trans := []database.Tx{database.NewCoinbaseTx("miner1")}

		block, err := database.POW(context.Background(), database.POWArgs{PrevBlock: blocks[len(blocks)-1], Trans: trans})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a test chain: %v", failed, err)
		}

		blocks = append(blocks, block)
	}

	return blocks
}

// cloneChain returns a deep copy of the blocks.
func cloneChain(blocks []database.Block) []database.Block {
	cpy := make([]database.Block, len(blocks))
	for i, block := range blocks {
		cpy[i] = block.Clone()
	}
	return cpy
}

// unsolve moves the nonce forward until the block hash no longer solves
// the proof of work puzzle.
func unsolve(block database.Block) database.Block {
	for database.IsPoWValid(block.Hash()) {
		block.Nonce++
	}
	return block
}

// pad32 left pads the integer bytes to 32 bytes.
func pad32(v *big.Int) []byte {
	out := make([]byte, 32)
	return v.FillBytes(out)
}
