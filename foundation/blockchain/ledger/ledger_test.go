package ledger_test

import (
	"context"
	"errors"
	"maps"
	"math"
	"testing"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/ledger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_Apply(t *testing.T) {
	type result struct {
		tx      database.Tx
		err     error
		account string
	}

	type table struct {
		name      string
		bootstrap map[string]uint64
		results   []result
		final     map[string]uint64
	}

	tt := []table{
		{
			name:      "double-spend",
			bootstrap: map[string]uint64{"Alice": 1000},
			results: []result{
				{tx: database.NewTx("Alice", "Bob", 400)},
				{tx: database.NewTx("Alice", "Bob", 400)},
				{tx: database.NewTx("Alice", "Bob", 601), err: ledger.ErrInsufficientFunds},
			},
			final: map[string]uint64{"Alice": 200, "Bob": 800},
		},
		{
			name:      "unknown-sender",
			bootstrap: map[string]uint64{"Alice": 1000},
			results: []result{
				{tx: database.NewTx("Mallory", "Alice", 1), err: ledger.ErrUnknownSender},
			},
			final: map[string]uint64{"Alice": 1000},
		},
		{
			name:      "coinbase",
			bootstrap: nil,
			results: []result{
				{tx: database.NewCoinbaseTx("miner1")},
				{tx: database.NewCoinbaseTx("miner1")},
				{tx: database.NewTx("miner1", "Bob", 100)},
			},
			final: map[string]uint64{"miner1": 0, "Bob": 100},
		},
		{
			name:      "zero-balance-sender",
			bootstrap: map[string]uint64{"Alice": 0},
			results: []result{
				{tx: database.NewTx("Alice", "Bob", 0)},
				{tx: database.NewTx("Alice", "Bob", 1), err: ledger.ErrInsufficientFunds},
			},
			final: map[string]uint64{"Alice": 0, "Bob": 0},
		},
		{
			name:      "balance-overflow",
			bootstrap: map[string]uint64{"Alice": 100, "Bob": math.MaxUint64 - 10},
			results: []result{
				{tx: database.NewCoinbaseTx("Bob"), err: ledger.ErrBalanceOverflow, account: "Bob"},
				{tx: database.NewTx("Alice", "Bob", 11), err: ledger.ErrBalanceOverflow, account: "Bob"},
				{tx: database.NewTx("Alice", "Bob", 10)},
				{tx: database.NewTx("Bob", "Bob", 5)},
			},
			final: map[string]uint64{"Alice": 90, "Bob": math.MaxUint64},
		},
	}

	t.Log("Given the need to apply transactions to a ledger.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of transactions.", testID)
			{
				f := func(t *testing.T) {
					ldg := ledger.New(tst.bootstrap)

					for _, res := range tst.results {
						err := ldg.Apply(res.tx)

						if res.err == nil {
							if err != nil {
								t.Fatalf("\t%s\tTest %d:\tShould be able to apply %s: %v", failed, testID, res.tx, err)
							}
							t.Logf("\t%s\tTest %d:\tShould be able to apply %s.", success, testID, res.tx)
							continue
						}

						if !errors.Is(err, res.err) {
							t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
							t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, res.err)
							t.Fatalf("\t%s\tTest %d:\tShould reject %s.", failed, testID, res.tx)
						}
						t.Logf("\t%s\tTest %d:\tShould reject %s.", success, testID, res.tx)

						account := res.account
						if account == "" {
							account = res.tx.SenderAddress
						}

						var txe *ledger.TxError
						if !errors.As(err, &txe) || txe.Account != account {
							t.Fatalf("\t%s\tTest %d:\tShould report the failing account: %v", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould report the failing account.", success, testID)
					}

					if got := ldg.Copy(); !maps.Equal(got, tst.final) {
						t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, got)
						t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.final)
						t.Fatalf("\t%s\tTest %d:\tShould have the correct balances.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould have the correct balances.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_ApplyBlock(t *testing.T) {
	t.Log("Given the need to apply a block as a single unit.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a transaction in the middle of the block fails.", testID)
		{
			ldg := ledger.New(map[string]uint64{"Alice": 1000})

			block := database.Block{
				Number: 1,
				Transactions: []database.Tx{
					database.NewCoinbaseTx("miner1"),
					database.NewTx("Alice", "Bob", 400),
					database.NewTx("Bob", "Carol", 500),
				},
			}

			err := ldg.ApplyBlock(block)
			if !errors.Is(err, ledger.ErrInsufficientFunds) {
				t.Fatalf("\t%s\tTest %d:\tShould fail on the overspending transaction: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould fail on the overspending transaction.", success, testID)

			var txe *ledger.TxError
			if !errors.As(err, &txe) || txe.Index != 2 || txe.Account != "Bob" {
				t.Fatalf("\t%s\tTest %d:\tShould identify transaction 2 from Bob: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould identify transaction 2 from Bob.", success, testID)

			exp := map[string]uint64{"Alice": 1000}
			if got := ldg.Copy(); !maps.Equal(got, exp) {
				t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, got)
				t.Fatalf("\t%s\tTest %d:\tShould leave the ledger untouched.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould leave the ledger untouched.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen every transaction succeeds.", testID)
		{
			ldg := ledger.New(map[string]uint64{"Alice": 1000})

			block := database.Block{
				Number: 1,
				Transactions: []database.Tx{
					database.NewCoinbaseTx("miner1"),
					database.NewTx("Alice", "Bob", 400),
					database.NewTx("Bob", "Carol", 100),
				},
			}

			if err := ldg.ApplyBlock(block); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to apply the block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to apply the block.", success, testID)

			exp := map[string]uint64{"Alice": 600, "Bob": 300, "Carol": 100, "miner1": database.MiningReward}
			if got := ldg.Copy(); !maps.Equal(got, exp) {
				t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, got)
				t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, exp)
				t.Fatalf("\t%s\tTest %d:\tShould have the correct balances.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have the correct balances.", success, testID)
		}
	}
}

func Test_Rebuild(t *testing.T) {
	bootstrap := map[string]uint64{"Alice": 1000}

	blocks := []database.Block{database.Genesis()}
	for _, tx := range []database.Tx{database.NewTx("Alice", "Bob", 400), database.NewTx("miner1", "Carol", 20)} {
		trans := []database.Tx{database.NewCoinbaseTx("miner1"), tx}

		block, err := database.POW(context.Background(), database.POWArgs{PrevBlock: blocks[len(blocks)-1], Trans: trans})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a test block: %v", failed, err)
		}
		blocks = append(blocks, block)
	}

	t.Log("Given the need to rebuild a ledger from a chain.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen replaying the same chain twice.", testID)
		{
			ldg1, err := ledger.Rebuild(blocks, bootstrap)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to rebuild the ledger: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to rebuild the ledger.", success, testID)

			ldg2, err := ledger.Rebuild(blocks, bootstrap)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to rebuild the ledger again: %v", failed, testID, err)
			}

			if !maps.Equal(ldg1.Copy(), ldg2.Copy()) {
				t.Fatalf("\t%s\tTest %d:\tShould produce identical balances.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould produce identical balances.", success, testID)

			exp := map[string]uint64{"Alice": 600, "Bob": 400, "Carol": 20, "miner1": 2*database.MiningReward - 20}
			if got := ldg1.Copy(); !maps.Equal(got, exp) {
				t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, got)
				t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, exp)
				t.Fatalf("\t%s\tTest %d:\tShould have the correct balances.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have the correct balances.", success, testID)

			if bootstrap["Alice"] != 1000 {
				t.Fatalf("\t%s\tTest %d:\tShould not modify the bootstrap allocation.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not modify the bootstrap allocation.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the chain holds an insolvent transaction.", testID)
		{
			_, err := ledger.Rebuild(blocks, nil)
			if !errors.Is(err, ledger.ErrUnknownSender) {
				t.Fatalf("\t%s\tTest %d:\tShould fail to rebuild without the allocation: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould fail to rebuild without the allocation.", success, testID)
		}
	}
}

func Test_Clone(t *testing.T) {
	t.Log("Given the need to work on a copy of the ledger.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen changing a clone.", testID)
		{
			ldg := ledger.New(map[string]uint64{"Alice": 10})
			cln := ldg.Clone()

			if err := cln.Apply(database.NewTx("Alice", "Bob", 10)); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to apply to the clone: %v", failed, testID, err)
			}

			if bal, _ := ldg.Balance("Alice"); bal != 10 {
				t.Fatalf("\t%s\tTest %d:\tShould not change the original: %d", failed, testID, bal)
			}
			t.Logf("\t%s\tTest %d:\tShould not change the original.", success, testID)

			ldg.Replace(cln)
			if _, exists := ldg.Balance("Bob"); !exists {
				t.Fatalf("\t%s\tTest %d:\tShould take the clone balances on replace.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould take the clone balances on replace.", success, testID)
		}
	}
}
