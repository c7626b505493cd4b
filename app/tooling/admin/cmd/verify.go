package cmd

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/ledger"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/storage"
	"github.com/spf13/cobra"
)

func verifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify the stored chain and replay it against the genesis allocation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			strg, err := opts.openStorage()
			if err != nil {
				return err
			}
			defer strg.Close()

			blocks, err := readChain(strg)
			if err != nil {
				return err
			}

			if err := database.Verify(blocks); err != nil {
				return fmt.Errorf("verifying chain: %w", err)
			}

			gen, err := opts.loadGenesis()
			if err != nil {
				return err
			}

			if _, err := ledger.Rebuild(blocks, gen.Balances); err != nil {
				return fmt.Errorf("replaying chain: %w", err)
			}

			tip := blocks[len(blocks)-1]
			fmt.Fprintf(cmd.OutOrStdout(), "chain is valid: blocks[%d] tip[%s]\n", len(blocks), tip.Hash())

			return nil
		},
	}
}

// readChain reads the stored chain, reporting a clear error when nothing
// has been stored yet.
func readChain(strg storage.Storer) ([]database.Block, error) {
	blocks, err := strg.ReadChain()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errors.New("no chain has been stored")
		}
		return nil, fmt.Errorf("reading chain: %w", err)
	}

	return blocks, nil
}
