package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func blocksCmd(opts *options) *cobra.Command {
	var trans bool

	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "Print the blocks of the stored chain",
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

			out := cmd.OutOrStdout()
			for _, block := range blocks {
				fmt.Fprintf(out, "blk[%d] hash[%s] prev[%s] nonce[%d] txs[%d]\n", block.Number, block.Hash(), block.PrevBlockHash, block.Nonce, len(block.Transactions))

				if trans {
					for i, tx := range block.Transactions {
						fmt.Fprintf(out, "  tx[%d] %s\n", i, tx)
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&trans, "transactions", "t", false, "Print the transactions of every block.")

	return cmd
}
