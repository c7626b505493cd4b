package cmd

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/ledger"
	"github.com/spf13/cobra"
)

func balancesCmd(opts *options) *cobra.Command {
	var persisted bool

	cmd := &cobra.Command{
		Use:   "balances [account]",
		Short: "Print the account balances for the stored chain",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strg, err := opts.openStorage()
			if err != nil {
				return err
			}
			defer strg.Close()

			var balances map[string]uint64
			switch {
			case persisted:
				if balances, err = strg.ReadLedger(); err != nil {
					return fmt.Errorf("reading ledger: %w", err)
				}

			default:
				blocks, err := readChain(strg)
				if err != nil {
					return err
				}

				gen, err := opts.loadGenesis()
				if err != nil {
					return err
				}

				ldg, err := ledger.Rebuild(blocks, gen.Balances)
				if err != nil {
					return fmt.Errorf("replaying chain: %w", err)
				}
				balances = ldg.Copy()
			}

			accounts := make([]string, 0, len(balances))
			for account := range balances {
				if len(args) == 1 && account != args[0] {
					continue
				}
				accounts = append(accounts, account)
			}
			slices.Sort(accounts)

			if len(args) == 1 && len(accounts) == 0 {
				return fmt.Errorf("account %q not found", args[0])
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ACCOUNT\tBALANCE")
			for _, account := range accounts {
				fmt.Fprintf(tw, "%s\t%d\n", account, balances[account])
			}

			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&persisted, "persisted", false, "Read the persisted ledger instead of replaying the chain.")

	return cmd
}
