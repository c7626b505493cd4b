package cmd

import (
	"fmt"
	"net/http"

	"github.com/ardanlabs/fiatlux/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/fiatlux/foundation/validate"
	"github.com/spf13/cobra"
)

func sendCmd(opts *options) *cobra.Command {
	var (
		from  string
		to    string
		value uint64
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit a transaction to the node mempool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ntx := public.NewTx{
				SenderAddress:    from,
				RecipientAddress: to,
				Value:            value,
			}

			if err := validate.Check(ntx); err != nil {
				return err
			}

			var resp struct {
				Status string `json:"status"`
			}

			url := fmt.Sprintf("%s/v1/tx/submit", opts.url)
			if err := call(cmd.Context(), http.MethodPost, url, ntx, &resp); err != nil {
				return fmt.Errorf("submitting transaction: %w", err)
			}

			opts.log.Infow("admin", "status", "transaction submitted", "from", from, "to", to, "value", value)
			fmt.Fprintln(cmd.OutOrStdout(), resp.Status)

			return nil
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "Account sending the value.")
	cmd.Flags().StringVarP(&to, "to", "t", "", "Account receiving the value.")
	cmd.Flags().Uint64VarP(&value, "value", "v", 0, "Value to send.")

	return cmd
}
