package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func mineCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "Signal the node to mine a block, even with an empty mempool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Status string `json:"status"`
			}

			url := fmt.Sprintf("%s/v1/mining/signal", opts.url)
			if err := call(cmd.Context(), http.MethodPost, url, nil, &resp); err != nil {
				return fmt.Errorf("signalling mining: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.Status)

			return nil
		},
	}
}
