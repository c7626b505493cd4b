package cmd

import (
	"fmt"
	"net/http"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/peer"
	"github.com/spf13/cobra"
)

func peersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "peers",
		Short: "Print the node status and the peers it knows about",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var status peer.Status

			url := fmt.Sprintf("%s/v1/node/status", opts.privateURL)
			if err := call(cmd.Context(), http.MethodGet, url, nil, &status); err != nil {
				return fmt.Errorf("requesting status: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "latest blk[%d] hash[%s]\n", status.LatestBlockNumber, status.LatestBlockHash)
			for _, pr := range status.KnownPeers {
				fmt.Fprintf(out, "peer %s\n", pr.Host)
			}

			return nil
		},
	}
}
