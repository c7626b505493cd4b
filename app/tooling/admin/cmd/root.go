// Package cmd contains the commands supported by the admin tool.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/genesis"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/storage"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/storage/backend"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options holds the values of the persistent flags shared by the commands.
type options struct {
	log         *zap.SugaredLogger
	storage     string
	dbPath      string
	genesisPath string
	url         string
	privateURL  string
}

// NewRoot constructs the root command with every child command attached.
func NewRoot(log *zap.SugaredLogger) *cobra.Command {
	opts := options{
		log: log,
	}

	rootCmd := &cobra.Command{
		Use:           "admin",
		Short:         "Administer a fiat lux node and its stored chain",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.storage, "storage", "s", backend.Disk, "Storage back end holding the chain: disk, bolt or memory.")
	flags.StringVarP(&opts.dbPath, "db-path", "d", "zblock/data", "Path to the directory with the stored chain.")
	flags.StringVarP(&opts.genesisPath, "genesis", "g", genesis.DefaultPath, "Path to the genesis file.")
	flags.StringVarP(&opts.url, "url", "u", "http://localhost:8080", "Url of the node public api.")
	flags.StringVar(&opts.privateURL, "private-url", "http://localhost:9080", "Url of the node private api.")

	rootCmd.AddCommand(
		verifyCmd(&opts),
		balancesCmd(&opts),
		blocksCmd(&opts),
		sendCmd(&opts),
		mineCmd(&opts),
		peersCmd(&opts),
	)

	return rootCmd
}

// =============================================================================

// openStorage opens the configured storage back end. The caller must close it.
func (o *options) openStorage() (storage.Storer, error) {
	strg, err := backend.Open(o.storage, o.dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	o.log.Infow("admin", "status", "storage opened", "storage", o.storage, "path", o.dbPath)

	return strg, nil
}

// loadGenesis reads the genesis file, falling back to the default
// allocation when the file doesn't exist.
func (o *options) loadGenesis() (genesis.Genesis, error) {
	gen, err := genesis.Load(o.genesisPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		o.log.Infow("admin", "status", "genesis file not found, using default", "path", o.genesisPath)
		return genesis.Default(), nil
	case err != nil:
		return genesis.Genesis{}, fmt.Errorf("loading genesis: %w", err)
	}

	return gen, nil
}
