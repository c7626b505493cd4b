// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// DefaultPath is where the node looks for the genesis file when no other
// path is configured.
const DefaultPath = "zblock/genesis.json"

// Genesis represents the genesis file. The genesis block itself is fixed
// and shared by every node. The file only carries the bootstrap allocation
// the ledger starts from.
type Genesis struct {
	Date         time.Time         `json:"date"`
	ChainID      uint16            `json:"chain_id"`      // The chain id represents an unique id for this running instance.
	MiningReward uint64            `json:"mining_reward"` // Informational, the reward is a chain constant.
	Balances     map[string]uint64 `json:"balances"`      // Bootstrap allocation applied before block 0.
}

// Default returns the allocation used when no genesis file exists.
func Default() Genesis {
	return Genesis{
		Date:     time.Date(2021, time.December, 17, 0, 0, 0, 0, time.UTC),
		ChainID:  1,
		Balances: map[string]uint64{"Alice": 1000},
	}
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis %q: %w", path, err)
	}

	if genesis.Balances == nil {
		genesis.Balances = make(map[string]uint64)
	}

	return genesis, nil
}
