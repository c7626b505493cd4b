// Package backend selects a storage implementation by name.
package backend

import (
	"fmt"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/storage"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/storage/bolt"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/storage/memory"
)

// Set of supported storage names.
const (
	Disk   = "disk"
	Bolt   = "bolt"
	Memory = "memory"
)

// Open constructs the named storage back end rooted at dbPath. The memory
// back end ignores the path.
func Open(kind string, dbPath string) (storage.Storer, error) {
	switch kind {
	case Disk:
		d, err := disk.New(dbPath)
		if err != nil {
			return nil, err
		}
		return d, nil

	case Bolt:
		b, err := bolt.New(dbPath)
		if err != nil {
			return nil, err
		}
		return b, nil

	case Memory:
		return memory.New(), nil
	}

	return nil, fmt.Errorf("unknown storage %q: use %s, %s or %s", kind, Disk, Bolt, Memory)
}
