// Package bolt implements the ability to read and write the blockchain and
// ledger using a bbolt key/value file.
package bolt

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/storage"
	bolt "go.etcd.io/bbolt"
)

// DBFile is the name of the bbolt file created under the database path.
const DBFile = "fiatlux.db"

// Set of bucket and key names.
var (
	chainBucket = []byte("chain")
	blocksKey   = []byte("blocks")
	ledgerKey   = []byte("ledger")
)

// Bolt represents the serialization implementation for reading and storing
// the chain and ledger in a bbolt database. This implements the
// storage.Storer interface.
type Bolt struct {
	db *bolt.DB
}

// New opens the bbolt database under the specified path, creating the path
// and the bucket if they don't exist.
func New(dbPath string) (*Bolt, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(filepath.Join(dbPath, DBFile), 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(chainBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Close releases the database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// ReadChain reads the chain from the database. It returns
// storage.ErrNotFound if no chain has been written.
func (b *Bolt) ReadChain() ([]database.Block, error) {
	data, err := b.get(blocksKey)
	if err != nil {
		return nil, err
	}

	return storage.DecodeChain(data)
}

// WriteChain replaces the chain in a single transaction.
func (b *Bolt) WriteChain(blocks []database.Block) error {
	data, err := storage.EncodeChain(blocks)
	if err != nil {
		return err
	}

	return b.put(blocksKey, data)
}

// ReadLedger reads the ledger from the database. It returns
// storage.ErrNotFound if no ledger has been written.
func (b *Bolt) ReadLedger() (map[string]uint64, error) {
	data, err := b.get(ledgerKey)
	if err != nil {
		return nil, err
	}

	return storage.DecodeLedger(data)
}

// WriteLedger replaces the ledger in a single transaction.
func (b *Bolt) WriteLedger(balances map[string]uint64) error {
	data, err := storage.EncodeLedger(balances)
	if err != nil {
		return err
	}

	return b.put(ledgerKey, data)
}

// =============================================================================

func (b *Bolt) get(key []byte) ([]byte, error) {
	var data []byte

	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(chainBucket)
		if bucket == nil {
			return storage.ErrNotFound
		}

		value := bucket.Get(key)
		if value == nil {
			return storage.ErrNotFound
		}

		// Values are only valid for the life of the transaction.
		data = make([]byte, len(value))
		copy(data, value)

		return nil
	})

	return data, err
}

func (b *Bolt) put(key []byte, data []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(chainBucket)
		if err != nil {
			return err
		}

		return bucket.Put(key, data)
	})
}
