// Package disk implements the ability to read and write the blockchain and
// ledger as JSON documents on disk.
package disk

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/storage"
)

// Set of file names maintained under the database path.
const (
	ChainFile  = "blockchain.json"
	LedgerFile = "ledger.json"
)

// Disk represents the serialization implementation for reading and storing
// the chain and ledger in two files on disk. This implements the
// storage.Storer interface.
type Disk struct {
	dbPath string
}

// New constructs a Disk value for use, creating the database path if it
// doesn't exist.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since every write opens
// and closes its own file.
func (d *Disk) Close() error {
	return nil
}

// ReadChain reads the chain from disk. It returns storage.ErrNotFound if the
// chain file doesn't exist yet.
func (d *Disk) ReadChain() ([]database.Block, error) {
	data, err := d.read(ChainFile)
	if err != nil {
		return nil, err
	}

	return storage.DecodeChain(data)
}

// WriteChain replaces the chain on disk.
func (d *Disk) WriteChain(blocks []database.Block) error {
	data, err := storage.EncodeChain(blocks)
	if err != nil {
		return err
	}

	return d.write(ChainFile, data)
}

// ReadLedger reads the ledger from disk. It returns storage.ErrNotFound if
// the ledger file doesn't exist yet.
func (d *Disk) ReadLedger() (map[string]uint64, error) {
	data, err := d.read(LedgerFile)
	if err != nil {
		return nil, err
	}

	return storage.DecodeLedger(data)
}

// WriteLedger replaces the ledger on disk.
func (d *Disk) WriteLedger(balances map[string]uint64) error {
	data, err := storage.EncodeLedger(balances)
	if err != nil {
		return err
	}

	return d.write(LedgerFile, data)
}

// =============================================================================

// read returns the contents of the named file.
func (d *Disk) read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.dbPath, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	return data, nil
}

// write stores the data in a temporary file next to the named file and
// renames it into place, so readers see either the old or the new content.
func (d *Disk) write(name string, data []byte) error {
	f, err := os.CreateTemp(d.dbPath, name+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", name, err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("syncing %s: %w", name, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, filepath.Join(d.dbPath, name)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", name, err)
	}

	return nil
}
