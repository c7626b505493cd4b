// Package ledger maintains account balances derived by replaying the
// transactions of the blockchain in order.
package ledger

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
)

// Set of errors identifying why a transaction can't be applied.
var (
	ErrUnknownSender     = errors.New("sender account does not exist")
	ErrInsufficientFunds = errors.New("sender account does not have enough funds")
	ErrBalanceOverflow   = errors.New("recipient balance would overflow")
)

// TxError represents an error applying a transaction. It carries the
// account that failed the check and the check that failed.
type TxError struct {
	Index   int
	Tx      database.Tx
	Account string
	Err     error
}

// Error implements the error interface.
func (txe *TxError) Error() string {
	return fmt.Sprintf("tx[%d] %s: account %q: %s", txe.Index, txe.Tx, txe.Account, txe.Err)
}

// Unwrap provides support for errors.Is against the sentinel errors.
func (txe *TxError) Unwrap() error {
	return txe.Err
}

// IsTxError checks if an error of type TxError exists.
func IsTxError(err error) bool {
	var txe *TxError
	return errors.As(err, &txe)
}

// =============================================================================

// Ledger manages the balances of the accounts who have transacted on
// the blockchain. Recipients that don't exist yet are created with a zero
// balance when they receive value.
type Ledger struct {
	mu       sync.RWMutex
	balances map[string]uint64
}

// New constructs a ledger seeded with the bootstrap allocation, which is
// usually the balances from the genesis file. A nil allocation starts empty.
func New(bootstrap map[string]uint64) *Ledger {
	balances := make(map[string]uint64, len(bootstrap))
	for address, balance := range bootstrap {
		balances[address] = balance
	}

	return &Ledger{
		balances: balances,
	}
}

// Rebuild constructs a new ledger from the bootstrap allocation and applies
// every block in chain order. The result depends only on its inputs.
func Rebuild(blocks []database.Block, bootstrap map[string]uint64) (*Ledger, error) {
	ldg := New(bootstrap)

	for _, block := range blocks {
		if err := applyBlock(ldg.balances, block); err != nil {
			return nil, fmt.Errorf("block[%d]: %w", block.Number, err)
		}
	}

	return ldg, nil
}

// Apply performs the business logic for applying a transaction: the sender
// is debited and the recipient credited. A rejected transaction leaves the
// ledger untouched.
func (l *Ledger) Apply(tx database.Tx) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return apply(l.balances, 0, tx)
}

// ApplyBlock applies every transaction of the block in order. Either all
// of them are applied or, on the first failure, none of them are.
func (l *Ledger) ApplyBlock(block database.Block) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	scratch := make(map[string]uint64, len(l.balances))
	for address, balance := range l.balances {
		scratch[address] = balance
	}

	if err := applyBlock(scratch, block); err != nil {
		return err
	}

	l.balances = scratch

	return nil
}

// Balance returns the balance for the specified address and whether
// the account exists.
func (l *Ledger) Balance(address string) (uint64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	balance, exists := l.balances[address]
	return balance, exists
}

// Copy makes a copy of the current balances.
func (l *Ledger) Copy() map[string]uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	balances := make(map[string]uint64, len(l.balances))
	for address, balance := range l.balances {
		balances[address] = balance
	}
	return balances
}

// Clone makes a copy of the ledger that shares no state with the original.
func (l *Ledger) Clone() *Ledger {
	return New(l.Copy())
}

// Replace swaps the balances for the balances of the specified ledger.
func (l *Ledger) Replace(other *Ledger) {
	balances := other.Copy()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances = balances
}

// =============================================================================

// applyBlock applies the block transactions to the balances in order.
func applyBlock(balances map[string]uint64, block database.Block) error {
	for i, tx := range block.Transactions {
		if err := apply(balances, i, tx); err != nil {
			return err
		}
	}

	return nil
}

// apply validates and then applies the transaction to the balances.
func apply(balances map[string]uint64, index int, tx database.Tx) error {
	if err := verify(balances, index, tx); err != nil {
		return err
	}

	// The coinbase sender mints the value, there is nothing to debit.
	if !tx.IsCoinbase() {
		balances[tx.SenderAddress] -= tx.Value
	}

	balances[tx.RecipientAddress] += tx.Value

	return nil
}

// verify performs the solvency checks for the sender and makes sure the
// credit fits in the recipient balance.
func verify(balances map[string]uint64, index int, tx database.Tx) error {
	if !tx.IsCoinbase() {
		balance, exists := balances[tx.SenderAddress]
		if !exists {
			return &TxError{Index: index, Tx: tx, Account: tx.SenderAddress, Err: ErrUnknownSender}
		}

		if balance < tx.Value {
			err := fmt.Errorf("%w: balance %d, needed %d", ErrInsufficientFunds, balance, tx.Value)
			return &TxError{Index: index, Tx: tx, Account: tx.SenderAddress, Err: err}
		}

		// The debit happens first, a transfer to self nets out.
		if tx.SenderAddress == tx.RecipientAddress {
			return nil
		}
	}

	if balance := balances[tx.RecipientAddress]; balance > math.MaxUint64-tx.Value {
		err := fmt.Errorf("%w: balance %d, credit %d", ErrBalanceOverflow, balance, tx.Value)
		return &TxError{Index: index, Tx: tx, Account: tx.RecipientAddress, Err: err}
	}

	return nil
}
