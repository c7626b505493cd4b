package database

import (
	"fmt"
)

// MiningSender is the sender address used by the transaction that pays the
// mining reward. It has no real account behind it and is exempt from any
// solvency check.
const MiningSender = "<COINBASE>"

// MiningReward is the value paid to the beneficiary of a mined block.
const MiningReward = 50

// =============================================================================

// Tx is the transactional information between two parties.
type Tx struct {
	SenderAddress    string `json:"senderAddress"`    // Account sending the value.
	RecipientAddress string `json:"recipientAddress"` // Account receiving the value.
	Value            uint64 `json:"value"`            // Monetary value moved by this transaction.
}

// NewTx constructs a new transaction.
func NewTx(sender string, recipient string, value uint64) Tx {
	return Tx{
		SenderAddress:    sender,
		RecipientAddress: recipient,
		Value:            value,
	}
}

// NewCoinbaseTx constructs the transaction that pays the mining reward
// to the specified beneficiary.
func NewCoinbaseTx(beneficiary string) Tx {
	return NewTx(MiningSender, beneficiary, MiningReward)
}

// IsCoinbase reports whether the transaction issues a mining reward.
func (tx Tx) IsCoinbase() bool {
	return tx.SenderAddress == MiningSender
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%d", tx.SenderAddress, tx.RecipientAddress, tx.Value)
}
