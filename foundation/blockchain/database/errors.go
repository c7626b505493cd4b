package database

import (
	"errors"
	"fmt"
)

// Set of errors identifying why a chain failed verification.
var (
	ErrEmptyChain       = errors.New("chain is empty")
	ErrInvalidGenesis   = errors.New("first block is not the genesis block")
	ErrBadBlockNumber   = errors.New("block number does not match its position")
	ErrBrokenLink       = errors.New("previous block hash does not match")
	ErrInsufficientWork = errors.New("block hash does not satisfy the proof of work target")
)

// ValidationError is returned by Verify and identifies the block that broke
// the chain and the check it failed.
type ValidationError struct {
	Index int
	Err   error
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("block[%d]: %s", ve.Index, ve.Err)
}

// Unwrap provides support for errors.Is against the sentinel errors.
func (ve *ValidationError) Unwrap() error {
	return ve.Err
}

// IsValidationError checks if an error of type ValidationError exists.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
