// Package database handles the lower level support for the blockchain: the
// transaction and block types, block hashing, the proof of work puzzle and
// the verification of an entire chain.
package database

// Verify checks the specified blocks form a valid chain. It depends on
// nothing but its input so it is used for both the local chain and the
// candidate chains received from peers. Verification stops at the first
// failure and the returned error is a *ValidationError.
func Verify(blocks []Block) error {
	if len(blocks) == 0 {
		return &ValidationError{Index: 0, Err: ErrEmptyChain}
	}

	if !blocks[0].Equal(Genesis()) {
		return &ValidationError{Index: 0, Err: ErrInvalidGenesis}
	}

	prevHash := blocks[0].Hash()
	for i := 1; i < len(blocks); i++ {
		block := blocks[i]

		if block.Number != uint64(i) {
			return &ValidationError{Index: i, Err: ErrBadBlockNumber}
		}

		if block.PrevBlockHash != prevHash {
			return &ValidationError{Index: i, Err: ErrBrokenLink}
		}

		// The hash is needed for both the work check and the next link.
		hash := block.Hash()
		if !IsPoWValid(hash) {
			return &ValidationError{Index: i, Err: ErrInsufficientWork}
		}

		prevHash = hash
	}

	return nil
}
