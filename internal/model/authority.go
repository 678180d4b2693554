package model

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// MutationRequest carries the key that signed a mutating instruction
type MutationRequest struct {
	Signer solana.PublicKey
}

// Authorize checks the signer against a record's stored authority.
// It must run before any field of the record is written.
func (r MutationRequest) Authorize(authority solana.PublicKey) error {
	if r.Signer.IsZero() || !r.Signer.Equals(authority) {
		return fmt.Errorf("%w: signer %s, authority %s", ErrAuthorityMismatch, r.Signer, authority)
	}
	return nil
}
