package tokenledger

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/metaloot/registry/internal/address"
	"github.com/metaloot/registry/internal/model"
)

// Authority proves the right to move tokens out of an account. Exactly one
// form is set: a key whose transaction signature was already verified, or the
// seeds of a derived address the program signs for.
type Authority struct {
	Signer solana.PublicKey
	Seeds  *address.SignerSeeds
}

// SignedBy is an Authority backed by a verified signature
func SignedBy(key solana.PublicKey) Authority {
	return Authority{Signer: key}
}

// ProgramSigned is an Authority backed by derived address seeds
func ProgramSigned(seeds address.SignerSeeds) Authority {
	return Authority{Seeds: &seeds}
}

// authorize checks the authority controls owner
func (a Authority) authorize(owner solana.PublicKey) error {
	if a.Seeds != nil {
		if err := a.Seeds.Verify(owner); err != nil {
			return fmt.Errorf("%w: %v", model.ErrAuthorityMismatch, err)
		}
		return nil
	}
	return model.MutationRequest{Signer: a.Signer}.Authorize(owner)
}
