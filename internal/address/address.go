// Package address computes the deterministic account addresses of the registry.
//
// Every record lives at FindProgramAddress([tag, seed], programID). Callers keep
// only the seed key and re-derive the address whenever they need it.
package address

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/metaloot/registry/internal/model"
)

// Tag is the namespace a derived address belongs to
type Tag string

const (
	TagRegistry Tag = "registry"
	TagPlayer   Tag = "player"
	TagToken    Tag = "token"
)

// DefaultProgramID is the registry program id used when none is configured
var DefaultProgramID = solana.MustPublicKeyFromBase58("v3MbKaZSQJrwZWUz81cQ3kc8XvMsiNNxZjM3vN5BB32")

// Derived is a derived address together with its canonical nonce
type Derived struct {
	Address solana.PublicKey
	Nonce   uint8
}

// Deriver derives addresses for a single program id. It holds no state
// besides the program id and is safe for concurrent use.
type Deriver struct {
	programID solana.PublicKey
}

// New creates a Deriver for the given program
func New(programID solana.PublicKey) *Deriver {
	return &Deriver{programID: programID}
}

// ProgramID returns the program the addresses are derived under
func (d *Deriver) ProgramID() solana.PublicKey {
	return d.programID
}

// Derive maps (tag, seed) to its record address and nonce
func (d *Deriver) Derive(tag Tag, seed solana.PublicKey) (Derived, error) {
	addr, nonce, err := solana.FindProgramAddress([][]byte{[]byte(tag), seed.Bytes()}, d.programID)
	if err != nil {
		return Derived{}, fmt.Errorf("%w: tag %q seed %s: %v", model.ErrNoValidNonce, tag, seed, err)
	}
	return Derived{Address: addr, Nonce: nonce}, nil
}

// StudioAddress derives the studio record address for seed
func (d *Deriver) StudioAddress(seed solana.PublicKey) (Derived, error) {
	return d.Derive(TagRegistry, seed)
}

// PlayerAddress derives the player record address for seed
func (d *Deriver) PlayerAddress(seed solana.PublicKey) (Derived, error) {
	return d.Derive(TagPlayer, seed)
}

// TokenAddress derives an address in the token namespace for seed
func (d *Deriver) TokenAddress(seed solana.PublicKey) (Derived, error) {
	return d.Derive(TagToken, seed)
}

// CustodyAddress derives the custody token account of owner for mint.
// It is the associated token address, so the ledger can find it without the
// registry.
func (d *Deriver) CustodyAddress(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: custody of %s for mint %s: %v", model.ErrNoValidNonce, owner, mint, err)
	}
	return addr, nil
}

// SignerSeeds is the seed set the program presents when it signs as a
// derived record
type SignerSeeds struct {
	ProgramID solana.PublicKey
	Seeds     [][]byte
}

// SignerSeeds returns the seeds that let the program sign for the record
// derived from (tag, seed) with nonce
func (d *Deriver) SignerSeeds(tag Tag, seed solana.PublicKey, nonce uint8) SignerSeeds {
	return SignerSeeds{
		ProgramID: d.programID,
		Seeds:     [][]byte{[]byte(tag), seed.Bytes(), {nonce}},
	}
}

// Verify checks that the seeds re-create addr under the seeds' program
func (s SignerSeeds) Verify(addr solana.PublicKey) error {
	got, err := solana.CreateProgramAddress(s.Seeds, s.ProgramID)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidSeeds, err)
	}
	if !got.Equals(addr) {
		return fmt.Errorf("%w: seeds derive %s, want %s", model.ErrInvalidSeeds, got, addr)
	}
	return nil
}
