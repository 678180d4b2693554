// Package records reads and writes the registry's derived-address records.
package records

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/metaloot/registry/internal/address"
	"github.com/metaloot/registry/internal/codec"
	"github.com/metaloot/registry/internal/model"
	"github.com/metaloot/registry/internal/services/system"
	"github.com/metaloot/registry/internal/storage"
)

// Repository maps seed keys to records through the deriver. It never stores
// a derived address; every lookup re-derives it.
type Repository struct {
	deriver   *address.Deriver
	allocator system.Allocator
}

// New creates a Repository
func New(deriver *address.Deriver, allocator system.Allocator) *Repository {
	return &Repository{
		deriver:   deriver,
		allocator: allocator,
	}
}

// Deriver returns the deriver records are addressed with
func (r *Repository) Deriver() *address.Deriver {
	return r.deriver
}

// Studio loads the studio record derived from seed
func (r *Repository) Studio(tx storage.Tx, seed solana.PublicKey) (*model.StudioRecord, address.Derived, error) {
	derived, err := r.deriver.StudioAddress(seed)
	if err != nil {
		return nil, address.Derived{}, err
	}
	var record model.StudioRecord
	if err := r.load(tx, derived.Address, &record); err != nil {
		return nil, address.Derived{}, fmt.Errorf("studio %s: %w", seed, err)
	}
	return &record, derived, nil
}

// Player loads the player record derived from seed
func (r *Repository) Player(tx storage.Tx, seed solana.PublicKey) (*model.PlayerRecord, address.Derived, error) {
	derived, err := r.deriver.PlayerAddress(seed)
	if err != nil {
		return nil, address.Derived{}, err
	}
	var record model.PlayerRecord
	if err := r.load(tx, derived.Address, &record); err != nil {
		return nil, address.Derived{}, fmt.Errorf("player %s: %w", seed, err)
	}
	return &record, derived, nil
}

// Create allocates the record account at addr, paid by payer, and writes
// record into it. An addr holding anything but lamports fails with
// model.ErrAlreadyExists.
func (r *Repository) Create(tx storage.Tx, payer, addr solana.PublicKey, space int, record codec.Record) error {
	data, err := codec.Encode(record, space)
	if err != nil {
		return err
	}
	acct, err := r.allocator.Allocate(tx, payer, addr, space, r.deriver.ProgramID())
	if err != nil {
		return err
	}
	acct.Data = data
	return tx.Put(acct)
}

// Save overwrites the record stored at addr
func (r *Repository) Save(tx storage.Tx, addr solana.PublicKey, space int, record codec.Record) error {
	acct, err := tx.Get(addr)
	if err != nil {
		return err
	}
	data, err := codec.Encode(record, space)
	if err != nil {
		return err
	}
	acct.Data = data
	return tx.Put(acct)
}

func (r *Repository) load(tx storage.Tx, addr solana.PublicKey, record codec.Record) error {
	exists, err := tx.Exists(addr)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", model.ErrRecordNotFound, addr)
	}
	acct, err := tx.Get(addr)
	if err != nil {
		return err
	}
	if acct.IsWallet() {
		return fmt.Errorf("%w: %s holds only lamports", model.ErrRecordNotFound, addr)
	}
	if !acct.Owner.Equals(r.deriver.ProgramID()) {
		return fmt.Errorf("%w: %s is owned by %s", model.ErrInvalidOwner, addr, acct.Owner)
	}
	return codec.Decode(acct.Data, record)
}
