package storage

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/metaloot/registry/internal/model"
)

// Store is the ledger's account arena. All state changes happen inside a
// unit of work passed to Update: either every write in it is applied or none.
type Store interface {
	// Update runs fn as one atomic unit of work. Writes made through tx are
	// applied only when fn returns nil.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// View runs fn against a consistent read-only view
	View(ctx context.Context, fn func(tx Tx) error) error

	// MarkProcessed records a transaction id, failing with
	// model.ErrDuplicateTransaction if it was recorded before
	MarkProcessed(ctx context.Context, txID string) error

	Close() error
}

// Tx is the handle a unit of work reads and writes accounts through
type Tx interface {
	// Get returns a copy of the account at addr or model.ErrAccountNotFound
	Get(addr solana.PublicKey) (*model.Account, error)

	// Exists reports whether addr is occupied
	Exists(addr solana.PublicKey) (bool, error)

	// Create stores a new account, failing with model.ErrAlreadyExists when
	// its address is occupied
	Create(acct *model.Account) error

	// Put overwrites an existing account, failing with
	// model.ErrAccountNotFound when its address is free
	Put(acct *model.Account) error
}
