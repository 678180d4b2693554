package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/metaloot/registry/internal/model"
	"github.com/metaloot/registry/internal/storage"
)

// Storage is an in-memory implementation of the account arena.
// Units of work are serialized by a single lock.
type Storage struct {
	mu sync.RWMutex

	accounts  map[solana.PublicKey]*model.Account
	processed map[string]struct{}
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts:  make(map[solana.PublicKey]*model.Account),
		processed: make(map[string]struct{}),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func (s *Storage) Update(ctx context.Context, fn func(tx storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &tx{storage: s, writes: make(map[solana.PublicKey]*model.Account)}
	if err := fn(tx); err != nil {
		return err
	}
	for addr, acct := range tx.writes {
		s.accounts[addr] = acct
	}
	return nil
}

func (s *Storage) View(ctx context.Context, fn func(tx storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&tx{storage: s, readOnly: true})
}

func (s *Storage) MarkProcessed(ctx context.Context, txID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.processed[txID]; ok {
		return fmt.Errorf("%w: %s", model.ErrDuplicateTransaction, txID)
	}
	s.processed[txID] = struct{}{}
	return nil
}

// Close is a no-op for the in-memory store
func (s *Storage) Close() error {
	return nil
}

// tx buffers writes until the unit of work commits
type tx struct {
	storage  *Storage
	writes   map[solana.PublicKey]*model.Account
	readOnly bool
}

func (t *tx) lookup(addr solana.PublicKey) (*model.Account, bool) {
	if acct, ok := t.writes[addr]; ok {
		return acct, true
	}
	acct, ok := t.storage.accounts[addr]
	return acct, ok
}

func (t *tx) Get(addr solana.PublicKey) (*model.Account, error) {
	acct, ok := t.lookup(addr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrAccountNotFound, addr)
	}
	return acct.Clone(), nil
}

func (t *tx) Exists(addr solana.PublicKey) (bool, error) {
	_, ok := t.lookup(addr)
	return ok, nil
}

func (t *tx) Create(acct *model.Account) error {
	if t.readOnly {
		return storage.ErrReadOnly
	}
	if _, ok := t.lookup(acct.Address); ok {
		return fmt.Errorf("%w: %s", model.ErrAlreadyExists, acct.Address)
	}
	t.writes[acct.Address] = acct.Clone()
	return nil
}

func (t *tx) Put(acct *model.Account) error {
	if t.readOnly {
		return storage.ErrReadOnly
	}
	if _, ok := t.lookup(acct.Address); !ok {
		return fmt.Errorf("%w: %s", model.ErrAccountNotFound, acct.Address)
	}
	t.writes[acct.Address] = acct.Clone()
	return nil
}
