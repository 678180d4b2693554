// Package custody creates the token accounts registry records hold tokens in.
//
// A custody account lives at the associated token address of (record, mint)
// and is controlled by the record's derived address, so only the program,
// signing as that record, can move funds out of it.
package custody

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	"github.com/metaloot/registry/internal/address"
	"github.com/metaloot/registry/internal/model"
	"github.com/metaloot/registry/internal/services/records"
	"github.com/metaloot/registry/internal/storage"
)

// BalanceReader reads token account balances
type BalanceReader interface {
	Balance(tx storage.Tx, addr solana.PublicKey) (uint64, error)
}

// TokenLedger is the part of the token ledger custody needs
type TokenLedger interface {
	BalanceReader
	CreateAccount(tx storage.Tx, payer, addr, mint, owner solana.PublicKey) error
}

// InitializeRequest opens a custody account for the record under Seed
type InitializeRequest struct {
	Payer solana.PublicKey
	Mint  solana.PublicKey
	Seed  solana.PublicKey
}

// Service initializes custody accounts and reads their balances
type Service struct {
	store   storage.Store
	records *records.Repository
	ledger  TokenLedger
	logger  *slog.Logger
}

// New creates a new custody Service
func New(store storage.Store, records *records.Repository, ledger TokenLedger, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		records: records,
		ledger:  ledger,
		logger:  logger,
	}
}

// Initialize creates the custody account of a player record for a mint.
// The player record must exist.
func (s *Service) Initialize(ctx context.Context, req InitializeRequest) (solana.PublicKey, error) {
	return s.initialize(ctx, req, address.TagPlayer)
}

// InitializeStudio creates the custody account of a studio record for a
// mint, the pool rewards are paid from
func (s *Service) InitializeStudio(ctx context.Context, req InitializeRequest) (solana.PublicKey, error) {
	return s.initialize(ctx, req, address.TagRegistry)
}

func (s *Service) initialize(ctx context.Context, req InitializeRequest, tag address.Tag) (solana.PublicKey, error) {
	var custody solana.PublicKey
	err := s.store.Update(ctx, func(tx storage.Tx) error {
		owner, err := s.owner(tx, tag, req.Seed)
		if err != nil {
			return err
		}
		custody, err = s.records.Deriver().CustodyAddress(owner, req.Mint)
		if err != nil {
			return err
		}
		return s.ledger.CreateAccount(tx, req.Payer, custody, req.Mint, owner)
	})
	if err != nil {
		return solana.PublicKey{}, err
	}

	s.logger.Info("custody initialized",
		slog.String("custody", custody.String()),
		slog.String("namespace", string(tag)),
		slog.String("seed", req.Seed.String()),
		slog.String("mint", req.Mint.String()),
	)
	return custody, nil
}

// Balance returns the custody balance of the player under seed
func (s *Service) Balance(ctx context.Context, mint, seed solana.PublicKey) (uint64, solana.PublicKey, error) {
	return s.balance(ctx, address.TagPlayer, mint, seed)
}

// StudioBalance returns the custody balance of the studio under seed
func (s *Service) StudioBalance(ctx context.Context, mint, seed solana.PublicKey) (uint64, solana.PublicKey, error) {
	return s.balance(ctx, address.TagRegistry, mint, seed)
}

func (s *Service) balance(ctx context.Context, tag address.Tag, mint, seed solana.PublicKey) (uint64, solana.PublicKey, error) {
	var (
		amount  uint64
		custody solana.PublicKey
	)
	err := s.store.View(ctx, func(tx storage.Tx) error {
		owner, err := s.owner(tx, tag, seed)
		if err != nil {
			return err
		}
		custody, amount, err = Lookup(tx, s.records.Deriver(), s.ledger, owner, mint)
		return err
	})
	if err != nil {
		return 0, solana.PublicKey{}, err
	}
	return amount, custody, nil
}

// owner loads the record under seed and returns its derived address
func (s *Service) owner(tx storage.Tx, tag address.Tag, seed solana.PublicKey) (solana.PublicKey, error) {
	switch tag {
	case address.TagPlayer:
		_, derived, err := s.records.Player(tx, seed)
		return derived.Address, err
	case address.TagRegistry:
		_, derived, err := s.records.Studio(tx, seed)
		return derived.Address, err
	default:
		return solana.PublicKey{}, fmt.Errorf("%w: no custody for namespace %q", model.ErrInvalidField, tag)
	}
}

// Lookup re-derives the custody account of owner for mint and reads its
// balance, failing with model.ErrCustodyNotFound when it was never created.
// An address that only holds lamports has not been created.
func Lookup(tx storage.Tx, deriver *address.Deriver, ledger BalanceReader, owner, mint solana.PublicKey) (solana.PublicKey, uint64, error) {
	custody, err := deriver.CustodyAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	exists, err := tx.Exists(custody)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	if exists {
		acct, err := tx.Get(custody)
		if err != nil {
			return solana.PublicKey{}, 0, err
		}
		exists = !acct.IsWallet()
	}
	if !exists {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: %s for owner %s, mint %s", model.ErrCustodyNotFound, custody, owner, mint)
	}
	amount, err := ledger.Balance(tx, custody)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	return custody, amount, nil
}
