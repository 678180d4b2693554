// Package system allocates accounts and moves lamports between wallets.
package system

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/gagliardetto/solana-go"

	"github.com/metaloot/registry/internal/model"
	"github.com/metaloot/registry/internal/storage"
)

// Rent parameters
const (
	LamportsPerSOL         = 1_000_000_000
	LamportsPerByteYear    = 3480
	ExemptionThreshold     = 2
	AccountStorageOverhead = 128
)

// MinimumBalance is the rent-exempt balance for an account holding space bytes
func MinimumBalance(space int) uint64 {
	return uint64(AccountStorageOverhead+space) * LamportsPerByteYear * ExemptionThreshold
}

// Allocator creates sized, rent-funded accounts at a given address
type Allocator interface {
	Allocate(tx storage.Tx, payer, addr solana.PublicKey, space int, owner solana.PublicKey) (*model.Account, error)
}

// Service is the system program: account allocation and lamport transfers
type Service struct {
	store  storage.Store
	logger *slog.Logger
}

// New creates a new system Service
func New(store storage.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// Ensure Service implements Allocator
var _ Allocator = (*Service)(nil)

// Allocate creates a zeroed account of space bytes at addr owned by owner.
// An address that only holds lamports is taken over: its lamports count
// toward the rent-exempt balance and payer is debited the shortfall. Any
// other occupied addr fails with model.ErrAlreadyExists before anything is
// charged.
func (s *Service) Allocate(tx storage.Tx, payer, addr solana.PublicKey, space int, owner solana.PublicKey) (*model.Account, error) {
	held, taken, err := s.claimable(tx, payer, addr)
	if err != nil {
		return nil, err
	}

	rent := MinimumBalance(space)
	if held < rent {
		if err := s.debit(tx, payer, rent-held); err != nil {
			return nil, err
		}
	}

	acct := &model.Account{
		Address:  addr,
		Owner:    owner,
		Lamports: max(held, rent),
		Data:     make([]byte, space),
	}
	if taken {
		err = tx.Put(acct)
	} else {
		err = tx.Create(acct)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug("account allocated",
		slog.String("address", addr.String()),
		slog.String("owner", owner.String()),
		slog.String("payer", payer.String()),
		slog.Int("space", space),
		slog.Uint64("rent", rent),
	)
	return acct, nil
}

// claimable reports the lamports already at addr and whether an account is
// there to take over
func (s *Service) claimable(tx storage.Tx, payer, addr solana.PublicKey) (uint64, bool, error) {
	exists, err := tx.Exists(addr)
	if err != nil || !exists {
		return 0, false, err
	}
	acct, err := tx.Get(addr)
	if err != nil {
		return 0, false, err
	}
	if !acct.IsWallet() || addr.Equals(payer) {
		return 0, false, fmt.Errorf("%w: %s", model.ErrAlreadyExists, addr)
	}
	return acct.Lamports, true, nil
}

// Airdrop credits lamports to a wallet, creating it when missing
func (s *Service) Airdrop(ctx context.Context, to solana.PublicKey, lamports uint64) error {
	if lamports == 0 {
		return model.ErrInvalidAmount
	}
	err := s.store.Update(ctx, func(tx storage.Tx) error {
		return s.credit(tx, to, lamports)
	})
	if err != nil {
		return err
	}

	s.logger.Info("airdrop",
		slog.String("to", to.String()),
		slog.Uint64("lamports", lamports),
	)
	return nil
}

// Transfer moves lamports between wallets
func (s *Service) Transfer(ctx context.Context, from, to solana.PublicKey, lamports uint64) error {
	if lamports == 0 {
		return model.ErrInvalidAmount
	}
	return s.store.Update(ctx, func(tx storage.Tx) error {
		if err := s.debit(tx, from, lamports); err != nil {
			return err
		}
		return s.credit(tx, to, lamports)
	})
}

// Balance returns the lamports held at key; a missing account holds none
func (s *Service) Balance(ctx context.Context, key solana.PublicKey) (uint64, error) {
	var lamports uint64
	err := s.store.View(ctx, func(tx storage.Tx) error {
		exists, err := tx.Exists(key)
		if err != nil || !exists {
			return err
		}
		acct, err := tx.Get(key)
		if err != nil {
			return err
		}
		lamports = acct.Lamports
		return nil
	})
	return lamports, err
}

// Account reads the raw account at addr
func (s *Service) Account(ctx context.Context, addr solana.PublicKey) (*model.Account, error) {
	var acct *model.Account
	err := s.store.View(ctx, func(tx storage.Tx) error {
		a, err := tx.Get(addr)
		acct = a
		return err
	})
	if err != nil {
		return nil, err
	}
	return acct, nil
}

func (s *Service) debit(tx storage.Tx, from solana.PublicKey, lamports uint64) error {
	exists, err := tx.Exists(from)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s holds no lamports", model.ErrInsufficientFunds, from)
	}
	acct, err := tx.Get(from)
	if err != nil {
		return err
	}
	if !acct.IsWallet() {
		return fmt.Errorf("%w: %s is not a wallet", model.ErrInvalidOwner, from)
	}
	if acct.Lamports < lamports {
		return fmt.Errorf("%w: %s holds %d lamports, needs %d", model.ErrInsufficientFunds, from, acct.Lamports, lamports)
	}
	acct.Lamports -= lamports
	return tx.Put(acct)
}

func (s *Service) credit(tx storage.Tx, to solana.PublicKey, lamports uint64) error {
	exists, err := tx.Exists(to)
	if err != nil {
		return err
	}
	if !exists {
		return tx.Create(&model.Account{Address: to, Owner: solana.SystemProgramID, Lamports: lamports})
	}
	acct, err := tx.Get(to)
	if err != nil {
		return err
	}
	if acct.Lamports > math.MaxUint64-lamports {
		return fmt.Errorf("%w: crediting %s", model.ErrArithmeticOverflow, to)
	}
	acct.Lamports += lamports
	return tx.Put(acct)
}
