// Package tokenledger is the fungible-token ledger: mints, token accounts and
// balance-conserving transfers between them.
package tokenledger

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/gagliardetto/solana-go"

	"github.com/metaloot/registry/internal/codec"
	"github.com/metaloot/registry/internal/model"
	"github.com/metaloot/registry/internal/services/system"
	"github.com/metaloot/registry/internal/storage"
)

// ProgramID owns every mint and token account
var ProgramID = solana.TokenProgramID

// Service manages mints and token accounts
type Service struct {
	store     storage.Store
	allocator system.Allocator
	logger    *slog.Logger
}

// New creates a new token ledger Service
func New(store storage.Store, allocator system.Allocator, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		allocator: allocator,
		logger:    logger,
	}
}

// CreateMint creates a mint at the mint address with zero supply
func (s *Service) CreateMint(ctx context.Context, payer, mint solana.PublicKey, decimals uint8, mintAuthority solana.PublicKey) error {
	err := s.store.Update(ctx, func(tx storage.Tx) error {
		acct, err := s.allocator.Allocate(tx, payer, mint, model.MintSpace, ProgramID)
		if err != nil {
			return err
		}
		return s.write(tx, acct, &model.Mint{MintAuthority: mintAuthority, Decimals: decimals}, model.MintSpace)
	})
	if err != nil {
		return err
	}

	s.logger.Info("mint created",
		slog.String("mint", mint.String()),
		slog.String("mint_authority", mintAuthority.String()),
		slog.Int("decimals", int(decimals)),
	)
	return nil
}

// CreateTokenAccount creates an empty token account at addr in its own unit of work
func (s *Service) CreateTokenAccount(ctx context.Context, payer, addr, mint, owner solana.PublicKey) error {
	return s.store.Update(ctx, func(tx storage.Tx) error {
		return s.CreateAccount(tx, payer, addr, mint, owner)
	})
}

// CreateAccount creates an empty token account for mint at addr, controlled
// by owner. The mint must exist and addr must be free.
func (s *Service) CreateAccount(tx storage.Tx, payer, addr, mint, owner solana.PublicKey) error {
	if _, err := s.loadMint(tx, mint); err != nil {
		return err
	}

	acct, err := s.allocator.Allocate(tx, payer, addr, model.TokenAccountSpace, ProgramID)
	if err != nil {
		return err
	}
	if err := s.write(tx, acct, &model.TokenAccount{Mint: mint, Owner: owner}, model.TokenAccountSpace); err != nil {
		return err
	}

	s.logger.Info("token account created",
		slog.String("address", addr.String()),
		slog.String("mint", mint.String()),
		slog.String("owner", owner.String()),
	)
	return nil
}

// MintTo issues new tokens into a token account; authority must be the mint authority
func (s *Service) MintTo(ctx context.Context, authority solana.PublicKey, mint, dest solana.PublicKey, amount uint64) error {
	if amount == 0 {
		return model.ErrInvalidAmount
	}
	err := s.store.Update(ctx, func(tx storage.Tx) error {
		mintAcct, m, err := s.loadMintAccount(tx, mint)
		if err != nil {
			return err
		}
		if err := (model.MutationRequest{Signer: authority}).Authorize(m.MintAuthority); err != nil {
			return err
		}

		destAcct, ta, err := s.loadTokenAccount(tx, dest)
		if err != nil {
			return err
		}
		if !ta.Mint.Equals(mint) {
			return fmt.Errorf("%w: %s holds %s", model.ErrMintMismatch, dest, ta.Mint)
		}
		if m.Supply > math.MaxUint64-amount || ta.Amount > math.MaxUint64-amount {
			return fmt.Errorf("%w: minting %d of %s", model.ErrArithmeticOverflow, amount, mint)
		}

		m.Supply += amount
		ta.Amount += amount
		if err := s.write(tx, mintAcct, m, model.MintSpace); err != nil {
			return err
		}
		return s.write(tx, destAcct, ta, model.TokenAccountSpace)
	})
	if err != nil {
		return err
	}

	s.logger.Info("tokens minted",
		slog.String("mint", mint.String()),
		slog.String("destination", dest.String()),
		slog.Uint64("amount", amount),
	)
	return nil
}

// Transfer is the ledger's own transfer primitive, run as one unit of work
func (s *Service) Transfer(ctx context.Context, authority Authority, from, to solana.PublicKey, amount uint64) error {
	return s.store.Update(ctx, func(tx storage.Tx) error {
		return s.DebitCredit(tx, from, to, amount, authority)
	})
}

// DebitCredit moves amount from one token account to another of the same
// mint. Both sides are written in tx, so neither is visible without the other.
func (s *Service) DebitCredit(tx storage.Tx, from, to solana.PublicKey, amount uint64, authority Authority) error {
	if amount == 0 {
		return model.ErrInvalidAmount
	}

	fromAcct, src, err := s.loadTokenAccount(tx, from)
	if err != nil {
		return err
	}
	toAcct, dst, err := s.loadTokenAccount(tx, to)
	if err != nil {
		return err
	}
	if !src.Mint.Equals(dst.Mint) {
		return fmt.Errorf("%w: %s holds %s, %s holds %s", model.ErrMintMismatch, from, src.Mint, to, dst.Mint)
	}
	if err := authority.authorize(src.Owner); err != nil {
		return err
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", model.ErrInsufficientFunds, from, src.Amount, amount)
	}
	if from.Equals(to) {
		return nil
	}
	if dst.Amount > math.MaxUint64-amount {
		return fmt.Errorf("%w: crediting %s", model.ErrArithmeticOverflow, to)
	}

	src.Amount -= amount
	dst.Amount += amount
	if err := s.write(tx, fromAcct, src, model.TokenAccountSpace); err != nil {
		return err
	}
	if err := s.write(tx, toAcct, dst, model.TokenAccountSpace); err != nil {
		return err
	}

	s.logger.Debug("tokens transferred",
		slog.String("from", from.String()),
		slog.String("to", to.String()),
		slog.String("mint", src.Mint.String()),
		slog.Uint64("amount", amount),
	)
	return nil
}

// Balance returns the token amount held at addr
func (s *Service) Balance(tx storage.Tx, addr solana.PublicKey) (uint64, error) {
	_, ta, err := s.loadTokenAccount(tx, addr)
	if err != nil {
		return 0, err
	}
	return ta.Amount, nil
}

// GetTokenAccount reads a token account
func (s *Service) GetTokenAccount(ctx context.Context, addr solana.PublicKey) (*model.TokenAccount, error) {
	var ta *model.TokenAccount
	err := s.store.View(ctx, func(tx storage.Tx) error {
		var err error
		_, ta, err = s.loadTokenAccount(tx, addr)
		return err
	})
	return ta, err
}

// GetMint reads a mint
func (s *Service) GetMint(ctx context.Context, mint solana.PublicKey) (*model.Mint, error) {
	var m *model.Mint
	err := s.store.View(ctx, func(tx storage.Tx) error {
		var err error
		m, err = s.loadMint(tx, mint)
		return err
	})
	return m, err
}

func (s *Service) loadMint(tx storage.Tx, mint solana.PublicKey) (*model.Mint, error) {
	_, m, err := s.loadMintAccount(tx, mint)
	return m, err
}

func (s *Service) loadMintAccount(tx storage.Tx, mint solana.PublicKey) (*model.Account, *model.Mint, error) {
	exists, err := tx.Exists(mint)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, fmt.Errorf("%w: %s", model.ErrMintNotFound, mint)
	}
	acct, err := tx.Get(mint)
	if err != nil {
		return nil, nil, err
	}
	var m model.Mint
	if !acct.Owner.Equals(ProgramID) || !codec.Is(acct.Data, m) {
		return nil, nil, fmt.Errorf("%w: %s is not a mint", model.ErrMintNotFound, mint)
	}
	if err := codec.Decode(acct.Data, &m); err != nil {
		return nil, nil, err
	}
	return acct, &m, nil
}

func (s *Service) loadTokenAccount(tx storage.Tx, addr solana.PublicKey) (*model.Account, *model.TokenAccount, error) {
	acct, err := tx.Get(addr)
	if err != nil {
		return nil, nil, err
	}
	if !acct.Owner.Equals(ProgramID) {
		return nil, nil, fmt.Errorf("%w: %s is owned by %s", model.ErrInvalidOwner, addr, acct.Owner)
	}
	var ta model.TokenAccount
	if err := codec.Decode(acct.Data, &ta); err != nil {
		return nil, nil, err
	}
	return acct, &ta, nil
}

func (s *Service) write(tx storage.Tx, acct *model.Account, v codec.Record, space int) error {
	data, err := codec.Encode(v, space)
	if err != nil {
		return err
	}
	acct.Data = data
	return tx.Put(acct)
}
