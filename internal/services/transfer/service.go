// Package transfer moves tokens between custody accounts on behalf of the
// records that own them.
package transfer

import (
	"context"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	"github.com/metaloot/registry/internal/address"
	"github.com/metaloot/registry/internal/model"
	"github.com/metaloot/registry/internal/services/custody"
	"github.com/metaloot/registry/internal/services/records"
	"github.com/metaloot/registry/internal/services/tokenledger"
	"github.com/metaloot/registry/internal/storage"
)

// TokenLedger is the part of the token ledger the transfer engine needs
type TokenLedger interface {
	custody.BalanceReader
	DebitCredit(tx storage.Tx, from, to solana.PublicKey, amount uint64, authority tokenledger.Authority) error
}

// Request moves Amount of Mint from the sender's custody to the recipient's.
// Signer must be the sender record's authority.
type Request struct {
	Signer        solana.PublicKey
	Mint          solana.PublicKey
	SenderSeed    solana.PublicKey
	RecipientSeed solana.PublicKey
	Amount        uint64
}

// Result describes an applied transfer
type Result struct {
	From   solana.PublicKey
	To     solana.PublicKey
	Amount uint64
}

// Service is the transfer engine
type Service struct {
	store   storage.Store
	records *records.Repository
	ledger  TokenLedger
	logger  *slog.Logger
}

// New creates a new transfer Service
func New(store storage.Store, records *records.Repository, ledger TokenLedger, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		records: records,
		ledger:  ledger,
		logger:  logger,
	}
}

// Transfer moves tokens between two players' custody accounts. The program
// signs the debit as the sender's player record.
func (s *Service) Transfer(ctx context.Context, req Request) (*Result, error) {
	var result *Result
	err := s.store.Update(ctx, func(tx storage.Tx) error {
		sender, senderAddr, err := s.records.Player(tx, req.SenderSeed)
		if err != nil {
			return err
		}
		_, recipientAddr, err := s.records.Player(tx, req.RecipientSeed)
		if err != nil {
			return err
		}
		if err := (model.MutationRequest{Signer: req.Signer}).Authorize(sender.Authority); err != nil {
			return err
		}

		seeds := s.records.Deriver().SignerSeeds(address.TagPlayer, req.SenderSeed, sender.Bump)
		result, err = s.move(tx, req, senderAddr.Address, recipientAddr.Address, seeds)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tokens transferred",
		slog.String("mint", req.Mint.String()),
		slog.String("sender_seed", req.SenderSeed.String()),
		slog.String("recipient_seed", req.RecipientSeed.String()),
		slog.Uint64("amount", req.Amount),
	)
	return result, nil
}

// Reward pays a player from a studio's custody account. Signer must be the
// studio authority; the program signs the debit as the studio record.
func (s *Service) Reward(ctx context.Context, req Request) (*Result, error) {
	var result *Result
	err := s.store.Update(ctx, func(tx storage.Tx) error {
		studio, studioAddr, err := s.records.Studio(tx, req.SenderSeed)
		if err != nil {
			return err
		}
		_, recipientAddr, err := s.records.Player(tx, req.RecipientSeed)
		if err != nil {
			return err
		}
		if err := (model.MutationRequest{Signer: req.Signer}).Authorize(studio.Authority); err != nil {
			return err
		}

		seeds := s.records.Deriver().SignerSeeds(address.TagRegistry, req.SenderSeed, studio.Bump)
		result, err = s.move(tx, req, studioAddr.Address, recipientAddr.Address, seeds)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reward paid",
		slog.String("mint", req.Mint.String()),
		slog.String("studio_seed", req.SenderSeed.String()),
		slog.String("recipient_seed", req.RecipientSeed.String()),
		slog.Uint64("amount", req.Amount),
	)
	return result, nil
}

// move re-derives both custody accounts and asks the ledger for one
// debit/credit signed with seeds
func (s *Service) move(tx storage.Tx, req Request, senderRecord, recipientRecord solana.PublicKey, seeds address.SignerSeeds) (*Result, error) {
	deriver := s.records.Deriver()
	from, _, err := custody.Lookup(tx, deriver, s.ledger, senderRecord, req.Mint)
	if err != nil {
		return nil, err
	}
	to, _, err := custody.Lookup(tx, deriver, s.ledger, recipientRecord, req.Mint)
	if err != nil {
		return nil, err
	}
	if req.Amount == 0 {
		return nil, model.ErrInvalidAmount
	}

	if err := s.ledger.DebitCredit(tx, from, to, req.Amount, tokenledger.ProgramSigned(seeds)); err != nil {
		return nil, err
	}
	return &Result{From: from, To: to, Amount: req.Amount}, nil
}
