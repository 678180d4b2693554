// Package player manages player identity records.
package player

import (
	"context"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	"github.com/metaloot/registry/internal/dependencies/clock"
	"github.com/metaloot/registry/internal/model"
	"github.com/metaloot/registry/internal/services/records"
	"github.com/metaloot/registry/internal/storage"
)

// CreateRequest registers a player under Seed, paid for by Payer
type CreateRequest struct {
	Payer    solana.PublicKey
	Seed     solana.PublicKey
	Username string
	URI      string
}

// UpdateRequest changes the fields that are set. NewAuthority hands future
// update rights to another key.
type UpdateRequest struct {
	Signer       solana.PublicKey
	Seed         solana.PublicKey
	Username     *string
	URI          *string
	NewAuthority *solana.PublicKey
}

// Service creates, updates and reads player records
type Service struct {
	store   storage.Store
	records *records.Repository
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new player Service
func New(store storage.Store, records *records.Repository, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		records: records,
		clock:   clock,
		logger:  logger,
	}
}

// Create registers a new player record stamped with the ledger time.
// The payer becomes its authority.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*model.PlayerRecord, solana.PublicKey, error) {
	if err := model.ValidateUsername(req.Username); err != nil {
		return nil, solana.PublicKey{}, err
	}
	if err := model.ValidateURI(req.URI); err != nil {
		return nil, solana.PublicKey{}, err
	}

	derived, err := s.records.Deriver().PlayerAddress(req.Seed)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}

	record := &model.PlayerRecord{
		Authority: req.Payer,
		Username:  req.Username,
		CreatedAt: clock.UnixTimestamp(s.clock),
		URI:       req.URI,
		Bump:      derived.Nonce,
	}

	err = s.store.Update(ctx, func(tx storage.Tx) error {
		return s.records.Create(tx, req.Payer, derived.Address, model.PlayerRecordSpace, record)
	})
	if err != nil {
		return nil, solana.PublicKey{}, err
	}

	s.logger.Info("player created",
		slog.String("player", derived.Address.String()),
		slog.String("seed", req.Seed.String()),
		slog.String("authority", req.Payer.String()),
		slog.String("username", record.Username),
	)
	return record, derived.Address, nil
}

// Update applies the provided fields after checking the signer is the
// current authority
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*model.PlayerRecord, error) {
	if req.Username != nil {
		if err := model.ValidateUsername(*req.Username); err != nil {
			return nil, err
		}
	}
	if req.URI != nil {
		if err := model.ValidateURI(*req.URI); err != nil {
			return nil, err
		}
	}
	if req.NewAuthority != nil && req.NewAuthority.IsZero() {
		return nil, model.ErrInvalidField
	}

	var record *model.PlayerRecord
	err := s.store.Update(ctx, func(tx storage.Tx) error {
		current, derived, err := s.records.Player(tx, req.Seed)
		if err != nil {
			return err
		}
		if err := (model.MutationRequest{Signer: req.Signer}).Authorize(current.Authority); err != nil {
			return err
		}

		if req.Username != nil {
			current.Username = *req.Username
		}
		if req.URI != nil {
			current.URI = *req.URI
		}
		if req.NewAuthority != nil {
			current.Authority = *req.NewAuthority
		}
		record = current
		return s.records.Save(tx, derived.Address, model.PlayerRecordSpace, current)
	})
	if err != nil {
		return nil, err
	}

	attrs := []any{
		slog.String("seed", req.Seed.String()),
		slog.String("signer", req.Signer.String()),
	}
	if req.NewAuthority != nil {
		attrs = append(attrs, slog.String("new_authority", req.NewAuthority.String()))
	}
	s.logger.Info("player updated", attrs...)
	return record, nil
}

// Get reads the player record under seed
func (s *Service) Get(ctx context.Context, seed solana.PublicKey) (*model.PlayerRecord, solana.PublicKey, error) {
	var (
		record *model.PlayerRecord
		addr   solana.PublicKey
	)
	err := s.store.View(ctx, func(tx storage.Tx) error {
		r, derived, err := s.records.Player(tx, seed)
		if err != nil {
			return err
		}
		record, addr = r, derived.Address
		return nil
	})
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	return record, addr, nil
}
