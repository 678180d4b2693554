// Package studio manages game studio registry records.
package studio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	"github.com/metaloot/registry/internal/model"
	"github.com/metaloot/registry/internal/services/records"
	"github.com/metaloot/registry/internal/storage"
)

// CreateRequest registers a studio under Seed, paid for by Payer
type CreateRequest struct {
	Payer solana.PublicKey
	Seed  solana.PublicKey
	// Authority is optional; when set it must equal Payer
	Authority solana.PublicKey
	Metadata  model.StudioMetadata
}

// UpdateRequest replaces the metadata of the studio under Seed
type UpdateRequest struct {
	Signer   solana.PublicKey
	Seed     solana.PublicKey
	Metadata model.StudioMetadata
}

// Service creates, updates and reads studio records
type Service struct {
	store   storage.Store
	records *records.Repository
	logger  *slog.Logger
}

// New creates a new studio Service
func New(store storage.Store, records *records.Repository, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		records: records,
		logger:  logger,
	}
}

// Create registers a new studio record. The payer becomes its authority.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*model.StudioRecord, solana.PublicKey, error) {
	if err := req.Metadata.Validate(); err != nil {
		return nil, solana.PublicKey{}, err
	}
	if !req.Authority.IsZero() && !req.Authority.Equals(req.Payer) {
		return nil, solana.PublicKey{}, fmt.Errorf("%w: authority %s must be the payer %s", model.ErrAuthorityMismatch, req.Authority, req.Payer)
	}

	derived, err := s.records.Deriver().StudioAddress(req.Seed)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}

	record := &model.StudioRecord{
		Authority: req.Payer,
		Bump:      derived.Nonce,
	}
	record.Apply(req.Metadata)

	err = s.store.Update(ctx, func(tx storage.Tx) error {
		return s.records.Create(tx, req.Payer, derived.Address, model.StudioRecordSpace, record)
	})
	if err != nil {
		return nil, solana.PublicKey{}, err
	}

	s.logger.Info("studio created",
		slog.String("studio", derived.Address.String()),
		slog.String("seed", req.Seed.String()),
		slog.String("authority", req.Payer.String()),
		slog.String("name", record.Name),
	)
	return record, derived.Address, nil
}

// Update overwrites every metadata field of the studio in one unit of work.
// The authority never changes.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*model.StudioRecord, error) {
	if err := req.Metadata.Validate(); err != nil {
		return nil, err
	}

	var record *model.StudioRecord
	err := s.store.Update(ctx, func(tx storage.Tx) error {
		current, derived, err := s.records.Studio(tx, req.Seed)
		if err != nil {
			return err
		}
		if err := (model.MutationRequest{Signer: req.Signer}).Authorize(current.Authority); err != nil {
			return err
		}
		current.Apply(req.Metadata)
		record = current
		return s.records.Save(tx, derived.Address, model.StudioRecordSpace, current)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("studio updated",
		slog.String("seed", req.Seed.String()),
		slog.String("signer", req.Signer.String()),
	)
	return record, nil
}

// Get reads the studio record under seed
func (s *Service) Get(ctx context.Context, seed solana.PublicKey) (*model.StudioRecord, solana.PublicKey, error) {
	var (
		record *model.StudioRecord
		addr   solana.PublicKey
	)
	err := s.store.View(ctx, func(tx storage.Tx) error {
		r, derived, err := s.records.Studio(tx, seed)
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
