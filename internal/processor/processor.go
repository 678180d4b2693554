// Package processor verifies signed transactions and dispatches their
// instruction to the registry services.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/metaloot/registry/internal/dependencies/clock"
	"github.com/metaloot/registry/internal/dependencies/ids"
	"github.com/metaloot/registry/internal/instruction"
	"github.com/metaloot/registry/internal/metrics"
	"github.com/metaloot/registry/internal/model"
	"github.com/metaloot/registry/internal/services/custody"
	"github.com/metaloot/registry/internal/services/player"
	"github.com/metaloot/registry/internal/services/studio"
	"github.com/metaloot/registry/internal/services/system"
	"github.com/metaloot/registry/internal/services/tokenledger"
	"github.com/metaloot/registry/internal/services/transfer"
	"github.com/metaloot/registry/internal/storage"
)

// Receipt describes a processed transaction
type Receipt struct {
	ID          string            `json:"id"`
	Instruction instruction.Type  `json:"instruction"`
	Addresses   map[string]string `json:"addresses,omitempty"`
	ProcessedAt time.Time         `json:"processedAt"`
}

// Services are the services instructions dispatch to
type Services struct {
	System   *system.Service
	Ledger   *tokenledger.Service
	Studio   *studio.Service
	Player   *player.Service
	Custody  *custody.Service
	Transfer *transfer.Service
}

// Config holds processor settings
type Config struct {
	FaucetEnabled bool
}

// Processor applies transactions
type Processor struct {
	services Services
	store    storage.Store
	clock    clock.Clock
	metrics  *metrics.Metrics
	logger   *slog.Logger
	cfg      Config
}

// New creates a new Processor
func New(services Services, store storage.Store, clock clock.Clock, metrics *metrics.Metrics, logger *slog.Logger, cfg Config) *Processor {
	return &Processor{
		services: services,
		store:    store,
		clock:    clock,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// Process verifies t and applies its instruction. The transaction id is
// consumed once the signatures check out, even if the instruction then fails.
func (p *Processor) Process(ctx context.Context, t *instruction.Transaction) (*Receipt, error) {
	start := p.clock.Now()

	typ, err := t.Instruction.Type()
	if err != nil {
		p.reject(t, "unknown", err)
		return nil, err
	}
	if !ids.Valid(t.ID) {
		err := fmt.Errorf("%w: transaction id %q is not a uuid", model.ErrInvalidField, t.ID)
		p.reject(t, typ, err)
		return nil, err
	}
	if err := t.Verify(); err != nil {
		p.reject(t, typ, err)
		return nil, err
	}
	if err := p.store.MarkProcessed(ctx, t.ID); err != nil {
		p.reject(t, typ, err)
		return nil, err
	}

	addrs, err := p.dispatch(ctx, t.Instruction)
	if err != nil {
		p.reject(t, typ, err)
		return nil, err
	}

	processedAt := p.clock.Now()
	p.metrics.IncrementTransaction(string(typ), "ok")
	p.metrics.ObserveLatency(string(typ), processedAt.Sub(start))
	if kind := createdKind(typ); kind != "" {
		p.metrics.IncrementAccountsCreated(kind)
	}

	p.logger.Info("transaction processed",
		slog.String("id", t.ID),
		slog.String("instruction", string(typ)),
	)
	return &Receipt{
		ID:          t.ID,
		Instruction: typ,
		Addresses:   addrs,
		ProcessedAt: processedAt,
	}, nil
}

func (p *Processor) reject(t *instruction.Transaction, typ instruction.Type, err error) {
	code := model.ErrorCode(err)
	p.metrics.IncrementTransaction(string(typ), code)
	p.logger.Warn("transaction rejected",
		slog.String("id", t.ID),
		slog.String("instruction", string(typ)),
		slog.String("code", code),
		slog.String("error", err.Error()),
	)
}

func (p *Processor) dispatch(ctx context.Context, ix instruction.Instruction) (map[string]string, error) {
	switch {
	case ix.CreateStudio != nil:
		v := ix.CreateStudio
		_, addr, err := p.services.Studio.Create(ctx, studio.CreateRequest{
			Payer:     v.Payer,
			Seed:      v.Seed,
			Authority: v.Authority,
			Metadata:  v.StudioMetadata.Model(),
		})
		return addresses("studio", addr), err

	case ix.UpdateStudio != nil:
		v := ix.UpdateStudio
		_, err := p.services.Studio.Update(ctx, studio.UpdateRequest{
			Signer:   v.Authority,
			Seed:     v.Seed,
			Metadata: v.StudioMetadata.Model(),
		})
		return nil, err

	case ix.CreatePlayer != nil:
		v := ix.CreatePlayer
		_, addr, err := p.services.Player.Create(ctx, player.CreateRequest{
			Payer:    v.Payer,
			Seed:     v.Seed,
			Username: v.Username,
			URI:      v.URI,
		})
		return addresses("player", addr), err

	case ix.UpdatePlayer != nil:
		v := ix.UpdatePlayer
		_, err := p.services.Player.Update(ctx, player.UpdateRequest{
			Signer:       v.Authority,
			Seed:         v.Seed,
			Username:     v.Username,
			URI:          v.URI,
			NewAuthority: v.NewAuthority,
		})
		return nil, err

	case ix.InitializeCustody != nil:
		v := ix.InitializeCustody
		addr, err := p.services.Custody.Initialize(ctx, custody.InitializeRequest{Payer: v.Payer, Mint: v.Mint, Seed: v.Seed})
		return addresses("custody", addr), err

	case ix.InitializeStudioCustody != nil:
		v := ix.InitializeStudioCustody
		addr, err := p.services.Custody.InitializeStudio(ctx, custody.InitializeRequest{Payer: v.Payer, Mint: v.Mint, Seed: v.Seed})
		return addresses("custody", addr), err

	case ix.Transfer != nil:
		res, err := p.services.Transfer.Transfer(ctx, transferRequest(ix.Transfer))
		return transferAddresses(res), err

	case ix.Reward != nil:
		res, err := p.services.Transfer.Reward(ctx, transferRequest(ix.Reward))
		return transferAddresses(res), err

	case ix.Airdrop != nil:
		if !p.cfg.FaucetEnabled {
			return nil, model.ErrFaucetDisabled
		}
		v := ix.Airdrop
		return addresses("wallet", v.To), p.services.System.Airdrop(ctx, v.To, v.Lamports)

	case ix.CreateMint != nil:
		v := ix.CreateMint
		err := p.services.Ledger.CreateMint(ctx, v.Payer, v.Mint, v.Decimals, v.MintAuthority)
		return addresses("mint", v.Mint), err

	case ix.CreateTokenAccount != nil:
		v := ix.CreateTokenAccount
		err := p.services.Ledger.CreateTokenAccount(ctx, v.Payer, v.Address, v.Mint, v.Owner)
		return addresses("token_account", v.Address), err

	case ix.MintTo != nil:
		v := ix.MintTo
		return nil, p.services.Ledger.MintTo(ctx, v.MintAuthority, v.Mint, v.Destination, v.Amount)

	case ix.TokenTransfer != nil:
		v := ix.TokenTransfer
		return nil, p.services.Ledger.Transfer(ctx, tokenledger.SignedBy(v.Owner), v.From, v.To, v.Amount)
	}
	return nil, model.ErrUnknownInstruction
}

func transferRequest(v *instruction.Transfer) transfer.Request {
	return transfer.Request{
		Signer:        v.Authority,
		Mint:          v.Mint,
		SenderSeed:    v.SenderSeed,
		RecipientSeed: v.RecipientSeed,
		Amount:        v.Amount,
	}
}

func addresses(name string, addr solana.PublicKey) map[string]string {
	if addr.IsZero() {
		return nil
	}
	return map[string]string{name: addr.String()}
}

func transferAddresses(res *transfer.Result) map[string]string {
	if res == nil {
		return nil
	}
	return map[string]string{
		"from": res.From.String(),
		"to":   res.To.String(),
	}
}

// createdKind is the account kind an instruction creates, if any
func createdKind(typ instruction.Type) string {
	switch typ {
	case instruction.TypeCreateStudio:
		return "studio"
	case instruction.TypeCreatePlayer:
		return "player"
	case instruction.TypeInitializeCustody, instruction.TypeInitializeStudioCustody:
		return "custody"
	case instruction.TypeCreateMint:
		return "mint"
	case instruction.TypeCreateTokenAccount:
		return "token_account"
	}
	return ""
}
