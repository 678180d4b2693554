package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/metaloot/registry/internal/address"
	"github.com/metaloot/registry/internal/dependencies/mocks"
	"github.com/metaloot/registry/internal/instruction"
	"github.com/metaloot/registry/internal/metrics"
	"github.com/metaloot/registry/internal/model"
	"github.com/metaloot/registry/internal/services/custody"
	"github.com/metaloot/registry/internal/services/player"
	"github.com/metaloot/registry/internal/services/records"
	"github.com/metaloot/registry/internal/services/studio"
	"github.com/metaloot/registry/internal/services/system"
	"github.com/metaloot/registry/internal/services/tokenledger"
	"github.com/metaloot/registry/internal/services/transfer"
	"github.com/metaloot/registry/internal/storage/memory"
	"github.com/metaloot/registry/internal/testutil"
)

type ProcessorSuite struct {
	suite.Suite
	processor *Processor
	services  Services
	metrics   *metrics.Metrics
	ids       *mocks.MockIDs
	clock     *mocks.MockClock
	ctx       context.Context
	payer     solana.PrivateKey
	logs      *bytes.Buffer
}

func TestProcessorSuite(t *testing.T) {
	suite.Run(t, new(ProcessorSuite))
}

func (s *ProcessorSuite) SetupTest() {
	s.build(Config{FaucetEnabled: true})
}

func (s *ProcessorSuite) build(cfg Config) {
	store := memory.New()
	logger, logs := testutil.CaptureLogger()
	s.logs = logs
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.ids = mocks.NewMockIDs()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.ctx = context.Background()

	sys := system.New(store, logger)
	ledger := tokenledger.New(store, sys, logger)
	repo := records.New(address.New(address.DefaultProgramID), sys)
	s.services = Services{
		System:   sys,
		Ledger:   ledger,
		Studio:   studio.New(store, repo, logger),
		Player:   player.New(store, repo, s.clock, logger),
		Custody:  custody.New(store, repo, ledger, logger),
		Transfer: transfer.New(store, repo, ledger, logger),
	}
	s.processor = New(s.services, store, s.clock, s.metrics, logger, cfg)

	s.payer = testutil.NewKey(s.T())
	s.Require().NoError(sys.Airdrop(s.ctx, s.payer.PublicKey(), system.LamportsPerSOL))
}

func (s *ProcessorSuite) tx(ix instruction.Instruction, keys ...solana.PrivateKey) *instruction.Transaction {
	t := instruction.NewTransaction(s.ids.NewID(), ix)
	s.Require().NoError(t.Sign(keys...))
	return t
}

func (s *ProcessorSuite) createStudio(seed solana.PublicKey) instruction.Instruction {
	return instruction.Instruction{CreateStudio: &instruction.CreateStudio{
		Payer: s.payer.PublicKey(),
		Seed:  seed,
		StudioMetadata: instruction.StudioMetadata{
			Name:   "Studio",
			Symbol: "STU",
		},
	}}
}

func (s *ProcessorSuite) TestCreateStudioReturnsReceipt() {
	seed := testutil.NewPublicKey(s.T())
	receipt, err := s.processor.Process(s.ctx, s.tx(s.createStudio(seed), s.payer))
	s.Require().NoError(err)

	derived, err := address.New(address.DefaultProgramID).StudioAddress(seed)
	s.Require().NoError(err)
	s.Equal(instruction.TypeCreateStudio, receipt.Instruction)
	s.Equal(derived.Address.String(), receipt.Addresses["studio"])
	s.Equal(s.clock.Now(), receipt.ProcessedAt)

	s.Equal(1.0, promtest.ToFloat64(s.metrics.Transactions.WithLabelValues("create_studio", "ok")))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.AccountsCreated.WithLabelValues("studio")))
}

func (s *ProcessorSuite) TestUnsignedTransactionIsRejectedWithoutConsumingID() {
	seed := testutil.NewPublicKey(s.T())
	t := instruction.NewTransaction(s.ids.NewID(), s.createStudio(seed))

	_, err := s.processor.Process(s.ctx, t)
	s.ErrorIs(err, model.ErrMissingSignature)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Transactions.WithLabelValues("create_studio", model.CodeMissingSignature)))

	s.Require().NoError(t.Sign(s.payer))
	_, err = s.processor.Process(s.ctx, t)
	s.NoError(err)
}

func (s *ProcessorSuite) TestRejectionIsLoggedWithCode() {
	seed := testutil.NewPublicKey(s.T())
	t := instruction.NewTransaction(s.ids.NewID(), s.createStudio(seed))
	s.logs.Reset()

	_, err := s.processor.Process(s.ctx, t)
	s.Require().Error(err)

	var entry struct {
		Level string `json:"level"`
		Msg   string `json:"msg"`
		ID    string `json:"id"`
		Code  string `json:"code"`
	}
	s.Require().NoError(json.Unmarshal(s.logs.Bytes(), &entry))
	s.Equal("WARN", entry.Level)
	s.Equal("transaction rejected", entry.Msg)
	s.Equal(t.ID, entry.ID)
	s.Equal(model.CodeMissingSignature, entry.Code)
}

func (s *ProcessorSuite) TestWrongSignerIsRejected() {
	seed := testutil.NewPublicKey(s.T())
	other := testutil.NewKey(s.T())

	_, err := s.processor.Process(s.ctx, s.tx(s.createStudio(seed), other))
	s.ErrorIs(err, model.ErrMissingSignature)
}

func (s *ProcessorSuite) TestReplayIsRejected() {
	seed := testutil.NewPublicKey(s.T())
	t := s.tx(s.createStudio(seed), s.payer)

	_, err := s.processor.Process(s.ctx, t)
	s.Require().NoError(err)

	_, err = s.processor.Process(s.ctx, t)
	s.ErrorIs(err, model.ErrDuplicateTransaction)
}

func (s *ProcessorSuite) TestFailedInstructionConsumesID() {
	seed := testutil.NewPublicKey(s.T())
	_, err := s.processor.Process(s.ctx, s.tx(s.createStudio(seed), s.payer))
	s.Require().NoError(err)

	again := s.tx(s.createStudio(seed), s.payer)
	_, err = s.processor.Process(s.ctx, again)
	s.ErrorIs(err, model.ErrAlreadyExists)

	_, err = s.processor.Process(s.ctx, again)
	s.ErrorIs(err, model.ErrDuplicateTransaction)
}

func (s *ProcessorSuite) TestInvalidIDIsRejected() {
	t := instruction.NewTransaction("not-a-uuid", s.createStudio(testutil.NewPublicKey(s.T())))
	s.Require().NoError(t.Sign(s.payer))

	_, err := s.processor.Process(s.ctx, t)
	s.ErrorIs(err, model.ErrInvalidField)
}

func (s *ProcessorSuite) TestEmptyInstructionIsRejected() {
	t := instruction.NewTransaction(s.ids.NewID(), instruction.Instruction{})

	_, err := s.processor.Process(s.ctx, t)
	s.ErrorIs(err, model.ErrUnknownInstruction)
}

func (s *ProcessorSuite) TestAirdrop() {
	to := testutil.NewPublicKey(s.T())
	receipt, err := s.processor.Process(s.ctx, s.tx(instruction.Instruction{
		Airdrop: &instruction.Airdrop{To: to, Lamports: 5000},
	}))
	s.Require().NoError(err)
	s.Equal(to.String(), receipt.Addresses["wallet"])

	balance, err := s.services.System.Balance(s.ctx, to)
	s.Require().NoError(err)
	s.Equal(uint64(5000), balance)
}

func (s *ProcessorSuite) TestAirdropWithFaucetDisabled() {
	s.build(Config{FaucetEnabled: false})

	_, err := s.processor.Process(s.ctx, s.tx(instruction.Instruction{
		Airdrop: &instruction.Airdrop{To: testutil.NewPublicKey(s.T()), Lamports: 5000},
	}))
	s.ErrorIs(err, model.ErrFaucetDisabled)
}

func (s *ProcessorSuite) TestTokenInstructions() {
	mint := testutil.NewKey(s.T())
	account := testutil.NewKey(s.T())
	owner := testutil.NewKey(s.T())
	other := testutil.NewKey(s.T())

	_, err := s.processor.Process(s.ctx, s.tx(instruction.Instruction{CreateMint: &instruction.CreateMint{
		Payer:         s.payer.PublicKey(),
		Mint:          mint.PublicKey(),
		MintAuthority: s.payer.PublicKey(),
		Decimals:      6,
	}}, s.payer, mint))
	s.Require().NoError(err)

	for _, acct := range []solana.PrivateKey{account, other} {
		_, err = s.processor.Process(s.ctx, s.tx(instruction.Instruction{CreateTokenAccount: &instruction.CreateTokenAccount{
			Payer:   s.payer.PublicKey(),
			Address: acct.PublicKey(),
			Mint:    mint.PublicKey(),
			Owner:   owner.PublicKey(),
		}}, s.payer, acct))
		s.Require().NoError(err)
	}

	_, err = s.processor.Process(s.ctx, s.tx(instruction.Instruction{MintTo: &instruction.MintTo{
		MintAuthority: s.payer.PublicKey(),
		Mint:          mint.PublicKey(),
		Destination:   account.PublicKey(),
		Amount:        100,
	}}, s.payer))
	s.Require().NoError(err)

	_, err = s.processor.Process(s.ctx, s.tx(instruction.Instruction{TokenTransfer: &instruction.TokenTransfer{
		Owner:  owner.PublicKey(),
		From:   account.PublicKey(),
		To:     other.PublicKey(),
		Amount: 40,
	}}, owner))
	s.Require().NoError(err)

	got, err := s.services.Ledger.GetTokenAccount(s.ctx, other.PublicKey())
	s.Require().NoError(err)
	s.Equal(uint64(40), got.Amount)
}
