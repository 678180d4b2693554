package tokenledger

import (
	"context"
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/suite"

	"github.com/metaloot/registry/internal/address"
	"github.com/metaloot/registry/internal/model"
	"github.com/metaloot/registry/internal/services/system"
	"github.com/metaloot/registry/internal/storage"
	"github.com/metaloot/registry/internal/storage/memory"
	"github.com/metaloot/registry/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	store   *memory.Storage
	service *Service
	ctx     context.Context
	payer   solana.PublicKey
	mint    solana.PublicKey
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	logger := testutil.NopLogger()
	sys := system.New(s.store, logger)
	s.service = New(s.store, sys, logger)
	s.ctx = context.Background()

	s.payer = testutil.NewPublicKey(s.T())
	s.mint = testutil.NewPublicKey(s.T())
	s.Require().NoError(sys.Airdrop(s.ctx, s.payer, system.LamportsPerSOL))
	s.Require().NoError(s.service.CreateMint(s.ctx, s.payer, s.mint, 9, s.payer))
}

// account creates a token account owned by owner holding amount
func (s *ServiceSuite) account(owner solana.PublicKey, amount uint64) solana.PublicKey {
	addr := testutil.NewPublicKey(s.T())
	s.Require().NoError(s.service.CreateTokenAccount(s.ctx, s.payer, addr, s.mint, owner))
	if amount > 0 {
		s.Require().NoError(s.service.MintTo(s.ctx, s.payer, s.mint, addr, amount))
	}
	return addr
}

func (s *ServiceSuite) balance(addr solana.PublicKey) uint64 {
	account, err := s.service.GetTokenAccount(s.ctx, addr)
	s.Require().NoError(err)
	return account.Amount
}

// Mint tests

func (s *ServiceSuite) TestCreateMint() {
	mint, err := s.service.GetMint(s.ctx, s.mint)
	s.Require().NoError(err)
	s.Equal(s.payer, mint.MintAuthority)
	s.Equal(uint8(9), mint.Decimals)
	s.Zero(mint.Supply)
}

func (s *ServiceSuite) TestCreateMintTwiceFails() {
	err := s.service.CreateMint(s.ctx, s.payer, s.mint, 0, s.payer)
	s.ErrorIs(err, model.ErrAlreadyExists)
}

func (s *ServiceSuite) TestMintToIncreasesSupply() {
	addr := s.account(s.payer, 1000)

	mint, err := s.service.GetMint(s.ctx, s.mint)
	s.Require().NoError(err)
	s.Equal(uint64(1000), mint.Supply)
	s.Equal(uint64(1000), s.balance(addr))
}

func (s *ServiceSuite) TestMintToRequiresMintAuthority() {
	addr := s.account(s.payer, 0)

	err := s.service.MintTo(s.ctx, testutil.NewPublicKey(s.T()), s.mint, addr, 10)

	s.ErrorIs(err, model.ErrAuthorityMismatch)
	s.Zero(s.balance(addr))
}

func (s *ServiceSuite) TestMintToOverflow() {
	addr := s.account(s.payer, math.MaxUint64)

	err := s.service.MintTo(s.ctx, s.payer, s.mint, addr, 1)

	s.ErrorIs(err, model.ErrArithmeticOverflow)
}

// Account tests

func (s *ServiceSuite) TestCreateAccountUnknownMint() {
	err := s.service.CreateTokenAccount(s.ctx, s.payer, testutil.NewPublicKey(s.T()), testutil.NewPublicKey(s.T()), s.payer)
	s.ErrorIs(err, model.ErrMintNotFound)
}

func (s *ServiceSuite) TestCreateAccountOnWalletAddressFails() {
	err := s.service.CreateTokenAccount(s.ctx, s.payer, s.payer, s.mint, s.payer)
	s.ErrorIs(err, model.ErrAlreadyExists)
}

func (s *ServiceSuite) TestWalletIsNotATokenAccount() {
	_, err := s.service.GetTokenAccount(s.ctx, s.payer)
	s.ErrorIs(err, model.ErrInvalidOwner)
}

// Transfer tests

func (s *ServiceSuite) TestTransferBySigningOwner() {
	owner := testutil.NewPublicKey(s.T())
	from := s.account(owner, 1000)
	to := s.account(testutil.NewPublicKey(s.T()), 0)

	s.Require().NoError(s.service.Transfer(s.ctx, SignedBy(owner), from, to, 100))

	s.Equal(uint64(900), s.balance(from))
	s.Equal(uint64(100), s.balance(to))
}

func (s *ServiceSuite) TestTransferByOtherSignerRejected() {
	from := s.account(testutil.NewPublicKey(s.T()), 1000)
	to := s.account(testutil.NewPublicKey(s.T()), 0)

	err := s.service.Transfer(s.ctx, SignedBy(s.payer), from, to, 100)

	s.ErrorIs(err, model.ErrAuthorityMismatch)
	s.Equal(uint64(1000), s.balance(from))
}

func (s *ServiceSuite) TestTransferInsufficientFunds() {
	owner := testutil.NewPublicKey(s.T())
	from := s.account(owner, 10)
	to := s.account(testutil.NewPublicKey(s.T()), 3)

	err := s.service.Transfer(s.ctx, SignedBy(owner), from, to, 11)

	s.ErrorIs(err, model.ErrInsufficientFunds)
	s.Equal(uint64(10), s.balance(from))
	s.Equal(uint64(3), s.balance(to))
}

func (s *ServiceSuite) TestTransferZeroAmount() {
	owner := testutil.NewPublicKey(s.T())
	from := s.account(owner, 10)

	err := s.service.Transfer(s.ctx, SignedBy(owner), from, s.account(owner, 0), 0)

	s.ErrorIs(err, model.ErrInvalidAmount)
}

func (s *ServiceSuite) TestTransferToSelfKeepsBalance() {
	owner := testutil.NewPublicKey(s.T())
	from := s.account(owner, 10)

	s.Require().NoError(s.service.Transfer(s.ctx, SignedBy(owner), from, from, 10))
	s.Equal(uint64(10), s.balance(from))
}

func (s *ServiceSuite) TestTransferAcrossMintsRejected() {
	owner := testutil.NewPublicKey(s.T())
	from := s.account(owner, 10)

	otherMint := testutil.NewPublicKey(s.T())
	s.Require().NoError(s.service.CreateMint(s.ctx, s.payer, otherMint, 0, s.payer))
	to := testutil.NewPublicKey(s.T())
	s.Require().NoError(s.service.CreateTokenAccount(s.ctx, s.payer, to, otherMint, owner))

	err := s.service.Transfer(s.ctx, SignedBy(owner), from, to, 1)
	s.ErrorIs(err, model.ErrMintMismatch)
}

func (s *ServiceSuite) TestTransferRecipientOverflow() {
	owner := testutil.NewPublicKey(s.T())
	from := s.account(owner, 10)
	to := testutil.NewPublicKey(s.T())
	s.Require().NoError(s.service.CreateTokenAccount(s.ctx, s.payer, to, s.mint, owner))

	// supply would overflow first through MintTo, so write the balance directly
	err := s.store.Update(s.ctx, func(tx storage.Tx) error {
		acct, ta, err := s.service.loadTokenAccount(tx, to)
		if err != nil {
			return err
		}
		ta.Amount = math.MaxUint64
		return s.service.write(tx, acct, ta, model.TokenAccountSpace)
	})
	s.Require().NoError(err)

	err = s.service.Transfer(s.ctx, SignedBy(owner), from, to, 1)
	s.ErrorIs(err, model.ErrArithmeticOverflow)
	s.Equal(uint64(10), s.balance(from))
}

// Program-signed transfers

func (s *ServiceSuite) TestProgramSignedDebit() {
	deriver := address.New(address.DefaultProgramID)
	seed := testutil.NewPublicKey(s.T())
	record, err := deriver.PlayerAddress(seed)
	s.Require().NoError(err)

	from := s.account(record.Address, 50)
	to := s.account(testutil.NewPublicKey(s.T()), 0)

	// the record key has no private key, so a plain signature can never match
	err = s.service.Transfer(s.ctx, SignedBy(seed), from, to, 10)
	s.ErrorIs(err, model.ErrAuthorityMismatch)

	err = s.service.Transfer(s.ctx, ProgramSigned(deriver.SignerSeeds(address.TagPlayer, seed, record.Nonce)), from, to, 10)
	s.Require().NoError(err)
	s.Equal(uint64(40), s.balance(from))
	s.Equal(uint64(10), s.balance(to))
}

func (s *ServiceSuite) TestProgramSignedWithWrongSeeds() {
	deriver := address.New(address.DefaultProgramID)
	seed := testutil.NewPublicKey(s.T())
	record, err := deriver.PlayerAddress(seed)
	s.Require().NoError(err)
	from := s.account(record.Address, 50)
	to := s.account(testutil.NewPublicKey(s.T()), 0)

	other := testutil.NewPublicKey(s.T())
	otherRecord, err := deriver.PlayerAddress(other)
	s.Require().NoError(err)
	err = s.service.Transfer(s.ctx, ProgramSigned(deriver.SignerSeeds(address.TagPlayer, other, otherRecord.Nonce)), from, to, 10)

	s.ErrorIs(err, model.ErrAuthorityMismatch)
	s.Equal(uint64(50), s.balance(from))
}
