package factory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"github.com/metaloot/registry/internal/instruction"
	"github.com/metaloot/registry/internal/model"
	"github.com/metaloot/registry/internal/processor"
	"github.com/metaloot/registry/internal/services/system"
	"github.com/metaloot/registry/internal/storage"
	"github.com/metaloot/registry/internal/storage/memory"
	redisstorage "github.com/metaloot/registry/internal/storage/redis"
	"github.com/metaloot/registry/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app      *TestApp
	ctx      context.Context
	newStore func() storage.Store

	authority solana.PrivateKey // pays for and controls S1 and P1
	other     solana.PrivateKey // controls P2
	mint      solana.PrivateKey
	source    solana.PrivateKey // token account funded by the mint authority

	studioSeed solana.PublicKey
	p1Seed     solana.PublicKey
	p2Seed     solana.PublicKey
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, &IntegrationSuite{newStore: func() storage.Store { return memory.New() }})
}

func TestIntegrationSuiteRedis(t *testing.T) {
	s := &IntegrationSuite{}
	s.newStore = func() storage.Store {
		mini := miniredis.RunT(s.T())
		client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
		return redisstorage.NewWithClient(client, redisstorage.DefaultConfig())
	}
	suite.Run(t, s)
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestAppWithStore(s.newStore())
	s.ctx = context.Background()

	s.authority = testutil.NewKey(s.T())
	s.other = testutil.NewKey(s.T())
	s.mint = testutil.NewKey(s.T())
	s.source = testutil.NewKey(s.T())
	s.studioSeed = testutil.NewPublicKey(s.T())
	s.p1Seed = testutil.NewPublicKey(s.T())
	s.p2Seed = testutil.NewPublicKey(s.T())

	for _, key := range []solana.PublicKey{s.authority.PublicKey(), s.other.PublicKey()} {
		s.process(instruction.Instruction{Airdrop: &instruction.Airdrop{To: key, Lamports: 10 * system.LamportsPerSOL}})
	}
}

func (s *IntegrationSuite) TearDownTest() {
	_ = s.app.Close()
}

func (s *IntegrationSuite) submit(ix instruction.Instruction, keys ...solana.PrivateKey) (*processor.Receipt, error) {
	t := instruction.NewTransaction(s.app.MockIDs.NewID(), ix)
	s.Require().NoError(t.Sign(keys...))
	return s.app.Processor.Process(s.ctx, t)
}

func (s *IntegrationSuite) process(ix instruction.Instruction, keys ...solana.PrivateKey) *processor.Receipt {
	receipt, err := s.submit(ix, keys...)
	s.Require().NoError(err)
	return receipt
}

func (s *IntegrationSuite) createStudio() {
	s.process(instruction.Instruction{CreateStudio: &instruction.CreateStudio{
		Payer:     s.authority.PublicKey(),
		Seed:      s.studioSeed,
		Authority: s.authority.PublicKey(),
		StudioMetadata: instruction.StudioMetadata{
			Name:        "Studio One",
			Symbol:      "S1",
			URI:         "https://studio.one/meta.json",
			NativeToken: s.mint.PublicKey(),
		},
	}}, s.authority)
}

func (s *IntegrationSuite) createPlayer(payer solana.PrivateKey, seed solana.PublicKey, username string) (*processor.Receipt, error) {
	return s.submit(instruction.Instruction{CreatePlayer: &instruction.CreatePlayer{
		Payer:    payer.PublicKey(),
		Seed:     seed,
		Username: username,
		URI:      "https://players.example/" + username,
	}}, payer)
}

// setupMint creates M and funds the source account with 1000 tokens
func (s *IntegrationSuite) setupMint() {
	s.process(instruction.Instruction{CreateMint: &instruction.CreateMint{
		Payer:         s.authority.PublicKey(),
		Mint:          s.mint.PublicKey(),
		MintAuthority: s.authority.PublicKey(),
		Decimals:      0,
	}}, s.authority, s.mint)
	s.process(instruction.Instruction{CreateTokenAccount: &instruction.CreateTokenAccount{
		Payer:   s.authority.PublicKey(),
		Address: s.source.PublicKey(),
		Mint:    s.mint.PublicKey(),
		Owner:   s.authority.PublicKey(),
	}}, s.authority, s.source)
	s.process(instruction.Instruction{MintTo: &instruction.MintTo{
		MintAuthority: s.authority.PublicKey(),
		Mint:          s.mint.PublicKey(),
		Destination:   s.source.PublicKey(),
		Amount:        1000,
	}}, s.authority)
}

func (s *IntegrationSuite) initCustody(payer solana.PrivateKey, seed solana.PublicKey) solana.PublicKey {
	receipt := s.process(instruction.Instruction{InitializeCustody: &instruction.InitializeCustody{
		Payer: payer.PublicKey(),
		Mint:  s.mint.PublicKey(),
		Seed:  seed,
	}}, payer)
	return solana.MustPublicKeyFromBase58(receipt.Addresses["custody"])
}

func (s *IntegrationSuite) fund(custody solana.PublicKey, amount uint64) {
	s.process(instruction.Instruction{TokenTransfer: &instruction.TokenTransfer{
		Owner:  s.authority.PublicKey(),
		From:   s.source.PublicKey(),
		To:     custody,
		Amount: amount,
	}}, s.authority)
}

func (s *IntegrationSuite) balance(seed solana.PublicKey) uint64 {
	amount, _, err := s.app.CustodyService.Balance(s.ctx, s.mint.PublicKey(), seed)
	s.Require().NoError(err)
	return amount
}

func (s *IntegrationSuite) transferIx(sender, recipient solana.PublicKey, amount uint64) instruction.Instruction {
	return instruction.Instruction{Transfer: &instruction.Transfer{
		Authority:     s.authority.PublicKey(),
		Mint:          s.mint.PublicKey(),
		SenderSeed:    sender,
		RecipientSeed: recipient,
		Amount:        amount,
	}}
}

// Test: studio, players, custody and transfers from start to finish
func (s *IntegrationSuite) TestCompleteRegistryFlow() {
	// Step 1: Create and update studio S1
	s.createStudio()
	s.process(instruction.Instruction{UpdateStudio: &instruction.UpdateStudio{
		Authority: s.authority.PublicKey(),
		Seed:      s.studioSeed,
		StudioMetadata: instruction.StudioMetadata{
			Name:        "Studio One Renamed",
			Symbol:      "S1R",
			URI:         "https://studio.one/v2.json",
			NativeToken: s.mint.PublicKey(),
		},
	}}, s.authority)

	studio, _, err := s.app.StudioService.Get(s.ctx, s.studioSeed)
	s.Require().NoError(err)
	s.Equal("Studio One Renamed", studio.Name)
	s.Equal("S1R", studio.Symbol)
	s.Equal(s.authority.PublicKey(), studio.Authority)

	// Step 2: Create players P1 and P2
	_, err = s.createPlayer(s.authority, s.p1Seed, "alice")
	s.Require().NoError(err)
	_, err = s.createPlayer(s.other, s.p2Seed, "bob")
	s.Require().NoError(err)

	p1, _, err := s.app.PlayerService.Get(s.ctx, s.p1Seed)
	s.Require().NoError(err)
	s.Equal("alice", p1.Username)
	s.Greater(p1.CreatedAt, int64(0))

	// Step 3: A second P1 fails and leaves the record untouched
	_, err = s.createPlayer(s.other, s.p1Seed, "mallory")
	s.ErrorIs(err, model.ErrAlreadyExists)
	p1, _, err = s.app.PlayerService.Get(s.ctx, s.p1Seed)
	s.Require().NoError(err)
	s.Equal("alice", p1.Username)
	s.Equal(s.authority.PublicKey(), p1.Authority)

	// Step 4: Mint 1000 and move 100 into P1's custody
	s.setupMint()
	p1Custody := s.initCustody(s.authority, s.p1Seed)
	s.fund(p1Custody, 100)
	s.Equal(uint64(100), s.balance(s.p1Seed))

	// Step 5: P2's custody, then P1 sends 50
	s.initCustody(s.other, s.p2Seed)
	receipt := s.process(s.transferIx(s.p1Seed, s.p2Seed, 50), s.authority)
	s.Equal(instruction.TypeTransfer, receipt.Instruction)

	s.Equal(uint64(50), s.balance(s.p1Seed))
	s.Equal(uint64(50), s.balance(s.p2Seed))

	source, err := s.app.TokenLedger.GetTokenAccount(s.ctx, s.source.PublicKey())
	s.Require().NoError(err)
	s.Equal(uint64(900), source.Amount)
}

func (s *IntegrationSuite) TestOverBalanceTransferLeavesBalancesUnchanged() {
	_, err := s.createPlayer(s.authority, s.p1Seed, "alice")
	s.Require().NoError(err)
	_, err = s.createPlayer(s.other, s.p2Seed, "bob")
	s.Require().NoError(err)
	s.setupMint()
	s.fund(s.initCustody(s.authority, s.p1Seed), 30)
	s.initCustody(s.other, s.p2Seed)

	_, err = s.submit(s.transferIx(s.p1Seed, s.p2Seed, 31), s.authority)
	s.ErrorIs(err, model.ErrInsufficientFunds)

	s.Equal(uint64(30), s.balance(s.p1Seed))
	s.Equal(uint64(0), s.balance(s.p2Seed))
}

func (s *IntegrationSuite) TestTransferByNonAuthorityFails() {
	_, err := s.createPlayer(s.authority, s.p1Seed, "alice")
	s.Require().NoError(err)
	_, err = s.createPlayer(s.other, s.p2Seed, "bob")
	s.Require().NoError(err)
	s.setupMint()
	s.fund(s.initCustody(s.authority, s.p1Seed), 30)
	s.initCustody(s.other, s.p2Seed)

	ix := s.transferIx(s.p1Seed, s.p2Seed, 10)
	ix.Transfer.Authority = s.other.PublicKey()
	_, err = s.submit(ix, s.other)
	s.ErrorIs(err, model.ErrAuthorityMismatch)
	s.Equal(uint64(30), s.balance(s.p1Seed))
}

func (s *IntegrationSuite) TestRewardFlow() {
	s.createStudio()
	_, err := s.createPlayer(s.other, s.p1Seed, "alice")
	s.Require().NoError(err)
	s.setupMint()

	receipt := s.process(instruction.Instruction{InitializeStudioCustody: &instruction.InitializeCustody{
		Payer: s.authority.PublicKey(),
		Mint:  s.mint.PublicKey(),
		Seed:  s.studioSeed,
	}}, s.authority)
	s.fund(solana.MustPublicKeyFromBase58(receipt.Addresses["custody"]), 500)
	s.initCustody(s.other, s.p1Seed)

	s.process(instruction.Instruction{Reward: &instruction.Transfer{
		Authority:     s.authority.PublicKey(),
		Mint:          s.mint.PublicKey(),
		SenderSeed:    s.studioSeed,
		RecipientSeed: s.p1Seed,
		Amount:        120,
	}}, s.authority)

	studioBalance, _, err := s.app.CustodyService.StudioBalance(s.ctx, s.mint.PublicKey(), s.studioSeed)
	s.Require().NoError(err)
	s.Equal(uint64(380), studioBalance)
	s.Equal(uint64(120), s.balance(s.p1Seed))
}

func (s *IntegrationSuite) TestPlayerAuthorityReassignment() {
	_, err := s.createPlayer(s.authority, s.p1Seed, "alice")
	s.Require().NoError(err)

	newAuthority := s.other.PublicKey()
	s.process(instruction.Instruction{UpdatePlayer: &instruction.UpdatePlayer{
		Authority:    s.authority.PublicKey(),
		Seed:         s.p1Seed,
		NewAuthority: &newAuthority,
	}}, s.authority)

	username := "alice2"
	_, err = s.submit(instruction.Instruction{UpdatePlayer: &instruction.UpdatePlayer{
		Authority: s.authority.PublicKey(),
		Seed:      s.p1Seed,
		Username:  &username,
	}}, s.authority)
	s.ErrorIs(err, model.ErrAuthorityMismatch)

	s.process(instruction.Instruction{UpdatePlayer: &instruction.UpdatePlayer{
		Authority: s.other.PublicKey(),
		Seed:      s.p1Seed,
		Username:  &username,
	}}, s.other)

	p1, _, err := s.app.PlayerService.Get(s.ctx, s.p1Seed)
	s.Require().NoError(err)
	s.Equal("alice2", p1.Username)
	s.Equal(newAuthority, p1.Authority)
}

func (s *IntegrationSuite) TestRentIsDebitedFromPayer() {
	before, err := s.app.SystemService.Balance(s.ctx, s.authority.PublicKey())
	s.Require().NoError(err)

	s.createStudio()
	_, err = s.createPlayer(s.authority, s.p1Seed, "alice")
	s.Require().NoError(err)

	after, err := s.app.SystemService.Balance(s.ctx, s.authority.PublicKey())
	s.Require().NoError(err)
	want := system.MinimumBalance(model.StudioRecordSpace) + system.MinimumBalance(model.PlayerRecordSpace)
	s.Equal(before-want, after)
}

func (s *IntegrationSuite) TestPayerWithoutFundsCreatesNothing() {
	broke := testutil.NewKey(s.T())
	_, err := s.createPlayer(broke, s.p1Seed, "alice")
	s.ErrorIs(err, model.ErrInsufficientFunds)

	_, _, err = s.app.PlayerService.Get(s.ctx, s.p1Seed)
	s.ErrorIs(err, model.ErrRecordNotFound)
}

// Test: racing transfers out of one custody never spend more than it holds
func (s *IntegrationSuite) TestConcurrentTransfersCannotOverdraw() {
	_, err := s.createPlayer(s.authority, s.p1Seed, "alice")
	s.Require().NoError(err)
	_, err = s.createPlayer(s.other, s.p2Seed, "bob")
	s.Require().NoError(err)
	s.setupMint()
	s.fund(s.initCustody(s.authority, s.p1Seed), 100)
	s.initCustody(s.other, s.p2Seed)

	const senders = 8
	txs := make([]*instruction.Transaction, senders)
	for i := range txs {
		txs[i] = instruction.NewTransaction(s.app.MockIDs.NewID(), s.transferIx(s.p1Seed, s.p2Seed, 30))
		s.Require().NoError(txs[i].Sign(s.authority))
	}

	var succeeded atomic.Int64
	var g errgroup.Group
	for _, t := range txs {
		g.Go(func() error {
			_, err := s.app.Processor.Process(s.ctx, t)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, model.ErrInsufficientFunds), errors.Is(err, model.ErrConflict):
			default:
				return err
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	n := uint64(succeeded.Load())
	s.GreaterOrEqual(n, uint64(1))
	s.LessOrEqual(n, uint64(3))
	s.Equal(100-30*n, s.balance(s.p1Seed))
	s.Equal(30*n, s.balance(s.p2Seed))
}

// Test: lamports sent to a derived address ahead of time don't block its creation
func (s *IntegrationSuite) TestPrefundedAddressesCanStillBeCreated() {
	player, err := s.app.Deriver.PlayerAddress(s.p1Seed)
	s.Require().NoError(err)
	studio, err := s.app.Deriver.StudioAddress(s.studioSeed)
	s.Require().NoError(err)
	for _, addr := range []solana.PublicKey{player.Address, studio.Address} {
		s.process(instruction.Instruction{Airdrop: &instruction.Airdrop{To: addr, Lamports: 1}})
	}

	_, err = s.createPlayer(s.authority, s.p1Seed, "alice")
	s.Require().NoError(err)
	s.createStudio()

	s.setupMint()
	custody, err := s.app.Deriver.CustodyAddress(player.Address, s.mint.PublicKey())
	s.Require().NoError(err)
	s.process(instruction.Instruction{Airdrop: &instruction.Airdrop{To: custody, Lamports: 1}})

	s.Equal(custody, s.initCustody(s.other, s.p1Seed))
	s.fund(custody, 10)
	s.Equal(uint64(10), s.balance(s.p1Seed))
}
