package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaloot/registry/internal/address"
	"github.com/metaloot/registry/internal/api"
	"github.com/metaloot/registry/internal/api/apierr"
	"github.com/metaloot/registry/internal/api/response"
	"github.com/metaloot/registry/internal/factory"
	"github.com/metaloot/registry/internal/instruction"
	"github.com/metaloot/registry/internal/model"
	"github.com/metaloot/registry/internal/processor"
	"github.com/metaloot/registry/internal/services/system"
	"github.com/metaloot/registry/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Processor:      app.Processor,
		StudioService:  app.StudioService,
		PlayerService:  app.PlayerService,
		CustodyService: app.CustodyService,
		SystemService:  app.SystemService,
		Deriver:        app.Deriver,
		Gatherer:       app.Registry,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) submit(t *testing.T, ix instruction.Instruction, keys ...solana.PrivateKey) *httptest.ResponseRecorder {
	t.Helper()
	tx := instruction.NewTransaction(ts.app.MockIDs.NewID(), ix)
	require.NoError(t, tx.Sign(keys...))
	return ts.request(http.MethodPost, "/api/v1/transactions", tx)
}

func (ts *testServer) fund(t *testing.T, key solana.PublicKey) {
	t.Helper()
	rr := ts.submit(t, instruction.Instruction{Airdrop: &instruction.Airdrop{To: key, Lamports: system.LamportsPerSOL}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func createStudioIx(payer, seed solana.PublicKey) instruction.Instruction {
	return instruction.Instruction{CreateStudio: &instruction.CreateStudio{
		Payer: payer,
		Seed:  seed,
		StudioMetadata: instruction.StudioMetadata{
			Name:   "Studio",
			Symbol: "STU",
			URI:    "https://studio.example/meta.json",
		},
	}}
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		rr := ts.request(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp response.Health
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "ok", resp.Status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.fund(t, testutil.NewPublicKey(t))

	rr := ts.request(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `registry_transactions_total{instruction="airdrop",result="ok"} 1`)
}

func TestCreateAndGetStudio(t *testing.T) {
	ts := newTestServer(t)
	payer := testutil.NewKey(t)
	seed := testutil.NewPublicKey(t)
	ts.fund(t, payer.PublicKey())

	rr := ts.submit(t, createStudioIx(payer.PublicKey(), seed), payer)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var receipt processor.Receipt
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&receipt))
	assert.Equal(t, instruction.TypeCreateStudio, receipt.Instruction)

	rr = ts.request(http.MethodGet, "/api/v1/studios/"+seed.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var studio response.Studio
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&studio))
	assert.Equal(t, receipt.Addresses["studio"], studio.Address)
	assert.Equal(t, "Studio", studio.Name)
	assert.Equal(t, payer.PublicKey().String(), studio.Authority)
}

func TestDuplicateStudioReturnsConflict(t *testing.T) {
	ts := newTestServer(t)
	payer := testutil.NewKey(t)
	seed := testutil.NewPublicKey(t)
	ts.fund(t, payer.PublicKey())

	require.Equal(t, http.StatusCreated, ts.submit(t, createStudioIx(payer.PublicKey(), seed), payer).Code)

	rr := ts.submit(t, createStudioIx(payer.PublicKey(), seed), payer)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, model.CodeAlreadyExists, decodeError(t, rr).Code)
}

func TestUpdateStudioByNonAuthorityIsForbidden(t *testing.T) {
	ts := newTestServer(t)
	payer := testutil.NewKey(t)
	intruder := testutil.NewKey(t)
	seed := testutil.NewPublicKey(t)
	ts.fund(t, payer.PublicKey())
	require.Equal(t, http.StatusCreated, ts.submit(t, createStudioIx(payer.PublicKey(), seed), payer).Code)

	rr := ts.submit(t, instruction.Instruction{UpdateStudio: &instruction.UpdateStudio{
		Authority:      intruder.PublicKey(),
		Seed:           seed,
		StudioMetadata: instruction.StudioMetadata{Name: "Hijacked", Symbol: "HJK"},
	}}, intruder)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, model.CodeAuthorityMismatch, decodeError(t, rr).Code)
}

func TestUnsignedTransactionIsForbidden(t *testing.T) {
	ts := newTestServer(t)
	payer := testutil.NewKey(t)

	tx := instruction.NewTransaction(ts.app.MockIDs.NewID(), createStudioIx(payer.PublicKey(), testutil.NewPublicKey(t)))
	rr := ts.request(http.MethodPost, "/api/v1/transactions", tx)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, model.CodeMissingSignature, decodeError(t, rr).Code)
}

func TestMalformedTransactionBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)
}

func TestInsufficientFundsIsUnprocessable(t *testing.T) {
	ts := newTestServer(t)
	payer := testutil.NewKey(t)

	rr := ts.submit(t, createStudioIx(payer.PublicKey(), testutil.NewPublicKey(t)), payer)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, model.CodeInsufficientFunds, decodeError(t, rr).Code)
}

func TestGetMissingPlayer(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players/"+testutil.NewPublicKey(t).String(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, model.CodeRecordNotFound, decodeError(t, rr).Code)
}

func TestInvalidSeedIsBadRequest(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players/not-a-key", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPlayerAndCustody(t *testing.T) {
	ts := newTestServer(t)
	payer := testutil.NewKey(t)
	mint := testutil.NewKey(t)
	seed := testutil.NewPublicKey(t)
	ts.fund(t, payer.PublicKey())

	rr := ts.submit(t, instruction.Instruction{CreatePlayer: &instruction.CreatePlayer{
		Payer: payer.PublicKey(), Seed: seed, Username: "alice",
	}}, payer)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodGet, "/api/v1/players/"+seed.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var player response.Player
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&player))
	assert.Equal(t, "alice", player.Username)
	assert.True(t, ts.app.MockClock.Now().Equal(player.CreatedAt))

	// No custody yet
	rr = ts.request(http.MethodGet, "/api/v1/custody/"+mint.PublicKey().String()+"/"+seed.String(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, model.CodeCustodyNotFound, decodeError(t, rr).Code)

	rr = ts.submit(t, instruction.Instruction{CreateMint: &instruction.CreateMint{
		Payer: payer.PublicKey(), Mint: mint.PublicKey(), MintAuthority: payer.PublicKey(),
	}}, payer, mint)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = ts.submit(t, instruction.Instruction{InitializeCustody: &instruction.InitializeCustody{
		Payer: payer.PublicKey(), Mint: mint.PublicKey(), Seed: seed,
	}}, payer)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var receipt processor.Receipt
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&receipt))

	rr = ts.request(http.MethodGet, "/api/v1/custody/"+mint.PublicKey().String()+"/"+seed.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var custody response.Custody
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&custody))
	assert.Equal(t, receipt.Addresses["custody"], custody.Address)
	assert.Equal(t, uint64(0), custody.Amount)

	// The raw account decodes as a token account owned by the player record
	rr = ts.request(http.MethodGet, "/api/v1/accounts/"+custody.Address, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var account response.Account
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&account))
	assert.Equal(t, "token_account", account.Kind)
	require.NotNil(t, account.Token)
	assert.Equal(t, player.Address, account.Token.Owner)
	assert.Equal(t, mint.PublicKey().String(), account.Token.Mint)
}

func TestDerive(t *testing.T) {
	ts := newTestServer(t)
	seed := testutil.NewPublicKey(t)

	rr := ts.request(http.MethodGet, "/api/v1/derive/player/"+seed.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var derived response.Derived
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&derived))

	want, err := address.New(address.DefaultProgramID).PlayerAddress(seed)
	require.NoError(t, err)
	assert.Equal(t, want.Address.String(), derived.Address)
	assert.Equal(t, want.Nonce, derived.Nonce)
	assert.Equal(t, address.DefaultProgramID.String(), derived.ProgramID)

	rr = ts.request(http.MethodGet, "/api/v1/derive/bogus/"+seed.String(), nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWalletAccount(t *testing.T) {
	ts := newTestServer(t)
	key := testutil.NewPublicKey(t)
	ts.fund(t, key)

	rr := ts.request(http.MethodGet, "/api/v1/accounts/"+key.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var account response.Account
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&account))
	assert.Equal(t, "wallet", account.Kind)
	assert.Equal(t, uint64(system.LamportsPerSOL), account.Lamports)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
