package response

import (
	"encoding/base64"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/metaloot/registry/internal/address"
	"github.com/metaloot/registry/internal/codec"
	"github.com/metaloot/registry/internal/model"
)

// Studio represents a studio record in API responses
type Studio struct {
	Address       string   `json:"address"`
	Seed          string   `json:"seed"`
	Name          string   `json:"name"`
	Symbol        string   `json:"symbol"`
	URI           string   `json:"uri"`
	Authority     string   `json:"authority"`
	NativeToken   string   `json:"native_token"`
	NFTCollection []string `json:"nft_collection"`
	Bump          uint8    `json:"bump"`
}

// StudioFromModel converts a model.StudioRecord to a response Studio
func StudioFromModel(r *model.StudioRecord, addr, seed solana.PublicKey) Studio {
	return Studio{
		Address:       addr.String(),
		Seed:          seed.String(),
		Name:          r.Name,
		Symbol:        r.Symbol,
		URI:           r.URI,
		Authority:     r.Authority.String(),
		NativeToken:   r.NativeToken.String(),
		NFTCollection: keys(r.NFTCollection),
		Bump:          r.Bump,
	}
}

// Player represents a player record in API responses
type Player struct {
	Address   string    `json:"address"`
	Seed      string    `json:"seed"`
	Authority string    `json:"authority"`
	Username  string    `json:"username"`
	URI       string    `json:"uri"`
	CreatedAt time.Time `json:"created_at"`
	Bump      uint8     `json:"bump"`
}

// PlayerFromModel converts a model.PlayerRecord to a response Player
func PlayerFromModel(r *model.PlayerRecord, addr, seed solana.PublicKey) Player {
	return Player{
		Address:   addr.String(),
		Seed:      seed.String(),
		Authority: r.Authority.String(),
		Username:  r.Username,
		URI:       r.URI,
		CreatedAt: r.CreatedTime(),
		Bump:      r.Bump,
	}
}

// Custody represents a record's custody balance
type Custody struct {
	Address string `json:"address"`
	Seed    string `json:"seed"`
	Mint    string `json:"mint"`
	Amount  uint64 `json:"amount"`
}

// TokenAccount is the decoded state of a token account
type TokenAccount struct {
	Mint   string `json:"mint"`
	Owner  string `json:"owner"`
	Amount uint64 `json:"amount"`
}

// Mint is the decoded state of a mint
type Mint struct {
	MintAuthority string `json:"mint_authority"`
	Supply        uint64 `json:"supply"`
	Decimals      uint8  `json:"decimals"`
}

// Account is a raw ledger account, decoded when its type is known
type Account struct {
	Address  string        `json:"address"`
	Owner    string        `json:"owner"`
	Lamports uint64        `json:"lamports"`
	Kind     string        `json:"kind"`
	Data     string        `json:"data,omitempty"` // base64
	Token    *TokenAccount `json:"token,omitempty"`
	Mint     *Mint         `json:"mint,omitempty"`
}

// AccountFromModel converts a model.Account, decoding token state
func AccountFromModel(a *model.Account) Account {
	resp := Account{
		Address:  a.Address.String(),
		Owner:    a.Owner.String(),
		Lamports: a.Lamports,
		Kind:     "unknown",
	}
	if len(a.Data) > 0 {
		resp.Data = base64.StdEncoding.EncodeToString(a.Data)
	}

	var (
		ta     model.TokenAccount
		mint   model.Mint
		studio model.StudioRecord
		player model.PlayerRecord
	)
	switch {
	case a.IsWallet():
		resp.Kind = "wallet"
	case codec.Decode(a.Data, &ta) == nil:
		resp.Kind = "token_account"
		resp.Token = &TokenAccount{Mint: ta.Mint.String(), Owner: ta.Owner.String(), Amount: ta.Amount}
	case codec.Decode(a.Data, &mint) == nil:
		resp.Kind = "mint"
		resp.Mint = &Mint{MintAuthority: mint.MintAuthority.String(), Supply: mint.Supply, Decimals: mint.Decimals}
	case codec.Is(a.Data, &studio):
		resp.Kind = "studio"
	case codec.Is(a.Data, &player):
		resp.Kind = "player"
	}
	return resp
}

// Derived is a derived address lookup result
type Derived struct {
	Tag       string `json:"tag"`
	Seed      string `json:"seed"`
	ProgramID string `json:"program_id"`
	Address   string `json:"address"`
	Nonce     uint8  `json:"nonce"`
}

// DerivedFromModel converts an address.Derived
func DerivedFromModel(tag address.Tag, seed, programID solana.PublicKey, d address.Derived) Derived {
	return Derived{
		Tag:       string(tag),
		Seed:      seed.String(),
		ProgramID: programID.String(),
		Address:   d.Address.String(),
		Nonce:     d.Nonce,
	}
}

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}

func keys(ks []solana.PublicKey) []string {
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = k.String()
	}
	return out
}
