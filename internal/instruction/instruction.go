// Package instruction defines the instructions clients submit and the signed
// transaction envelope they travel in.
package instruction

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/metaloot/registry/internal/model"
)

// Type names an instruction variant
type Type string

const (
	TypeCreateStudio            Type = "create_studio"
	TypeUpdateStudio            Type = "update_studio"
	TypeCreatePlayer            Type = "create_player"
	TypeUpdatePlayer            Type = "update_player"
	TypeInitializeCustody       Type = "initialize_custody"
	TypeInitializeStudioCustody Type = "initialize_studio_custody"
	TypeTransfer                Type = "transfer"
	TypeReward                  Type = "reward"
	TypeAirdrop                 Type = "airdrop"
	TypeCreateMint              Type = "create_mint"
	TypeCreateTokenAccount      Type = "create_token_account"
	TypeMintTo                  Type = "mint_to"
	TypeTokenTransfer           Type = "token_transfer"
)

// StudioMetadata is the wire form of a studio's mutable fields
type StudioMetadata struct {
	Name          string             `json:"name"`
	Symbol        string             `json:"symbol"`
	URI           string             `json:"uri"`
	NativeToken   solana.PublicKey   `json:"native_token"`
	NFTCollection []solana.PublicKey `json:"nft_collection,omitempty"`
}

// Model converts the wire metadata to the record metadata
func (m StudioMetadata) Model() model.StudioMetadata {
	return model.StudioMetadata{
		Name:          m.Name,
		Symbol:        m.Symbol,
		URI:           m.URI,
		NativeToken:   m.NativeToken,
		NFTCollection: m.NFTCollection,
	}
}

// CreateStudio registers a studio record
type CreateStudio struct {
	Payer     solana.PublicKey `json:"payer"`
	Seed      solana.PublicKey `json:"seed"`
	Authority solana.PublicKey `json:"authority"`
	StudioMetadata
}

// UpdateStudio replaces a studio's metadata
type UpdateStudio struct {
	Authority solana.PublicKey `json:"authority"`
	Seed      solana.PublicKey `json:"seed"`
	StudioMetadata
}

// CreatePlayer registers a player record
type CreatePlayer struct {
	Payer    solana.PublicKey `json:"payer"`
	Seed     solana.PublicKey `json:"seed"`
	Username string           `json:"username"`
	URI      string           `json:"uri"`
}

// UpdatePlayer changes the provided player fields
type UpdatePlayer struct {
	Authority    solana.PublicKey  `json:"authority"`
	Seed         solana.PublicKey  `json:"seed"`
	Username     *string           `json:"username,omitempty"`
	URI          *string           `json:"uri,omitempty"`
	NewAuthority *solana.PublicKey `json:"new_authority,omitempty"`
}

// InitializeCustody opens the custody account of a player or studio record
type InitializeCustody struct {
	Payer solana.PublicKey `json:"payer"`
	Mint  solana.PublicKey `json:"mint"`
	Seed  solana.PublicKey `json:"seed"`
}

// Transfer moves tokens between custody accounts
type Transfer struct {
	Authority     solana.PublicKey `json:"authority"`
	Mint          solana.PublicKey `json:"mint"`
	SenderSeed    solana.PublicKey `json:"sender_seed"`
	RecipientSeed solana.PublicKey `json:"recipient_seed"`
	Amount        uint64           `json:"amount"`
}

// Airdrop credits lamports from the faucet
type Airdrop struct {
	To       solana.PublicKey `json:"to"`
	Lamports uint64           `json:"lamports"`
}

// CreateMint creates a token mint at the mint key's address
type CreateMint struct {
	Payer         solana.PublicKey `json:"payer"`
	Mint          solana.PublicKey `json:"mint"`
	MintAuthority solana.PublicKey `json:"mint_authority"`
	Decimals      uint8            `json:"decimals"`
}

// CreateTokenAccount creates a token account at the address key's address
type CreateTokenAccount struct {
	Payer   solana.PublicKey `json:"payer"`
	Address solana.PublicKey `json:"address"`
	Mint    solana.PublicKey `json:"mint"`
	Owner   solana.PublicKey `json:"owner"`
}

// MintTo issues tokens into a token account
type MintTo struct {
	MintAuthority solana.PublicKey `json:"mint_authority"`
	Mint          solana.PublicKey `json:"mint"`
	Destination   solana.PublicKey `json:"destination"`
	Amount        uint64           `json:"amount"`
}

// TokenTransfer moves tokens between token accounts directly on the ledger
type TokenTransfer struct {
	Owner  solana.PublicKey `json:"owner"`
	From   solana.PublicKey `json:"from"`
	To     solana.PublicKey `json:"to"`
	Amount uint64           `json:"amount"`
}

// Instruction holds exactly one variant
type Instruction struct {
	CreateStudio            *CreateStudio       `json:"create_studio,omitempty"`
	UpdateStudio            *UpdateStudio       `json:"update_studio,omitempty"`
	CreatePlayer            *CreatePlayer       `json:"create_player,omitempty"`
	UpdatePlayer            *UpdatePlayer       `json:"update_player,omitempty"`
	InitializeCustody       *InitializeCustody  `json:"initialize_custody,omitempty"`
	InitializeStudioCustody *InitializeCustody  `json:"initialize_studio_custody,omitempty"`
	Transfer                *Transfer           `json:"transfer,omitempty"`
	Reward                  *Transfer           `json:"reward,omitempty"`
	Airdrop                 *Airdrop            `json:"airdrop,omitempty"`
	CreateMint              *CreateMint         `json:"create_mint,omitempty"`
	CreateTokenAccount      *CreateTokenAccount `json:"create_token_account,omitempty"`
	MintTo                  *MintTo             `json:"mint_to,omitempty"`
	TokenTransfer           *TokenTransfer      `json:"token_transfer,omitempty"`
}

// variant is the set variant with its type and required signers
type variant struct {
	typ     Type
	signers []solana.PublicKey
}

func (ix Instruction) variants() []variant {
	var vs []variant
	if v := ix.CreateStudio; v != nil {
		vs = append(vs, variant{TypeCreateStudio, []solana.PublicKey{v.Payer}})
	}
	if v := ix.UpdateStudio; v != nil {
		vs = append(vs, variant{TypeUpdateStudio, []solana.PublicKey{v.Authority}})
	}
	if v := ix.CreatePlayer; v != nil {
		vs = append(vs, variant{TypeCreatePlayer, []solana.PublicKey{v.Payer}})
	}
	if v := ix.UpdatePlayer; v != nil {
		vs = append(vs, variant{TypeUpdatePlayer, []solana.PublicKey{v.Authority}})
	}
	if v := ix.InitializeCustody; v != nil {
		vs = append(vs, variant{TypeInitializeCustody, []solana.PublicKey{v.Payer}})
	}
	if v := ix.InitializeStudioCustody; v != nil {
		vs = append(vs, variant{TypeInitializeStudioCustody, []solana.PublicKey{v.Payer}})
	}
	if v := ix.Transfer; v != nil {
		vs = append(vs, variant{TypeTransfer, []solana.PublicKey{v.Authority}})
	}
	if v := ix.Reward; v != nil {
		vs = append(vs, variant{TypeReward, []solana.PublicKey{v.Authority}})
	}
	if v := ix.Airdrop; v != nil {
		vs = append(vs, variant{TypeAirdrop, nil})
	}
	if v := ix.CreateMint; v != nil {
		vs = append(vs, variant{TypeCreateMint, []solana.PublicKey{v.Payer, v.Mint}})
	}
	if v := ix.CreateTokenAccount; v != nil {
		vs = append(vs, variant{TypeCreateTokenAccount, []solana.PublicKey{v.Payer, v.Address}})
	}
	if v := ix.MintTo; v != nil {
		vs = append(vs, variant{TypeMintTo, []solana.PublicKey{v.MintAuthority}})
	}
	if v := ix.TokenTransfer; v != nil {
		vs = append(vs, variant{TypeTokenTransfer, []solana.PublicKey{v.Owner}})
	}
	return vs
}

func (ix Instruction) variant() (variant, error) {
	vs := ix.variants()
	if len(vs) != 1 {
		return variant{}, fmt.Errorf("%w: instruction must set exactly one variant, got %d", model.ErrUnknownInstruction, len(vs))
	}
	return vs[0], nil
}

// Type returns the variant's type
func (ix Instruction) Type() (Type, error) {
	v, err := ix.variant()
	return v.typ, err
}

// Signers returns the keys that must sign a transaction carrying ix
func (ix Instruction) Signers() ([]solana.PublicKey, error) {
	v, err := ix.variant()
	if err != nil {
		return nil, err
	}
	for _, key := range v.signers {
		if key.IsZero() {
			return nil, fmt.Errorf("%w: %s requires a signer key", model.ErrMissingSignature, v.typ)
		}
	}
	return v.signers, nil
}
