package model

import "github.com/gagliardetto/solana-go"

// Token ledger account sizes
const (
	MintSpace         = 8 + 32 + 8 + 1
	TokenAccountSpace = 8 + 32 + 32 + 8
)

// Mint describes a fungible token
type Mint struct {
	MintAuthority solana.PublicKey
	Supply        uint64
	Decimals      uint8
}

// TypeName is the account type name used for the discriminator
func (Mint) TypeName() string { return "Mint" }

// TokenAccount holds a balance of one mint on behalf of an owner.
// The owner may be a wallet key or a derived record address.
type TokenAccount struct {
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64
}

// TypeName is the account type name used for the discriminator
func (TokenAccount) TypeName() string { return "TokenAccount" }
