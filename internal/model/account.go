package model

import (
	"bytes"

	"github.com/gagliardetto/solana-go"
)

// Account is a single entry of the ledger's account arena.
// An address is occupied iff an Account exists for it.
type Account struct {
	Address  solana.PublicKey
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

// Clone returns a deep copy so callers can mutate Data freely
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Data = bytes.Clone(a.Data)
	return &c
}

// IsWallet reports whether the account is a plain lamport-holding wallet
func (a *Account) IsWallet() bool {
	return a.Owner.Equals(solana.SystemProgramID) && len(a.Data) == 0
}
