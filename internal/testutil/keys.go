package testutil

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

// NewKey returns a fresh random keypair.
func NewKey(t testing.TB) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

// NewPublicKey returns the public half of a fresh random keypair.
// Handy for seed keys, which never sign.
func NewPublicKey(t testing.TB) solana.PublicKey {
	t.Helper()
	return NewKey(t).PublicKey()
}
