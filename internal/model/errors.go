package model

import "errors"

// Common errors used across the application
var (
	// Record errors
	ErrAlreadyExists     = errors.New("account already exists at derived address")
	ErrRecordNotFound    = errors.New("record not found")
	ErrAuthorityMismatch = errors.New("signer is not the record authority")
	ErrInvalidField      = errors.New("invalid field")

	// Custody and transfer errors
	ErrCustodyNotFound    = errors.New("custody account not found")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// Address derivation errors
	ErrNoValidNonce = errors.New("no valid nonce for derived address")
	ErrInvalidSeeds = errors.New("signer seeds do not derive the account owner")

	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidAccountData = errors.New("invalid account data")
	ErrInvalidOwner       = errors.New("account has an unexpected owner")
	ErrMintNotFound       = errors.New("mint not found")
	ErrMintMismatch       = errors.New("token account belongs to a different mint")

	// Transaction errors
	ErrMissingSignature     = errors.New("missing required signature")
	ErrInvalidSignature     = errors.New("invalid signature")
	ErrDuplicateTransaction = errors.New("transaction already processed")
	ErrUnknownInstruction   = errors.New("unknown instruction")
	ErrFaucetDisabled       = errors.New("faucet is disabled")

	// Storage errors
	ErrConflict = errors.New("concurrent modification, unit of work aborted")
)
