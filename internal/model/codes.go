package model

import "errors"

// Error codes reported to clients and used as metric labels
const (
	CodeAlreadyExists     = "ALREADY_EXISTS"
	CodeRecordNotFound    = "RECORD_NOT_FOUND"
	CodeAccountNotFound   = "ACCOUNT_NOT_FOUND"
	CodeCustodyNotFound   = "CUSTODY_NOT_FOUND"
	CodeMintNotFound      = "MINT_NOT_FOUND"
	CodeAuthorityMismatch = "AUTHORITY_MISMATCH"
	CodeInvalidSignature  = "INVALID_SIGNATURE"
	CodeMissingSignature  = "MISSING_SIGNATURE"
	CodeInvalidSeeds      = "INVALID_SEEDS"
	CodeInvalidField      = "INVALID_FIELD"
	CodeInvalidAmount     = "INVALID_AMOUNT"
	CodeInvalidOwner      = "INVALID_OWNER"
	CodeInvalidData       = "INVALID_ACCOUNT_DATA"
	CodeMintMismatch      = "MINT_MISMATCH"
	CodeUnknown           = "UNKNOWN_INSTRUCTION"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeOverflow          = "ARITHMETIC_OVERFLOW"
	CodeNoValidNonce      = "NO_VALID_NONCE"
	CodeDuplicate         = "DUPLICATE_TRANSACTION"
	CodeConflict          = "CONFLICT"
	CodeFaucetDisabled    = "FAUCET_DISABLED"
	CodeInternal          = "INTERNAL_ERROR"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrAlreadyExists, CodeAlreadyExists},
	{ErrRecordNotFound, CodeRecordNotFound},
	{ErrAccountNotFound, CodeAccountNotFound},
	{ErrCustodyNotFound, CodeCustodyNotFound},
	{ErrMintNotFound, CodeMintNotFound},
	{ErrAuthorityMismatch, CodeAuthorityMismatch},
	{ErrInvalidSignature, CodeInvalidSignature},
	{ErrMissingSignature, CodeMissingSignature},
	{ErrInvalidSeeds, CodeInvalidSeeds},
	{ErrInvalidField, CodeInvalidField},
	{ErrInvalidAmount, CodeInvalidAmount},
	{ErrInvalidOwner, CodeInvalidOwner},
	{ErrInvalidAccountData, CodeInvalidData},
	{ErrMintMismatch, CodeMintMismatch},
	{ErrUnknownInstruction, CodeUnknown},
	{ErrInsufficientFunds, CodeInsufficientFunds},
	{ErrArithmeticOverflow, CodeOverflow},
	{ErrNoValidNonce, CodeNoValidNonce},
	{ErrDuplicateTransaction, CodeDuplicate},
	{ErrConflict, CodeConflict},
	{ErrFaucetDisabled, CodeFaucetDisabled},
}

// ErrorCode maps err to its client-facing code
func ErrorCode(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}
