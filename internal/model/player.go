package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
)

// Player field limits
const (
	MaxUsernameLen = 64

	// PlayerRecordSpace is discriminator + authority + username + created_at + uri + bump
	PlayerRecordSpace = 8 + 32 + (4 + MaxUsernameLen) + 8 + (4 + MaxURILen) + 1
)

// PlayerRecord is the identity record of a player.
// Unlike studios, the authority can be reassigned.
type PlayerRecord struct {
	Authority solana.PublicKey
	Username  string
	CreatedAt int64 // unix seconds from the ledger clock
	URI       string
	Bump      uint8
}

// TypeName is the account type name used for the record discriminator
func (PlayerRecord) TypeName() string { return "PlayerAccount" }

// CreatedTime returns CreatedAt as a time.Time
func (r *PlayerRecord) CreatedTime() time.Time {
	return time.Unix(r.CreatedAt, 0).UTC()
}

// ValidateUsername checks a username fits the record
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidField)
	}
	if len(username) > MaxUsernameLen {
		return fmt.Errorf("%w: username exceeds %d bytes", ErrInvalidField, MaxUsernameLen)
	}
	return nil
}

// ValidateURI checks a uri fits a record
func ValidateURI(uri string) error {
	if len(uri) > MaxURILen {
		return fmt.Errorf("%w: uri exceeds %d bytes", ErrInvalidField, MaxURILen)
	}
	return nil
}
