package model

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Studio field limits
const (
	MaxStudioNameLen   = 32
	MaxStudioSymbolLen = 32
	MaxURILen          = 200
	MaxNFTCollections  = 5

	// StudioRecordSpace is discriminator + name + symbol + uri + authority +
	// native token + collection list + bump
	StudioRecordSpace = 8 + (4 + MaxStudioNameLen) + (4 + MaxStudioSymbolLen) + (4 + MaxURILen) +
		32 + 32 + (4 + 32*MaxNFTCollections) + 1
)

// StudioMetadata is the mutable part of a studio record
type StudioMetadata struct {
	Name          string
	Symbol        string
	URI           string
	NativeToken   solana.PublicKey
	NFTCollection []solana.PublicKey
}

// Validate checks the metadata fits the allocated record space
func (m StudioMetadata) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidField)
	}
	if strings.TrimSpace(m.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidField)
	}
	if len(m.Name) > MaxStudioNameLen {
		return fmt.Errorf("%w: name exceeds %d bytes", ErrInvalidField, MaxStudioNameLen)
	}
	if len(m.Symbol) > MaxStudioSymbolLen {
		return fmt.Errorf("%w: symbol exceeds %d bytes", ErrInvalidField, MaxStudioSymbolLen)
	}
	if len(m.URI) > MaxURILen {
		return fmt.Errorf("%w: uri exceeds %d bytes", ErrInvalidField, MaxURILen)
	}
	if len(m.NFTCollection) > MaxNFTCollections {
		return fmt.Errorf("%w: at most %d nft collections", ErrInvalidField, MaxNFTCollections)
	}
	return nil
}

// StudioRecord is the registry entry for a game studio.
// Authority is fixed at creation.
type StudioRecord struct {
	Name          string
	Symbol        string
	URI           string
	Authority     solana.PublicKey
	NativeToken   solana.PublicKey
	NFTCollection []solana.PublicKey
	Bump          uint8
}

// TypeName is the account type name used for the record discriminator
func (StudioRecord) TypeName() string { return "GameRegistryMetadata" }

// Metadata returns the mutable fields of the record
func (r *StudioRecord) Metadata() StudioMetadata {
	return StudioMetadata{
		Name:          r.Name,
		Symbol:        r.Symbol,
		URI:           r.URI,
		NativeToken:   r.NativeToken,
		NFTCollection: r.NFTCollection,
	}
}

// Apply overwrites every mutable field with m
func (r *StudioRecord) Apply(m StudioMetadata) {
	r.Name = m.Name
	r.Symbol = m.Symbol
	r.URI = m.URI
	r.NativeToken = m.NativeToken
	r.NFTCollection = append([]solana.PublicKey{}, m.NFTCollection...)
}
