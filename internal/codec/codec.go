// Package codec encodes account data: an 8-byte type discriminator followed by
// the Borsh encoding of the record, zero-padded to the allocated space.
package codec

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"

	"github.com/metaloot/registry/internal/model"
)

// DiscriminatorLen is the length of the account type prefix
const DiscriminatorLen = 8

// Record is any account payload with a stable type name
type Record interface {
	TypeName() string
}

// Discriminator returns the account type prefix for typeName
func Discriminator(typeName string) []byte {
	return bin.SighashAccount(typeName)
}

// Encode serializes v into exactly space bytes
func Encode(v Record, space int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(Discriminator(v.TypeName()))
	if err := bin.NewBorshEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode %s: %w", v.TypeName(), err)
	}
	if buf.Len() > space {
		return nil, fmt.Errorf("%w: %s needs %d bytes, account has %d", model.ErrInvalidField, v.TypeName(), buf.Len(), space)
	}
	data := make([]byte, space)
	copy(data, buf.Bytes())
	return data, nil
}

// Decode deserializes data into v, which must be a pointer to a Record
func Decode(data []byte, v Record) error {
	if !Is(data, v) {
		return fmt.Errorf("%w: not a %s account", model.ErrInvalidAccountData, v.TypeName())
	}
	if err := bin.NewBorshDecoder(data[DiscriminatorLen:]).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", model.ErrInvalidAccountData, v.TypeName(), err)
	}
	return nil
}

// Is reports whether data carries the discriminator of v's type
func Is(data []byte, v Record) bool {
	return len(data) >= DiscriminatorLen && bytes.Equal(data[:DiscriminatorLen], Discriminator(v.TypeName()))
}
