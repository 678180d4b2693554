package codec

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaloot/registry/internal/model"
	"github.com/metaloot/registry/internal/testutil"
)

func TestStudioRecordFitsAllocatedSpace(t *testing.T) {
	collections := make([]solana.PublicKey, model.MaxNFTCollections)
	for i := range collections {
		collections[i] = testutil.NewPublicKey(t)
	}
	record := &model.StudioRecord{
		Name:          string(make([]byte, model.MaxStudioNameLen)),
		Symbol:        string(make([]byte, model.MaxStudioSymbolLen)),
		URI:           string(make([]byte, model.MaxURILen)),
		Authority:     testutil.NewPublicKey(t),
		NativeToken:   testutil.NewPublicKey(t),
		NFTCollection: collections,
		Bump:          254,
	}

	data, err := Encode(record, model.StudioRecordSpace)
	require.NoError(t, err)
	assert.Len(t, data, model.StudioRecordSpace)

	var decoded model.StudioRecord
	require.NoError(t, Decode(data, &decoded))
	assert.Equal(t, record.Authority, decoded.Authority)
	assert.Equal(t, record.NFTCollection, decoded.NFTCollection)
	assert.Equal(t, uint8(254), decoded.Bump)
}

func TestPlayerRecordPaddedToSpace(t *testing.T) {
	record := &model.PlayerRecord{
		Authority: testutil.NewPublicKey(t),
		Username:  "testPlayer123",
		CreatedAt: 1704110400,
		URI:       "https://example.com/p.json",
		Bump:      255,
	}

	data, err := Encode(record, model.PlayerRecordSpace)
	require.NoError(t, err)
	assert.Len(t, data, model.PlayerRecordSpace)
	assert.Equal(t, Discriminator("PlayerAccount"), data[:DiscriminatorLen])

	var decoded model.PlayerRecord
	require.NoError(t, Decode(data, &decoded))
	assert.Equal(t, *record, decoded)
}

func TestEncodeRejectsOversizedRecord(t *testing.T) {
	record := &model.PlayerRecord{Username: string(make([]byte, 500))}

	_, err := Encode(record, model.PlayerRecordSpace)

	assert.ErrorIs(t, err, model.ErrInvalidField)
}

func TestDecodeRejectsWrongType(t *testing.T) {
	data, err := Encode(&model.TokenAccount{Amount: 10}, model.TokenAccountSpace)
	require.NoError(t, err)

	var record model.PlayerRecord
	err = Decode(data, &record)

	assert.ErrorIs(t, err, model.ErrInvalidAccountData)
	assert.False(t, Is(data, record))
	assert.True(t, Is(data, model.TokenAccount{}))
}

func TestDecodeRejectsShortData(t *testing.T) {
	var mint model.Mint
	assert.ErrorIs(t, Decode([]byte{1, 2, 3}, &mint), model.ErrInvalidAccountData)
}
