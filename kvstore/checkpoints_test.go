package kvstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u64(v uint64) *uint64 { return &v }

func TestEncodeDecodeCheckpointRoundTrip(t *testing.T) {
	cases := []PruneCheckpoint{
		{BlockNumber: nil, TxNumber: nil, Mode: PruneModeWire{Kind: 0, Value: 0}},
		{BlockNumber: u64(0), TxNumber: u64(0), Mode: PruneModeWire{Kind: 1, Value: 128_000_000}},
		{BlockNumber: u64(18_446_744_073_709_551_615), TxNumber: nil, Mode: PruneModeWire{Kind: 2, Value: 500}},
	}
	for _, want := range cases {
		got, err := decodeCheckpoint(encodeCheckpoint(want))
		require.NoError(t, err)
		assert.Equal(t, want.Mode, got.Mode)
		if want.BlockNumber == nil {
			assert.Nil(t, got.BlockNumber)
		} else {
			require.NotNil(t, got.BlockNumber)
			assert.Equal(t, *want.BlockNumber, *got.BlockNumber)
		}
		if want.TxNumber == nil {
			assert.Nil(t, got.TxNumber)
		} else {
			require.NotNil(t, got.TxNumber)
			assert.Equal(t, *want.TxNumber, *got.TxNumber)
		}
	}
}

func TestDecodeCheckpointTruncated(t *testing.T) {
	_, err := decodeCheckpoint(nil)
	assert.Error(t, err)

	_, err = decodeCheckpoint([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDecodeOptionalU64Absent(t *testing.T) {
	v, rest, err := decodeOptionalU64([]byte{0, 0xFF})
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, []byte{0xFF}, rest)
}

func TestDecodeOptionalU64Present(t *testing.T) {
	encoded := encodeOptionalU64(u64(7))
	v, rest, err := decodeOptionalU64(encoded)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, uint64(7), *v)
	assert.Empty(t, rest)
}
