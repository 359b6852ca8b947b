package staticfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecCompressDecompressRoundTrip(t *testing.T) {
	c := &codec{}
	original := []byte("a reasonably repetitive payload a reasonably repetitive payload")

	compressed := c.compress(nil, original)
	assert.NotEmpty(t, compressed)

	decompressed, err := c.decompress(nil, compressed)
	require.NoError(t, err)
	assert.Equal(t, original, decompressed)
}

func TestCodecEmptyPayload(t *testing.T) {
	c := &codec{}
	compressed := c.compress(nil, []byte{})
	decompressed, err := c.decompress(nil, compressed)
	require.NoError(t, err)
	assert.Empty(t, decompressed)
}

func TestSharedCodecIsReusable(t *testing.T) {
	a := sharedCodec.compress(nil, []byte("one"))
	b := sharedCodec.compress(nil, []byte("two"))

	outA, err := sharedCodec.decompress(nil, a)
	require.NoError(t, err)
	outB, err := sharedCodec.decompress(nil, b)
	require.NoError(t, err)
	assert.Equal(t, "one", string(outA))
	assert.Equal(t, "two", string(outB))
}
