package staticfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsetIndexAppendAndLookup(t *testing.T) {
	idx := newOffsetIndex(1000)
	idx.append(0)
	idx.append(50)
	idx.appendMissing(90) // logical number 1002 is a hole
	idx.append(90)
	idx.append(140) // trailing sentinel

	assert.Equal(t, 4, idx.count())

	start, end, ok := idx.lookup(1000)
	assert.True(t, ok)
	assert.Equal(t, uint64(0), start)
	assert.Equal(t, uint64(50), end)

	_, _, ok = idx.lookup(1002)
	assert.False(t, ok, "pruned-at-source hole must report absent")

	start, end, ok = idx.lookup(1003)
	assert.True(t, ok)
	assert.Equal(t, uint64(90), start)
	assert.Equal(t, uint64(140), end)

	_, _, ok = idx.lookup(999)
	assert.False(t, ok, "below base")
	_, _, ok = idx.lookup(1010)
	assert.False(t, ok, "past the end")
}

func TestOffsetIndexTruncate(t *testing.T) {
	idx := newOffsetIndex(0)
	for _, off := range []uint64{0, 10, 20, 30, 40} {
		idx.append(off)
	}
	assert.Equal(t, 4, idx.count())

	idx.truncate(2)
	assert.Equal(t, 2, idx.count())
	_, _, ok := idx.lookup(1)
	assert.True(t, ok)
	_, _, ok = idx.lookup(2)
	assert.False(t, ok)
}

func TestOffsetIndexTruncateClampsAtZero(t *testing.T) {
	idx := newOffsetIndex(0)
	idx.append(0)
	idx.append(10)
	idx.truncate(100)
	assert.Equal(t, 0, idx.count())
}

func TestOffsetIndexWriteReadRoundTrip(t *testing.T) {
	idx := newOffsetIndex(42)
	idx.append(0)
	idx.appendMissing(10)
	idx.append(10)
	idx.append(55)

	path := filepath.Join(t.TempDir(), "test.off")
	require.NoError(t, idx.writeFile(path))

	loaded, err := readOffsetIndex(path)
	require.NoError(t, err)
	assert.Equal(t, idx.base, loaded.base)
	assert.Equal(t, idx.count(), loaded.count())

	_, _, ok := loaded.lookup(43)
	assert.False(t, ok, "hole must survive the round trip")
	_, _, ok = loaded.lookup(42)
	assert.True(t, ok)
	_, _, ok = loaded.lookup(44)
	assert.True(t, ok)
}
