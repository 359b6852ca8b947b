package staticfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeIndexFind(t *testing.T) {
	ri := newRangeIndex()
	ri.put(FixedRange{From: 0, To: 500_000}, descriptor{Range: FixedRange{From: 0, To: 500_000}})
	ri.put(FixedRange{From: 500_000, To: 1_000_000}, descriptor{Range: FixedRange{From: 500_000, To: 1_000_000}})
	ri.put(FixedRange{From: 1_000_000, To: 1_500_000}, descriptor{Range: FixedRange{From: 1_000_000, To: 1_500_000}})

	e, ok := ri.find(750_000)
	assert.True(t, ok)
	assert.Equal(t, uint64(500_000), e.rng.From)

	e, ok = ri.find(0)
	assert.True(t, ok)
	assert.Equal(t, uint64(0), e.rng.From)

	_, ok = ri.find(2_000_000)
	assert.False(t, ok)
}

func TestRangeIndexDelete(t *testing.T) {
	ri := newRangeIndex()
	rng := FixedRange{From: 0, To: 500_000}
	ri.put(rng, descriptor{Range: rng})
	assert.Equal(t, 1, ri.len())

	ri.delete(rng)
	assert.Equal(t, 0, ri.len())
	_, ok := ri.find(100)
	assert.False(t, ok)
}

func TestRangeIndexHighest(t *testing.T) {
	ri := newRangeIndex()
	_, ok := ri.highest()
	assert.False(t, ok)

	ri.put(FixedRange{From: 0, To: 500_000}, descriptor{})
	ri.put(FixedRange{From: 1_000_000, To: 1_500_000}, descriptor{})
	ri.put(FixedRange{From: 500_000, To: 1_000_000}, descriptor{})

	e, ok := ri.highest()
	assert.True(t, ok)
	assert.Equal(t, uint64(1_000_000), e.rng.From)
}

func TestRangeIndexAscendDescendOrder(t *testing.T) {
	ri := newRangeIndex()
	ri.put(FixedRange{From: 1_000_000, To: 1_500_000}, descriptor{})
	ri.put(FixedRange{From: 0, To: 500_000}, descriptor{})
	ri.put(FixedRange{From: 500_000, To: 1_000_000}, descriptor{})

	var ascended []uint64
	ri.ascend(func(e partitionEntry) bool {
		ascended = append(ascended, e.rng.From)
		return true
	})
	assert.Equal(t, []uint64{0, 500_000, 1_000_000}, ascended)

	var descended []uint64
	ri.descend(func(e partitionEntry) bool {
		descended = append(descended, e.rng.From)
		return true
	})
	assert.Equal(t, []uint64{1_000_000, 500_000, 0}, descended)
}
