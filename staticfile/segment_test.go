package staticfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindFixedRange(t *testing.T) {
	cases := []struct {
		block, width uint64
		wantFrom, wantTo uint64
	}{
		{0, 500_000, 0, 500_000},
		{499_999, 500_000, 0, 500_000},
		{500_000, 500_000, 500_000, 1_000_000},
		{999_999, 500_000, 500_000, 1_000_000},
		{1_000_000, 500_000, 1_000_000, 1_500_000},
	}
	for _, c := range cases {
		rng := FindFixedRange(c.block, c.width)
		assert.Equal(t, c.wantFrom, rng.From, "block %d", c.block)
		assert.Equal(t, c.wantTo, rng.To, "block %d", c.block)
		assert.True(t, rng.Contains(c.block))
	}
}

func TestFixedRangeContainsBoundaries(t *testing.T) {
	rng := FixedRange{From: 100, To: 200}
	assert.False(t, rng.Contains(99))
	assert.True(t, rng.Contains(100))
	assert.True(t, rng.Contains(199))
	assert.False(t, rng.Contains(200))
}

func TestFileNamesAllThreeShareStem(t *testing.T) {
	rng := FixedRange{From: 0, To: 500_000}
	data, conf, offsets := FileNames(Headers, rng)
	assert.Equal(t, "v1-000000-500000-headers.seg", data)
	assert.Equal(t, "v1-000000-500000-headers.conf", conf)
	assert.Equal(t, "v1-000000-500000-headers.off", offsets)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "headers", Headers.String())
	assert.Equal(t, "transactions", Transactions.String())
	assert.Equal(t, "receipts", Receipts.String())
	assert.Equal(t, "sidecars", Sidecars.String())
	assert.Equal(t, "requests", Requests.String())
}
