package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemDBPutGetOneRoundTrip(t *testing.T) {
	db := NewMemDB()
	tx, err := db.BeginRw(context.Background())
	require.NoError(t, err)

	require.NoError(t, tx.Put("tbl", []byte("k1"), []byte("v1")))
	v, ok, err := tx.GetOne("tbl", []byte("k1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), v)

	_, ok, err = tx.GetOne("tbl", []byte("missing"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemDBForEachOrdersByKeyAndRespectsFromKey(t *testing.T) {
	db := NewMemDB()
	tx, err := db.BeginRw(context.Background())
	require.NoError(t, err)
	for _, k := range []string{"c", "a", "b"} {
		require.NoError(t, tx.Put("tbl", []byte(k), []byte(k)))
	}

	var seen []string
	require.NoError(t, tx.ForEach("tbl", []byte("b"), func(k, v []byte) (bool, error) {
		seen = append(seen, string(k))
		return true, nil
	}))
	assert.Equal(t, []string{"b", "c"}, seen)
}

func TestMemDBForEachStopsWhenFnReturnsFalse(t *testing.T) {
	db := NewMemDB()
	tx, err := db.BeginRw(context.Background())
	require.NoError(t, err)
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, tx.Put("tbl", []byte(k), []byte(k)))
	}

	var seen []string
	require.NoError(t, tx.ForEach("tbl", nil, func(k, v []byte) (bool, error) {
		seen = append(seen, string(k))
		return len(seen) < 2, nil
	}))
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestMemDBDeleteRemovesKey(t *testing.T) {
	db := NewMemDB()
	tx, err := db.BeginRw(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Put("tbl", []byte("k"), []byte("v")))
	require.NoError(t, tx.Delete("tbl", []byte("k")))

	_, ok, err := tx.GetOne("tbl", []byte("k"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemDBGetOneReturnsIndependentCopy(t *testing.T) {
	db := NewMemDB()
	tx, err := db.BeginRw(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Put("tbl", []byte("k"), []byte("v")))

	v, _, err := tx.GetOne("tbl", []byte("k"))
	require.NoError(t, err)
	v[0] = 'x'

	v2, _, err := tx.GetOne("tbl", []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v2, "mutating a read copy must not affect stored data")
}

func TestMemDBTablesAreIndependent(t *testing.T) {
	db := NewMemDB()
	tx, err := db.BeginRw(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Put("tblA", []byte("k"), []byte("a")))
	require.NoError(t, tx.Put("tblB", []byte("k"), []byte("b")))

	va, _, err := tx.GetOne("tblA", []byte("k"))
	require.NoError(t, err)
	vb, _, err := tx.GetOne("tblB", []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), va)
	assert.Equal(t, []byte("b"), vb)
}
