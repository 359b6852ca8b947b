// Package kvstore defines the transactional-tier storage interfaces the
// archival and pruning subsystem uses for checkpoints and DB-resident
// history tables. The interfaces are intentionally narrow and
// locally-owned rather than a direct dependency on erigon-lib/kv's full
// surface, so the one place that actually speaks MDBX (mdbx.go) stays
// small and swappable.
package kvstore

import "context"

// Tx is a read-only database transaction.
type Tx interface {
	GetOne(table string, key []byte) (value []byte, ok bool, err error)
	// ForEach iterates key/value pairs in table starting at fromKey
	// (inclusive) in key order, calling fn until it returns false or an
	// error, or the table is exhausted.
	ForEach(table string, fromKey []byte, fn func(k, v []byte) (bool, error)) error
	Commit() error
	Rollback()
}

// RwTx is a read-write database transaction.
type RwTx interface {
	Tx
	Put(table string, key, value []byte) error
	Delete(table string, key []byte) error
}

// DB opens transactions against the transactional tier.
type DB interface {
	BeginRo(ctx context.Context) (Tx, error)
	BeginRw(ctx context.Context) (RwTx, error)
	Close() error
}
