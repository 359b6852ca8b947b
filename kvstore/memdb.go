package kvstore

import (
	"context"
	"sort"
	"sync"
)

// memDB is an in-memory DB for tests, analogous to erigon-lib's
// kv/memdb test backend: a real implementation of the Tx/RwTx/DB
// interfaces backed by plain maps instead of MDBX, so prune-segment and
// checkpoint tests exercise the real encode/decode and iteration paths
// without needing an mdbx-go environment.
type memDB struct {
	mu     sync.Mutex
	tables map[string]map[string][]byte
}

// NewMemDB returns a DB suitable for tests.
func NewMemDB() DB {
	return &memDB{tables: make(map[string]map[string][]byte)}
}

func (d *memDB) table(name string) map[string][]byte {
	t, ok := d.tables[name]
	if !ok {
		t = make(map[string][]byte)
		d.tables[name] = t
	}
	return t
}

func (d *memDB) BeginRo(context.Context) (Tx, error) { return &memTx{db: d}, nil }
func (d *memDB) BeginRw(context.Context) (RwTx, error) { return &memTx{db: d}, nil }
func (d *memDB) Close() error                          { return nil }

type memTx struct {
	db *memDB
}

func (t *memTx) GetOne(table string, key []byte) ([]byte, bool, error) {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	v, ok := t.db.table(table)[string(key)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (t *memTx) ForEach(table string, fromKey []byte, fn func(k, v []byte) (bool, error)) error {
	t.db.mu.Lock()
	tbl := t.db.table(table)
	keys := make([]string, 0, len(tbl))
	for k := range tbl {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	from := string(fromKey)
	snapshot := make(map[string][]byte, len(tbl))
	for k, v := range tbl {
		snapshot[k] = v
	}
	t.db.mu.Unlock()

	for _, k := range keys {
		if k < from {
			continue
		}
		cont, err := fn([]byte(k), snapshot[k])
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}

func (t *memTx) Put(table string, key, value []byte) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	t.db.table(table)[string(key)] = v
	return nil
}

func (t *memTx) Delete(table string, key []byte) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	delete(t.db.table(table), string(key))
	return nil
}

func (t *memTx) Commit() error { return nil }
func (t *memTx) Rollback()     {}
