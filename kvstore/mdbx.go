package kvstore

import (
	"context"
	"fmt"
	"os"

	"github.com/erigontech/mdbx-go/mdbx"
)

// tableSet lists every table this subsystem opens at startup. MDBX
// requires named databases (DBIs) to be created up front inside a write
// transaction before concurrent readers can use them.
var tableSet = []string{
	PruneCheckpoint,
	StageCheckpoint,
	AccountsHistory,
	StorageHistory,
	Receipts,
	TxLookup,
	SenderRecoveryCache,
}

// mdbxDB is the sole place this module speaks MDBX directly; everything
// else in the repo talks to the narrower Tx/RwTx interfaces.
type mdbxDB struct {
	env  *mdbx.Env
	dbis map[string]mdbx.DBI
}

// OpenMDBX opens (creating if absent) an MDBX environment at path and
// ensures every table in tableSet exists.
func OpenMDBX(path string, maxSizeBytes int64) (DB, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", path, err)
	}
	env, err := mdbx.NewEnv(mdbx.Default)
	if err != nil {
		return nil, fmt.Errorf("create mdbx env: %w", err)
	}
	if err := env.SetOption(mdbx.OptMaxDB, uint64(len(tableSet))); err != nil {
		return nil, fmt.Errorf("set mdbx max tables: %w", err)
	}
	if err := env.SetGeometry(-1, -1, int(maxSizeBytes), -1, -1, -1); err != nil {
		return nil, fmt.Errorf("set mdbx geometry: %w", err)
	}
	if err := env.Open(path, mdbx.NoSubdir, 0o644); err != nil {
		return nil, fmt.Errorf("open mdbx env at %s: %w", path, err)
	}

	db := &mdbxDB{env: env, dbis: make(map[string]mdbx.DBI, len(tableSet))}
	if err := env.Update(func(txn *mdbx.Txn) error {
		for _, name := range tableSet {
			dbi, err := txn.OpenDBI(name, mdbx.Create, nil, nil)
			if err != nil {
				return fmt.Errorf("open table %s: %w", name, err)
			}
			db.dbis[name] = dbi
		}
		return nil
	}); err != nil {
		env.Close()
		return nil, err
	}
	return db, nil
}

func (db *mdbxDB) Close() error {
	db.env.Close()
	return nil
}

func (db *mdbxDB) BeginRo(ctx context.Context) (Tx, error) {
	txn, err := db.env.BeginTxn(nil, mdbx.Readonly)
	if err != nil {
		return nil, fmt.Errorf("begin ro txn: %w", err)
	}
	return &mdbxTx{db: db, txn: txn}, nil
}

func (db *mdbxDB) BeginRw(ctx context.Context) (RwTx, error) {
	txn, err := db.env.BeginTxn(nil, 0)
	if err != nil {
		return nil, fmt.Errorf("begin rw txn: %w", err)
	}
	return &mdbxTx{db: db, txn: txn}, nil
}

type mdbxTx struct {
	db  *mdbxDB
	txn *mdbx.Txn
}

func (t *mdbxTx) dbi(table string) (mdbx.DBI, error) {
	dbi, ok := t.db.dbis[table]
	if !ok {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	return dbi, nil
}

func (t *mdbxTx) GetOne(table string, key []byte) ([]byte, bool, error) {
	dbi, err := t.dbi(table)
	if err != nil {
		return nil, false, err
	}
	v, err := t.txn.Get(dbi, key)
	if err != nil {
		if mdbx.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s: %w", table, err)
	}
	return v, true, nil
}

func (t *mdbxTx) ForEach(table string, fromKey []byte, fn func(k, v []byte) (bool, error)) error {
	dbi, err := t.dbi(table)
	if err != nil {
		return err
	}
	cur, err := t.txn.OpenCursor(dbi)
	if err != nil {
		return fmt.Errorf("open cursor %s: %w", table, err)
	}
	defer cur.Close()

	var k, v []byte
	if len(fromKey) == 0 {
		k, v, err = cur.Get(nil, nil, mdbx.First)
	} else {
		k, v, err = cur.Get(fromKey, nil, mdbx.SetRange)
	}
	for {
		if err != nil {
			if mdbx.IsNotFound(err) {
				return nil
			}
			return fmt.Errorf("cursor %s: %w", table, err)
		}
		cont, cbErr := fn(k, v)
		if cbErr != nil {
			return cbErr
		}
		if !cont {
			return nil
		}
		k, v, err = cur.Get(nil, nil, mdbx.Next)
	}
}

func (t *mdbxTx) Put(table string, key, value []byte) error {
	dbi, err := t.dbi(table)
	if err != nil {
		return err
	}
	if err := t.txn.Put(dbi, key, value, 0); err != nil {
		return fmt.Errorf("put %s: %w", table, err)
	}
	return nil
}

func (t *mdbxTx) Delete(table string, key []byte) error {
	dbi, err := t.dbi(table)
	if err != nil {
		return err
	}
	if err := t.txn.Del(dbi, key, nil); err != nil && !mdbx.IsNotFound(err) {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

func (t *mdbxTx) Commit() error {
	_, err := t.txn.Commit()
	if err != nil {
		return fmt.Errorf("commit txn: %w", err)
	}
	return nil
}

func (t *mdbxTx) Rollback() {
	t.txn.Abort()
}
