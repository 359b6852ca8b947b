// Copyright 2024 The Erigon Authors
// SPDX-License-Identifier: LGPL-3.0-only
package staticfile

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/erigontech/erigon-archive/types"
)

// Jar is the read-only query surface over a Provider, named after reth's
// JarProvider (original_source/.../providers/static_file/jar.rs): typed
// cursor-style lookups that hide the offset-index/mmap machinery from
// callers.
type Jar struct {
	headers      *Provider
	transactions *Provider
	receipts     *Provider
	sidecars     *Provider
	requests     *Provider
}

// NewJar composes a Jar from one Provider per segment kind; each Provider
// may own its own directory, as cmd/archivenoded wires them. A nil
// sidecars or requests Provider makes the matching lookup report absent.
func NewJar(headers, transactions, receipts, sidecars, requests *Provider) *Jar {
	return &Jar{headers: headers, transactions: transactions, receipts: receipts, sidecars: sidecars, requests: requests}
}

func (j *Jar) HeaderByNumber(n types.BlockNumber) (types.Header, *uint256.Int, bool, error) {
	f, release, _, ok, err := j.headers.open(Headers, n)
	if err != nil {
		return types.Header{}, nil, false, err
	}
	if !ok {
		return types.Header{}, nil, false, nil
	}
	defer release()
	raw, present, err := f.read(n)
	if err != nil || !present {
		return types.Header{}, nil, present, err
	}
	h, td, err := decodeHeaderRecord(raw, n)
	return h, td, true, err
}

func (j *Jar) TransactionByNumber(txNum types.TxNumber) (types.Transaction, bool, error) {
	f, release, _, ok, err := j.transactions.open(Transactions, txNum)
	if err != nil {
		return types.Transaction{}, false, err
	}
	if !ok {
		return types.Transaction{}, false, nil
	}
	defer release()
	raw, present, err := f.read(txNum)
	if err != nil || !present {
		return types.Transaction{}, present, err
	}
	return types.Transaction{Payload: append([]byte(nil), raw...)}, true, nil
}

func (j *Jar) ReceiptByTxNumber(txNum types.TxNumber) (*types.Receipt, bool, error) {
	f, release, _, ok, err := j.receipts.open(Receipts, txNum)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	defer release()
	raw, present, err := f.read(txNum)
	if err != nil {
		return nil, false, err
	}
	if !present {
		// Present-in-partition but pruned-at-source: a hole, not an error.
		return nil, true, nil
	}
	return &types.Receipt{Payload: append([]byte(nil), raw...)}, true, nil
}

// ReceiptsByBlock returns every receipt for a block given its canonical
// [startTx,endTx) range, preserving nil entries for pruned positions. The
// range is resolved by the caller (from the Transactions partition's
// per-block bookkeeping or a DB-resident tx-lookup table).
func (j *Jar) ReceiptsByBlock(startTx, endTx types.TxNumber) ([]*types.Receipt, error) {
	out := make([]*types.Receipt, 0, endTx-startTx)
	for tx := startTx; tx < endTx; tx++ {
		r, _, err := j.ReceiptByTxNumber(tx)
		if err != nil {
			return nil, fmt.Errorf("receipt %d: %w", tx, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (j *Jar) SidecarsByNumber(n types.BlockNumber) ([]types.BlobSidecar, types.Hash, bool, error) {
	if j.sidecars == nil {
		return nil, types.Hash{}, false, nil
	}
	f, release, _, ok, err := j.sidecars.open(Sidecars, n)
	if err != nil {
		return nil, types.Hash{}, false, err
	}
	if !ok {
		return nil, types.Hash{}, false, nil
	}
	defer release()
	raw, present, err := f.read(n)
	if err != nil || !present {
		return nil, types.Hash{}, present, err
	}
	hash, sidecars, err := decodeSidecarRecord(raw)
	return sidecars, hash, true, err
}

// RequestsByNumber reads the auxiliary EIP-7685 requests payload for a
// block, if the Requests segment is wired.
func (j *Jar) RequestsByNumber(n types.BlockNumber) ([]byte, bool, error) {
	if j.requests == nil {
		return nil, false, nil
	}
	f, release, _, ok, err := j.requests.open(Requests, n)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	defer release()
	raw, present, err := f.read(n)
	if err != nil || !present {
		return nil, present, err
	}
	return append([]byte(nil), raw...), true, nil
}

// BlockTxRange looks up the [start,end) tx range owned by block n within
// the Transactions partition that covers it — the "auxiliary jar"
// composition reth uses to answer receipts-by-block without a separate
// index (jar.rs with_auxiliary).
func (j *Jar) BlockTxRange(n types.BlockNumber) (start, end types.TxNumber, ok bool) {
	j.transactions.mu.Lock()
	defer j.transactions.mu.Unlock()
	// Block n's tx span is recorded only in the partitions' BlockRanges
	// bookkeeping, so scan it rather than the range index.
	var resFound bool
	j.transactions.indexes[Transactions].ascend(func(e partitionEntry) bool {
		for _, br := range e.desc.BlockRanges {
			if br.Block == n {
				start, end, ok, resFound = br.Start, br.End, true, true
				return false
			}
		}
		return true
	})
	return start, end, ok && resFound
}
