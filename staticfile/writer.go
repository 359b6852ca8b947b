// Copyright 2024 The Erigon Authors
// SPDX-License-Identifier: LGPL-3.0-only
package staticfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/holiman/uint256"

	"github.com/erigontech/erigon-archive/types"
)

// blockTxRange records, for one block inside a Transactions/Receipts
// partition, the half-open [Start,End) range of tx numbers it owns —
// written by IncrementBlock and consulted by truncation and by readers
// resolving a transaction range from a block number.
type blockTxRange struct {
	Block types.BlockNumber
	Start types.TxNumber
	End   types.TxNumber
}

// Writer is the exclusive handle for appending to one (segment, partition).
// Ownership: exclusively owned by its writer while open; after Commit,
// ownership transfers to the Provider.
type Writer struct {
	dir   string
	kind  Kind
	rng   FixedRange
	base  uint64 // first logical number (block or tx) this partition starts at
	lock  *flock.Flock
	data  *os.File
	idx   *offsetIndex
	ranges []blockTxRange
	curBlockStart types.TxNumber
	curBlockOpen  bool
	committed bool
}

func dataPath(dir string, kind Kind, r FixedRange) string {
	name, _, _ := FileNames(kind, r)
	return filepath.Join(dir, name)
}

func confPath(dir string, kind Kind, r FixedRange) string {
	_, name, _ := FileNames(kind, r)
	return filepath.Join(dir, name)
}

func offPath(dir string, kind Kind, r FixedRange) string {
	_, _, name := FileNames(kind, r)
	return filepath.Join(dir, name)
}

// openWriter creates (or reopens an as-yet-uncommitted) exclusive writer
// for (kind, r). base is the first logical number this partition will
// hold (the block number for Headers/Sidecars, the starting tx number for
// Transactions/Receipts).
func openWriter(dir string, kind Kind, r FixedRange, base uint64) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	lockPath := dataPath(dir, kind, r) + ".lock"
	lk := flock.New(lockPath)
	ok, err := lk.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock partition %s/%s: %w", kind, r, err)
	}
	if !ok {
		return nil, fmt.Errorf("partition %s/%s already has an open writer", kind, r)
	}

	f, err := os.OpenFile(dataPath(dir, kind, r), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		_ = lk.Unlock()
		return nil, fmt.Errorf("open data file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		_ = lk.Unlock()
		return nil, err
	}

	w := &Writer{dir: dir, kind: kind, rng: r, base: base, lock: lk, data: f, idx: newOffsetIndex(base), curBlockStart: base}
	if info.Size() > 0 {
		// Reopening a partition that already holds data (a sealed partition
		// extended by a later Commit, or a partially written one): pick up
		// where the on-disk offset index left off, if present, dropping its
		// trailing sentinel and restoring the base and per-block ranges.
		if existing, err := readOffsetIndex(offPath(dir, kind, r)); err == nil {
			if n := len(existing.offsets); n > 0 {
				existing.offsets = existing.offsets[:n-1]
			}
			w.idx = existing
			w.base = existing.base
			w.curBlockStart = existing.base + uint64(len(existing.offsets))
			if d, err := readDescriptor(confPath(dir, kind, r)); err == nil {
				w.ranges = d.BlockRanges
			}
		}
	}
	return w, nil
}

func (w *Writer) currentOffset() (uint64, error) {
	off, err := w.data.Seek(0, os.SEEK_END)
	if err != nil {
		return 0, err
	}
	return uint64(off), nil
}

func (w *Writer) writeEntry(payload []byte) error {
	off, err := w.currentOffset()
	if err != nil {
		return err
	}
	compressed := sharedCodec.compress(nil, payload)
	if _, err := w.data.Write(compressed); err != nil {
		return err
	}
	w.idx.append(off)
	return nil
}

// AppendHeader appends a (header, total-difficulty, hash) record. Headers
// are keyed by block number directly (base == partition.From), so callers
// must append in strictly increasing, contiguous order starting at the
// partition's base — the same invariant AppendTransaction enforces —
// otherwise a header's logical position would drift from its block number
// and every later lookup for this partition would resolve to the wrong
// offset.
func (w *Writer) AppendHeader(h types.Header, td *uint256.Int, hash types.Hash) error {
	if w.kind != Headers {
		return fmt.Errorf("AppendHeader called on %s writer", w.kind)
	}
	want := w.base + uint64(len(w.idx.offsets))
	if h.Number != want {
		return fmt.Errorf("non-contiguous header append: got %d, want %d", h.Number, want)
	}
	payload := encodeHeaderRecord(h, td, hash)
	return w.writeEntry(payload)
}

// AppendTransaction appends a transaction at the given canonical tx
// number. Callers must append in strictly increasing, contiguous order
// starting at the partition's base.
func (w *Writer) AppendTransaction(txNum types.TxNumber, tx types.Transaction) error {
	if w.kind != Transactions {
		return fmt.Errorf("AppendTransaction called on %s writer", w.kind)
	}
	want := w.base + uint64(len(w.idx.offsets))
	if txNum != want {
		return fmt.Errorf("non-contiguous tx append: got %d, want %d", txNum, want)
	}
	return w.writeEntry(tx.Payload)
}

// AppendReceipt appends a receipt at the given tx number, or records a
// hole if r is nil (the position was pruned upstream before archival).
func (w *Writer) AppendReceipt(txNum types.TxNumber, r *types.Receipt) error {
	if w.kind != Receipts {
		return fmt.Errorf("AppendReceipt called on %s writer", w.kind)
	}
	want := w.base + uint64(len(w.idx.offsets))
	if txNum != want {
		return fmt.Errorf("non-contiguous receipt append: got %d, want %d", txNum, want)
	}
	if r == nil {
		off, err := w.currentOffset()
		if err != nil {
			return err
		}
		w.idx.appendMissing(off)
		return nil
	}
	return w.writeEntry(r.Payload)
}

// AppendSidecars appends the (possibly empty) sidecar set for a block.
// Like AppendHeader, Sidecars partitions are keyed by block number
// directly, so blockNum must equal the next contiguous logical position.
func (w *Writer) AppendSidecars(sidecars []types.BlobSidecar, blockNum types.BlockNumber, hash types.Hash) error {
	if w.kind != Sidecars {
		return fmt.Errorf("AppendSidecars called on %s writer", w.kind)
	}
	want := w.base + uint64(len(w.idx.offsets))
	if blockNum != want {
		return fmt.Errorf("non-contiguous sidecar append: got %d, want %d", blockNum, want)
	}
	payload := encodeSidecarRecord(sidecars, hash)
	return w.writeEntry(payload)
}

// IncrementBlock closes out the per-block tx range bookkeeping for
// Transactions/Receipts segments, recording [blockStartTx, currentTxCount)
// as owned by blockNum.
func (w *Writer) IncrementBlock(kind Kind, blockNum types.BlockNumber) error {
	if kind != w.kind {
		return fmt.Errorf("IncrementBlock(%s) called on %s writer", kind, w.kind)
	}
	end := w.base + uint64(len(w.idx.offsets))
	w.ranges = append(w.ranges, blockTxRange{Block: blockNum, Start: w.curBlockStart, End: end})
	w.curBlockStart = end
	return nil
}

// Commit seals the partition: writes the trailing offset sentinel, flushes
// the data file, and writes the .conf/.off sidecar files. After Commit,
// ownership of the partition transfers to the Provider.
func (w *Writer) Commit() error {
	if w.committed {
		return nil
	}
	end, err := w.currentOffset()
	if err != nil {
		return err
	}
	w.idx.offsets = append(w.idx.offsets, end)

	if err := w.data.Sync(); err != nil {
		return fmt.Errorf("sync data file: %w", err)
	}
	if err := writeDescriptor(confPath(w.dir, w.kind, w.rng), descriptor{
		Kind: w.kind, Range: w.rng, Count: w.idx.count(), HighestBase: w.base, Codec: "zstd",
		BlockRanges: w.ranges,
	}); err != nil {
		return err
	}
	if err := w.idx.writeFile(offPath(w.dir, w.kind, w.rng)); err != nil {
		return err
	}
	if err := w.data.Close(); err != nil {
		return err
	}
	if err := w.lock.Unlock(); err != nil {
		return fmt.Errorf("unlock %s/%s: %w", w.kind, w.rng, err)
	}
	w.committed = true
	return nil
}

// Abort releases the writer's exclusive lock without sealing it —
// used only on a fatal error path before Commit; the partial partition is
// left on disk to be picked up (or rewritten) by a future openWriter.
func (w *Writer) Abort() error {
	if w.committed {
		return nil
	}
	_ = w.data.Close()
	return w.lock.Unlock()
}

// BlockRanges returns the per-block tx-range bookkeeping accumulated so
// far in this writer (the same entries Commit records in the descriptor).
func (w *Writer) BlockRanges() []blockTxRange { return w.ranges }
