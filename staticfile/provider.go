// Copyright 2024 The Erigon Authors
// SPDX-License-Identifier: LGPL-3.0-only
package staticfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/erigontech/erigon-archive/types"
)

const defaultHandleCacheSize = 64

// Provider owns one segment kind's directory of sealed partitions: the
// in-memory range index used to resolve lookups, the refcounted mmap
// handle cache, and bookkeeping for the at-most-one open Writer per
// partition.
type Provider struct {
	dir              string
	blocksPerSegment uint64

	mu      sync.Mutex
	indexes map[Kind]*rangeIndex
	writers map[handleKey]*Writer

	handles *handleCache
}

// NewProvider scans dir for existing sealed partitions (by .conf file) and
// builds the in-memory range index from them.
func NewProvider(dir string, blocksPerSegment uint64) (*Provider, error) {
	if blocksPerSegment == 0 {
		blocksPerSegment = DefaultBlocksPerSegment
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	p := &Provider{
		dir:              dir,
		blocksPerSegment: blocksPerSegment,
		indexes:          make(map[Kind]*rangeIndex),
		writers:          make(map[handleKey]*Writer),
		handles:          newHandleCache(defaultHandleCacheSize),
	}
	for k := Headers; k <= Requests; k++ {
		p.indexes[k] = newRangeIndex()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read datadir %s: %w", dir, err)
	}
	confs := make([]string, 0)
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".conf") {
			confs = append(confs, e.Name())
		}
	}
	sort.Strings(confs)
	for _, name := range confs {
		d, err := readDescriptor(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("load sealed partition %s: %w", name, err)
		}
		p.indexes[d.Kind].put(d.Range, d)
	}
	return p, nil
}

func (p *Provider) rangeFor(blockNum types.BlockNumber) FixedRange {
	return FindFixedRange(blockNum, p.blocksPerSegment)
}

// nextBase returns the logical base the next partition of kind should
// start at, derived from the highest sealed partition's end.
func (p *Provider) nextBase(kind Kind) uint64 {
	idx := p.indexes[kind]
	hi, ok := idx.highest()
	if !ok {
		return 0
	}
	return hi.desc.HighestBase + uint64(hi.desc.Count)
}

func (p *Provider) baseFor(kind Kind, rng FixedRange) uint64 {
	switch kind {
	case Headers, Sidecars, Requests:
		return rng.From
	default:
		return p.nextBase(kind)
	}
}

// GetWriter opens the exclusive writer for the partition covering
// blockNum, creating it on first use. The caller must Commit (or Abort)
// it before requesting another writer for the same partition.
func (p *Provider) GetWriter(kind Kind, blockNum types.BlockNumber) (*Writer, error) {
	rng := p.rangeFor(blockNum)
	key := handleKey{kind: kind, rng: rng}

	p.mu.Lock()
	if w, ok := p.writers[key]; ok {
		p.mu.Unlock()
		return w, nil
	}
	base := p.baseFor(kind, rng)
	p.mu.Unlock()

	w, err := openWriter(p.dir, kind, rng, base)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.writers[key] = w
	p.mu.Unlock()
	return w, nil
}

// Commit seals w and registers the now-immutable partition in the range
// index, making it visible to readers.
func (p *Provider) Commit(w *Writer) error {
	if err := w.Commit(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.writers, handleKey{kind: w.kind, rng: w.rng})
	p.indexes[w.kind].put(w.rng, descriptor{
		Kind: w.kind, Range: w.rng, Count: w.idx.count(), HighestBase: w.base,
		Codec: "zstd", BlockRanges: w.ranges,
	})
	p.handles.invalidate(w.kind, w.rng)
	return nil
}

// HighestBlock returns the greatest block number with a present entry in
// kind's partitions (Headers/Sidecars/Requests only — block-indexed).
func (p *Provider) HighestBlock(kind Kind) (types.BlockNumber, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	hi, ok := p.indexes[kind].highest()
	if !ok || hi.desc.Count == 0 {
		return 0, false
	}
	return hi.desc.Range.From + types.BlockNumber(hi.desc.Count) - 1, true
}

// HighestTxNumber returns the greatest tx number present in a
// Transactions/Receipts partition.
func (p *Provider) HighestTxNumber(kind Kind) (types.TxNumber, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	hi, ok := p.indexes[kind].highest()
	if !ok || hi.desc.Count == 0 {
		return 0, false
	}
	return hi.desc.HighestBase + uint64(hi.desc.Count) - 1, true
}

// open borrows a read handle for the partition covering logical number n
// of the given kind.
func (p *Provider) open(kind Kind, n uint64) (*segmentFile, func(), FixedRange, bool, error) {
	p.mu.Lock()
	var entry partitionEntry
	var ok bool
	if kind == Transactions || kind == Receipts {
		// Tx-indexed partitions are keyed by block range; match n against
		// each partition's [HighestBase, HighestBase+Count) tx span.
		p.indexes[kind].ascend(func(e partitionEntry) bool {
			if n >= e.desc.HighestBase && n < e.desc.HighestBase+uint64(e.desc.Count) {
				entry, ok = e, true
				return false
			}
			return true
		})
	} else {
		entry, ok = p.indexes[kind].find(n)
	}
	p.mu.Unlock()
	if !ok {
		return nil, nil, FixedRange{}, false, nil
	}
	f, release, err := p.handles.borrow(kind, entry.rng, func() (*segmentFile, error) {
		return openSegmentFile(p.dir, kind, entry.rng)
	})
	if err != nil {
		return nil, nil, entry.rng, true, err
	}
	return f, release, entry.rng, true, nil
}

// PruneBelow deletes, oldest first, every sealed partition of kind whose
// range lies entirely below cutoff (its exclusive To is at most cutoff) — the static-file tier's prune
// granularity is whole partitions, not individual entries, since a
// partial front-truncation would require rewriting every offset in the
// partition. limit caps how many partitions one call deletes; pass -1 for
// unbounded. Returns the count actually deleted and whether a qualifying
// partition remains (limit was reached before the sweep finished).
func (p *Provider) PruneBelow(kind Kind, cutoff types.BlockNumber, limit int) (deleted int, moreData bool, err error) {
	for limit < 0 || deleted < limit {
		rng, ok := p.OldestPartition(kind)
		if !ok || rng.To > cutoff {
			return deleted, false, nil
		}
		if err := p.DeletePartitionFiles(kind, rng); err != nil {
			return deleted, false, err
		}
		deleted++
	}
	rng, ok := p.OldestPartition(kind)
	return deleted, ok && rng.To <= cutoff, nil
}

// DeletePartitionFiles removes all three files of kind's sealed partition
// rng, unregistering it from the range index. Used
// by the ancient-sidecar sweep and by full prune-mode deletion of blocks
// below a cutoff.
func (p *Provider) DeletePartitionFiles(kind Kind, rng FixedRange) error {
	p.mu.Lock()
	p.indexes[kind].delete(rng)
	p.handles.invalidate(kind, rng)
	p.mu.Unlock()

	data, conf, off := FileNames(kind, rng)
	for _, name := range []string{data, conf, off} {
		path := filepath.Join(p.dir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete %s: %w", path, err)
		}
	}
	_ = os.Remove(filepath.Join(p.dir, data+".lock"))
	return nil
}

// OldestPartition returns the lowest-range sealed partition for kind, if
// any — used by the ancient-sidecar sweep to find its next victim.
func (p *Provider) OldestPartition(kind Kind) (FixedRange, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var found FixedRange
	ok := false
	p.indexes[kind].ascend(func(e partitionEntry) bool {
		found, ok = e.rng, true
		return false
	})
	return found, ok
}

// TruncateBlocksAbove drops every block-indexed entry (Headers, Sidecars,
// Requests) past keepBlock: partitions entirely above it are deleted
// outright, and the boundary partition (if any) is rewritten with a
// shorter count. Idempotent — calling it again with the same or a higher
// keepBlock is a no-op.
func (p *Provider) TruncateBlocksAbove(kind Kind, keepBlock types.BlockNumber) error {
	victims, boundary := p.collectAbove(kind, keepBlock, false, 0)
	for _, rng := range victims {
		if err := p.DeletePartitionFiles(kind, rng); err != nil {
			return err
		}
	}
	if boundary == nil {
		return nil
	}
	newCount := int(keepBlock) - int(boundary.Range.From) + 1
	return p.rewritePartition(kind, boundary.Range, newCount)
}

// TruncateTxsAbove drops every tx-indexed entry (Transactions, Receipts)
// past keepTx, using the same partition-then-boundary strategy as
// TruncateBlocksAbove.
func (p *Provider) TruncateTxsAbove(kind Kind, keepTx types.TxNumber) error {
	victims, boundary := p.collectAbove(kind, 0, true, keepTx)
	for _, rng := range victims {
		if err := p.DeletePartitionFiles(kind, rng); err != nil {
			return err
		}
	}
	if boundary == nil {
		return nil
	}
	newCount := int(keepTx) - int(boundary.HighestBase) + 1
	return p.rewritePartition(kind, boundary.Range, newCount)
}

// collectAbove returns the partitions to delete outright (strictly above
// the keep point) and, if it exists, the boundary partition that straddles
// it and needs a count rewrite instead of deletion.
func (p *Provider) collectAbove(kind Kind, keepBlock types.BlockNumber, byTx bool, keepTx types.TxNumber) (victims []FixedRange, boundary *descriptor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.indexes[kind].descend(func(e partitionEntry) bool {
		d := e.desc
		last := d.HighestBase + uint64(d.Count) - 1
		keep := uint64(keepBlock)
		if byTx {
			keep = uint64(keepTx)
		}
		if d.Count == 0 {
			return true
		}
		if d.HighestBase > keep {
			victims = append(victims, e.rng)
			return true
		}
		if last > keep {
			dd := d
			boundary = &dd
		}
		return true
	})
	return victims, boundary
}

// rewritePartition truncates a sealed partition's logical entry count in
// place: the offset index and descriptor are rewritten, and the data file
// is truncated to the new logical end so disk usage actually shrinks.
func (p *Provider) rewritePartition(kind Kind, rng FixedRange, newCount int) error {
	p.mu.Lock()
	p.handles.invalidate(kind, rng)
	p.mu.Unlock()

	idx, err := readOffsetIndex(offPath(p.dir, kind, rng))
	if err != nil {
		return err
	}
	if newCount < 0 {
		newCount = 0
	}
	if newCount >= idx.count() {
		return nil // already within bound
	}
	newEnd := idx.offsets[newCount]
	idx.truncate(idx.count() - newCount)

	if err := os.Truncate(dataPath(p.dir, kind, rng), int64(newEnd)); err != nil {
		return fmt.Errorf("truncate data file %s/%s: %w", kind, rng, err)
	}
	if err := idx.writeFile(offPath(p.dir, kind, rng)); err != nil {
		return err
	}

	d, err := readDescriptor(confPath(p.dir, kind, rng))
	if err != nil {
		return err
	}
	d.Count = newCount
	if kind == Transactions || kind == Receipts {
		newEndTx := d.HighestBase + uint64(newCount)
		kept := d.BlockRanges[:0]
		for _, br := range d.BlockRanges {
			if br.Start >= newEndTx {
				continue
			}
			if br.End > newEndTx {
				br.End = newEndTx
			}
			kept = append(kept, br)
		}
		d.BlockRanges = kept
	}
	if err := writeDescriptor(confPath(p.dir, kind, rng), d); err != nil {
		return err
	}

	p.mu.Lock()
	p.indexes[kind].put(rng, d)
	p.mu.Unlock()
	return nil
}
