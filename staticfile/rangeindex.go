// Copyright 2024 The Erigon Authors
// SPDX-License-Identifier: LGPL-3.0-only
package staticfile

import (
	"github.com/google/btree"

	"github.com/erigontech/erigon-archive/types"
)

// partitionEntry is one sealed (or currently-open) partition's metadata,
// ordered by its FixedRange.From so the range index can answer "which
// partition covers logical number N" with a single descending search.
type partitionEntry struct {
	rng   FixedRange
	desc  descriptor
}

func (p partitionEntry) Less(other btree.Item) bool {
	return p.rng.From < other.(partitionEntry).rng.From
}

// rangeIndex is an in-memory, ordered index of a segment kind's sealed
// partitions, letting lookups avoid a directory scan. Grounded in erigon's
// in-memory snapshot index (turbo/snapshotsync) but backed by google/btree
// rather than a hand-rolled sorted slice.
type rangeIndex struct {
	tree *btree.BTree
}

func newRangeIndex() *rangeIndex {
	return &rangeIndex{tree: btree.New(16)}
}

func (ri *rangeIndex) put(rng FixedRange, d descriptor) {
	ri.tree.ReplaceOrInsert(partitionEntry{rng: rng, desc: d})
}

func (ri *rangeIndex) delete(rng FixedRange) {
	ri.tree.Delete(partitionEntry{rng: rng})
}

// find returns the partition whose range contains n, if any.
func (ri *rangeIndex) find(n types.BlockNumber) (partitionEntry, bool) {
	var found partitionEntry
	ok := false
	// Descend from the first partition starting at or before n; the first
	// candidate whose range contains n is the answer since ranges are
	// disjoint and contiguous.
	pivot := partitionEntry{rng: FixedRange{From: n, To: n + 1}}
	ri.tree.DescendLessOrEqual(pivot, func(item btree.Item) bool {
		e := item.(partitionEntry)
		if e.rng.Contains(n) {
			found, ok = e, true
		}
		return false
	})
	return found, ok
}

// highest returns the partition with the greatest From, if any exist.
func (ri *rangeIndex) highest() (partitionEntry, bool) {
	item := ri.tree.Max()
	if item == nil {
		return partitionEntry{}, false
	}
	return item.(partitionEntry), true
}

// ascend visits every partition in ascending range order.
func (ri *rangeIndex) ascend(fn func(partitionEntry) bool) {
	ri.tree.Ascend(func(item btree.Item) bool {
		return fn(item.(partitionEntry))
	})
}

// descend visits every partition in descending range order.
func (ri *rangeIndex) descend(fn func(partitionEntry) bool) {
	ri.tree.Descend(func(item btree.Item) bool {
		return fn(item.(partitionEntry))
	})
}

func (ri *rangeIndex) len() int { return ri.tree.Len() }
