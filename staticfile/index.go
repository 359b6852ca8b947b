// Copyright 2024 The Erigon Authors
// SPDX-License-Identifier: LGPL-3.0-only
package staticfile

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/RoaringBitmap/roaring/v2"
)

// offsetIndex is the in-memory form of a partition's .off file: a flat
// table of byte offsets into the .seg data file, one per logical entry
// (block number for Headers/Sidecars, tx number for Transactions/Receipts),
// plus a bitmap marking which entries are actually present — positions a
// receipt was pruned before archival leave a hole, recorded here rather
// than by omission so offsets stay index-addressable.
type offsetIndex struct {
	base     uint64 // first logical number covered by this partition
	offsets  []uint64
	present  *roaring.Bitmap
	finished bool // true once writeFile has written the backing file
}

func newOffsetIndex(base uint64) *offsetIndex {
	return &offsetIndex{base: base, present: roaring.New()}
}

// append records the offset at which the next entry begins and marks it
// present.
func (idx *offsetIndex) append(offset uint64) {
	pos := uint32(len(idx.offsets))
	idx.offsets = append(idx.offsets, offset)
	idx.present.Add(pos)
}

// appendMissing records a hole (a pruned-at-source entry) that still
// consumes a logical number without any payload bytes.
func (idx *offsetIndex) appendMissing(offset uint64) {
	idx.offsets = append(idx.offsets, offset)
}

// lookup returns the byte range [start,end) for logical number n, and
// whether n is present in this partition at all.
func (idx *offsetIndex) lookup(n uint64) (start, end uint64, ok bool) {
	if n < idx.base {
		return 0, 0, false
	}
	pos := n - idx.base
	if pos+1 >= uint64(len(idx.offsets)) {
		if pos >= uint64(len(idx.offsets)) {
			return 0, 0, false
		}
	}
	if pos >= uint64(len(idx.offsets)) {
		return 0, 0, false
	}
	start = idx.offsets[pos]
	if pos+1 < uint64(len(idx.offsets)) {
		end = idx.offsets[pos+1]
	} else {
		end = start // caller should have a separate trailing-offset sentinel; see writer.go
	}
	return start, end, idx.present.Contains(uint32(pos))
}

// count returns how many logical numbers (present or not) this partition
// covers.
func (idx *offsetIndex) count() int {
	if len(idx.offsets) == 0 {
		return 0
	}
	return len(idx.offsets) - 1 // last entry is the trailing sentinel offset
}

// truncate drops the last n logical entries (used by Prune* truncation).
func (idx *offsetIndex) truncate(n int) {
	newCount := idx.count() - n
	if newCount < 0 {
		newCount = 0
	}
	idx.offsets = idx.offsets[:newCount+1]
	trimmed := roaring.New()
	it := idx.present.Iterator()
	for it.HasNext() {
		v := it.Next()
		if int(v) < newCount {
			trimmed.Add(v)
		}
	}
	idx.present = trimmed
}

// writeFile persists the offset index to path: a small header (base,
// number of offsets including the sentinel) followed by the flat uint64
// offset table. The presence bitmap is
// serialized immediately after using roaring's own compact wire format.
func (idx *offsetIndex) writeFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create offset index %s: %w", path, err)
	}
	defer f.Close()

	hdr := make([]byte, 16)
	binary.LittleEndian.PutUint64(hdr[0:8], idx.base)
	binary.LittleEndian.PutUint64(hdr[8:16], uint64(len(idx.offsets)))
	if _, err := f.Write(hdr); err != nil {
		return err
	}
	buf := make([]byte, 8*len(idx.offsets))
	for i, off := range idx.offsets {
		binary.LittleEndian.PutUint64(buf[i*8:], off)
	}
	if _, err := f.Write(buf); err != nil {
		return err
	}
	if _, err := idx.present.WriteTo(f); err != nil {
		return fmt.Errorf("write presence bitmap %s: %w", path, err)
	}
	idx.finished = true
	return nil
}

// readOffsetIndex loads a .off file written by writeFile.
func readOffsetIndex(path string) (*offsetIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read offset index %s: %w", path, err)
	}
	if len(data) < 16 {
		return nil, fmt.Errorf("offset index %s: truncated header", path)
	}
	base := binary.LittleEndian.Uint64(data[0:8])
	n := binary.LittleEndian.Uint64(data[8:16])
	body := data[16:]
	need := int(n) * 8
	if len(body) < need {
		return nil, fmt.Errorf("offset index %s: truncated offsets table", path)
	}
	offsets := make([]uint64, n)
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint64(body[i*8:])
	}
	present := roaring.New()
	if _, err := present.FromBuffer(body[need:]); err != nil {
		return nil, fmt.Errorf("offset index %s: presence bitmap: %w", path, err)
	}
	return &offsetIndex{base: base, offsets: offsets, present: present, finished: true}, nil
}
