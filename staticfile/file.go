// Copyright 2024 The Erigon Authors
// SPDX-License-Identifier: LGPL-3.0-only
package staticfile

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// segmentFile is a read-only memory mapping of one sealed partition's
// .seg data file, plus its loaded offset index. Handles are refcounted by
// the Provider's LRU cache so concurrent readers can share one mapping.
type segmentFile struct {
	f   *os.File
	mm  mmap.MMap
	idx *offsetIndex
}

func openSegmentFile(dir string, kind Kind, r FixedRange) (*segmentFile, error) {
	f, err := os.Open(dataPath(dir, kind, r))
	if err != nil {
		return nil, fmt.Errorf("open segment %s/%s: %w", kind, r, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	var m mmap.MMap
	if info.Size() > 0 {
		m, err = mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("mmap segment %s/%s: %w", kind, r, err)
		}
	}
	idx, err := readOffsetIndex(offPath(dir, kind, r))
	if err != nil {
		if m != nil {
			_ = m.Unmap()
		}
		f.Close()
		return nil, err
	}
	return &segmentFile{f: f, mm: m, idx: idx}, nil
}

func (s *segmentFile) read(n uint64) ([]byte, bool, error) {
	start, end, present := s.idx.lookup(n)
	if end < start {
		return nil, false, fmt.Errorf("corrupt offset index: end %d < start %d", end, start)
	}
	if !present {
		return nil, false, nil
	}
	raw := s.mm[start:end]
	out, err := sharedCodec.decompress(nil, raw)
	if err != nil {
		return nil, false, fmt.Errorf("decompress entry %d: %w", n, err)
	}
	return out, true, nil
}

func (s *segmentFile) close() error {
	var err error
	if s.mm != nil {
		err = s.mm.Unmap()
	}
	if cerr := s.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
