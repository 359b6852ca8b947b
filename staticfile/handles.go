// Copyright 2024 The Erigon Authors
// SPDX-License-Identifier: LGPL-3.0-only
package staticfile

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// handleKey identifies one sealed partition's open mmap handle.
type handleKey struct {
	kind Kind
	rng  FixedRange
}

// handleEntry refcounts borrows of a segmentFile so LRU eviction never
// unmaps a file a reader is still using; eviction instead marks the entry
// stale and the last releaser closes it.
type handleEntry struct {
	mu      sync.Mutex
	file    *segmentFile
	refs    int
	evicted bool
}

func (h *handleEntry) acquire() *segmentFile {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.refs++
	return h.file
}

func (h *handleEntry) release() {
	h.mu.Lock()
	h.refs--
	shouldClose := h.evicted && h.refs <= 0
	h.mu.Unlock()
	if shouldClose {
		_ = h.file.close()
	}
}

func (h *handleEntry) markEvicted() {
	h.mu.Lock()
	h.evicted = true
	shouldClose := h.refs <= 0
	h.mu.Unlock()
	if shouldClose {
		_ = h.file.close()
	}
}

// handleCache bounds the number of concurrently mmap'd partitions per
// segment kind, evicting the least-recently-used once full (spec: readers
// may hold a partition open only while serving a request).
type handleCache struct {
	cache *lru.Cache[handleKey, *handleEntry]
}

func newHandleCache(size int) *handleCache {
	hc := &handleCache{}
	c, _ := lru.NewWithEvict(size, func(_ handleKey, v *handleEntry) {
		v.markEvicted()
	})
	hc.cache = c
	return hc
}

// borrow returns a segmentFile for (kind, rng), opening it via openFn on a
// cache miss, along with a release func the caller must call exactly once
// when done reading.
func (hc *handleCache) borrow(kind Kind, rng FixedRange, openFn func() (*segmentFile, error)) (*segmentFile, func(), error) {
	key := handleKey{kind: kind, rng: rng}
	if entry, ok := hc.cache.Get(key); ok {
		f := entry.acquire()
		return f, entry.release, nil
	}
	f, err := openFn()
	if err != nil {
		return nil, nil, err
	}
	entry := &handleEntry{file: f, refs: 1}
	hc.cache.Add(key, entry)
	return f, entry.release, nil
}

func (hc *handleCache) invalidate(kind Kind, rng FixedRange) {
	hc.cache.Remove(handleKey{kind: kind, rng: rng})
}
