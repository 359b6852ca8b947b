// Copyright 2024 The Erigon Authors
// SPDX-License-Identifier: LGPL-3.0-only
// Package staticfile implements the append-only, memory-mappable segment
// tier: fixed-range partitioning, per-partition writers, and a read-only
// provider shared by reference count. Grounded in erigon's own snapshot
// tier (turbo/snapshotsync) for the on-disk/partitioning idiom, and in
// reth's static-file jar (original_source/.../providers/static_file/jar.rs)
// for the read-path shape.
package staticfile

import (
	"fmt"

	"github.com/erigontech/erigon-archive/types"
)

// Kind tags the four (plus one auxiliary) prunable/persisted static-file
// segments.
type Kind uint8

const (
	Headers Kind = iota
	Transactions
	Receipts
	Sidecars
	// Requests is a read-only auxiliary segment (EIP-7685 requests). It has
	// no prune checkpoint of its own: see DESIGN.md's Open Question entry.
	Requests
)

func (k Kind) String() string {
	switch k {
	case Headers:
		return "headers"
	case Transactions:
		return "transactions"
	case Receipts:
		return "receipts"
	case Sidecars:
		return "sidecars"
	case Requests:
		return "requests"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// DefaultBlocksPerSegment is the fixed width, in blocks, of one partition.
// Chosen to match erigon's historical snapshot roll size for mainnet-scale
// chains; smaller test chains override it explicitly.
const DefaultBlocksPerSegment = 500_000

// FixedRange is the half-open block-number interval [From, To) occupied by
// one static-file partition, derived purely from a block number.
type FixedRange struct {
	From types.BlockNumber // inclusive
	To   types.BlockNumber // exclusive
}

func (r FixedRange) Contains(n types.BlockNumber) bool { return n >= r.From && n < r.To }

func (r FixedRange) String() string { return fmt.Sprintf("%d-%d", r.From, r.To) }

// FindFixedRange returns the partition boundaries for the given block
// number, using blocksPerSegment as the partition width.
func FindFixedRange(blockNum types.BlockNumber, blocksPerSegment uint64) FixedRange {
	from := (blockNum / blocksPerSegment) * blocksPerSegment
	return FixedRange{From: from, To: from + blocksPerSegment}
}

// baseName is the shared file-name stem for a partition's three files.
func baseName(kind Kind, r FixedRange) string {
	return fmt.Sprintf("v1-%06d-%06d-%s", r.From, r.To, kind)
}

// FileNames returns the (data, conf, offset-index) file names for a
// partition. All three must exist for the partition to be considered
// present; deletion removes all three.
func FileNames(kind Kind, r FixedRange) (data, conf, offsets string) {
	base := baseName(kind, r)
	return base + ".seg", base + ".conf", base + ".off"
}
