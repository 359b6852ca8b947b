// Copyright 2024 The Erigon Authors
// SPDX-License-Identifier: LGPL-3.0-only
// Package types holds the minimal chain-data shapes the archival and
// pruning subsystem operates on. It intentionally does not define an
// on-wire block format or RLP/SSZ encodings — those belong to the
// consensus/execution layers this subsystem consumes, not produces.
package types

import "github.com/holiman/uint256"

// BlockNumber identifies a position in the canonical chain.
type BlockNumber = uint64

// TxNumber is a canonical, monotonically increasing transaction sequence
// number, distinct from a block-local transaction index.
type TxNumber = uint64

// Hash is a 32-byte content hash (block hash, tx hash, ...).
type Hash [32]byte

// Header is the subset of block-header data the archival tier persists.
// Payload carries the fields this subsystem does not interpret (RLP or
// similar), kept opaque by design.
type Header struct {
	Number     BlockNumber
	Hash       Hash
	ParentHash Hash
	Payload    []byte
}

// Transaction is an opaque, already-signed transaction as it will be
// appended to the Transactions segment.
type Transaction struct {
	Payload []byte
}

// Receipt is an opaque execution receipt. A nil *Receipt in
// ExecutionOutcome.Receipts marks a position pruned before archival:
// the tx counter still advances for it, but no receipt bytes are written.
type Receipt struct {
	Payload []byte
}

// BlobSidecar is a single EIP-4844 blob sidecar payload.
type BlobSidecar struct {
	Payload []byte
}

// SealedBlock is a finalized block ready for archival: header, body, and
// any blob sidecars, plus its total difficulty for pre-merge compatibility.
type SealedBlock struct {
	Header          Header
	Body            []Transaction
	Sidecars        []BlobSidecar
	TotalDifficulty *uint256.Int
}

// ExecutionOutcome is the state-diff-derived result of executing a block:
// here, just its receipts (in argument order; nil entries mark pruned
// positions).
type ExecutionOutcome struct {
	Receipts []*Receipt
}

// ExecutedBlock is an immutable record produced by the execution layer:
// a sealed block plus its outcome. Never mutated after construction.
type ExecutedBlock struct {
	Block   SealedBlock
	Outcome ExecutionOutcome
}

func (b *ExecutedBlock) Number() BlockNumber { return b.Block.Header.Number }
func (b *ExecutedBlock) Hash() Hash          { return b.Block.Header.Hash }
