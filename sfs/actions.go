// Package sfs implements the static-file archival service: a single
// consumer that receives blocks over a channel and writes them to the
// static-file tier, then hands off to dbservice once durable. Grounded in
// original_source/crates/engine/tree/src/static_files.rs.
package sfs

import (
	"github.com/holiman/uint256"

	"github.com/erigontech/erigon-archive/types"
)

// Action is a unit of work sent to the static-file service.
type Action interface{ isStaticFileAction() }

// LogTransactions persists one block's header, transactions, and sidecars
// as soon as it's added to the canonical chain — well before execution
// results are known. Reply closes once durable.
type LogTransactions struct {
	Block         *types.SealedBlock
	StartTxNumber types.TxNumber
	TotalDifficulty *uint256.Int
	Reply         chan<- struct{}
}

func (LogTransactions) isStaticFileAction() {}

// WriteExecutionData persists a batch of executed blocks' receipts. Reply
// receives the hash of the last block in the batch once durable.
type WriteExecutionData struct {
	Blocks []types.ExecutedBlock
	Reply  chan<- types.Hash
}

func (WriteExecutionData) isStaticFileAction() {}

// RemoveBlocksAbove truncates every static-file segment back to
// blockNum, exclusive — used on reorg. Reply closes once done. Must only
// be sent after the corresponding DB-side removal has already happened.
type RemoveBlocksAbove struct {
	BlockNum types.BlockNumber
	Reply    chan<- struct{}
}

func (RemoveBlocksAbove) isStaticFileAction() {}
