package prune

import (
	"context"

	"github.com/erigontech/erigon-archive/kvstore"
	"github.com/erigontech/erigon-archive/types"
)

// Purpose is the stable byte identifying a segment in the
// PruneCheckpoint table — stable across releases since it's a storage key.
type Purpose byte

const (
	PurposeHeaders Purpose = iota
	PurposeTransactions
	PurposeReceipts
	PurposeSidecars
	PurposeAccountHistory
	PurposeStorageHistory
	PurposeUserReceipts
	PurposeReceiptsByLogs
	PurposeTransactionLookup
	PurposeSenderRecovery
)

// SegmentID names a segment for logging and metrics.
type SegmentID struct {
	Purpose Purpose
	Name    string
}

// Input is everything a segment needs to run one pass.
type Input struct {
	Ctx              context.Context
	Tx               kvstore.RwTx
	PruneTargetBlock types.BlockNumber // resolved from the segment's PruneMode against the tip
	Limiter          *Limiter
	Checkpoint       *Checkpoint // the segment's last-persisted checkpoint, if any
}

// Segment is one independently-prunable piece of data: a DB table range
// or a static-file kind. Implementations must be safe to call repeatedly
// with the same Input.Checkpoint (idempotent resumption) and must respect
// Limiter.IsLimitReached between individual deletes.
type Segment interface {
	ID() SegmentID
	Mode() PruneMode
	Prune(in Input) (SegmentOutput, error)
}
