package prune

import "github.com/erigontech/erigon-archive/types"

// Checkpoint mirrors kvstore.PruneCheckpoint in prune's own vocabulary
// (block/tx numbers as plain values, PruneMode instead of the storage
// wire form) so the rest of this package never imports the storage
// encoding directly.
type Checkpoint struct {
	BlockNumber *types.BlockNumber
	TxNumber    *types.TxNumber
	Mode        PruneMode
}

// Progress is the outcome of one segment's prune pass.
type Progress struct {
	Finished     bool
	MoreDataHint string // non-empty only when !Finished: why more remains
}

func Done() Progress { return Progress{Finished: true} }

func HasMoreData(reason string) Progress { return Progress{Finished: false, MoreDataHint: reason} }

// SegmentOutput is what a segment reports back to the Pruner after one
// pass: how far it got and how many entries it actually deleted (for
// metrics and for the shared Limiter's budget).
type SegmentOutput struct {
	Progress     Progress
	PrunedCount  int
	Checkpoint   *Checkpoint // nil means "leave the stored checkpoint unchanged"
}
