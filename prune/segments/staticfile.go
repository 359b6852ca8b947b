// Package segments holds the concrete Segment implementations: one per
// static-file kind and one per DB-resident history/derived table.
// Grounded in original_source/crates/prune/prune/src/segments/ (one file
// per segment there too) and turbo/snapshotsync for the static-file
// access idiom.
package segments

import (
	"github.com/erigontech/erigon-archive/prune"
	"github.com/erigontech/erigon-archive/staticfile"
)

// staticFile is the shared implementation for every static-file-resident
// segment: pruning here means deleting whole partitions below the target
// block, never a partial truncation (see staticfile.Provider.PruneBelow).
type staticFile struct {
	id       prune.SegmentID
	mode     prune.PruneMode
	kind     staticfile.Kind
	provider *staticfile.Provider
}

func (s *staticFile) ID() prune.SegmentID    { return s.id }
func (s *staticFile) Mode() prune.PruneMode  { return s.mode }

func (s *staticFile) Prune(in prune.Input) (prune.SegmentOutput, error) {
	limit, hasLimit := in.Limiter.DeletedEntriesLimit()
	partitionLimit := -1
	if hasLimit {
		partitionLimit = limit
	}
	deleted, more, err := s.provider.PruneBelow(s.kind, in.PruneTargetBlock+1, partitionLimit)
	if err != nil {
		return prune.SegmentOutput{}, err
	}
	progress := prune.Done()
	if more {
		progress = prune.HasMoreData("partition delete limit reached")
	}
	var cp *prune.Checkpoint
	if deleted > 0 {
		bn := in.PruneTargetBlock
		cp = &prune.Checkpoint{BlockNumber: &bn, Mode: s.mode}
	}
	return prune.SegmentOutput{Progress: progress, PrunedCount: deleted, Checkpoint: cp}, nil
}

// NewHeaders builds the static-file Headers prune segment.
func NewHeaders(mode prune.PruneMode, p *staticfile.Provider) prune.Segment {
	return &staticFile{id: prune.SegmentID{Purpose: prune.PurposeHeaders, Name: "headers"}, mode: mode, kind: staticfile.Headers, provider: p}
}

// NewTransactions builds the static-file Transactions prune segment.
func NewTransactions(mode prune.PruneMode, p *staticfile.Provider) prune.Segment {
	return &staticFile{id: prune.SegmentID{Purpose: prune.PurposeTransactions, Name: "transactions"}, mode: mode, kind: staticfile.Transactions, provider: p}
}

// NewReceipts builds the static-file Receipts prune segment.
func NewReceipts(mode prune.PruneMode, p *staticfile.Provider) prune.Segment {
	return &staticFile{id: prune.SegmentID{Purpose: prune.PurposeReceipts, Name: "receipts"}, mode: mode, kind: staticfile.Receipts, provider: p}
}
