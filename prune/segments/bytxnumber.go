package segments

import (
	"encoding/binary"

	"github.com/erigontech/erigon-archive/kvstore"
	"github.com/erigontech/erigon-archive/prune"
)

// byTxNumber prunes a table keyed directly by an 8-byte big-endian
// tx_num_u64: everything from 0 up to the target tx number is a
// contiguous prefix, so (unlike byBlockSuffix) this can resume from the
// checkpoint instead of rescanning.
type byTxNumber struct {
	id    prune.SegmentID
	mode  prune.PruneMode
	table string
	// blockToTxNumber resolves a block number to the exclusive tx-number
	// upper bound owned by that block (and anything before it), e.g. via
	// staticfile.Jar.BlockTxRange.
	blockToTxNumber func(block uint64) (endTx uint64, ok bool)
}

func newByTxNumber(id prune.SegmentID, mode prune.PruneMode, table string, resolver func(uint64) (uint64, bool)) prune.Segment {
	return &byTxNumber{id: id, mode: mode, table: table, blockToTxNumber: resolver}
}

// NewUserReceipts prunes the DB-resident Receipts table some chains keep
// instead of (or alongside) the static-file Receipts segment.
func NewUserReceipts(mode prune.PruneMode, resolver func(block uint64) (endTx uint64, ok bool)) prune.Segment {
	return newByTxNumber(prune.SegmentID{Purpose: prune.PurposeUserReceipts, Name: "user_receipts"}, mode, kvstore.Receipts, resolver)
}

// NewReceiptsByLogs prunes the log-indexed receipts view. This subsystem
// treats a receipt's log-derived index as inseparable from the receipt
// itself (it never decodes logs — see types.Receipt's opaque Payload), so
// its deletion criterion is identical to UserReceipts's; kept as a
// distinct segment purely so its checkpoint and metrics are tracked
// separately, matching the teacher's one-purpose-per-table convention.
func NewReceiptsByLogs(mode prune.PruneMode, resolver func(block uint64) (endTx uint64, ok bool)) prune.Segment {
	return newByTxNumber(prune.SegmentID{Purpose: prune.PurposeReceiptsByLogs, Name: "receipts_by_logs"}, mode, kvstore.Receipts, resolver)
}

// NewSenderRecovery prunes the derived sender-address cache.
func NewSenderRecovery(mode prune.PruneMode, resolver func(block uint64) (endTx uint64, ok bool)) prune.Segment {
	return newByTxNumber(prune.SegmentID{Purpose: prune.PurposeSenderRecovery, Name: "sender_recovery"}, mode, kvstore.SenderRecoveryCache, resolver)
}

func (s *byTxNumber) ID() prune.SegmentID   { return s.id }
func (s *byTxNumber) Mode() prune.PruneMode { return s.mode }

func txKey(n uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	return buf
}

func (s *byTxNumber) Prune(in prune.Input) (prune.SegmentOutput, error) {
	endTx, ok := s.blockToTxNumber(in.PruneTargetBlock)
	if !ok {
		// The static-file Transactions segment hasn't archived far enough
		// yet to know this block's tx range; nothing to do this pass.
		return prune.SegmentOutput{Progress: prune.Done()}, nil
	}

	start := uint64(0)
	if in.Checkpoint != nil && in.Checkpoint.TxNumber != nil {
		start = *in.Checkpoint.TxNumber + 1
	}
	if start >= endTx {
		return prune.SegmentOutput{Progress: prune.Done()}, nil
	}

	budget, hasBudget := in.Limiter.DeletedEntriesLimit()
	deleted := 0
	last := start
	reachedEnd := true
	err := in.Tx.ForEach(s.table, txKey(start), func(k, _ []byte) (bool, error) {
		if len(k) < 8 {
			return true, nil
		}
		n := binary.BigEndian.Uint64(k)
		if n >= endTx {
			return false, nil
		}
		if in.Limiter.IsLimitReached() || (hasBudget && deleted >= budget) {
			reachedEnd = false
			return false, nil
		}
		if err := in.Tx.Delete(s.table, k); err != nil {
			return false, err
		}
		deleted++
		last = n
		return true, nil
	})
	if err != nil {
		return prune.SegmentOutput{}, err
	}

	progress := prune.Done()
	if !reachedEnd {
		progress = prune.HasMoreData("delete limit reached before target tx number")
	}
	var cp *prune.Checkpoint
	if deleted > 0 {
		bn := in.PruneTargetBlock
		cp = &prune.Checkpoint{BlockNumber: &bn, TxNumber: &last, Mode: s.mode}
	}
	return prune.SegmentOutput{Progress: progress, PrunedCount: deleted, Checkpoint: cp}, nil
}
