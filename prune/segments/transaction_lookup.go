package segments

import (
	"encoding/binary"

	"github.com/erigontech/erigon-archive/kvstore"
	"github.com/erigontech/erigon-archive/prune"
)

// transactionLookup prunes kvstore.TxLookup (tx_hash -> block_num). The
// table is keyed by hash, so — like byBlockSuffix — there's no ordered
// prefix to resume a scan from; each pass rescans, filtering on the
// stored block number value rather than the key.
type transactionLookup struct {
	id   prune.SegmentID
	mode prune.PruneMode
}

func NewTransactionLookup(mode prune.PruneMode) prune.Segment {
	return &transactionLookup{id: prune.SegmentID{Purpose: prune.PurposeTransactionLookup, Name: "transaction_lookup"}, mode: mode}
}

func (s *transactionLookup) ID() prune.SegmentID   { return s.id }
func (s *transactionLookup) Mode() prune.PruneMode { return s.mode }

func (s *transactionLookup) Prune(in prune.Input) (prune.SegmentOutput, error) {
	budget, hasBudget := in.Limiter.DeletedEntriesLimit()
	toDelete := make([][]byte, 0, 128)
	reachedEnd := true
	err := in.Tx.ForEach(kvstore.TxLookup, nil, func(k, v []byte) (bool, error) {
		if in.Limiter.IsLimitReached() || (hasBudget && len(toDelete) >= budget) {
			reachedEnd = false
			return false, nil
		}
		if len(v) < 8 {
			return true, nil
		}
		bn := binary.BigEndian.Uint64(v)
		if bn <= in.PruneTargetBlock {
			toDelete = append(toDelete, append([]byte(nil), k...))
		}
		return true, nil
	})
	if err != nil {
		return prune.SegmentOutput{}, err
	}
	for _, k := range toDelete {
		if err := in.Tx.Delete(kvstore.TxLookup, k); err != nil {
			return prune.SegmentOutput{}, err
		}
	}

	progress := prune.Done()
	if !reachedEnd {
		progress = prune.HasMoreData("delete limit reached before target block")
	}
	var cp *prune.Checkpoint
	if len(toDelete) > 0 {
		bn := in.PruneTargetBlock
		cp = &prune.Checkpoint{BlockNumber: &bn, Mode: s.mode}
	}
	return prune.SegmentOutput{Progress: progress, PrunedCount: len(toDelete), Checkpoint: cp}, nil
}
