package segments

import (
	"encoding/binary"

	"github.com/erigontech/erigon-archive/kvstore"
	"github.com/erigontech/erigon-archive/prune"
)

// byBlockSuffix prunes a table whose key ends in an 8-byte big-endian
// block number (AccountsHistory: address+blockNum; StorageHistory:
// address+storageKey+blockNum). Entries with a suffix at or below the
// prune target are deleted; each pass scans the whole table from the
// start.
type byBlockSuffix struct {
	id    prune.SegmentID
	mode  prune.PruneMode
	table string
}

func NewAccountHistory(mode prune.PruneMode) prune.Segment {
	return &byBlockSuffix{id: prune.SegmentID{Purpose: prune.PurposeAccountHistory, Name: "account_history"}, mode: mode, table: kvstore.AccountsHistory}
}

func NewStorageHistory(mode prune.PruneMode) prune.Segment {
	return &byBlockSuffix{id: prune.SegmentID{Purpose: prune.PurposeStorageHistory, Name: "storage_history"}, mode: mode, table: kvstore.StorageHistory}
}

func (s *byBlockSuffix) ID() prune.SegmentID   { return s.id }
func (s *byBlockSuffix) Mode() prune.PruneMode { return s.mode }

func blockSuffix(key []byte) (uint64, bool) {
	if len(key) < 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(key[len(key)-8:]), true
}

// Prune scans the whole table each pass and deletes any key whose
// trailing block-number suffix is at or below the target. The table is
// ordered by its leading address (and, for storage, storage-key) bytes,
// not by block number, so there is no contiguous prefix to resume from —
// a full scan per pass is the price of keying history by subject rather
// than by time, same tradeoff the teacher's own history tables make.
func (s *byBlockSuffix) Prune(in prune.Input) (prune.SegmentOutput, error) {
	budget, hasBudget := in.Limiter.DeletedEntriesLimit()
	toDelete := make([][]byte, 0, 128)
	reachedEnd := true
	err := in.Tx.ForEach(s.table, nil, func(k, _ []byte) (bool, error) {
		if in.Limiter.IsLimitReached() || (hasBudget && len(toDelete) >= budget) {
			reachedEnd = false
			return false, nil
		}
		bn, ok := blockSuffix(k)
		if ok && bn <= in.PruneTargetBlock {
			toDelete = append(toDelete, append([]byte(nil), k...))
		}
		return true, nil
	})
	if err != nil {
		return prune.SegmentOutput{}, err
	}
	for _, k := range toDelete {
		if err := in.Tx.Delete(s.table, k); err != nil {
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
