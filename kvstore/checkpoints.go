package kvstore

import (
	"encoding/binary"
	"fmt"
)

// PruneModeWire is the storage-tier encoding of a prune mode, kept here
// (rather than in the prune package) so this package never imports prune
// and stays a leaf dependency. The prune package converts to/from this
// shape at its storage boundary.
type PruneModeWire struct {
	Kind  uint8 // 0 = Full, 1 = Distance, 2 = Before
	Value uint64
}

// PruneCheckpoint is the durable record of how far one prune segment has
// progressed, keyed by segment purpose in the PruneCheckpoint table.
// A nil BlockNumber/TxNumber means "never pruned" — distinct from zero,
// since block/tx 0 is a valid prune boundary.
type PruneCheckpoint struct {
	BlockNumber *uint64
	TxNumber    *uint64
	Mode        PruneModeWire
}

func encodeOptionalU64(v *uint64) []byte {
	if v == nil {
		return []byte{0}
	}
	buf := make([]byte, 9)
	buf[0] = 1
	binary.LittleEndian.PutUint64(buf[1:], *v)
	return buf
}

func decodeOptionalU64(buf []byte) (*uint64, []byte, error) {
	if len(buf) < 1 {
		return nil, nil, fmt.Errorf("truncated optional u64")
	}
	if buf[0] == 0 {
		return nil, buf[1:], nil
	}
	if len(buf) < 9 {
		return nil, nil, fmt.Errorf("truncated optional u64 value")
	}
	v := binary.LittleEndian.Uint64(buf[1:9])
	return &v, buf[9:], nil
}

func encodeCheckpoint(c PruneCheckpoint) []byte {
	buf := make([]byte, 0, 32)
	buf = append(buf, encodeOptionalU64(c.BlockNumber)...)
	buf = append(buf, encodeOptionalU64(c.TxNumber)...)
	buf = append(buf, c.Mode.Kind)
	modeVal := make([]byte, 8)
	binary.LittleEndian.PutUint64(modeVal, c.Mode.Value)
	buf = append(buf, modeVal...)
	return buf
}

func decodeCheckpoint(buf []byte) (PruneCheckpoint, error) {
	var c PruneCheckpoint
	bn, rest, err := decodeOptionalU64(buf)
	if err != nil {
		return c, err
	}
	tn, rest, err := decodeOptionalU64(rest)
	if err != nil {
		return c, err
	}
	if len(rest) < 9 {
		return c, fmt.Errorf("truncated checkpoint mode")
	}
	c.BlockNumber = bn
	c.TxNumber = tn
	c.Mode = PruneModeWire{Kind: rest[0], Value: binary.LittleEndian.Uint64(rest[1:9])}
	return c, nil
}

// ReadPruneCheckpoint looks up the checkpoint for a segment purpose id.
func ReadPruneCheckpoint(tx Tx, purpose byte) (PruneCheckpoint, bool, error) {
	raw, ok, err := tx.GetOne(PruneCheckpoint, []byte{purpose})
	if err != nil || !ok {
		return PruneCheckpoint{}, ok, err
	}
	c, err := decodeCheckpoint(raw)
	return c, true, err
}

// WritePruneCheckpoint persists a segment's checkpoint.
func WritePruneCheckpoint(tx RwTx, purpose byte, c PruneCheckpoint) error {
	return tx.Put(PruneCheckpoint, []byte{purpose}, encodeCheckpoint(c))
}

// ReadStageCheckpoint returns the highest block number a named stage has
// processed, or 0 if it has never run.
func ReadStageCheckpoint(tx Tx, stage string) (uint64, error) {
	raw, ok, err := tx.GetOne(StageCheckpoint, []byte(stage))
	if err != nil || !ok {
		return 0, err
	}
	if len(raw) < 8 {
		return 0, fmt.Errorf("truncated stage checkpoint for %s", stage)
	}
	return binary.LittleEndian.Uint64(raw), nil
}

// WriteStageCheckpoint records a stage's progress.
func WriteStageCheckpoint(tx RwTx, stage string, blockNum uint64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, blockNum)
	return tx.Put(StageCheckpoint, []byte(stage), buf)
}
