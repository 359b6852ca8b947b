// Copyright 2024 The Erigon Authors
// SPDX-License-Identifier: LGPL-3.0-only
package staticfile

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/erigontech/erigon-archive/types"
)

// encodeHeaderRecord frames a header entry as:
//   [32]hash [32]parentHash [32]totalDifficulty(be) payload...
// The opaque payload is whatever the execution layer handed us; this
// subsystem never parses it, only the three fixed-width fields it needs
// for fast lookups without touching the payload (spec's "does not define
// the on-wire block format" non-goal).
func encodeHeaderRecord(h types.Header, td *uint256.Int, hash types.Hash) []byte {
	buf := make([]byte, 32+32+32+len(h.Payload))
	copy(buf[0:32], hash[:])
	copy(buf[32:64], h.ParentHash[:])
	if td != nil {
		tdBytes := td.Bytes32()
		copy(buf[64:96], tdBytes[:])
	}
	copy(buf[96:], h.Payload)
	return buf
}

// decodeHeaderRecord reverses encodeHeaderRecord. number must be supplied
// by the caller since the record itself doesn't carry it (it's implied by
// the entry's position in the partition).
func decodeHeaderRecord(raw []byte, number types.BlockNumber) (types.Header, *uint256.Int, error) {
	if len(raw) < 96 {
		return types.Header{}, nil, fmt.Errorf("header record too short: %d bytes", len(raw))
	}
	var hash, parent types.Hash
	copy(hash[:], raw[0:32])
	copy(parent[:], raw[32:64])
	td := new(uint256.Int).SetBytes(raw[64:96])
	h := types.Header{Number: number, Hash: hash, ParentHash: parent, Payload: append([]byte(nil), raw[96:]...)}
	return h, td, nil
}

// encodeSidecarRecord frames a block's sidecar set as:
//   [32]hash [4]count (le) { [4]len (le) payload }*
func encodeSidecarRecord(sidecars []types.BlobSidecar, hash types.Hash) []byte {
	size := 32 + 4
	for _, s := range sidecars {
		size += 4 + len(s.Payload)
	}
	buf := make([]byte, size)
	copy(buf[0:32], hash[:])
	binary.LittleEndian.PutUint32(buf[32:36], uint32(len(sidecars)))
	off := 36
	for _, s := range sidecars {
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(len(s.Payload)))
		off += 4
		copy(buf[off:], s.Payload)
		off += len(s.Payload)
	}
	return buf
}

func decodeSidecarRecord(raw []byte) (types.Hash, []types.BlobSidecar, error) {
	if len(raw) < 36 {
		return types.Hash{}, nil, fmt.Errorf("sidecar record too short: %d bytes", len(raw))
	}
	var hash types.Hash
	copy(hash[:], raw[0:32])
	n := binary.LittleEndian.Uint32(raw[32:36])
	sidecars := make([]types.BlobSidecar, 0, n)
	off := 36
	for i := uint32(0); i < n; i++ {
		if off+4 > len(raw) {
			return hash, nil, fmt.Errorf("sidecar record truncated at entry %d", i)
		}
		l := int(binary.LittleEndian.Uint32(raw[off : off+4]))
		off += 4
		if off+l > len(raw) {
			return hash, nil, fmt.Errorf("sidecar record truncated payload at entry %d", i)
		}
		sidecars = append(sidecars, types.BlobSidecar{Payload: append([]byte(nil), raw[off:off+l]...)})
		off += l
	}
	return hash, sidecars, nil
}
