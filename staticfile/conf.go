// Copyright 2024 The Erigon Authors
// SPDX-License-Identifier: LGPL-3.0-only
package staticfile

import (
	"encoding/json"
	"fmt"
	"os"
)

// descriptor is the ".conf" sidecar: partition identity and bookkeeping
// needed to reopen a sealed partition without rescanning the data file.
type descriptor struct {
	Kind        Kind           `json:"kind"`
	Range       FixedRange     `json:"range"`
	Count       int            `json:"count"`       // number of logical entries (present or pruned-hole)
	HighestBase uint64         `json:"highestBase"` // base logical number (block or tx) this partition starts at
	Codec       string         `json:"codec"`
	BlockRanges []blockTxRange `json:"blockRanges,omitempty"` // Transactions/Receipts only: per-block tx ownership
}

func writeDescriptor(path string, d descriptor) error {
	buf, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal descriptor: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write descriptor %s: %w", path, err)
	}
	return nil
}

func readDescriptor(path string) (descriptor, error) {
	var d descriptor
	buf, err := os.ReadFile(path)
	if err != nil {
		return d, fmt.Errorf("read descriptor %s: %w", path, err)
	}
	if err := json.Unmarshal(buf, &d); err != nil {
		return d, fmt.Errorf("unmarshal descriptor %s: %w", path, err)
	}
	return d, nil
}
