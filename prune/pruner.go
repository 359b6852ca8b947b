// Copyright 2024 The Erigon Authors
// SPDX-License-Identifier: LGPL-3.0-only
package prune

import (
	"context"
	"fmt"

	log "github.com/erigontech/erigon-lib/log/v3"

	"github.com/erigontech/erigon-archive/consumer"
	"github.com/erigontech/erigon-archive/events"
	"github.com/erigontech/erigon-archive/kvstore"
	"github.com/erigontech/erigon-archive/metrics"
	"github.com/erigontech/erigon-archive/staticfile"
	"github.com/erigontech/erigon-archive/types"
)

// Pruner drives a Set of segments on a fixed cadence, gated by
// block_interval and by how far downstream consumers have processed the
// chain. Grounded in original_source/crates/prune/prune/src/pruner.rs's
// Pruner::run_with_provider.
type Pruner struct {
	builder *Builder
	set     *Set
	db      kvstore.DB
	sidecarProvider *staticfile.Provider

	finishedHeight *consumer.Watch
	bus            *events.Bus

	lastPrunedBlock *types.BlockNumber
}

// New builds a Pruner. finishedHeight may be nil, equivalent to
// NoConsumers for the lifetime of the Pruner.
func New(b *Builder, set *Set, db kvstore.DB, sidecarProvider *staticfile.Provider, finishedHeight *consumer.Watch) *Pruner {
	if finishedHeight == nil {
		finishedHeight = consumer.NewWatch()
	}
	return &Pruner{
		builder:         b,
		set:             set,
		db:              db,
		sidecarProvider: sidecarProvider,
		finishedHeight:  finishedHeight,
		bus:             events.NewBus(),
	}
}

// Events returns a subscription to this pruner's lifecycle events.
func (p *Pruner) Events(bufSize int) (<-chan events.PrunerEvent, func()) {
	return p.bus.Subscribe(bufSize)
}

// IsPruningNeeded reports whether enough new blocks have landed since the
// last pass to justify another one. A nil lastPrunedBlock (never run)
// always answers true.
func IsPruningNeeded(lastPrunedBlock *types.BlockNumber, tip types.BlockNumber, blockInterval uint64) bool {
	if lastPrunedBlock == nil {
		return true
	}
	if tip <= *lastPrunedBlock {
		return false
	}
	return tip-*lastPrunedBlock >= blockInterval
}

// adjustTipToFinishedHeight caps tip to the lowest block a registered
// consumer has finished processing, or reports that pruning must wait
// (NotReady). NoConsumers, or WithFinishedHeightExempt, passes tip through
// unchanged.
func (p *Pruner) adjustTipToFinishedHeight(tip types.BlockNumber) (types.BlockNumber, bool) {
	if p.builder.finishedHeightExempt {
		return tip, true
	}
	status := p.finishedHeight.Get()
	if status.IsNoConsumers() {
		return tip, true
	}
	if status.IsNotReady() {
		return 0, false
	}
	h, _ := status.BlockNumber()
	if h < tip {
		return h, true
	}
	return tip, true
}

// Run executes one pruner pass against the given chain tip, if
// IsPruningNeeded and the finished-consumer height allows it. It is the
// caller's responsibility to invoke Run on a timer (builder's
// block_interval only gates whether a pass does work, not the calling
// cadence).
func (p *Pruner) Run(ctx context.Context, tip types.BlockNumber) error {
	if !IsPruningNeeded(p.lastPrunedBlock, tip, p.builder.blockInterval) {
		return nil
	}
	adjustedTip, ok := p.adjustTipToFinishedHeight(tip)
	if !ok {
		log.Debug("[prune] skipping pass, finished-consumer height not ready")
		return nil
	}
	if adjustedTip == 0 {
		t := adjustedTip
		p.lastPrunedBlock = &t
		return nil
	}

	p.bus.Publish(events.PrunerEvent{Kind: events.Started})
	partsPruned, err := p.runPass(ctx, adjustedTip)
	p.bus.Publish(events.PrunerEvent{Kind: events.Finished, PartsPruned: partsPruned, Err: err})
	if err != nil {
		return fmt.Errorf("prune pass: %w", err)
	}

	if err := p.pruneAncientSidecars(adjustedTip); err != nil {
		return fmt.Errorf("ancient sidecar sweep: %w", err)
	}

	t := adjustedTip
	p.lastPrunedBlock = &t
	return nil
}

func (p *Pruner) runPass(ctx context.Context, tip types.BlockNumber) (int, error) {
	tx, err := p.db.BeginRw(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin rw tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	limiter := p.builder.newLimiter()
	partsPruned := 0
	moreData := false

	for _, seg := range p.set.Segments() {
		id := seg.ID()
		target, ok := seg.Mode().PruneTargetBlock(tip)
		if !ok {
			continue
		}
		checkpoint, err := readSegmentCheckpoint(tx, id.Purpose)
		if err != nil {
			return partsPruned, fmt.Errorf("segment %s: read checkpoint: %w", id.Name, err)
		}

		out, err := seg.Prune(Input{
			Ctx: ctx, Tx: tx, PruneTargetBlock: target, Limiter: limiter, Checkpoint: checkpoint,
		})
		if err != nil {
			return partsPruned, fmt.Errorf("segment %s: %w", id.Name, err)
		}
		if out.PrunedCount > 0 {
			partsPruned++
			limiter.IncrementDeletedEntriesCountBy(out.PrunedCount)
			metrics.SegmentHighestPruned.WithLabelValues(id.Name).Set(float64(target))
		}
		if out.Checkpoint != nil {
			if err := writeSegmentCheckpoint(tx, id.Purpose, *out.Checkpoint); err != nil {
				return partsPruned, fmt.Errorf("segment %s: write checkpoint: %w", id.Name, err)
			}
		}
		if !out.Progress.Finished {
			moreData = true
			log.Debug("[prune] segment has more data", "segment", id.Name, "reason", out.Progress.MoreDataHint)
		}
		if limiter.IsLimitReached() {
			log.Debug("[prune] pass budget exhausted, stopping early", "at_segment", id.Name)
			break
		}
	}

	if err := tx.Commit(); err != nil {
		return partsPruned, fmt.Errorf("commit prune pass: %w", err)
	}
	committed = true
	if moreData {
		log.Info("[prune] pass finished with more data remaining", "parts_pruned", partsPruned)
	}
	return partsPruned, nil
}

// pruneAncientSidecars deletes sealed Sidecars partitions that lie
// entirely below tip - recentSidecarsKeptBlocks, oldest first, until none
// qualify. Idempotent: an empty or already-swept provider is a no-op.
// Grounded in pruner.rs's prune_ancient_sidecars.
func (p *Pruner) pruneAncientSidecars(tip types.BlockNumber) error {
	if p.sidecarProvider == nil {
		return nil
	}
	kept := p.builder.recentSidecarsKeptBlocks
	if kept == 0 {
		return nil
	}
	if tip < kept {
		return nil
	}
	cutoff := tip - kept

	for {
		rng, ok := p.sidecarProvider.OldestPartition(staticfile.Sidecars)
		if !ok || rng.To > cutoff {
			return nil
		}
		if err := p.sidecarProvider.DeletePartitionFiles(staticfile.Sidecars, rng); err != nil {
			return fmt.Errorf("delete ancient sidecars partition %s: %w", rng, err)
		}
		log.Info("[prune] swept ancient sidecars partition", "range", rng.String())
		metrics.OldestSidecarsHeight.Set(float64(rng.To))
	}
}

func readSegmentCheckpoint(tx kvstore.Tx, purpose Purpose) (*Checkpoint, error) {
	c, ok, err := kvstore.ReadPruneCheckpoint(tx, byte(purpose))
	if err != nil || !ok {
		return nil, err
	}
	return &Checkpoint{
		BlockNumber: c.BlockNumber,
		TxNumber:    c.TxNumber,
		Mode:        PruneMode{Kind: Mode(c.Mode.Kind), Value: c.Mode.Value},
	}, nil
}

func writeSegmentCheckpoint(tx kvstore.RwTx, purpose Purpose, c Checkpoint) error {
	return kvstore.WritePruneCheckpoint(tx, byte(purpose), kvstore.PruneCheckpoint{
		BlockNumber: c.BlockNumber,
		TxNumber:    c.TxNumber,
		Mode:        kvstore.PruneModeWire{Kind: uint8(c.Mode.Kind), Value: c.Mode.Value},
	})
}
