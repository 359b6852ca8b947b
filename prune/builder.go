package prune

import "time"

// Defaults mirror original_source/crates/prune/prune/src/builder.rs.
const (
	DefaultBlockInterval           = 5
	DefaultTimeout                 = 100 * time.Millisecond
	DefaultRecentSidecarsKeptBlocks = 0
)

// Builder assembles a Pruner with the same defaulting behavior as the
// Rust PrunerBuilder: block_interval gates how often a pass runs at all,
// delete_limit and timeout bound each pass's Limiter, and
// recent_sidecars_kept_blocks controls the ancient-sidecar sweep's
// trailing-edge exemption.
type Builder struct {
	blockInterval            uint64
	deleteLimit               *int
	timeout                   *time.Duration
	recentSidecarsKeptBlocks  uint64
	finishedHeightExempt      bool
}

// NewBuilder returns a Builder with reth's defaults applied.
func NewBuilder() *Builder {
	timeout := DefaultTimeout
	return &Builder{
		blockInterval:            DefaultBlockInterval,
		timeout:                  &timeout,
		recentSidecarsKeptBlocks: DefaultRecentSidecarsKeptBlocks,
	}
}

func (b *Builder) WithBlockInterval(n uint64) *Builder {
	b.blockInterval = n
	return b
}

func (b *Builder) WithDeleteLimit(n int) *Builder {
	b.deleteLimit = &n
	return b
}

// WithNoTimeout removes the deadline budget, letting a pass run to
// completion regardless of how long it takes.
func (b *Builder) WithNoTimeout() *Builder {
	b.timeout = nil
	return b
}

func (b *Builder) WithTimeout(d time.Duration) *Builder {
	b.timeout = &d
	return b
}

func (b *Builder) WithRecentSidecarsKeptBlocks(n uint64) *Builder {
	b.recentSidecarsKeptBlocks = n
	return b
}

// WithFinishedHeightExempt disables the finished-consumer height coupling,
// letting the pruner run even with NotReady/NoConsumers. Used by
// single-node deployments that never register a consumer.
func (b *Builder) WithFinishedHeightExempt() *Builder {
	b.finishedHeightExempt = true
	return b
}

func (b *Builder) newLimiter() *Limiter {
	return NewLimiter(b.deleteLimit, b.timeout)
}
