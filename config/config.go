// Package config holds the typed configuration for the archival and
// pruning subsystem. Sizes are expressed with c2h5oh/datasize so config
// files and flags can use human units ("2GB") instead of raw byte counts,
// matching the teacher's own preference for typed config over bare ints.
package config

import (
	"time"

	"github.com/c2h5oh/datasize"

	"github.com/erigontech/erigon-archive/prune"
)

// Config is the top-level configuration for one archive node instance.
type Config struct {
	DataDir string

	// BlocksPerSegment is the fixed width of a static-file partition.
	BlocksPerSegment uint64

	// MaxDBSize bounds the transactional tier's backing store.
	MaxDBSize datasize.ByteSize

	Prune PruneConfig
}

// PruneConfig configures the Pruner: per-segment modes plus the
// builder-level cadence and budget knobs. A nil mode disables that
// segment entirely rather than pruning it with some default window.
type PruneConfig struct {
	BlockInterval            uint64
	DeleteLimit              int
	Timeout                  time.Duration
	RecentSidecarsKeptBlocks uint64
	FinishedHeightExempt     bool

	Headers           *prune.PruneMode
	Transactions      *prune.PruneMode
	Receipts          *prune.PruneMode
	AccountHistory    *prune.PruneMode
	StorageHistory    *prune.PruneMode
	UserReceipts      *prune.PruneMode
	ReceiptsByLogs    *prune.PruneMode
	TransactionLookup *prune.PruneMode
	SenderRecovery    *prune.PruneMode
}

// Default returns a Config suitable for a full archive node: every
// segment is disabled (nil mode) and the static-file tier keeps
// everything forever. Callers building a pruning node enable segments
// explicitly.
func Default(dataDir string) Config {
	return Config{
		DataDir:          dataDir,
		BlocksPerSegment: 500_000,
		MaxDBSize:        2 * datasize.TB,
		Prune: PruneConfig{
			BlockInterval:            prune.DefaultBlockInterval,
			Timeout:                  prune.DefaultTimeout,
			RecentSidecarsKeptBlocks: prune.DefaultRecentSidecarsKeptBlocks,
		},
	}
}

// ModePtr is a small helper for building PruneConfig literals inline,
// e.g. cfg.Prune.AccountHistory = config.ModePtr(prune.Distance(128_000_000)).
func ModePtr(m prune.PruneMode) *prune.PruneMode { return &m }
