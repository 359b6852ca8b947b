// Command archivenoded wires up the static-file archival service, its
// database-service counterpart, and the pruner, then runs them until the
// process receives a shutdown signal.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/erigontech/erigon-lib/log/v3"
	"golang.org/x/sync/errgroup"

	"github.com/erigontech/erigon-archive/config"
	"github.com/erigontech/erigon-archive/consumer"
	"github.com/erigontech/erigon-archive/dbservice"
	"github.com/erigontech/erigon-archive/kvstore"
	"github.com/erigontech/erigon-archive/prune"
	"github.com/erigontech/erigon-archive/prune/segments"
	"github.com/erigontech/erigon-archive/sfs"
	"github.com/erigontech/erigon-archive/staticfile"
)

func main() {
	dataDir := flag.String("datadir", "./archive-data", "root directory for the static-file tier and MDBX database")
	flag.Parse()

	cfg := config.Default(*dataDir)

	if err := run(cfg); err != nil {
		log.Error("[archivenoded] fatal", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := kvstore.OpenMDBX(filepath.Join(cfg.DataDir, "chaindata"), int64(cfg.MaxDBSize))
	if err != nil {
		return err
	}
	defer db.Close()

	headers, err := staticfile.NewProvider(filepath.Join(cfg.DataDir, "snapshots", "headers"), cfg.BlocksPerSegment)
	if err != nil {
		return err
	}
	transactions, err := staticfile.NewProvider(filepath.Join(cfg.DataDir, "snapshots", "transactions"), cfg.BlocksPerSegment)
	if err != nil {
		return err
	}
	receipts, err := staticfile.NewProvider(filepath.Join(cfg.DataDir, "snapshots", "receipts"), cfg.BlocksPerSegment)
	if err != nil {
		return err
	}
	sidecars, err := staticfile.NewProvider(filepath.Join(cfg.DataDir, "snapshots", "sidecars"), cfg.BlocksPerSegment)
	if err != nil {
		return err
	}
	jar := staticfile.NewJar(headers, transactions, receipts, sidecars, nil)

	dbActions := make(chan dbservice.Action, 1024)
	dbHandle := dbservice.NewHandle(dbActions)
	dbSvc := dbservice.NewService(db, dbActions)

	sfsActions := make(chan sfs.Action, 1024)
	sfsSvc := sfs.NewService(headers, transactions, receipts, sidecars, jar, dbHandle, sfsActions)

	resolver := func(block uint64) (uint64, bool) {
		_, end, ok := jar.BlockTxRange(block)
		return end, ok
	}
	set := prune.NewSet(
		modeSegment(cfg.Prune.Headers, func(m prune.PruneMode) prune.Segment { return segments.NewHeaders(m, headers) }),
		modeSegment(cfg.Prune.Transactions, func(m prune.PruneMode) prune.Segment { return segments.NewTransactions(m, transactions) }),
		modeSegment(cfg.Prune.Receipts, func(m prune.PruneMode) prune.Segment { return segments.NewReceipts(m, receipts) }),
		nil, // sidecars: handled by the pruner's dedicated ancient-sidecar sweep, not a generic Segment
		modeSegment(cfg.Prune.AccountHistory, func(m prune.PruneMode) prune.Segment { return segments.NewAccountHistory(m) }),
		modeSegment(cfg.Prune.StorageHistory, func(m prune.PruneMode) prune.Segment { return segments.NewStorageHistory(m) }),
		modeSegment(cfg.Prune.UserReceipts, func(m prune.PruneMode) prune.Segment { return segments.NewUserReceipts(m, resolver) }),
		modeSegment(cfg.Prune.ReceiptsByLogs, func(m prune.PruneMode) prune.Segment { return segments.NewReceiptsByLogs(m, resolver) }),
		modeSegment(cfg.Prune.TransactionLookup, func(m prune.PruneMode) prune.Segment { return segments.NewTransactionLookup(m) }),
		modeSegment(cfg.Prune.SenderRecovery, func(m prune.PruneMode) prune.Segment { return segments.NewSenderRecovery(m, resolver) }),
	)

	builder := prune.NewBuilder().
		WithBlockInterval(cfg.Prune.BlockInterval).
		WithTimeout(cfg.Prune.Timeout).
		WithRecentSidecarsKeptBlocks(cfg.Prune.RecentSidecarsKeptBlocks)
	if cfg.Prune.DeleteLimit > 0 {
		builder = builder.WithDeleteLimit(cfg.Prune.DeleteLimit)
	}
	if cfg.Prune.FinishedHeightExempt {
		builder = builder.WithFinishedHeightExempt()
	}

	pruner := prune.New(builder, set, db, sidecars, consumer.NewWatch())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { dbSvc.Run(gctx); return nil })
	g.Go(func() error { sfsSvc.Run(); return nil })
	g.Go(func() error { return runPrunerLoop(gctx, pruner, headers) })

	<-gctx.Done()
	close(sfsActions)
	close(dbActions)
	return g.Wait()
}

func runPrunerLoop(ctx context.Context, p *prune.Pruner, headers *staticfile.Provider) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			tip, ok := headers.HighestBlock(staticfile.Headers)
			if !ok {
				continue
			}
			if err := p.Run(ctx, tip); err != nil {
				log.Warn("[archivenoded] prune pass failed", "err", err)
			}
		}
	}
}

func modeSegment(mode *prune.PruneMode, build func(prune.PruneMode) prune.Segment) prune.Segment {
	if mode == nil {
		return nil
	}
	return build(*mode)
}
