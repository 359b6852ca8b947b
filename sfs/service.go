package sfs

import (
	"fmt"

	log "github.com/erigontech/erigon-lib/log/v3"

	"github.com/erigontech/erigon-archive/dbservice"
	"github.com/erigontech/erigon-archive/staticfile"
)

// Service is the single writer for the static-file tier: every Append*
// call anywhere in the system flows through here, one action at a time,
// so the single-writer-per-partition invariant never needs cross-goroutine
// locking beyond the channel itself.
type Service struct {
	headers      *staticfile.Provider
	transactions *staticfile.Provider
	receipts     *staticfile.Provider
	sidecars     *staticfile.Provider
	jar          *staticfile.Jar

	dbHandle *dbservice.Handle
	incoming <-chan Action
}

func NewService(headers, transactions, receipts, sidecars *staticfile.Provider, jar *staticfile.Jar, dbHandle *dbservice.Handle, incoming <-chan Action) *Service {
	return &Service{
		headers: headers, transactions: transactions, receipts: receipts, sidecars: sidecars,
		jar: jar, dbHandle: dbHandle, incoming: incoming,
	}
}

// Run is the service's main loop. It returns once incoming is closed.
func (s *Service) Run() {
	for act := range s.incoming {
		var err error
		switch a := act.(type) {
		case LogTransactions:
			err = s.logTransactions(a)
		case WriteExecutionData:
			err = s.writeExecutionData(a)
		case RemoveBlocksAbove:
			err = s.removeBlocksAbove(a)
		default:
			err = fmt.Errorf("unknown static-file action %T", act)
		}
		if err != nil {
			log.Error("[sfs] action failed", "err", err)
		}
	}
}

// logTransactions persists a block's header, transactions, and sidecars,
// then notifies dbservice so the Headers/Bodies stage checkpoints can
// advance. Commit order is Transactions, Headers, Sidecars — a header
// must never become visible before the transactions it references.
func (s *Service) logTransactions(a LogTransactions) error {
	block := a.Block
	headerW, err := s.headers.GetWriter(staticfile.Headers, block.Header.Number)
	if err != nil {
		return fmt.Errorf("get headers writer: %w", err)
	}
	txW, err := s.transactions.GetWriter(staticfile.Transactions, block.Header.Number)
	if err != nil {
		return fmt.Errorf("get transactions writer: %w", err)
	}
	sidecarW, err := s.sidecars.GetWriter(staticfile.Sidecars, block.Header.Number)
	if err != nil {
		return fmt.Errorf("get sidecars writer: %w", err)
	}

	if err := headerW.AppendHeader(block.Header, a.TotalDifficulty, block.Header.Hash); err != nil {
		return err
	}
	txNum := a.StartTxNumber
	for _, tx := range block.Body {
		if err := txW.AppendTransaction(txNum, tx); err != nil {
			return fmt.Errorf("append transaction %d: %w", txNum, err)
		}
		txNum++
	}
	if err := txW.IncrementBlock(staticfile.Transactions, block.Header.Number); err != nil {
		return err
	}
	if err := sidecarW.AppendSidecars(block.Sidecars, block.Header.Number, block.Header.Hash); err != nil {
		return err
	}

	if err := s.transactions.Commit(txW); err != nil {
		return fmt.Errorf("commit transactions: %w", err)
	}
	if err := s.headers.Commit(headerW); err != nil {
		return fmt.Errorf("commit headers: %w", err)
	}
	if err := s.sidecars.Commit(sidecarW); err != nil {
		return fmt.Errorf("commit sidecars: %w", err)
	}

	s.dbHandle.SendAction(dbservice.UpdateTransactionMeta{Block: block.Header.Number, Reply: a.Reply})
	return nil
}

// writeExecutionData persists a batch of blocks' receipts and hands off
// to dbservice to update execution-related checkpoints.
func (s *Service) writeExecutionData(a WriteExecutionData) error {
	if len(a.Blocks) == 0 {
		close(a.Reply)
		return nil
	}
	first := a.Blocks[0]
	currentReceipt, ok := s.receipts.HighestTxNumber(staticfile.Receipts)
	if ok {
		currentReceipt++
	} else {
		currentReceipt = 0
	}

	receiptsW, err := s.receipts.GetWriter(staticfile.Receipts, first.Number())
	if err != nil {
		return fmt.Errorf("get receipts writer: %w", err)
	}

	currentBlock := first.Number()
	for _, block := range a.Blocks {
		for _, receipt := range block.Outcome.Receipts {
			if err := receiptsW.AppendReceipt(currentReceipt, receipt); err != nil {
				return fmt.Errorf("append receipt %d: %w", currentReceipt, err)
			}
			currentReceipt++
		}
		if err := receiptsW.IncrementBlock(staticfile.Receipts, currentBlock); err != nil {
			return err
		}
		currentBlock++
	}
	if err := s.receipts.Commit(receiptsW); err != nil {
		return fmt.Errorf("commit receipts: %w", err)
	}

	s.dbHandle.SendAction(dbservice.SaveBlocks{Blocks: a.Blocks, Reply: a.Reply})
	return nil
}

// removeBlocksAbove truncates every static-file segment back to
// blockNum, exclusive. Must run after the corresponding DB removal, per
// the RemoveBlocksAbove contract.
func (s *Service) removeBlocksAbove(a RemoveBlocksAbove) error {
	defer close(a.Reply)

	// The last tx number owned by blockNum is the keep-point for the
	// tx-indexed segments; if blockNum's tx range isn't known (nothing
	// archived at or after it), there's nothing to truncate there.
	if _, end, ok := s.jar.BlockTxRange(a.BlockNum); ok {
		keepTx := end - 1
		if err := s.receipts.TruncateTxsAbove(staticfile.Receipts, keepTx); err != nil {
			return fmt.Errorf("prune receipts: %w", err)
		}
		if err := s.transactions.TruncateTxsAbove(staticfile.Transactions, keepTx); err != nil {
			return fmt.Errorf("prune transactions: %w", err)
		}
	}

	if err := s.headers.TruncateBlocksAbove(staticfile.Headers, a.BlockNum); err != nil {
		return fmt.Errorf("prune headers: %w", err)
	}

	if highestSidecars, ok := s.sidecars.HighestBlock(staticfile.Sidecars); ok && highestSidecars > a.BlockNum {
		if err := s.sidecars.TruncateBlocksAbove(staticfile.Sidecars, a.BlockNum); err != nil {
			return fmt.Errorf("prune sidecars: %w", err)
		}
	}
	return nil
}
