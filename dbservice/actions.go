// Package dbservice is the DB-side counterpart of sfs: after the
// static-file service persists data, it hands control back here so the
// transactional tier's checkpoints are updated only once the
// corresponding static-file writes are durable. The commit order is
// always static files first, DB checkpoints second.
package dbservice

import (
	"github.com/erigontech/erigon-archive/types"
)

// Action is a signal from the static-file service that some DB-side
// bookkeeping should now happen.
type Action interface{ isDatabaseAction() }

// UpdateTransactionMeta records that block has been durably written to
// the Headers/Transactions/Sidecars static files, so the corresponding DB
// stage checkpoints can advance. Reply closes once done.
type UpdateTransactionMeta struct {
	Block types.BlockNumber
	Reply chan<- struct{}
}

func (UpdateTransactionMeta) isDatabaseAction() {}

// SaveBlocks records that a batch of executed blocks' receipts are now
// durably written to the Receipts static file. Reply receives the hash of
// the last block in the batch once its checkpoints are updated.
type SaveBlocks struct {
	Blocks []types.ExecutedBlock
	Reply  chan<- types.Hash
}

func (SaveBlocks) isDatabaseAction() {}
