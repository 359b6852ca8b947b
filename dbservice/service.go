package dbservice

import (
	"context"
	"fmt"

	log "github.com/erigontech/erigon-lib/log/v3"

	"github.com/erigontech/erigon-archive/kvstore"
)

const (
	stageHeaders      = "Headers"
	stageBodies       = "Bodies"
	stageExecution    = "Execution"
)

// Service is the single consumer of the action queue sfs.Service's
// writers hand work off to once static-file data is durable.
type Service struct {
	db      kvstore.DB
	actions <-chan Action
}

// NewService creates a Service reading from actions. Callers should run
// Run in its own goroutine.
func NewService(db kvstore.DB, actions <-chan Action) *Service {
	return &Service{db: db, actions: actions}
}

// Run drains the action queue until it is closed.
func (s *Service) Run(ctx context.Context) {
	for act := range s.actions {
		if err := s.handle(ctx, act); err != nil {
			log.Warn("[dbservice] action failed", "err", err)
		}
	}
}

func (s *Service) handle(ctx context.Context, act Action) error {
	switch a := act.(type) {
	case UpdateTransactionMeta:
		err := s.withRwTx(ctx, func(tx kvstore.RwTx) error {
			if err := kvstore.WriteStageCheckpoint(tx, stageHeaders, a.Block); err != nil {
				return err
			}
			return kvstore.WriteStageCheckpoint(tx, stageBodies, a.Block)
		})
		close(a.Reply)
		return err
	case SaveBlocks:
		if len(a.Blocks) == 0 {
			close(a.Reply)
			return nil
		}
		last := a.Blocks[len(a.Blocks)-1]
		err := s.withRwTx(ctx, func(tx kvstore.RwTx) error {
			return kvstore.WriteStageCheckpoint(tx, stageExecution, last.Number())
		})
		a.Reply <- last.Hash()
		close(a.Reply)
		return err
	default:
		return fmt.Errorf("unknown database action %T", act)
	}
}

func (s *Service) withRwTx(ctx context.Context, fn func(kvstore.RwTx) error) error {
	tx, err := s.db.BeginRw(ctx)
	if err != nil {
		return fmt.Errorf("begin rw tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
