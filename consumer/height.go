// Package consumer tracks how far downstream consumers (execution-extension
// equivalents) have processed the chain, so the pruner never deletes data
// a consumer hasn't seen yet.
package consumer

import (
	"sync"

	"github.com/erigontech/erigon-archive/types"
)

// Status is a tagged union: either no consumers are registered (pruning is
// unconstrained by this mechanism), a consumer is registered but hasn't
// reported a height yet (pruning must wait), or a consumer has reported
// its highest processed block.
type Status struct {
	kind   statusKind
	height types.BlockNumber
}

type statusKind uint8

const (
	kindNoConsumers statusKind = iota
	kindNotReady
	kindHeight
)

func NoConsumers() Status           { return Status{kind: kindNoConsumers} }
func NotReady() Status              { return Status{kind: kindNotReady} }
func Height(n types.BlockNumber) Status { return Status{kind: kindHeight, height: n} }

func (s Status) IsNoConsumers() bool { return s.kind == kindNoConsumers }
func (s Status) IsNotReady() bool    { return s.kind == kindNotReady }

// BlockNumber returns the reported height and true if this Status is the
// Height variant.
func (s Status) BlockNumber() (types.BlockNumber, bool) {
	return s.height, s.kind == kindHeight
}

// Watch is a single-slot, last-write-wins broadcast of the current Status,
// mirroring a Rust tokio watch channel: readers always see the most
// recent value, never a backlog of every update.
type Watch struct {
	mu   sync.RWMutex
	cur  Status
	subs []chan Status
}

// NewWatch creates a Watch starting at NoConsumers.
func NewWatch() *Watch {
	return &Watch{cur: NoConsumers()}
}

// Set updates the current status and notifies any active Subscribe
// channels, dropping the notification for a subscriber that isn't ready
// to receive (never blocks the setter).
func (w *Watch) Set(s Status) {
	w.mu.Lock()
	w.cur = s
	subs := append([]chan Status(nil), w.subs...)
	w.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- s:
		default:
		}
	}
}

// Get returns the current status.
func (w *Watch) Get() Status {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cur
}

// Subscribe returns a channel that receives every subsequent Set call
// (best-effort; a slow reader may miss an intermediate update, but always
// catches up to the latest on its next read since Get reflects Set's
// last-write-wins semantics too).
func (w *Watch) Subscribe() <-chan Status {
	ch := make(chan Status, 1)
	w.mu.Lock()
	w.subs = append(w.subs, ch)
	w.mu.Unlock()
	return ch
}
