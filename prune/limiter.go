package prune

import "time"

// Limiter bounds how much work a single pruner pass does: a maximum
// number of deleted entries and a wall-clock deadline. Segments check
// IsLimitReached between batches so a single call never blows through
// both budgets by much.
type Limiter struct {
	deletedRemaining *int
	deadline         *time.Time
}

// NewLimiter builds a limiter. deleteLimit of nil means unbounded by
// count; timeout of nil means unbounded by time. At least one should
// normally be set, or a segment with a lot of data to prune will run to
// completion in one pass regardless of PrunerBuilder's interval.
func NewLimiter(deleteLimit *int, timeout *time.Duration) *Limiter {
	l := &Limiter{}
	if deleteLimit != nil {
		v := *deleteLimit
		l.deletedRemaining = &v
	}
	if timeout != nil {
		d := time.Now().Add(*timeout)
		l.deadline = &d
	}
	return l
}

// IsLimitReached reports whether either budget has been exhausted.
func (l *Limiter) IsLimitReached() bool {
	if l.deletedRemaining != nil && *l.deletedRemaining <= 0 {
		return true
	}
	if l.deadline != nil && time.Now().After(*l.deadline) {
		return true
	}
	return false
}

// IncrementDeletedEntriesCountBy records n more deletions against the
// count budget. A no-op if the limiter has no count budget.
func (l *Limiter) IncrementDeletedEntriesCountBy(n int) {
	if l.deletedRemaining == nil {
		return
	}
	*l.deletedRemaining -= n
}

// DeletedEntriesLimit returns the remaining delete budget, and whether one
// is set at all.
func (l *Limiter) DeletedEntriesLimit() (int, bool) {
	if l.deletedRemaining == nil {
		return 0, false
	}
	return *l.deletedRemaining, true
}
