package prune

// Set is an ordered collection of segments. Order matters: static-file
// segments run first (they gate how far DB-resident history can be
// pruned, since history entries reference block numbers the static-file
// tier may have already archived), then DB history tables, then the
// remaining derived/auxiliary tables. Mirrors
// original_source/.../prune/segments/set.rs's SegmentSet::from_components.
type Set struct {
	segments []Segment
}

// NewSet builds a Set in the canonical fixed order, accepting nil for any
// segment the caller doesn't want enabled (e.g. sidecars on a chain
// without EIP-4844).
func NewSet(
	headers, transactions, receipts, sidecars,
	accountHistory, storageHistory, userReceipts, receiptsByLogs,
	transactionLookup, senderRecovery Segment,
) *Set {
	ordered := []Segment{
		headers, transactions, receipts, sidecars,
		accountHistory, storageHistory, userReceipts, receiptsByLogs,
		transactionLookup, senderRecovery,
	}
	s := &Set{}
	for _, seg := range ordered {
		if seg != nil {
			s.segments = append(s.segments, seg)
		}
	}
	return s
}

// Segments returns the set in its fixed run order.
func (s *Set) Segments() []Segment { return s.segments }
