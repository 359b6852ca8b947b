package kvstore

// Table names for the transactional tier. Mirrors erigon's own naming
// convention (kv.tables.go): a short comment on key/value shape directly
// above each constant rather than a doc comment block.

const (
	// PruneCheckpoint: segment purpose id (byte) -> encoded PruneCheckpoint
	PruneCheckpoint = "PruneCheckpoint"

	// StageCheckpoint: stage name -> block_num_u64, advanced by dbservice
	// as each write-side stage progresses.
	StageCheckpoint = "StageCheckpoint"

	// AccountsHistory: address + block_num_u64 -> historical account value;
	// pruned by AccountHistory segment.
	AccountsHistory = "AccountsHistory"

	// StorageHistory: address + storage_key + block_num_u64 -> historical
	// storage value; pruned by StorageHistory segment.
	StorageHistory = "StorageHistory"

	// Receipts: tx_num_u64 -> receipt, for the non-static-file receipts
	// variant some chains keep in the DB instead of (or in addition to) the
	// Receipts static-file segment; pruned by UserReceipts/ReceiptsByLogs.
	Receipts = "Receipts"

	// TxLookup: tx_hash -> block_num_u64, the reverse index pruned by the
	// TransactionLookup segment.
	TxLookup = "TxLookup"

	// SenderRecoveryCache: tx_num_u64 -> sender_address, a pure derived
	// cache pruned by the SenderRecovery segment.
	SenderRecoveryCache = "SenderRecoveryCache"
)
