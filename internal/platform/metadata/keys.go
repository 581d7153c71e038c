package metadata

// These keys are used for the 'key' column in the 'metadata' table.
const (
	// LastResetMonthKey stores the "YYYY-MM" label of the last completed
	// monthly reset pass. The reset scheduler compares it against the wall
	// clock to decide whether a new pass is due.
	LastResetMonthKey = "last_reset_month"

	// LastSnapshotAtKey stores the RFC3339 timestamp of the last successful
	// durable snapshot of the in-memory store.
	LastSnapshotAtKey = "last_snapshot_at"
)
