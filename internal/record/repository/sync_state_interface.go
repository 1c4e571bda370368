package repository

import (
	"time"

	"searchsync-backend/internal/record/domain"
)

// SyncStateRepository is the persisted per-record sync bookkeeping store.
// Every busy/not-busy transition is a single conditional update against the
// database; plain read-modify-write is not offered for those paths.
type SyncStateRepository interface {
	// Get returns the state row, or nil when the record was never attempted
	Get(recordID uint) (*domain.SyncState, error)

	// MarkBusyIfSyncing sets SYNC_WHILE_SYNCING if and only if a dispatch is
	// currently outstanding (SYNCING or SYNC_WHILE_SYNCING). Returns true
	// when the record was busy, meaning the caller must not dispatch.
	MarkBusyIfSyncing(recordID uint) (bool, error)

	// Claim atomically records a fresh attempt: SYNCING + uid + last_sync_at,
	// guarded against an already-busy row. Returns false when the claim lost
	// a race with a concurrent dispatcher.
	Claim(recordID uint, uid string, at time.Time) (bool, error)

	// FinishIfUIDMatch applies a terminal transition and clears the uid in a
	// single conditional update keyed on the stored uid. Returns false when
	// the uid no longer matches (stale callback).
	FinishIfUIDMatch(recordID uint, uid string, status domain.SyncStatus, resyncCount int) (bool, error)

	// SetFailed marks a dispatch failure: status ERROR, uid cleared, retry
	// counter reset. Only valid while the caller owns the record via a
	// successful Claim.
	SetFailed(recordID uint) error

	// SetStatus overwrites the status, clearing uid and retry counter.
	// Used by the reconciler's corrective bookkeeping.
	SetStatus(recordID uint, status domain.SyncStatus) error

	// EscalateIfTimedOut moves a busy row to RESYNC when its attempt started
	// before the given cutoff. Returns true when the escalation was applied.
	EscalateIfTimedOut(recordID uint, cutoff time.Time) (bool, error)

	// ListForTypes returns all state rows belonging to records of the types
	ListForTypes(types []string) ([]domain.SyncState, error)

	// DeleteByRecordIDs clears persisted status for the given records
	DeleteByRecordIDs(recordIDs []uint) error

	// DeleteForTypes clears persisted status for every record of the types
	DeleteForTypes(types []string) error

	// CountByStatuses counts state rows of eligible records in the statuses
	CountByStatuses(types []string, statuses []domain.SyncStatus) (int64, error)
}
