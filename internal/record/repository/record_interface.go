package repository

import (
	"time"

	"searchsync-backend/internal/record/domain"
)

// ClaimedRecord is one record selected and atomically marked SYNCING
// by a batch page claim, together with its fresh correlation token.
type ClaimedRecord struct {
	Record domain.Record
	UID    string
}

// RecordRepository defines read access to source-store records plus the
// batch page claim (selection and claim happen in one transaction under
// an advisory lock, so two pollers never pick overlapping pages).
type RecordRepository interface {
	FindByID(id uint) (*domain.Record, error)
	// CountEligible counts published, non-excluded records of the given types
	CountEligible(types []string) (int64, error)
	// ListEligible returns all eligible records, newest first
	ListEligible(types []string) ([]domain.Record, error)
	// ClaimNextPage selects up to pageSize eligible records with no persisted
	// sync state and claims each one (SYNCING + uid + last_sync_at) before
	// returning. The advisory lock is released when the transaction commits,
	// never held across network calls.
	ClaimNextPage(types []string, pageSize int, now time.Time, newUID func() string) ([]ClaimedRecord, error)
}
