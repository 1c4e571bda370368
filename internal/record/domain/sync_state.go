package domain

import "time"

// MaxResyncCount bounds the automatic retries triggered by a
// "document not found" callback. Exceeding it means ERROR.
const MaxResyncCount = 3

// SyncState is the persisted per-record synchronization bookkeeping.
// It outlives process restarts; an absent row means StatusNotSynced.
type SyncState struct {
	RecordID    uint       `json:"record_id" gorm:"primaryKey"`
	Status      SyncStatus `json:"status" gorm:"index"`
	SyncUID     *string    `json:"sync_uid,omitempty" gorm:"column:sync_uid"`
	LastSyncAt  *time.Time `json:"last_sync_at,omitempty"`
	ResyncCount int        `json:"resync_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (SyncState) TableName() string {
	return "sync_states"
}

// TimedOut reports whether an in-flight attempt has been outstanding
// longer than the configured timeout
func (s *SyncState) TimedOut(timeout time.Duration, now time.Time) bool {
	if !s.Status.IsBusy() || s.LastSyncAt == nil {
		return false
	}
	return now.Sub(*s.LastSyncAt) > timeout
}
