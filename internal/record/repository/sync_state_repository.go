package repository

import (
	"fmt"
	"time"

	"searchsync-backend/internal/record/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// syncStateRepository implements SyncStateRepository
type syncStateRepository struct {
	db *gorm.DB
}

func NewSyncStateRepository(db *gorm.DB) SyncStateRepository {
	return &syncStateRepository{db: db}
}

func (r *syncStateRepository) Get(recordID uint) (*domain.SyncState, error) {
	var state domain.SyncState
	err := r.db.Where("record_id = ?", recordID).First(&state).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

func (r *syncStateRepository) MarkBusyIfSyncing(recordID uint) (bool, error) {
	res := r.db.Model(&domain.SyncState{}).
		Where("record_id = ? AND status IN ?", recordID, []domain.SyncStatus{domain.StatusSyncing, domain.StatusSyncWhileSyncing}).
		Updates(map[string]interface{}{
			"status":     domain.StatusSyncWhileSyncing,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark busy: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *syncStateRepository) Claim(recordID uint, uid string, at time.Time) (bool, error) {
	state := domain.SyncState{
		RecordID:   recordID,
		Status:     domain.StatusSyncing,
		SyncUID:    &uid,
		LastSyncAt: &at,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	// One atomic upsert: insert the attempt, or take over an existing row
	// only when no dispatch is outstanding. The retry counter survives so
	// the not-found retry bound holds across re-dispatches.
	res := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "record_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":       domain.StatusSyncing,
			"sync_uid":     uid,
			"last_sync_at": at,
			"updated_at":   at,
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "sync_states.status NOT IN (?,?)", Vars: []interface{}{domain.StatusSyncing, domain.StatusSyncWhileSyncing}},
		}},
	}).Create(&state)
	if res.Error != nil {
		return false, fmt.Errorf("failed to claim record %d: %w", recordID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *syncStateRepository) FinishIfUIDMatch(recordID uint, uid string, status domain.SyncStatus, resyncCount int) (bool, error) {
	res := r.db.Model(&domain.SyncState{}).
		Where("record_id = ? AND sync_uid = ?", recordID, uid).
		Updates(map[string]interface{}{
			"status":       status,
			"sync_uid":     nil,
			"resync_count": resyncCount,
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to finish attempt: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *syncStateRepository) SetFailed(recordID uint) error {
	return r.db.Model(&domain.SyncState{}).
		Where("record_id = ?", recordID).
		Updates(map[string]interface{}{
			"status":       domain.StatusError,
			"sync_uid":     nil,
			"resync_count": 0,
			"updated_at":   time.Now(),
		}).Error
}

func (r *syncStateRepository) SetStatus(recordID uint, status domain.SyncStatus) error {
	now := time.Now()
	state := domain.SyncState{
		RecordID:  recordID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "record_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":       status,
			"sync_uid":     nil,
			"resync_count": 0,
			"updated_at":   now,
		}),
	}).Create(&state).Error
}

func (r *syncStateRepository) EscalateIfTimedOut(recordID uint, cutoff time.Time) (bool, error) {
	res := r.db.Model(&domain.SyncState{}).
		Where("record_id = ? AND status IN ? AND last_sync_at < ?",
			recordID, []domain.SyncStatus{domain.StatusSyncing, domain.StatusSyncWhileSyncing}, cutoff).
		Updates(map[string]interface{}{
			"status":     domain.StatusResync,
			"sync_uid":   nil,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to escalate timed out attempt: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *syncStateRepository) ListForTypes(types []string) ([]domain.SyncState, error) {
	var states []domain.SyncState
	err := r.db.
		Where("record_id IN (?)", r.db.Model(&domain.Record{}).Select("id").Where("type IN ?", types)).
		Find(&states).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sync states: %w", err)
	}
	return states, nil
}

func (r *syncStateRepository) DeleteByRecordIDs(recordIDs []uint) error {
	if len(recordIDs) == 0 {
		return nil
	}
	return r.db.Where("record_id IN ?", recordIDs).Delete(&domain.SyncState{}).Error
}

func (r *syncStateRepository) DeleteForTypes(types []string) error {
	return r.db.
		Where("record_id IN (?)", r.db.Model(&domain.Record{}).Select("id").Where("type IN ?", types)).
		Delete(&domain.SyncState{}).Error
}

func (r *syncStateRepository) CountByStatuses(types []string, statuses []domain.SyncStatus) (int64, error) {
	var count int64
	err := r.db.Model(&domain.SyncState{}).
		Where("status IN ?", statuses).
		Where("record_id IN (?)", r.db.Model(&domain.Record{}).Select("id").
			Where("type IN ? AND published = ? AND index_pref <> ?", types, true, string(domain.IndexExclude))).
		Count(&count).Error
	return count, err
}
