package repository

import (
	"fmt"
	"time"

	"searchsync-backend/internal/record/domain"

	"gorm.io/gorm"
)

// pageClaimLockKey is the advisory lock guarding batch page selection.
// Held only for the selection+claim transaction.
const pageClaimLockKey = 874120

// recordRepository implements RecordRepository
type recordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) FindByID(id uint) (*domain.Record, error) {
	var record domain.Record
	err := r.db.First(&record, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *recordRepository) CountEligible(types []string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Record{}).
		Where("type IN ? AND published = ? AND index_pref <> ?", types, true, string(domain.IndexExclude)).
		Count(&count).Error
	return count, err
}

func (r *recordRepository) ListEligible(types []string) ([]domain.Record, error) {
	var records []domain.Record
	err := r.db.
		Where("type IN ? AND published = ? AND index_pref <> ?", types, true, string(domain.IndexExclude)).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible records: %w", err)
	}
	return records, nil
}

func (r *recordRepository) ClaimNextPage(types []string, pageSize int, now time.Time, newUID func() string) ([]ClaimedRecord, error) {
	var claimed []ClaimedRecord

	err := r.db.Transaction(func(tx *gorm.DB) error {
		// Serializes concurrent page selections; released at commit
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", pageClaimLockKey).Error; err != nil {
			return fmt.Errorf("failed to acquire page claim lock: %w", err)
		}

		var records []domain.Record
		err := tx.
			Joins("LEFT JOIN sync_states ON sync_states.record_id = records.id").
			Where("sync_states.record_id IS NULL").
			Where("records.type IN ? AND records.published = ? AND records.index_pref <> ?", types, true, string(domain.IndexExclude)).
			Order("records.created_at DESC").
			Limit(pageSize).
			Find(&records).Error
		if err != nil {
			return fmt.Errorf("failed to select page: %w", err)
		}

		for _, record := range records {
			uid := newUID()
			syncAt := now
			state := domain.SyncState{
				RecordID:   record.ID,
				Status:     domain.StatusSyncing,
				SyncUID:    &uid,
				LastSyncAt: &syncAt,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := tx.Create(&state).Error; err != nil {
				return fmt.Errorf("failed to claim record %d: %w", record.ID, err)
			}
			claimed = append(claimed, ClaimedRecord{Record: record, UID: uid})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}
