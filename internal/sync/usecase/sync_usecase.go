package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"searchsync-backend/internal/record/domain"
	"searchsync-backend/internal/record/repository"
	"searchsync-backend/pkg/config"
	"searchsync-backend/pkg/renderer"
	"searchsync-backend/pkg/translation"
)

// syncUsecase implements SyncUsecase
type syncUsecase struct {
	records      repository.RecordRepository
	states       repository.SyncStateRepository
	client       SearchClient
	renderer     renderer.Renderer
	translations translation.Provider
	config       *config.Config
	now          func() time.Time
}

// NewSyncUsecase creates a new instance of syncUsecase
func NewSyncUsecase(
	records repository.RecordRepository,
	states repository.SyncStateRepository,
	client SearchClient,
	docRenderer renderer.Renderer,
	translations translation.Provider,
	cfg *config.Config,
) SyncUsecase {
	return &syncUsecase{
		records:      records,
		states:       states,
		client:       client,
		renderer:     docRenderer,
		translations: translations,
		config:       cfg,
		now:          time.Now,
	}
}

func (u *syncUsecase) SyncRecord(ctx context.Context, recordID uint, deleted bool) (DispatchResult, error) {
	record, err := u.records.FindByID(recordID)
	if err != nil {
		return DispatchResult{}, err
	}
	if record == nil {
		return DispatchResult{}, fmt.Errorf("record %d not found", recordID)
	}

	op := OpUpsert
	if deleted || !record.Indexable() {
		op = OpDelete
	}

	result, err := u.dispatch(ctx, record, op, dispatchOptions{checkSyncable: true})
	if err != nil {
		return result, err
	}

	if result.Outcome == DispatchAccepted {
		u.cascadeTranslations(ctx, recordID)
	}
	return result, nil
}

// cascadeTranslations re-enters the dispatcher for each sibling-language
// record. Each sibling is gated independently; failures are logged and do
// not affect the originating record's result.
func (u *syncUsecase) cascadeTranslations(ctx context.Context, recordID uint) {
	related, err := u.translations.GetRelatedRecords(recordID)
	if err != nil {
		log.Printf("[WARN] failed to load translations for record %d: %v", recordID, err)
		return
	}

	for _, sibling := range related {
		record, err := u.records.FindByID(sibling.RecordID)
		if err != nil || record == nil {
			continue
		}
		op := OpUpsert
		if !record.Indexable() {
			op = OpDelete
		}
		result, err := u.dispatch(ctx, record, op, dispatchOptions{checkSyncable: true})
		if err != nil {
			log.Printf("[WARN] translation sync for record %d failed: %v", record.ID, err)
			continue
		}
		if result.Failed() {
			log.Printf("[WARN] translation sync for record %d failed: %s", record.ID, result.Message)
		}
	}
}

func (u *syncUsecase) ResolveStatus(recordID uint) (domain.SyncStatus, error) {
	state, err := u.states.Get(recordID)
	if err != nil {
		return domain.StatusNotSynced, err
	}
	if state == nil {
		return domain.StatusNotSynced, nil
	}
	if !state.Status.IsBusy() {
		return state.Status, nil
	}

	// A busy record self-heals to RESYNC once the attempt is older than
	// the sync timeout; the escalation is persisted atomically.
	cutoff := u.now().Add(-u.config.SyncTimeout)
	escalated, err := u.states.EscalateIfTimedOut(recordID, cutoff)
	if err != nil {
		return state.Status, err
	}
	if escalated {
		return domain.StatusResync, nil
	}
	return state.Status, nil
}

func (u *syncUsecase) ErrorCount() (int64, error) {
	return u.states.CountByStatuses(u.config.EligibleTypes, []domain.SyncStatus{domain.StatusError})
}
