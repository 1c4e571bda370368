package usecase

import (
	"context"
	"log"

	"searchsync-backend/internal/record/domain"
	"searchsync-backend/internal/sync/dto"

	"github.com/google/uuid"
)

// completeStatuses are the terminal states counted as batch progress
var completeStatuses = []domain.SyncStatus{domain.StatusSynced, domain.StatusError}

func (u *syncUsecase) Initiate(errorsOnly bool) (*dto.InitiateResponse, error) {
	types := u.config.EligibleTypes

	if errorsOnly {
		states, err := u.states.ListForTypes(types)
		if err != nil {
			return nil, err
		}
		var erroredIDs []uint
		for i := range states {
			resolved, err := u.resolveState(&states[i])
			if err != nil {
				return nil, err
			}
			if resolved == domain.StatusError {
				erroredIDs = append(erroredIDs, states[i].RecordID)
			}
		}
		if err := u.states.DeleteByRecordIDs(erroredIDs); err != nil {
			return nil, err
		}
	} else {
		if err := u.states.DeleteForTypes(types); err != nil {
			return nil, err
		}
	}

	total, complete, err := u.totals()
	if err != nil {
		return nil, err
	}

	resp := &dto.InitiateResponse{Total: total, Complete: complete}
	if total == 0 {
		resp.Done = true
		resp.Message = "no records to sync"
	} else if complete >= total {
		resp.Done = true
	}
	return resp, nil
}

func (u *syncUsecase) ProcessNextPage(ctx context.Context, pageSize int) (*dto.ProcessResponse, error) {
	if pageSize <= 0 {
		pageSize = 10
	}

	claimed, err := u.records.ClaimNextPage(u.config.EligibleTypes, pageSize, u.now(), uuid.NewString)
	if err != nil {
		return nil, err
	}

	if len(claimed) == 0 {
		total, complete, err := u.totals()
		if err != nil {
			return nil, err
		}
		return &dto.ProcessResponse{Done: true, Total: total, Complete: complete, Results: []dto.RecordResult{}}, nil
	}

	results := make([]dto.RecordResult, 0, len(claimed))
	for _, claim := range claimed {
		record := claim.Record
		// Claimed at selection time, so the gate check is redundant here
		result, err := u.dispatch(ctx, &record, OpUpsert, dispatchOptions{claimedUID: claim.UID})
		entry := dto.RecordResult{Title: record.Title, RecordID: record.ID}
		if err != nil {
			log.Printf("[ERROR] batch dispatch for record %d: %v", record.ID, err)
			entry.Error = true
			entry.Message = err.Error()
		} else if result.Failed() {
			entry.Error = true
			entry.Message = result.Message
			entry.Response = result.Response
		} else {
			entry.Response = result.Response
		}
		results = append(results, entry)
	}

	total, complete, err := u.totals()
	if err != nil {
		return nil, err
	}
	return &dto.ProcessResponse{Done: false, Total: total, Complete: complete, Results: results}, nil
}

func (u *syncUsecase) totals() (int64, int64, error) {
	total, err := u.records.CountEligible(u.config.EligibleTypes)
	if err != nil {
		return 0, 0, err
	}
	complete, err := u.states.CountByStatuses(u.config.EligibleTypes, completeStatuses)
	if err != nil {
		return 0, 0, err
	}
	return total, complete, nil
}

// resolveState mirrors ResolveStatus for an already-loaded row
func (u *syncUsecase) resolveState(state *domain.SyncState) (domain.SyncStatus, error) {
	if !state.Status.IsBusy() {
		return state.Status, nil
	}
	cutoff := u.now().Add(-u.config.SyncTimeout)
	escalated, err := u.states.EscalateIfTimedOut(state.RecordID, cutoff)
	if err != nil {
		return state.Status, err
	}
	if escalated {
		return domain.StatusResync, nil
	}
	return state.Status, nil
}
