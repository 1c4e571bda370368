package usecase

import (
	"context"
	"log"

	"searchsync-backend/internal/record/domain"
	"searchsync-backend/internal/sync/dto"
)

// remoteTimeLayout is the second-precision layout both sides use for the
// staleness comparison; values are compared as strings
const remoteTimeLayout = "2006-01-02T15:04:05"

func (u *syncUsecase) Validate(ctx context.Context) (*dto.ValidateResponse, error) {
	remote, err := u.client.ScrollDocuments(ctx, u.config.ScrollPageSize)
	if err != nil {
		// Keep whatever the scroll collected before failing
		log.Printf("[WARN] remote scroll ended early, validating with partial data: %v", err)
	}

	locals, err := u.records.ListEligible(u.config.EligibleTypes)
	if err != nil {
		return nil, err
	}

	resp := &dto.ValidateResponse{}
	for _, record := range locals {
		localModified := record.ModifiedAt.Format(remoteTimeLayout)
		remoteModified, present := remote[record.ID]

		state, err := u.states.Get(record.ID)
		if err != nil {
			return nil, err
		}
		status := domain.StatusNotSynced
		if state != nil {
			status = state.Status
		}

		switch {
		case present && remoteModified == localModified:
			resp.UpToDate++
			if status != domain.StatusSynced {
				if err := u.states.SetStatus(record.ID, domain.StatusSynced); err != nil {
					return nil, err
				}
			}

		case present:
			resp.MismatchedDate++
			if status != domain.StatusError {
				if err := u.states.SetStatus(record.ID, domain.StatusError); err != nil {
					return nil, err
				}
			}

		default:
			resp.MissingFromES++
			if status != domain.StatusError {
				// Clearing the row makes the record eligible for the next
				// batch run; validation never re-dispatches by itself
				if err := u.states.DeleteByRecordIDs([]uint{record.ID}); err != nil {
					return nil, err
				}
			}
		}

		delete(remote, record.ID)
	}

	// Documents indexed remotely with no corresponding local record
	resp.MissingFromWP = len(remote)
	return resp, nil
}
