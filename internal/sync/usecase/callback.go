package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"searchsync-backend/internal/record/domain"
	"searchsync-backend/internal/sync/dto"
)

var (
	// ErrMalformedCallback: the payload carried no identifiable record id
	ErrMalformedCallback = errors.New("callback payload missing record id")
	// ErrStaleCallback: the uid does not match the record's outstanding
	// attempt; most likely superseded by a newer dispatch
	ErrStaleCallback = errors.New("callback uid does not match current sync state")
)

const notFoundPrefix = "document not found"

func isNotFound(message string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(message)), notFoundPrefix)
}

func (u *syncUsecase) HandleCallback(ctx context.Context, uid string, payload *dto.CallbackPayload) error {
	recordID, ok := payload.RecordID()
	if !ok {
		log.Printf("[WARN] sync callback %s carries no record id, dropping", uid)
		return ErrMalformedCallback
	}

	state, err := u.states.Get(recordID)
	if err != nil {
		return err
	}
	if state == nil || state.SyncUID == nil || *state.SyncUID != uid {
		log.Printf("[WARN] stale sync callback for record %d, dropping", recordID)
		return ErrStaleCallback
	}

	record, err := u.records.FindByID(recordID)
	if err != nil {
		return err
	}

	if payload.Error {
		return u.resolveCallbackError(ctx, uid, recordID, state, record, payload.Message)
	}

	if state.Status == domain.StatusSyncWhileSyncing {
		// A new publish was requested while this attempt was outstanding:
		// finish this one and immediately dispatch afresh
		matched, err := u.states.FinishIfUIDMatch(recordID, uid, domain.StatusResync, 0)
		if err != nil {
			return err
		}
		if matched && record != nil {
			u.redispatch(ctx, record)
		}
		return nil
	}

	_, err = u.states.FinishIfUIDMatch(recordID, uid, domain.StatusSynced, 0)
	return err
}

func (u *syncUsecase) resolveCallbackError(ctx context.Context, uid string, recordID uint, state *domain.SyncState, record *domain.Record, message string) error {
	if !isNotFound(message) {
		log.Printf("[ERROR] remote sync error for record %d: %s", recordID, message)
		_, err := u.states.FinishIfUIDMatch(recordID, uid, domain.StatusError, 0)
		return err
	}

	switch {
	case record == nil || record.Excluded():
		// Not indexed on purpose; the remote side is right not to have it
		_, err := u.states.FinishIfUIDMatch(recordID, uid, domain.StatusNotSynced, 0)
		return err

	case !record.Published:
		_, err := u.states.FinishIfUIDMatch(recordID, uid, domain.StatusError, 0)
		return err

	default:
		count := state.ResyncCount + 1
		if count > domain.MaxResyncCount {
			log.Printf("[ERROR] record %d still not found after %d retries, giving up", recordID, domain.MaxResyncCount)
			_, err := u.states.FinishIfUIDMatch(recordID, uid, domain.StatusError, 0)
			return err
		}
		matched, err := u.states.FinishIfUIDMatch(recordID, uid, domain.StatusResync, count)
		if err != nil {
			return err
		}
		if matched {
			u.redispatch(ctx, record)
		}
		return nil
	}
}

// redispatch sends a fresh attempt after a callback asked for one. The
// previous uid is already cleared, so the new claim races fairly with any
// concurrent dispatcher.
func (u *syncUsecase) redispatch(ctx context.Context, record *domain.Record) {
	op := OpUpsert
	if !record.Indexable() {
		op = OpDelete
	}
	result, err := u.dispatch(ctx, record, op, dispatchOptions{})
	if err != nil {
		log.Printf("[ERROR] re-dispatch for record %d failed: %v", record.ID, err)
		return
	}
	if result.Failed() {
		log.Printf("[WARN] re-dispatch for record %d failed: %s", record.ID, result.Message)
	}
}
