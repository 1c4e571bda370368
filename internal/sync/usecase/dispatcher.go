package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"searchsync-backend/internal/record/domain"
	"searchsync-backend/pkg/searchapi"

	"github.com/google/uuid"
)

type dispatchOptions struct {
	// printMode renders and returns the outgoing body without sending
	// or touching persisted state
	printMode bool
	// checkSyncable runs the busy-check before claiming; the batch path
	// skips it because page selection already claimed the record
	checkSyncable bool
	// claimedUID carries the correlation token of an already-claimed
	// record (batch path); empty means claim with a fresh token
	claimedUID string
}

func (u *syncUsecase) Dispatch(ctx context.Context, record *domain.Record, op Operation, printMode bool) (DispatchResult, error) {
	return u.dispatch(ctx, record, op, dispatchOptions{printMode: printMode, checkSyncable: true})
}

func (u *syncUsecase) dispatch(ctx context.Context, record *domain.Record, op Operation, opts dispatchOptions) (DispatchResult, error) {
	if record == nil {
		return DispatchResult{}, errors.New("cannot dispatch nil record")
	}

	if opts.printMode {
		body, err := u.renderBody(record)
		if err != nil {
			return DispatchResult{Outcome: DispatchRendererFailed, Message: err.Error()}, nil
		}
		return DispatchResult{Outcome: DispatchAccepted, Response: string(body)}, nil
	}

	uid := opts.claimedUID
	if uid == "" {
		if opts.checkSyncable {
			busy, err := u.states.MarkBusyIfSyncing(record.ID)
			if err != nil {
				return DispatchResult{}, err
			}
			if busy {
				return DispatchResult{Outcome: DispatchBusy, Message: "could not publish while a publish is in progress"}, nil
			}
		}
		uid = uuid.New().String()
		claimed, err := u.states.Claim(record.ID, uid, u.now())
		if err != nil {
			return DispatchResult{}, err
		}
		if !claimed {
			return DispatchResult{Outcome: DispatchBusy, Message: "could not publish while a publish is in progress"}, nil
		}
	}

	callbackURL := fmt.Sprintf("%s/api/sync/callback/%s", strings.TrimRight(u.config.CallbackBaseURL, "/"), uid)

	var result searchapi.Result
	if op == OpDelete {
		externalID := searchapi.ExternalID(u.config.SiteURL, record.ID)
		result = u.client.Delete(ctx, record.Type, externalID, callbackURL, false)
	} else {
		body, err := u.renderBody(record)
		if err != nil {
			// The record is owned via the claim above, so the plain
			// failure write is safe
			if ferr := u.states.SetFailed(record.ID); ferr != nil {
				return DispatchResult{}, ferr
			}
			return DispatchResult{Outcome: DispatchRendererFailed, Message: err.Error()}, nil
		}
		result = u.client.Upsert(ctx, record.Type, body, callbackURL, false)
	}

	switch result.Outcome {
	case searchapi.OutcomeSuccess:
		// Leave SYNCING; the callback receiver finalizes the state
		return DispatchResult{Outcome: DispatchAccepted, Response: result.Body}, nil
	case searchapi.OutcomeRemoteError:
		if err := u.states.SetFailed(record.ID); err != nil {
			return DispatchResult{}, err
		}
		return DispatchResult{Outcome: DispatchRemoteError, Message: result.Message, Response: result.Body}, nil
	default:
		// No callback will ever arrive for a failed dispatch
		if err := u.states.SetFailed(record.ID); err != nil {
			return DispatchResult{}, err
		}
		return DispatchResult{Outcome: DispatchConnectionFailed, Message: result.Message}, nil
	}
}

func (u *syncUsecase) renderBody(record *domain.Record) ([]byte, error) {
	body, err := u.renderer.Render(record)
	if err != nil {
		return nil, fmt.Errorf("renderer failed: %w", err)
	}
	if body == nil {
		return nil, errors.New("renderer returned no document body")
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document body: %w", err)
	}
	return u.substituteDomain(raw), nil
}

// substituteDomain rewrites the runtime host with the configured indexed
// host in the outgoing body, for sites behind domain mapping
func (u *syncUsecase) substituteDomain(body []byte) []byte {
	siteHost := hostOf(u.config.SiteURL)
	indexedHost := hostOf(u.config.IndexedURL)
	if siteHost == "" || indexedHost == "" || siteHost == indexedHost {
		return body
	}
	return bytes.ReplaceAll(body, []byte(siteHost), []byte(indexedHost))
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return parsed.Host
}
