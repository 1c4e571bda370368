package usecase

import (
	"context"

	"searchsync-backend/internal/record/domain"
	"searchsync-backend/internal/sync/dto"
	"searchsync-backend/pkg/searchapi"
)

// Operation is the kind of outbound dispatch
type Operation string

const (
	OpUpsert Operation = "upsert"
	OpDelete Operation = "delete"
)

// DispatchOutcome classifies one dispatch attempt
type DispatchOutcome int

const (
	// DispatchAccepted: the remote API accepted the request; resolution is
	// deferred to the asynchronous callback
	DispatchAccepted DispatchOutcome = iota
	// DispatchBusy: another dispatch is outstanding for the record
	DispatchBusy
	DispatchRendererFailed
	DispatchRemoteError
	DispatchConnectionFailed
)

// DispatchResult is the typed outcome of one dispatch. Failures never
// propagate as faults past the dispatcher boundary.
type DispatchResult struct {
	Outcome  DispatchOutcome
	Message  string
	Response string
}

// Failed reports whether the attempt ended in ERROR (busy is a non-fatal
// rejection, not a failure)
func (r DispatchResult) Failed() bool {
	return r.Outcome != DispatchAccepted && r.Outcome != DispatchBusy
}

// SyncUsecase drives the synchronization state machine: per-record
// dispatch, callback resolution, bulk resync paging and reconciliation
type SyncUsecase interface {
	// SyncRecord triggers a gated dispatch for one record (upsert when
	// indexable, delete otherwise) and cascades to its translations
	SyncRecord(ctx context.Context, recordID uint, deleted bool) (DispatchResult, error)

	// Dispatch sends one outbound request for the record. printMode renders
	// and returns the would-be body without sending or mutating state.
	Dispatch(ctx context.Context, record *domain.Record, op Operation, printMode bool) (DispatchResult, error)

	// HandleCallback applies the asynchronous completion notice carried by
	// one correlation token. Returns ErrMalformedCallback or
	// ErrStaleCallback on the no-state-change abort paths.
	HandleCallback(ctx context.Context, uid string, payload *dto.CallbackPayload) error

	// ResolveStatus returns the persisted status, escalating a stuck
	// in-flight attempt to RESYNC after the sync timeout
	ResolveStatus(recordID uint) (domain.SyncStatus, error)

	// Initiate clears sync status for all eligible records (or only those
	// resolved to ERROR) and returns the eligible-count snapshot
	Initiate(errorsOnly bool) (*dto.InitiateResponse, error)

	// ProcessNextPage claims and dispatches the next page of unattempted
	// eligible records, returning cumulative progress
	ProcessNextPage(ctx context.Context, pageSize int) (*dto.ProcessResponse, error)

	// Validate compares local records against the remote index without
	// re-sending content
	Validate(ctx context.Context) (*dto.ValidateResponse, error)

	// ErrorCount counts eligible records currently in ERROR
	ErrorCount() (int64, error)
}

// SearchClient is the outbound surface of the remote document API used by
// the sync engine. Implemented by *searchapi.Client.
type SearchClient interface {
	Upsert(ctx context.Context, typeLabel string, body []byte, callbackURL string, errorsOnly bool) searchapi.Result
	Delete(ctx context.Context, typeLabel, externalID, callbackURL string, errorsOnly bool) searchapi.Result
	ScrollDocuments(ctx context.Context, pageSize int) (map[uint]string, error)
}
