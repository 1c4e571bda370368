package usecase

import (
	"context"
	"sync"
	"time"

	"searchsync-backend/internal/record/domain"
	"searchsync-backend/internal/record/repository"
	"searchsync-backend/pkg/config"
	"searchsync-backend/pkg/renderer"
	"searchsync-backend/pkg/searchapi"
	"searchsync-backend/pkg/translation"
)

// fakeStateRepo mirrors the conditional-update semantics of the SQL store
// in memory; every method is atomic under the mutex
type fakeStateRepo struct {
	mu     sync.Mutex
	states map[uint]*domain.SyncState
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{states: make(map[uint]*domain.SyncState)}
}

func (f *fakeStateRepo) Get(recordID uint) (*domain.SyncState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.states[recordID]
	if !ok {
		return nil, nil
	}
	copied := *state
	if state.SyncUID != nil {
		uid := *state.SyncUID
		copied.SyncUID = &uid
	}
	return &copied, nil
}

func (f *fakeStateRepo) MarkBusyIfSyncing(recordID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.states[recordID]
	if !ok || !state.Status.IsBusy() {
		return false, nil
	}
	state.Status = domain.StatusSyncWhileSyncing
	return true, nil
}

func (f *fakeStateRepo) Claim(recordID uint, uid string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.states[recordID]
	if ok && state.Status.IsBusy() {
		return false, nil
	}
	if !ok {
		state = &domain.SyncState{RecordID: recordID, CreatedAt: at}
		f.states[recordID] = state
	}
	state.Status = domain.StatusSyncing
	state.SyncUID = &uid
	syncAt := at
	state.LastSyncAt = &syncAt
	state.UpdatedAt = at
	return true, nil
}

func (f *fakeStateRepo) FinishIfUIDMatch(recordID uint, uid string, status domain.SyncStatus, resyncCount int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.states[recordID]
	if !ok || state.SyncUID == nil || *state.SyncUID != uid {
		return false, nil
	}
	state.Status = status
	state.SyncUID = nil
	state.ResyncCount = resyncCount
	return true, nil
}

func (f *fakeStateRepo) SetFailed(recordID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.states[recordID]
	if !ok {
		return nil
	}
	state.Status = domain.StatusError
	state.SyncUID = nil
	state.ResyncCount = 0
	return nil
}

func (f *fakeStateRepo) SetStatus(recordID uint, status domain.SyncStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.states[recordID]
	if !ok {
		state = &domain.SyncState{RecordID: recordID}
		f.states[recordID] = state
	}
	state.Status = status
	state.SyncUID = nil
	state.ResyncCount = 0
	return nil
}

func (f *fakeStateRepo) EscalateIfTimedOut(recordID uint, cutoff time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.states[recordID]
	if !ok || !state.Status.IsBusy() || state.LastSyncAt == nil || !state.LastSyncAt.Before(cutoff) {
		return false, nil
	}
	state.Status = domain.StatusResync
	state.SyncUID = nil
	return true, nil
}

func (f *fakeStateRepo) ListForTypes(types []string) ([]domain.SyncState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var states []domain.SyncState
	for _, state := range f.states {
		states = append(states, *state)
	}
	return states, nil
}

func (f *fakeStateRepo) DeleteByRecordIDs(recordIDs []uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range recordIDs {
		delete(f.states, id)
	}
	return nil
}

func (f *fakeStateRepo) DeleteForTypes(types []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = make(map[uint]*domain.SyncState)
	return nil
}

func (f *fakeStateRepo) CountByStatuses(types []string, statuses []domain.SyncStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, state := range f.states {
		for _, status := range statuses {
			if state.Status == status {
				count++
				break
			}
		}
	}
	return count, nil
}

// fakeRecordRepo serves records from memory; page claims go through the
// fake state store so the "no persisted status" selection rule holds
type fakeRecordRepo struct {
	mu      sync.Mutex
	order   []uint
	records map[uint]*domain.Record
	states  *fakeStateRepo
}

func newFakeRecordRepo(states *fakeStateRepo) *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[uint]*domain.Record), states: states}
}

func (f *fakeRecordRepo) add(record domain.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = append(f.order, record.ID)
	f.records[record.ID] = &record
}

func (f *fakeRecordRepo) FindByID(id uint) (*domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (f *fakeRecordRepo) eligible(types []string) []*domain.Record {
	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}
	var eligible []*domain.Record
	for _, id := range f.order {
		record := f.records[id]
		if typeSet[record.Type] && record.Indexable() {
			eligible = append(eligible, record)
		}
	}
	return eligible
}

func (f *fakeRecordRepo) CountEligible(types []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.eligible(types))), nil
}

func (f *fakeRecordRepo) ListEligible(types []string) ([]domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var records []domain.Record
	for _, record := range f.eligible(types) {
		records = append(records, *record)
	}
	return records, nil
}

func (f *fakeRecordRepo) ClaimNextPage(types []string, pageSize int, now time.Time, newUID func() string) ([]repository.ClaimedRecord, error) {
	f.mu.Lock()
	candidates := f.eligible(types)
	f.mu.Unlock()

	var claimed []repository.ClaimedRecord
	for _, record := range candidates {
		if len(claimed) >= pageSize {
			break
		}
		if state, _ := f.states.Get(record.ID); state != nil {
			continue
		}
		uid := newUID()
		if ok, _ := f.states.Claim(record.ID, uid, now); ok {
			claimed = append(claimed, repository.ClaimedRecord{Record: *record, UID: uid})
		}
	}
	return claimed, nil
}

type upsertCall struct {
	typeLabel   string
	body        []byte
	callbackURL string
}

type deleteCall struct {
	typeLabel   string
	externalID  string
	callbackURL string
}

// fakeSearchClient records outbound calls and answers with configurable
// results (success by default)
type fakeSearchClient struct {
	mu           sync.Mutex
	upserts      []upsertCall
	deletes      []deleteCall
	upsertResult func(typeLabel string, body []byte) searchapi.Result
	deleteResult func(typeLabel, externalID string) searchapi.Result
	scrollDocs   map[uint]string
	scrollErr    error
}

func (f *fakeSearchClient) Upsert(ctx context.Context, typeLabel string, body []byte, callbackURL string, errorsOnly bool) searchapi.Result {
	f.mu.Lock()
	f.upserts = append(f.upserts, upsertCall{typeLabel: typeLabel, body: body, callbackURL: callbackURL})
	f.mu.Unlock()
	if f.upsertResult != nil {
		return f.upsertResult(typeLabel, body)
	}
	return searchapi.Result{Outcome: searchapi.OutcomeSuccess, Body: `{"status":"accepted"}`}
}

func (f *fakeSearchClient) Delete(ctx context.Context, typeLabel, externalID, callbackURL string, errorsOnly bool) searchapi.Result {
	f.mu.Lock()
	f.deletes = append(f.deletes, deleteCall{typeLabel: typeLabel, externalID: externalID, callbackURL: callbackURL})
	f.mu.Unlock()
	if f.deleteResult != nil {
		return f.deleteResult(typeLabel, externalID)
	}
	return searchapi.Result{Outcome: searchapi.OutcomeSuccess, Body: `{"status":"accepted"}`}
}

func (f *fakeSearchClient) ScrollDocuments(ctx context.Context, pageSize int) (map[uint]string, error) {
	docs := make(map[uint]string, len(f.scrollDocs))
	for id, modified := range f.scrollDocs {
		docs[id] = modified
	}
	return docs, f.scrollErr
}

func (f *fakeSearchClient) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.upserts)
}

type fakeRenderer struct {
	renderFunc func(record *domain.Record) (renderer.DocumentBody, error)
}

func (f *fakeRenderer) Render(record *domain.Record) (renderer.DocumentBody, error) {
	if f.renderFunc != nil {
		return f.renderFunc(record)
	}
	return renderer.DocumentBody{"record_id": record.ID, "title": record.Title}, nil
}

type fakeTranslations struct {
	related map[uint][]translation.RelatedRecord
}

func (f *fakeTranslations) GetRelatedRecords(recordID uint) ([]translation.RelatedRecord, error) {
	return f.related[recordID], nil
}

func testConfig() *config.Config {
	return &config.Config{
		SiteURL:         "http://example.com",
		IndexedURL:      "http://example.com",
		CallbackBaseURL: "http://example.com",
		SearchBaseURL:   "http://search.example.com",
		EligibleTypes:   []string{"post"},
		SyncTimeout:     10 * time.Minute,
		RequestTimeout:  30 * time.Second,
		ScrollPageSize:  500,
	}
}

type testEnv struct {
	usecase SyncUsecase
	records *fakeRecordRepo
	states  *fakeStateRepo
	client  *fakeSearchClient
}

func newTestEnv(cfg *config.Config) *testEnv {
	states := newFakeStateRepo()
	records := newFakeRecordRepo(states)
	client := &fakeSearchClient{}
	uc := &syncUsecase{
		records:      records,
		states:       states,
		client:       client,
		renderer:     &fakeRenderer{},
		translations: &fakeTranslations{},
		config:       cfg,
		now:          time.Now,
	}
	return &testEnv{usecase: uc, records: records, states: states, client: client}
}

func publishedRecord(id uint) domain.Record {
	return domain.Record{
		ID:         id,
		Type:       "post",
		Title:      "Post",
		Content:    "content",
		Published:  true,
		ModifiedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		CreatedAt:  time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}
