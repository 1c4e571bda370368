package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"searchsync-backend/internal/record/domain"
	"searchsync-backend/pkg/searchapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addEligibleRecords(env *testEnv, n int) {
	for i := 1; i <= n; i++ {
		record := publishedRecord(uint(i))
		record.Title = fmt.Sprintf("Post %d", i)
		env.records.add(record)
	}
}

// deliverCallbacks resolves every outstanding attempt with a success
// notice, the way the remote API would out of band
func deliverCallbacks(t *testing.T, env *testEnv, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		state, err := env.states.Get(uint(i))
		require.NoError(t, err)
		if state == nil || state.SyncUID == nil {
			continue
		}
		err = env.usecase.HandleCallback(context.Background(), *state.SyncUID, callbackPayload(t, uint(i), false, ""))
		require.NoError(t, err)
	}
}

func TestProcessNextPage_ExhaustsEligibleSet(t *testing.T) {
	const n = 7
	for _, pageSize := range []int{1, n, n + 10} {
		t.Run(fmt.Sprintf("page_size_%d", pageSize), func(t *testing.T) {
			env := newTestEnv(testConfig())
			addEligibleRecords(env, n)

			for pages := 0; ; pages++ {
				require.Less(t, pages, n+2, "paging did not terminate")

				resp, err := env.usecase.ProcessNextPage(context.Background(), pageSize)
				require.NoError(t, err)
				if resp.Done {
					assert.Equal(t, int64(n), resp.Total)
					assert.Equal(t, int64(n), resp.Complete)
					break
				}
				assert.NotEmpty(t, resp.Results)
				deliverCallbacks(t, env, n)
			}
		})
	}
}

func TestProcessNextPage_AccumulatesFailuresInsteadOfAborting(t *testing.T) {
	env := newTestEnv(testConfig())
	addEligibleRecords(env, 3)
	env.client.upsertResult = func(typeLabel string, body []byte) searchapi.Result {
		return searchapi.Result{Outcome: searchapi.OutcomeRemoteError, Message: "index unavailable"}
	}

	resp, err := env.usecase.ProcessNextPage(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	for _, result := range resp.Results {
		assert.True(t, result.Error)
		assert.Equal(t, "index unavailable", result.Message)
	}

	// Failed dispatches count as complete (terminal ERROR)
	assert.Equal(t, int64(3), resp.Complete)
}

func TestProcessNextPage_SkipsAlreadyAttemptedRecords(t *testing.T) {
	env := newTestEnv(testConfig())
	addEligibleRecords(env, 3)
	require.NoError(t, env.states.SetStatus(2, domain.StatusSynced))

	resp, err := env.usecase.ProcessNextPage(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	for _, result := range resp.Results {
		assert.NotEqual(t, uint(2), result.RecordID)
	}
}

func TestInitiate_ClearsAllStatuses(t *testing.T) {
	env := newTestEnv(testConfig())
	addEligibleRecords(env, 3)
	require.NoError(t, env.states.SetStatus(1, domain.StatusSynced))
	require.NoError(t, env.states.SetStatus(2, domain.StatusError))

	resp, err := env.usecase.Initiate(false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, int64(0), resp.Complete)
	assert.False(t, resp.Done)

	state, _ := env.states.Get(1)
	assert.Nil(t, state)
}

func TestInitiate_ErrorsOnlyKeepsHealthyStatuses(t *testing.T) {
	env := newTestEnv(testConfig())
	addEligibleRecords(env, 3)
	require.NoError(t, env.states.SetStatus(1, domain.StatusSynced))
	require.NoError(t, env.states.SetStatus(2, domain.StatusError))

	resp, err := env.usecase.Initiate(true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, int64(1), resp.Complete)

	// The errored record became eligible again, the synced one kept its state
	errored, _ := env.states.Get(2)
	assert.Nil(t, errored)
	synced, _ := env.states.Get(1)
	require.NotNil(t, synced)
	assert.Equal(t, domain.StatusSynced, synced.Status)
}

func TestInitiate_NothingToDo(t *testing.T) {
	env := newTestEnv(testConfig())

	resp, err := env.usecase.Initiate(false)
	require.NoError(t, err)
	assert.True(t, resp.Done)
	assert.Equal(t, int64(0), resp.Total)
	assert.NotEmpty(t, resp.Message)
}

func TestInitiate_ErrorsOnlyResolvesStuckRecordsFirst(t *testing.T) {
	env := newTestEnv(testConfig())
	addEligibleRecords(env, 1)

	// Stuck in-flight for longer than the sync timeout
	old := time.Now().Add(-11 * time.Minute)
	_, err := env.states.Claim(1, "stuck-uid", old)
	require.NoError(t, err)

	resp, err := env.usecase.Initiate(true)
	require.NoError(t, err)

	// Resolution escalates to RESYNC, not ERROR, so the record is not cleared
	state, _ := env.states.Get(1)
	require.NotNil(t, state)
	assert.Equal(t, domain.StatusResync, state.Status)
	assert.Equal(t, int64(1), resp.Total)
}
