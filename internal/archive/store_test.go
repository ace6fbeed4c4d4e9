package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeflow/forgeflow/internal/auto"
	"github.com/forgeflow/forgeflow/internal/decision"
	"github.com/forgeflow/forgeflow/internal/domain"
	"github.com/forgeflow/forgeflow/internal/score"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func terminalSession(state auto.State) *auto.AutomationContext {
	return &auto.AutomationContext{
		SessionID: domain.NewSessionID(),
		State:     state,
		Prompt:    "build a blog",
		Scores: []*score.Score{{
			Overall:     88,
			GeneratedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		}},
		Decisions: []auto.DecisionRecord{{
			Decision: decision.DecisionComplete,
			Reason:   "quality score 88 meets the threshold of 70",
			Overall:  88,
		}},
		RetryCount: 1,
		StartedAt:  time.Date(2026, 3, 14, 9, 25, 0, 0, time.UTC),
	}
}

func TestStore_SaveAndLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	session := terminalSession(auto.StateCompleted)
	events := []auto.Event{
		{Seq: 1, Type: auto.EventStateChange, State: auto.StateIdle, Message: "session created"},
		{Seq: 2, Type: auto.EventPlanCreated, State: auto.StatePlanning, Message: "plan with 4 tasks"},
	}

	require.NoError(t, store.Save(context.Background(), session, events))

	loaded, loadedEvents, err := store.Load(context.Background(), session.SessionID.String())
	require.NoError(t, err)

	assert.Equal(t, session.SessionID, loaded.SessionID)
	assert.Equal(t, auto.StateCompleted, loaded.State)
	assert.Equal(t, 88, loaded.LatestScore().Overall)
	assert.Equal(t, decision.DecisionComplete, loaded.LatestDecision().Decision)
	require.Len(t, loadedEvents, 2)
	assert.Equal(t, 2, loadedEvents[1].Seq)
}

func TestStore_RejectsNonTerminalSession(t *testing.T) {
	store := openTestStore(t)
	session := terminalSession(auto.StateExecuting)

	err := store.Save(context.Background(), session, nil)
	assert.Error(t, err)
}

func TestStore_LoadUnknownSession(t *testing.T) {
	store := openTestStore(t)
	_, _, err := store.Load(context.Background(), "session-missing")
	assert.Error(t, err)
}

func TestStore_SaveIsIdempotentPerSession(t *testing.T) {
	store := openTestStore(t)
	session := terminalSession(auto.StateFailed)

	require.NoError(t, store.Save(context.Background(), session, nil))
	session.RetryCount = 3
	require.NoError(t, store.Save(context.Background(), session, nil))

	loaded, _, err := store.Load(context.Background(), session.SessionID.String())
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.RetryCount)

	summaries, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestStore_ListOrdersMostRecentFirst(t *testing.T) {
	store := openTestStore(t)

	first := terminalSession(auto.StateCompleted)
	second := terminalSession(auto.StateAwaitingInput)
	require.NoError(t, store.Save(context.Background(), first, nil))
	require.NoError(t, store.Save(context.Background(), second, nil))

	summaries, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, 88, summaries[0].Overall)

	// Limit caps the result set.
	limited, err := store.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
