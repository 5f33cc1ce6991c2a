package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rydhlnst/capstone-project/internal/analysis"
)

func TestMemoryStoreCreate(t *testing.T) {
	s := NewMemoryStore()
	sess, err := s.Create(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, `^session_\d+_[0-9a-z]{9}$`, sess.SessionID)
	assert.Empty(t, sess.History)
	assert.Empty(t, sess.Analyses)

	got, err := s.Get(context.Background(), sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, sess.SessionID, got.SessionID)
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "session_0_unknownid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreGetOrCreate(t *testing.T) {
	s := NewMemoryStore()
	sess, err := s.GetOrCreate(context.Background(), "session_1_abcdefghi")
	require.NoError(t, err)
	assert.Empty(t, sess.History)

	// Now visible through Get as well.
	_, err = s.Get(context.Background(), "session_1_abcdefghi")
	require.NoError(t, err)
}

func TestMemoryStoreUpdateAbortsOnError(t *testing.T) {
	s := NewMemoryStore()
	id := "session_2_abcdefghi"
	require.NoError(t, s.Update(context.Background(), id, func(sess *Session) error {
		sess.History = append(sess.History, Message{Role: RoleUser, Content: "kept"})
		return nil
	}))
	err := s.Update(context.Background(), id, func(sess *Session) error {
		sess.History = append(sess.History, Message{Role: RoleUser, Content: "dropped"})
		return fmt.Errorf("provider down")
	})
	require.Error(t, err)

	got, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, got.History, 1)
	assert.Equal(t, "kept", got.History[0].Content)
}

func TestMemoryStoreUpdateConcurrentAppends(t *testing.T) {
	s := NewMemoryStore()
	id := "session_3_abcdefghi"

	const n = 32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			err := s.Update(context.Background(), id, func(sess *Session) error {
				sess.History = append(sess.History,
					Message{Role: RoleUser, Content: fmt.Sprintf("u%d", i)},
					Message{Role: RoleAssistant, Content: fmt.Sprintf("a%d", i)},
				)
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, got.History, 2*n)
}

func TestMemoryStoreCloneIsolation(t *testing.T) {
	s := NewMemoryStore()
	id := "session_4_abcdefghi"
	require.NoError(t, s.AppendAnalysis(context.Background(), id, analysis.Result{ID: "analysis_1"}))

	snap, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	snap.Analyses[0].ID = "mutated"
	snap.History = append(snap.History, Message{Role: RoleUser, Content: "x"})

	again, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "analysis_1", again.Analyses[0].ID)
	assert.Empty(t, again.History)
}

func TestVisibleHistoryFiltersSystem(t *testing.T) {
	sess := &Session{History: []Message{
		{Role: RoleSystem, Content: "priming"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}}
	vis := sess.VisibleHistory()
	require.Len(t, vis, 2)
	assert.Equal(t, RoleUser, vis[0].Role)
	assert.Equal(t, RoleAssistant, vis[1].Role)
}
