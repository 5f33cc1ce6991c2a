package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rydhlnst/capstone-project/internal/ai"
	"github.com/Rydhlnst/capstone-project/internal/analysis"
	"github.com/Rydhlnst/capstone-project/internal/session"
)

type recordingProvider struct {
	mu    sync.Mutex
	last  []ai.Message
	reply string
	err   error
}

func (p *recordingProvider) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = append([]ai.Message(nil), messages...)
	if p.err != nil {
		return "", p.err
	}
	if p.reply == "" {
		return "ok", nil
	}
	return p.reply, nil
}

func TestSendMessageAppendsTurn(t *testing.T) {
	store := session.NewMemoryStore()
	prov := &recordingProvider{reply: "santai bro"}
	svc := NewService(store, prov)

	reply, visible, err := svc.SendMessage(context.Background(), "session_1_abcdefghi", "halo", "")
	require.NoError(t, err)
	assert.Equal(t, "santai bro", reply)
	require.Len(t, visible, 2)
	assert.Equal(t, session.Message{Role: session.RoleUser, Content: "halo"}, visible[0])
	assert.Equal(t, session.Message{Role: session.RoleAssistant, Content: "santai bro"}, visible[1])

	// Session was auto-created and committed.
	sess, err := store.Get(context.Background(), "session_1_abcdefghi")
	require.NoError(t, err)
	assert.Len(t, sess.History, 2)
}

func TestSendMessageInjectsContextOnce(t *testing.T) {
	store := session.NewMemoryStore()
	id := "session_2_abcdefghi"
	require.NoError(t, store.AppendAnalysis(context.Background(), id, analysis.Result{
		ID:         "analysis_1",
		Title:      "Intro to Systems",
		Transcript: "full transcript here",
	}))

	prov := &recordingProvider{}
	svc := NewService(store, prov)

	_, visible, err := svc.SendMessage(context.Background(), id, "apa itu video ini?", "analysis_1")
	require.NoError(t, err)

	// Provider saw the system message first, then the user turn.
	require.GreaterOrEqual(t, len(prov.last), 2)
	assert.Equal(t, "system", prov.last[0].Role)
	assert.Contains(t, prov.last[0].Content, "Intro to Systems")
	assert.Contains(t, prov.last[0].Content, "full transcript here")

	// The response path never exposes the system message.
	for _, m := range visible {
		assert.NotEqual(t, session.RoleSystem, m.Role)
	}

	// A second turn against the same analysis does not add another priming
	// message to the stored history.
	_, _, err = svc.SendMessage(context.Background(), id, "lanjut dong", "analysis_1")
	require.NoError(t, err)

	sess, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	systemCount := 0
	for _, m := range sess.History {
		if m.Role == session.RoleSystem {
			systemCount++
			assert.True(t, strings.Contains(m.Content, "Intro to Systems"))
		}
	}
	assert.Equal(t, 1, systemCount)
	assert.Len(t, sess.History, 5) // 1 system + 2 turns
}

func TestSendMessageFallbackToLatestAnalysis(t *testing.T) {
	store := session.NewMemoryStore()
	id := "session_3_abcdefghi"
	for i, title := range []string{"One", "Two", "Three"} {
		require.NoError(t, store.AppendAnalysis(context.Background(), id, analysis.Result{
			ID:    fmt.Sprintf("analysis_%d", i+1),
			Title: title,
		}))
	}

	prov := &recordingProvider{}
	svc := NewService(store, prov)

	_, _, err := svc.SendMessage(context.Background(), id, "halo", "analysis_does_not_exist")
	require.NoError(t, err)
	require.NotEmpty(t, prov.last)
	assert.Contains(t, prov.last[0].Content, "Judul: Three")
}

func TestSendMessageGenerationFailureCommitsNothing(t *testing.T) {
	store := session.NewMemoryStore()
	id := "session_4_abcdefghi"
	prov := &recordingProvider{err: errors.New("upstream 500")}
	svc := NewService(store, prov)

	_, _, err := svc.SendMessage(context.Background(), id, "halo", "")
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)

	// No dangling unanswered user turn.
	sess, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, sess.History)
}

func TestSendMessageConcurrentTurns(t *testing.T) {
	store := session.NewMemoryStore()
	id := "session_5_abcdefghi"
	svc := NewService(store, &recordingProvider{})

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, _, err := svc.SendMessage(context.Background(), id, fmt.Sprintf("msg %d", i), "")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	sess, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, sess.History, 2*n)
}

func TestSendMessageConcurrentTurnsSingleInjection(t *testing.T) {
	store := session.NewMemoryStore()
	id := "session_6_abcdefghi"
	require.NoError(t, store.AppendAnalysis(context.Background(), id, analysis.Result{
		ID:    "analysis_1",
		Title: "Shared Video",
	}))
	svc := NewService(store, &recordingProvider{})

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, _, err := svc.SendMessage(context.Background(), id, fmt.Sprintf("msg %d", i), "analysis_1")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	sess, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	systemCount := 0
	for _, m := range sess.History {
		if m.Role == session.RoleSystem {
			systemCount++
		}
	}
	assert.Equal(t, 1, systemCount)
	assert.Len(t, sess.History, 1+2*n)
}
