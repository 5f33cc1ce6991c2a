package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rydhlnst/capstone-project/internal/ai"
	"github.com/Rydhlnst/capstone-project/internal/analysis"
	"github.com/Rydhlnst/capstone-project/internal/chat"
	"github.com/Rydhlnst/capstone-project/internal/config"
	"github.com/Rydhlnst/capstone-project/internal/httpapi"
	"github.com/Rydhlnst/capstone-project/internal/httpapi/handlers"
	"github.com/Rydhlnst/capstone-project/internal/session"
)

type fakeAnalyzer struct {
	result *analysis.Result
	err    error
}

func (f *fakeAnalyzer) AnalyzeURL(ctx context.Context, rawURL string) (*analysis.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	res.SourceURL = rawURL
	return &res, nil
}

func (f *fakeAnalyzer) AnalyzeFile(ctx context.Context, storedPath, originalName, contentType string, size int64) (*analysis.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	res.Title = originalName
	return &res, nil
}

type scriptedProvider struct {
	reply string
	err   error
}

func (p *scriptedProvider) Chat(ctx context.Context, msgs []ai.Message) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details string          `json:"details"`
}

func newTestRouter(t *testing.T, analyzer handlers.Analyzer, provider *scriptedProvider) (*gin.Engine, session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := session.NewMemoryStore()
	chatSvc := chat.NewService(store, provider)
	h := handlers.NewHandler(config.Config{UploadMaxBytes: 1 << 20, UploadDir: t.TempDir()}, store, chatSvc, analyzer, nil, nil)
	return httpapi.NewRouter(h), store
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func sampleResult() *analysis.Result {
	return &analysis.Result{
		ID:           "analysis_1700000000000",
		Title:        "Belajar Go",
		Description:  "Dasar-dasar Go",
		Duration:     "4:13",
		ViewCount:    1200,
		LikeCount:    34,
		ChannelTitle: "Kanal Tutorial",
		Transcript:   "halo semuanya",
		ThumbnailURL: "https://i.ytimg.com/vi/abc/hq.jpg",
	}
}

func TestAnalyzeMissingFields(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAnalyzer{result: sampleResult()}, &scriptedProvider{reply: "ok"})

	w, env := doJSON(t, r, http.MethodPost, "/analyze", gin.H{"url": "https://youtu.be/abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Missing required fields: url, sessionId", env.Error)

	w, env = doJSON(t, r, http.MethodPost, "/analyze", gin.H{"sessionId": "s1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields: url, sessionId", env.Error)
}

func TestAnalyzeSuccessAppendsToSession(t *testing.T) {
	r, store := newTestRouter(t, &fakeAnalyzer{result: sampleResult()}, &scriptedProvider{reply: "ok"})

	w, env := doJSON(t, r, http.MethodPost, "/analyze", gin.H{
		"url":       "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"sessionId": "sess-analyze",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var res analysis.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "Belajar Go", res.Title)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", res.SourceURL)

	sess, err := store.Get(context.Background(), "sess-analyze")
	require.NoError(t, err)
	require.Len(t, sess.Analyses, 1)
	assert.Equal(t, "Belajar Go", sess.Analyses[0].Title)
}

func TestAnalyzeExtractionFailure(t *testing.T) {
	r, store := newTestRouter(t,
		&fakeAnalyzer{err: fmt.Errorf("metadata lookup failed: quota exceeded")},
		&scriptedProvider{reply: "ok"})

	w, env := doJSON(t, r, http.MethodPost, "/analyze", gin.H{
		"url":       "https://youtu.be/dQw4w9WgXcQ",
		"sessionId": "sess-fail",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Internal server error during YouTube analysis", env.Error)
	assert.Contains(t, env.Details, "quota exceeded")

	// Failed extraction must not create or mutate the session.
	_, err := store.Get(context.Background(), "sess-fail")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestChatMissingFields(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAnalyzer{result: sampleResult()}, &scriptedProvider{reply: "ok"})

	w, env := doJSON(t, r, http.MethodPost, "/chat", gin.H{"sessionId": "s1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields: message, sessionId", env.Error)
}

func TestChatReturnsVisibleHistory(t *testing.T) {
	r, store := newTestRouter(t, &fakeAnalyzer{result: sampleResult()}, &scriptedProvider{reply: "Santai, itu video tentang Go."})

	_, env := doJSON(t, r, http.MethodPost, "/analyze", gin.H{
		"url":       "https://youtu.be/dQw4w9WgXcQ",
		"sessionId": "sess-chat",
	})
	require.True(t, env.Success)

	w, env := doJSON(t, r, http.MethodPost, "/chat", gin.H{
		"message":    "Videonya tentang apa?",
		"sessionId":  "sess-chat",
		"analysisId": "analysis_1700000000000",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var data struct {
		Response string            `json:"response"`
		History  []session.Message `json:"conversationHistory"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "Santai, itu video tentang Go.", data.Response)
	require.Len(t, data.History, 2)
	assert.Equal(t, session.RoleUser, data.History[0].Role)
	assert.Equal(t, session.RoleAssistant, data.History[1].Role)

	// The priming system message exists in storage but never leaves the API.
	sess, err := store.Get(context.Background(), "sess-chat")
	require.NoError(t, err)
	require.Len(t, sess.History, 3)
	assert.Equal(t, session.RoleSystem, sess.History[0].Role)
	assert.Contains(t, sess.History[0].Content, "Belajar Go")
}

func TestChatGenerationFailureCommitsNothing(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("model unavailable")}
	r, store := newTestRouter(t, &fakeAnalyzer{result: sampleResult()}, provider)

	w, env := doJSON(t, r, http.MethodPost, "/chat", gin.H{
		"message":   "halo",
		"sessionId": "sess-gen-fail",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error during chat", env.Error)
	assert.Contains(t, env.Details, "model unavailable")

	sess, err := store.GetOrCreate(context.Background(), "sess-gen-fail")
	require.NoError(t, err)
	assert.Empty(t, sess.History)
}

func TestCreateSession(t *testing.T) {
	r, store := newTestRouter(t, &fakeAnalyzer{result: sampleResult()}, &scriptedProvider{reply: "ok"})

	w, env := doJSON(t, r, http.MethodPost, "/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var data struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, strings.HasPrefix(data.SessionID, "session_"))

	_, err := store.Get(context.Background(), data.SessionID)
	assert.NoError(t, err)
}

func TestGetSessionNotFound(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAnalyzer{result: sampleResult()}, &scriptedProvider{reply: "ok"})

	w, env := doJSON(t, r, http.MethodGet, "/session/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Session not found", env.Error)
}

func TestGetSessionFiltersSystemMessages(t *testing.T) {
	r, store := newTestRouter(t, &fakeAnalyzer{result: sampleResult()}, &scriptedProvider{reply: "ok"})

	require.NoError(t, store.Update(context.Background(), "sess-visible", func(s *session.Session) error {
		s.History = []session.Message{
			{Role: session.RoleSystem, Content: "priming"},
			{Role: session.RoleUser, Content: "halo"},
			{Role: session.RoleAssistant, Content: "hai"},
		}
		return nil
	}))

	w, env := doJSON(t, r, http.MethodGet, "/session/sess-visible", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		SessionID string            `json:"sessionId"`
		History   []session.Message `json:"conversationHistory"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "sess-visible", data.SessionID)
	require.Len(t, data.History, 2)
	assert.Equal(t, session.RoleUser, data.History[0].Role)
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAnalyzer{result: sampleResult()}, &scriptedProvider{reply: "ok"})

	w, env := doJSON(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var data struct {
		Service   string `json:"service"`
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "Intinya aja dongs Backend", data.Service)
	assert.Equal(t, "healthy", data.Status)
	assert.NotEmpty(t, data.Timestamp)
}

func TestStatsWithoutDatabase(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAnalyzer{result: sampleResult()}, &scriptedProvider{reply: "ok"})

	w, env := doJSON(t, r, http.MethodGet, "/stats", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Database not configured", env.Error)
}

func TestAsyncWithoutBroker(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAnalyzer{result: sampleResult()}, &scriptedProvider{reply: "ok"})

	w, env := doJSON(t, r, http.MethodPost, "/analyze/async", gin.H{
		"url":       "https://youtu.be/dQw4w9WgXcQ",
		"sessionId": "s1",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Async analysis not configured", env.Error)
}

func TestUnknownRouteEnvelope(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAnalyzer{result: sampleResult()}, &scriptedProvider{reply: "ok"})

	w, env := doJSON(t, r, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Not found", env.Error)
}
