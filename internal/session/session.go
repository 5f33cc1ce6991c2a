package session

import (
	"time"

	"github.com/Rydhlnst/capstone-project/internal/analysis"
)

// Message roles. System messages prime the model and are never returned to
// clients.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is one conversational context: ordered message history plus the
// analyses produced for it, keyed by an opaque identifier.
type Session struct {
	SessionID string            `json:"sessionId"`
	History   []Message         `json:"conversationHistory"`
	Analyses  []analysis.Result `json:"analyses"`
	CreatedAt time.Time         `json:"createdAt"`
}

// VisibleHistory returns the history without system messages. Every read and
// response path filters through this.
func (s *Session) VisibleHistory() []Message {
	out := make([]Message, 0, len(s.History))
	for _, m := range s.History {
		if m.Role != RoleSystem {
			out = append(out, m)
		}
	}
	return out
}

// Clone returns a deep copy safe to mutate outside the store's lock.
func (s *Session) Clone() *Session {
	return &Session{
		SessionID: s.SessionID,
		History:   append([]Message(nil), s.History...),
		Analyses:  append([]analysis.Result(nil), s.Analyses...),
		CreatedAt: s.CreatedAt,
	}
}
