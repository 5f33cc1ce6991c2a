package chat

import (
	"context"
	"fmt"

	"github.com/Rydhlnst/capstone-project/internal/ai"
	"github.com/Rydhlnst/capstone-project/internal/session"
)

// GenerationError signals that the language-model call failed; nothing from
// the turn was persisted.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return fmt.Sprintf("generation failed: %v", e.Err) }
func (e *GenerationError) Unwrap() error { return e.Err }

// Service runs one chat turn: context injection, provider call, commit.
type Service struct {
	store    session.Store
	provider ai.Provider
}

func NewService(store session.Store, provider ai.Provider) *Service {
	return &Service{store: store, provider: provider}
}

// SendMessage executes a full turn against sessionID. The session is created
// transparently when unseen. The provider is called without holding the
// session lock; the turn (priming injection, user message, assistant reply)
// commits atomically only after generation succeeds, so a failed call leaves
// the stored history untouched. The returned history excludes system messages.
func (s *Service) SendMessage(ctx context.Context, sessionID, message, analysisID string) (string, []session.Message, error) {
	snap, err := s.store.GetOrCreate(ctx, sessionID)
	if err != nil {
		return "", nil, err
	}

	res := ResolveAnalysis(snap.Analyses, analysisID)
	working := InjectContext(snap.History, res)
	working = append(working, session.Message{Role: session.RoleUser, Content: message})

	providerMsgs := make([]ai.Message, 0, len(working))
	for _, m := range working {
		providerMsgs = append(providerMsgs, ai.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := s.provider.Chat(ctx, providerMsgs)
	if err != nil {
		return "", nil, &GenerationError{Err: err}
	}

	var visible []session.Message
	err = s.store.Update(ctx, sessionID, func(sess *session.Session) error {
		// Re-check the priming dedup against the committed history: a
		// concurrent turn may have injected the same system message since the
		// snapshot was taken.
		sess.History = InjectContext(sess.History, res)
		sess.History = append(sess.History,
			session.Message{Role: session.RoleUser, Content: message},
			session.Message{Role: session.RoleAssistant, Content: reply},
		)
		visible = sess.VisibleHistory()
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return reply, visible, nil
}
