package ai

import "context"

// Message is a single turn handed to a chat provider, oldest first.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider generates a single assistant reply from an ordered message list.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
