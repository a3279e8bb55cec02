// Package llm provides the client for the hosted completion API.
package llm

import "context"

// Message is one role/content pair of a completion prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer produces one assistant reply for an ordered prompt.
// The call blocks until the hosted API responds; callers wanting a
// timeout pass it through ctx.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
