package llm

import "context"

// MockCompleter is a canned-response Completer for tests.
type MockCompleter struct {
	Reply string
	Err   error

	// Prompts records every prompt passed to Complete.
	Prompts [][]Message
}

// Complete returns the canned reply or error and records the prompt.
func (m *MockCompleter) Complete(_ context.Context, messages []Message) (string, error) {
	m.Prompts = append(m.Prompts, messages)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}
