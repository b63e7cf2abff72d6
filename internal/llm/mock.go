package llm

import (
	"context"
	"sync"
)

// MockClient implements Client for tests. Responses are consumed in order;
// the last one repeats once the script runs out.
type MockClient struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Prompts   []string
}

var _ Client = (*MockClient)(nil)

// Complete records the prompt and returns the next scripted response.
func (m *MockClient) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	next := m.Responses[0]
	if len(m.Responses) > 1 {
		m.Responses = m.Responses[1:]
	}
	return next, nil
}

// CallCount returns how many completions were requested.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
