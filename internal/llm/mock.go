package llm

import (
	"context"
	"sync"
	"time"
)

// MockClient is a test double for the Client interface. It is safe for
// concurrent use.
type MockClient struct {
	Response *Response
	Err      error
	Delay    time.Duration // wait before answering; honors ctx

	mu    sync.Mutex
	Calls []Prompt // records prompts sent
}

// Complete records the call and returns the mock response.
func (m *MockClient) Complete(ctx context.Context, p Prompt) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, p)
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.Response, m.Err
}

// CallCount returns the number of Complete calls.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent prompt, or the zero Prompt.
func (m *MockClient) LastCall() Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Prompt{}
	}
	return m.Calls[len(m.Calls)-1]
}
