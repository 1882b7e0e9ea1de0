// Package testutil provides test doubles for the llm package.
package testutil

import (
	"context"
	"sync"

	"github.com/luxstudio/cuegen/llm"
)

// MockClient is a thread-safe mock completion client. It returns configured
// responses in sequence and records every request it receives.
type MockClient struct {
	mu        sync.Mutex
	requests  []llm.Request
	respIndex int

	// Responses to return in sequence. The last response repeats once the
	// sequence is exhausted.
	Responses []*llm.Response

	// Err, when set, takes precedence over Responses.
	Err error
}

// Complete implements the completer interface used by the generation layer.
func (m *MockClient) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return &llm.Response{Content: ""}, nil
	}

	resp := m.Responses[m.respIndex]
	if m.respIndex < len(m.Responses)-1 {
		m.respIndex++
	}
	return resp, nil
}

// CallCount returns how many times Complete was invoked.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// LastRequest returns the most recent request, or a zero request when
// Complete was never called.
func (m *MockClient) LastRequest() llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return llm.Request{}
	}
	return m.requests[len(m.requests)-1]
}
