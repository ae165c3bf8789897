package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

var errNoMockResponse = errors.New("no scripted response")

// MockResponse is one canned tutor reply.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider serves canned tutor replies. It backs the offline "mock"
// provider and the tests of everything above the adapters.
//
// Replies scripted for a purpose with Script are served to requests carrying
// that purpose; everything else drains the shared queue in order. Scripting
// by purpose keeps concurrent dispatcher workers from taking each other's
// replies.
type MockProvider struct {
	mu       sync.Mutex
	queue    []MockResponse
	scripted map[Purpose][]MockResponse

	// ValidateSchemas runs replies through the same truncation and schema
	// checks as the real adapters.
	ValidateSchemas bool

	Calls    []Request
	Purposes []Purpose
	Subjects []Subject
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{queue: responses, scripted: make(map[Purpose][]MockResponse)}
}

// Script queues replies for requests made under purpose p.
func (m *MockProvider) Script(p Purpose, responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted[p] = append(m.scripted[p], responses...)
}

// AddResponse appends a reply to the shared queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, resp)
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)

	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.Purposes = append(m.Purposes, purpose)
	m.Subjects = append(m.Subjects, SubjectFrom(ctx))
	resp, ok := m.next(purpose)
	m.mu.Unlock()

	if !ok {
		return nil, &ErrProviderUnavailable{Provider: ProviderMock, Err: errNoMockResponse}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	if m.ValidateSchemas {
		if err := finish(req, resp.Content, stopEnd); err != nil {
			return nil, err
		}
	}
	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      ProviderMock,
		StopReason: stopEnd,
	}, nil
}

func (m *MockProvider) next(p Purpose) (MockResponse, bool) {
	if q := m.scripted[p]; len(q) > 0 {
		m.scripted[p] = q[1:]
		return q[0], true
	}
	if len(m.queue) == 0 {
		return MockResponse{}, false
	}
	resp := m.queue[0]
	m.queue = m.queue[1:]
	return resp, true
}

func (m *MockProvider) ModelID() string {
	return ProviderMock
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
