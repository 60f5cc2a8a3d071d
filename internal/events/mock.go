package events

import (
	"context"
	"encoding/json"
	"sync"
)

// MockPublisher records published events for tests.
type MockPublisher struct {
	mu     sync.Mutex
	Events []Event
	Err    error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(_ context.Context, eventType string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	m.Events = append(m.Events, Event{Type: eventType, Payload: raw})
	return nil
}

func (m *MockPublisher) Close() error { return nil }

// Types returns the published event types in order.
func (m *MockPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Type
	}
	return types
}
