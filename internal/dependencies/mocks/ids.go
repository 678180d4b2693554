package mocks

import (
	"fmt"

	"github.com/metaloot/registry/internal/dependencies/ids"
)

// MockIDs is a mock implementation of ids.Generator for testing
type MockIDs struct {
	// Queue is a list of ids to return from NewID
	Queue []string
	index int
	next  int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// NewID returns the next queued id, or a sequential UUID-shaped id once the
// queue is drained
func (m *MockIDs) NewID() string {
	if m.index < len(m.Queue) {
		id := m.Queue[m.index]
		m.index++
		return id
	}
	m.next++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", m.next)
}

// QueueID adds ids to the queue
func (m *MockIDs) QueueID(values ...string) {
	m.Queue = append(m.Queue, values...)
}
