package media

import (
	"sync"

	"github.com/ayusman/kathakali/internal/gesture"
)

// MockDispatcher records dispatched commands for tests.
type MockDispatcher struct {
	commands []gesture.Command
	err      error
	mu       sync.Mutex
}

// NewMockDispatcher creates a MockDispatcher.
func NewMockDispatcher() *MockDispatcher {
	return &MockDispatcher{}
}

// SetError makes every subsequent Dispatch return err.
func (m *MockDispatcher) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Dispatch records the command.
func (m *MockDispatcher) Dispatch(cmd gesture.Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.commands = append(m.commands, cmd)
	return nil
}

// Commands returns a copy of the recorded commands.
func (m *MockDispatcher) Commands() []gesture.Command {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]gesture.Command, len(m.commands))
	copy(out, m.commands)
	return out
}
