package git

import (
	"context"
	"sync"
)

// MockAcquirer is a mock implementation of Acquirer for testing.
// Every locator resolves to Dir unless Err is set.
type MockAcquirer struct {
	Dir        string
	Err        error
	ReleaseErr error

	mu       sync.Mutex
	acquired []string
	released int
}

// NewMockAcquirer creates a mock serving dir for every locator.
func NewMockAcquirer(dir string) *MockAcquirer {
	return &MockAcquirer{Dir: dir}
}

func (m *MockAcquirer) Acquire(ctx context.Context, locator string) (*Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.acquired = append(m.acquired, locator)
	if m.Err != nil {
		return nil, m.Err
	}
	return &Workspace{
		Dir:     m.Dir,
		Locator: locator,
		Remote:  IsRemote(locator),
		release: func() error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.released++
			return m.ReleaseErr
		},
	}, nil
}

// Acquired returns the locators passed to Acquire, in call order.
func (m *MockAcquirer) Acquired() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acquired...)
}

// Released returns how many workspaces have been released.
func (m *MockAcquirer) Released() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}
