package memory

import (
	"sync"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
)

// Ensure RunLock implements the interface.
var _ driven.RunLock = (*RunLock)(nil)

// RunLock is an in-process implementation of driven.RunLock. It guards
// against concurrent runs inside one process only; the flock adapter
// covers separate processes.
type RunLock struct {
	mu sync.Mutex
}

// NewRunLock creates a new in-process run lock.
func NewRunLock() *RunLock {
	return &RunLock{}
}

// TryLock acquires the lock without blocking.
func (l *RunLock) TryLock() error {
	if !l.mu.TryLock() {
		return domain.ErrIngestInProgress
	}
	return nil
}

// Unlock releases the lock.
func (l *RunLock) Unlock() error {
	l.mu.Unlock()
	return nil
}
