// Package flock provides a file-based run lock using OS advisory locks.
//
// The lock file lives in the data directory, so concurrent sitechat
// processes sharing the same index coordinate through it regardless of
// which storage backend they use.
package flock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
)

const lockFileName = "ingest.lock"

// RunLock guards ingestion runs across processes with an advisory file lock.
type RunLock struct {
	lock *flock.Flock
}

var _ driven.RunLock = (*RunLock)(nil)

// NewRunLock creates a run lock backed by a lock file in dataDir.
// An empty dataDir resolves to ~/.sitechat.
func NewRunLock(dataDir string) (*RunLock, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sitechat")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	return &RunLock{
		lock: flock.New(filepath.Join(dataDir, lockFileName)),
	}, nil
}

// TryLock acquires the lock without blocking. Returns
// domain.ErrIngestInProgress when another process holds it.
func (l *RunLock) TryLock() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return domain.ErrIngestInProgress
	}
	return nil
}

// Unlock releases the lock. Safe to call when the lock is not held.
func (l *RunLock) Unlock() error {
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}

// Path returns the location of the lock file.
func (l *RunLock) Path() string {
	return l.lock.Path()
}
