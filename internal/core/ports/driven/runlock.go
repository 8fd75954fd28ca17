package driven

// RunLock is the single-writer guard around an ingestion run. The
// knowledge store's load-modify-write cycle is not compare-and-swap;
// holding this lock for the whole run prevents two concurrent runs
// from losing each other's writes.
type RunLock interface {
	// TryLock acquires the lock without blocking. Returns
	// domain.ErrIngestInProgress when another run holds it.
	TryLock() error

	// Unlock releases the lock.
	Unlock() error
}
