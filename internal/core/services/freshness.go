package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
	"github.com/sitechat-io/sitechat-cli/internal/logger"
)

// IngestTTL is how long a completed ingestion run stays fresh. Within
// this window a run against an unchanged source configuration is
// skipped, keeping ingestion at most once per signature per TTL.
const IngestTTL = time.Hour

// FreshnessGate decides whether the last ingestion run still covers the
// current source configuration. Staleness is checked lazily on read;
// there is no expiry sweeper.
type FreshnessGate struct {
	store driven.IngestStateStore
	now   func() time.Time
}

// GateOption configures the freshness gate.
type GateOption func(*FreshnessGate)

// WithClock overrides the time source. Used by tests to cross the TTL
// boundary without sleeping.
func WithClock(now func() time.Time) GateOption {
	return func(g *FreshnessGate) {
		if now != nil {
			g.now = now
		}
	}
}

// NewFreshnessGate creates a freshness gate over the given state store.
func NewFreshnessGate(store driven.IngestStateStore, opts ...GateOption) *FreshnessGate {
	g := &FreshnessGate{
		store: store,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// IsValid reports whether the last recorded run is still fresh for the
// given signature. Absent metadata means stale. A signature mismatch
// means stale regardless of age: configuration changes always force
// re-ingestion, even inside the freshness window.
func (g *FreshnessGate) IsValid(ctx context.Context, signature string) bool {
	state, err := g.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Failed to load ingest state: %v", err)
		}
		return false
	}

	if signature != "" && signature != state.SourcesSignature {
		logger.Debug("Source signature drifted, cache invalid")
		return false
	}

	return g.now().Sub(state.LastRunAt) < IngestTTL
}

// RecordRun overwrites the ingest state with the current timestamp.
func (g *FreshnessGate) RecordRun(ctx context.Context, signature string, chunksAdded int) error {
	state := domain.IngestState{
		LastRunAt:        g.now(),
		SourcesSignature: signature,
		ChunksAdded:      chunksAdded,
	}

	if err := g.store.Save(ctx, state); err != nil {
		return fmt.Errorf("save ingest state: %w", err)
	}
	return nil
}

// Last returns the recorded state of the most recent run, or
// domain.ErrNotFound when no run has completed yet.
func (g *FreshnessGate) Last(ctx context.Context) (*domain.IngestState, error) {
	return g.store.Load(ctx)
}
