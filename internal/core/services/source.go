package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driving"
)

// Ensure SourceService implements the driving port.
var _ driving.SourceService = (*SourceService)(nil)

// SourceService manages the crawl source directory.
type SourceService struct {
	store driven.SourceStore
}

// NewSourceService creates the source management service.
func NewSourceService(store driven.SourceStore) *SourceService {
	return &SourceService{store: store}
}

// Add registers a new source. New sources start active and crawl after
// every existing source.
func (s *SourceService) Add(ctx context.Context, name, url string) (*domain.Source, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}
	if name = strings.TrimSpace(name); name == "" {
		name = url
	}

	existing, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	nextOrder := 0
	for _, src := range existing {
		if src.URL == url {
			return nil, fmt.Errorf("%w: source for %s", domain.ErrAlreadyExists, url)
		}
		if src.Order >= nextOrder {
			nextOrder = src.Order + 1
		}
	}

	source := domain.Source{
		ID:     uuid.New().String(),
		Name:   name,
		URL:    url,
		Active: true,
		Order:  nextOrder,
	}
	if err := s.store.Save(ctx, source); err != nil {
		return nil, fmt.Errorf("save source: %w", err)
	}

	return &source, nil
}

// List returns every configured source ordered by crawl order.
func (s *SourceService) List(ctx context.Context) ([]domain.Source, error) {
	sources, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}

// Remove deletes a source by ID.
func (s *SourceService) Remove(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	return nil
}

// SetActive toggles a source's participation in ingestion.
func (s *SourceService) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.store.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("set source active: %w", err)
	}
	return nil
}
