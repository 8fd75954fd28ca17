package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
)

// Ensure SourceStore implements the interface.
var _ driven.SourceStore = (*SourceStore)(nil)

// sourcesFileName is the source directory document inside the config
// directory.
const sourcesFileName = "sources.toml"

// sourcesFile is the TOML document shape.
type sourcesFile struct {
	Sources []domain.Source `toml:"sources"`
}

// SourceStore is the crawl source directory persisted as a TOML file.
// Every call re-reads the file, so hand edits between commands are
// picked up without a reload step.
type SourceStore struct {
	mu       sync.Mutex
	filePath string
}

// NewSourceStore creates a TOML-based source directory.
// If configDir is empty, defaults to ~/.sitechat/sources.toml.
func NewSourceStore(configDir string) (*SourceStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".sitechat")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &SourceStore{
		filePath: filepath.Join(configDir, sourcesFileName),
	}, nil
}

// ListActive returns the active sources ordered ascending by Order.
// A missing or unreadable backing file yields an empty list, not an
// error, so ingestion reports "no sources configured" instead of
// crashing.
func (s *SourceStore) ListActive(_ context.Context) ([]domain.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sources, err := s.read()
	if err != nil {
		return []domain.Source{}, nil
	}

	active := make([]domain.Source, 0, len(sources))
	for _, source := range sources {
		if source.Active {
			active = append(active, source)
		}
	}
	sortSources(active)
	return active, nil
}

// List returns every source, active or not, ordered by Order.
func (s *SourceStore) List(_ context.Context) ([]domain.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sources, err := s.read()
	if err != nil {
		return nil, err
	}
	sortSources(sources)
	return sources, nil
}

// Save stores or updates a source, matching by ID.
func (s *SourceStore) Save(_ context.Context, source domain.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sources, err := s.read()
	if err != nil {
		return err
	}

	replaced := false
	for i := range sources {
		if sources[i].ID == source.ID {
			sources[i] = source
			replaced = true
			break
		}
	}
	if !replaced {
		sources = append(sources, source)
	}

	return s.write(sources)
}

// Delete removes a source. Returns domain.ErrNotFound when the source
// does not exist.
func (s *SourceStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sources, err := s.read()
	if err != nil {
		return err
	}

	for i := range sources {
		if sources[i].ID == id {
			return s.write(append(sources[:i], sources[i+1:]...))
		}
	}
	return domain.ErrNotFound
}

// SetActive toggles a source's participation in ingestion.
func (s *SourceStore) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sources, err := s.read()
	if err != nil {
		return err
	}

	for i := range sources {
		if sources[i].ID == id {
			sources[i].Active = active
			return s.write(sources)
		}
	}
	return domain.ErrNotFound
}

// Path returns the source directory file path.
func (s *SourceStore) Path() string {
	return s.filePath
}

// read loads the source list (caller must hold lock). A missing file is
// an empty directory.
func (s *SourceStore) read() ([]domain.Source, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Source{}, nil
		}
		return nil, fmt.Errorf("read sources: %w", err)
	}

	var doc sourcesFile
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	if doc.Sources == nil {
		doc.Sources = []domain.Source{}
	}
	return doc.Sources, nil
}

// write persists the source list (caller must hold lock).
func (s *SourceStore) write(sources []domain.Source) error {
	data, err := toml.Marshal(sourcesFile{Sources: sources})
	if err != nil {
		return fmt.Errorf("encode sources: %w", err)
	}

	// Write with restricted permissions
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("write sources: %w", err)
	}
	return nil
}

// sortSources orders by Order, then Name for a stable tie-break.
func sortSources(sources []domain.Source) {
	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].Order != sources[j].Order {
			return sources[i].Order < sources[j].Order
		}
		return sources[i].Name < sources[j].Name
	})
}
