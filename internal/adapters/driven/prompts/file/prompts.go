// Package file provides a prompt store reading operator overrides from
// user-editable files on disk. A prompt that has no override file is
// reported as domain.ErrNotFound; the caller keeps its built-in default.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads prompt overrides from a configurable directory.
//
// The store uses lazy initialisation - the directory and its README are
// only created on first access, not in the constructor. This makes
// testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.sitechat/prompts/.
//
// The constructor does not perform any I/O - directory creation happens
// lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".sitechat", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt override for the given name, or
// domain.ErrNotFound when no override file exists. Loaded prompts are
// cached; edits made while a session runs need Reload to take effect.
func (s *PromptStore) Load(name string) (string, error) {
	// Directory creation is best effort; a missing directory simply
	// means every lookup misses.
	s.initOnce.Do(s.initialise)

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: prompt %q", domain.ErrNotFound, name)
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	prompt := strings.TrimSpace(string(data))

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and a README explaining it.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		return
	}
	s.createReadme()
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return // Already exists or stat error (ignore)
	}

	content := `# SiteChat Prompts

This directory holds optional prompt overrides. When a file below
exists, its content replaces the built-in prompt of the same name.

## Files

- ` + "`chat_system.txt`" + ` - System prompt for grounded chat answers.
  The retrieved context passages are appended after it automatically,
  so the override should not include its own context section.

## Customisation

Create or edit a file to customise behaviour. Changes take effect on
the next command or after restarting the chat session. Delete the file
to return to the built-in prompt.
`
	_ = os.WriteFile(path, []byte(content), 0600)
}
