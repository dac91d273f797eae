package file

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/aretw0/logicflow/pkg/domain"
)

// Store implements ports.ConversationStore using the local filesystem.
// It stores sessions as JSON files in a configured directory.
type Store struct {
	dir dir
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".logicflow/sessions".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".logicflow", "sessions")
	}
	return &Store{dir: dir{path: basePath}}
}

// Save persists the conversation to a JSON file atomically.
func (s *Store) Save(ctx context.Context, sessionID string, conv *domain.Conversation) error {
	return s.dir.write(sessionID, conv)
}

// Load retrieves the conversation from a JSON file.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := s.dir.read(sessionID, &conv); err != nil {
		if errors.Is(err, errNotExist) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &conv, nil
}

// Delete removes the session file.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.dir.remove(sessionID)
}

// List returns all stored session IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	return s.dir.ids()
}
