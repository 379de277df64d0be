package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory catalog for tests and local development.
// Records keep insertion order, matching the Postgres listing order.
type MemoryStore struct {
	mu    sync.RWMutex
	books []Book
}

var _ Catalog = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) InsertBook(_ context.Context, book Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = append(s.books, book)
	return nil
}

func (s *MemoryStore) ListBooks(_ context.Context, userID string) ([]Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Book, 0, len(s.books))
	for _, b := range s.books {
		if userID != "" && b.UserID != userID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *MemoryStore) FindByFileName(_ context.Context, fileName string) (Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.books {
		if b.FileName == fileName {
			return b, nil
		}
	}
	return Book{}, ErrNotFound
}

func (s *MemoryStore) GetBook(_ context.Context, id uuid.UUID) (Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.books {
		if b.ID == id {
			return b, nil
		}
	}
	return Book{}, ErrNotFound
}

func (s *MemoryStore) ListBlobKeys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{}, len(s.books))
	keys := make([]string, 0, len(s.books))
	for _, b := range s.books {
		if _, ok := seen[b.BlobKey]; ok {
			continue
		}
		seen[b.BlobKey] = struct{}{}
		keys = append(keys, b.BlobKey)
	}
	return keys, nil
}
