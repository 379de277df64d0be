package service

import (
	"context"
	"fmt"
	"os"

	"bookstagram/internal/storage"
	"bookstagram/internal/store"

	"github.com/google/uuid"
)

// ListBooks returns catalog records in insertion order. An empty userID
// returns every record regardless of owner.
func (s *Service) ListBooks(ctx context.Context, userID string) ([]store.Book, error) {
	books, err := s.catalog.ListBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return books, nil
}

// RecentBooks returns the newest records first, at most limit of them.
func (s *Service) RecentBooks(ctx context.Context, limit int) ([]store.Book, error) {
	if limit <= 0 {
		limit = 4
	}
	books, err := s.ListBooks(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]store.Book, 0, limit)
	for i := len(books) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, books[i])
	}
	return out, nil
}

// GetBook returns one record by id.
func (s *Service) GetBook(ctx context.Context, id uuid.UUID) (store.Book, error) {
	book, err := s.catalog.GetBook(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return store.Book{}, ErrNotFound
		}
		return store.Book{}, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return book, nil
}

// OpenBook resolves a file name to its catalog record and opens the PDF
// blob for streaming. The first matching record (insertion order) wins;
// later uploads with the same file name are shadowed.
//
// A record whose blob is missing on storage is reported as not found to
// the caller but logged as a catalog/storage inconsistency, since that
// state should be impossible outside of manual storage edits.
func (s *Service) OpenBook(ctx context.Context, fileName string) (store.Book, *storage.BlobFile, error) {
	// The shared lookup runs detached from the first caller's context, so
	// one canceled request cannot fail the callers piggy-backing on it.
	lookupCtx := context.WithoutCancel(ctx)
	v, err, _ := s.resolveGroup.Do(fileName, func() (any, error) {
		return s.catalog.FindByFileName(lookupCtx, fileName)
	})
	if err != nil {
		if store.IsNotFound(err) {
			return store.Book{}, nil, fmt.Errorf("%w: no such book", ErrNotFound)
		}
		return store.Book{}, nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	book := v.(store.Book)

	file, err := s.blobs.Open(ctx, book.BlobKey)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Error("catalog references missing blob",
				"id", book.ID, "fileName", book.FileName, "blobKey", book.BlobKey)
			return store.Book{}, nil, fmt.Errorf("%w: file missing on storage", ErrNotFound)
		}
		return store.Book{}, nil, fmt.Errorf("%w: %v", ErrStorageRead, err)
	}
	return book, file, nil
}
