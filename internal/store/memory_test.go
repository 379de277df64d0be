package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestMemoryStoreFindByFileNameFirstMatch(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	first := Book{ID: uuid.New(), FileName: "dup.pdf", BlobKey: "sha256/aa/a1"}
	second := Book{ID: uuid.New(), FileName: "dup.pdf", BlobKey: "sha256/bb/b2"}
	for _, b := range []Book{first, second} {
		if err := s.InsertBook(context.Background(), b); err != nil {
			t.Fatalf("InsertBook() error = %v", err)
		}
	}

	got, err := s.FindByFileName(context.Background(), "dup.pdf")
	if err != nil {
		t.Fatalf("FindByFileName() error = %v", err)
	}
	if got.ID != first.ID {
		t.Fatalf("FindByFileName() = %v, want first inserted record", got.ID)
	}

	if _, err := s.FindByFileName(context.Background(), "missing.pdf"); !IsNotFound(err) {
		t.Fatalf("FindByFileName(missing) error = %v, want ErrNotFound", err)
	}

	if _, err := s.GetBook(context.Background(), second.ID); err != nil {
		t.Fatalf("shadowed record unreachable by id: %v", err)
	}
}

func TestMemoryStoreListBlobKeysDeduplicates(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	for _, b := range []Book{
		{ID: uuid.New(), FileName: "a.pdf", BlobKey: "sha256/aa/a1"},
		{ID: uuid.New(), FileName: "b.pdf", BlobKey: "sha256/aa/a1"},
		{ID: uuid.New(), FileName: "c.pdf", BlobKey: "sha256/cc/c3"},
	} {
		if err := s.InsertBook(context.Background(), b); err != nil {
			t.Fatalf("InsertBook() error = %v", err)
		}
	}

	keys, err := s.ListBlobKeys(context.Background())
	if err != nil {
		t.Fatalf("ListBlobKeys() error = %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("ListBlobKeys() = %v, want 2 unique keys", keys)
	}
}

func TestMemoryStoreListBooksFiltersByOwner(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	for _, b := range []Book{
		{ID: uuid.New(), FileName: "a.pdf", UserID: "u1"},
		{ID: uuid.New(), FileName: "b.pdf", UserID: "u2"},
		{ID: uuid.New(), FileName: "c.pdf"},
	} {
		if err := s.InsertBook(context.Background(), b); err != nil {
			t.Fatalf("InsertBook() error = %v", err)
		}
	}

	all, err := s.ListBooks(context.Background(), "")
	if err != nil {
		t.Fatalf("ListBooks() error = %v", err)
	}
	if len(all) != 3 || all[0].FileName != "a.pdf" || all[2].FileName != "c.pdf" {
		t.Fatalf("ListBooks() = %v, want all three in insertion order", all)
	}

	mine, err := s.ListBooks(context.Background(), "u2")
	if err != nil {
		t.Fatalf("ListBooks() error = %v", err)
	}
	if len(mine) != 1 || mine[0].UserID != "u2" {
		t.Fatalf("ListBooks(u2) = %v", mine)
	}
}
