package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no book matches a lookup.
var ErrNotFound = errors.New("not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Book is one catalog record per uploaded PDF.
//
// FileName is the display name and lookup key carried over from the upload;
// it is deliberately not unique. BlobKey is the server-generated
// content-addressed reference into blob storage, so duplicate file names
// shadow each other on lookup (first upload wins) without ever colliding
// on disk.
type Book struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	Genre       string    `json:"genre"`
	CoverImage  string    `json:"coverImage"`
	FileName    string    `json:"fileName"`
	FileSize    int64     `json:"fileSize"`
	PageCount   int       `json:"pageCount"`
	Digest      string    `json:"-"`
	BlobKey     string    `json:"-"`
	UserID      string    `json:"userId,omitempty"`
	CreatedAt   time.Time `json:"uploadedAt"`
}

// Catalog is the metadata record store, one entry per book.
type Catalog interface {
	// InsertBook persists a new record. ID and CreatedAt must be set by
	// the caller.
	InsertBook(ctx context.Context, book Book) error

	// ListBooks returns records in insertion order. An empty userID
	// returns all records regardless of owner.
	ListBooks(ctx context.Context, userID string) ([]Book, error)

	// FindByFileName returns the first record (insertion order) whose
	// file name matches, or ErrNotFound.
	FindByFileName(ctx context.Context, fileName string) (Book, error)

	// GetBook returns the record with the given id, or ErrNotFound.
	GetBook(ctx context.Context, id uuid.UUID) (Book, error)

	// ListBlobKeys returns every blob key referenced by the catalog.
	ListBlobKeys(ctx context.Context) ([]string, error)
}
