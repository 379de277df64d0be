package storage

import (
	"context"
	"io"
	"os"
)

// BlobFile represents an opened blob that supports sequential read,
// random-access read, and reports its size.
type BlobFile struct {
	file *os.File
	size int64
}

func NewBlobFile(f *os.File, size int64) *BlobFile {
	return &BlobFile{file: f, size: size}
}

func (b *BlobFile) Read(p []byte) (int, error)              { return b.file.Read(p) }
func (b *BlobFile) ReadAt(p []byte, off int64) (int, error) { return b.file.ReadAt(p, off) }
func (b *BlobFile) Close() error                            { return b.file.Close() }
func (b *BlobFile) Size() int64                             { return b.size }

// BlobStorage is the interface for PDF blob storage backends.
// Both local-disk and S3-compatible stores implement this.
//
// Keys are content-addressed (sha256) and generated by Put; the catalog
// stores the key, never the user-supplied file name, so two uploads that
// share a file name cannot clobber each other's bytes.
type BlobStorage interface {
	// Put writes data from r, returning the content digest, byte count,
	// and a backend-specific key for later retrieval.
	Put(ctx context.Context, r io.Reader) (digest string, size int64, key string, err error)

	// Open retrieves a previously stored blob by its key.
	// The returned BlobFile must be closed by the caller.
	Open(ctx context.Context, key string) (*BlobFile, error)

	// Remove deletes a blob. Used as the compensating step when a catalog
	// insert fails after the blob write, and by the orphan sweeper.
	Remove(ctx context.Context, key string) error

	// List returns the keys of all stored blobs.
	List(ctx context.Context) ([]string, error)
}
