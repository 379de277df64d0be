package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"testing"

	"bookstagram/internal/storage"
	"bookstagram/internal/store"

	"github.com/google/uuid"
)

const testCoverURL = "https://covers.example/placeholder.jpeg"

func newTestService(t *testing.T) (*Service, *store.MemoryStore, *storage.LocalBlobStore) {
	t.Helper()
	blobs, err := storage.NewLocalBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalBlobStore() error = %v", err)
	}
	catalog := store.NewMemoryStore()
	svc := New(Options{
		Catalog:         catalog,
		Blobs:           blobs,
		DefaultCoverURL: testCoverURL,
	})
	svc.countPages = func([]byte) (int, error) { return 3, nil }
	return svc, catalog, blobs
}

func dataURI(content []byte) string {
	return "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(content)
}

func uploadPayload(fileName string, content []byte) UploadPayload {
	return UploadPayload{
		Title:       "T",
		Author:      "A",
		Description: "D",
		Genre:       "Fiction",
		FileName:    fileName,
		FileSize:    int64(len(content)),
		PDFData:     dataURI(content),
	}
}

func TestUploadBook_RoundTrip(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()
	content := []byte("%PDF-1.4 round trip body")

	book, err := svc.UploadBook(ctx, uploadPayload("t.pdf", content))
	if err != nil {
		t.Fatalf("UploadBook() error = %v", err)
	}
	if book.Title != "T" || book.Author != "A" || book.Genre != "Fiction" || book.Description != "D" {
		t.Fatalf("metadata mismatch: %#v", book)
	}
	if book.FileName != "t.pdf" {
		t.Fatalf("FileName = %q, want t.pdf", book.FileName)
	}
	if book.CoverImage != testCoverURL {
		t.Fatalf("CoverImage = %q, want default placeholder", book.CoverImage)
	}
	if book.PageCount != 3 {
		t.Fatalf("PageCount = %d, want 3", book.PageCount)
	}
	if book.ID == uuid.Nil {
		t.Fatal("ID should be generated")
	}

	got, file, err := svc.OpenBook(ctx, "t.pdf")
	if err != nil {
		t.Fatalf("OpenBook() error = %v", err)
	}
	defer file.Close()
	if got.ID != book.ID {
		t.Fatalf("resolved id = %s, want %s", got.ID, book.ID)
	}
	streamed, err := io.ReadAll(file)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if !bytes.Equal(streamed, content) {
		t.Fatalf("streamed bytes differ from uploaded bytes")
	}
}

func TestUploadBook_SuppliedCoverPreserved(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	p := uploadPayload("cover.pdf", []byte("pdf"))
	p.CoverImage = "https://covers.example/custom.png"

	book, err := svc.UploadBook(context.Background(), p)
	if err != nil {
		t.Fatalf("UploadBook() error = %v", err)
	}
	if book.CoverImage != p.CoverImage {
		t.Fatalf("CoverImage = %q, want %q", book.CoverImage, p.CoverImage)
	}
}

func TestUploadBook_Validation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*UploadPayload)
	}{
		{"missing title", func(p *UploadPayload) { p.Title = "  " }},
		{"missing author", func(p *UploadPayload) { p.Author = "" }},
		{"missing description", func(p *UploadPayload) { p.Description = "" }},
		{"missing genre", func(p *UploadPayload) { p.Genre = "" }},
		{"missing file name", func(p *UploadPayload) { p.FileName = "" }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := uploadPayload("v.pdf", []byte("pdf"))
			tt.mutate(&p)
			if _, err := svc.UploadBook(ctx, p); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("UploadBook() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestUploadBook_PayloadDecodeFailures(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		pdfData string
	}{
		{"missing prefix", base64.StdEncoding.EncodeToString([]byte("pdf"))},
		{"wrong mime", "data:image/png;base64,aGVsbG8="},
		{"bad base64", "data:application/pdf;base64,!!!not-base64!!!"},
		{"empty payload", "data:application/pdf;base64,"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := uploadPayload("d.pdf", []byte("pdf"))
			p.PDFData = tt.pdfData
			if _, err := svc.UploadBook(ctx, p); !errors.Is(err, ErrPayloadDecode) {
				t.Fatalf("UploadBook() error = %v, want ErrPayloadDecode", err)
			}
		})
	}
}

func TestUploadBook_PageCountFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	svc.countPages = func([]byte) (int, error) { return 0, errors.New("unparseable") }

	book, err := svc.UploadBook(context.Background(), uploadPayload("odd.pdf", []byte("pdf")))
	if err != nil {
		t.Fatalf("UploadBook() error = %v", err)
	}
	if book.PageCount != 0 {
		t.Fatalf("PageCount = %d, want 0", book.PageCount)
	}
}

// failingCatalog rejects inserts to exercise the compensating blob removal.
type failingCatalog struct {
	store.MemoryStore
}

func (f *failingCatalog) InsertBook(context.Context, store.Book) error {
	return errors.New("insert rejected")
}

func TestUploadBook_RemovesBlobWhenInsertFails(t *testing.T) {
	t.Parallel()

	blobs, err := storage.NewLocalBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalBlobStore() error = %v", err)
	}
	svc := New(Options{
		Catalog:         &failingCatalog{},
		Blobs:           blobs,
		DefaultCoverURL: testCoverURL,
	})
	svc.countPages = func([]byte) (int, error) { return 1, nil }

	_, err = svc.UploadBook(context.Background(), uploadPayload("fail.pdf", []byte("pdf")))
	if !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("UploadBook() error = %v, want ErrCatalogUnavailable", err)
	}

	keys, err := blobs.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("blob not compensated after insert failure: %#v", keys)
	}
}

func TestOpenBook_NotFoundVariants(t *testing.T) {
	t.Parallel()

	svc, _, blobs := newTestService(t)
	ctx := context.Background()

	// Never uploaded.
	if _, _, err := svc.OpenBook(ctx, "ghost.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("OpenBook(ghost) error = %v, want ErrNotFound", err)
	}

	// Known record whose blob vanished from storage.
	book, err := svc.UploadBook(ctx, uploadPayload("gone.pdf", []byte("pdf bytes")))
	if err != nil {
		t.Fatalf("UploadBook() error = %v", err)
	}
	if err := blobs.Remove(ctx, book.BlobKey); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, _, err := svc.OpenBook(ctx, "gone.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("OpenBook(gone) error = %v, want ErrNotFound", err)
	}
}

func TestOpenBook_FirstMatchWinsOnDuplicateFileNames(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.UploadBook(ctx, uploadPayload("dup.pdf", []byte("first upload")))
	if err != nil {
		t.Fatalf("UploadBook() #1 error = %v", err)
	}
	if _, err := svc.UploadBook(ctx, uploadPayload("dup.pdf", []byte("second upload"))); err != nil {
		t.Fatalf("UploadBook() #2 error = %v", err)
	}

	got, file, err := svc.OpenBook(ctx, "dup.pdf")
	if err != nil {
		t.Fatalf("OpenBook() error = %v", err)
	}
	defer file.Close()
	if got.ID != first.ID {
		t.Fatalf("resolved id = %s, want first record %s", got.ID, first.ID)
	}
	content, _ := io.ReadAll(file)
	if string(content) != "first upload" {
		t.Fatalf("streamed %q, want bytes of the first upload", content)
	}
}

// ctxSensitiveCatalog fails lookups as soon as the caller's context is
// canceled, the way a pgx query would.
type ctxSensitiveCatalog struct {
	*store.MemoryStore
}

func (c *ctxSensitiveCatalog) FindByFileName(ctx context.Context, fileName string) (store.Book, error) {
	if err := ctx.Err(); err != nil {
		return store.Book{}, err
	}
	return c.MemoryStore.FindByFileName(ctx, fileName)
}

func TestOpenBook_LookupSurvivesCallerCancellation(t *testing.T) {
	t.Parallel()

	blobs, err := storage.NewLocalBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalBlobStore() error = %v", err)
	}
	catalog := &ctxSensitiveCatalog{MemoryStore: store.NewMemoryStore()}
	svc := New(Options{
		Catalog:         catalog,
		Blobs:           blobs,
		DefaultCoverURL: testCoverURL,
		CountPages:      func([]byte) (int, error) { return 1, nil },
	})

	if _, err := svc.UploadBook(context.Background(), uploadPayload("shared.pdf", []byte("pdf bytes"))); err != nil {
		t.Fatalf("UploadBook() error = %v", err)
	}

	// A canceled requester must not poison the shared lookup for any
	// caller collapsed onto it.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, file, err := svc.OpenBook(ctx, "shared.pdf")
	if err != nil {
		t.Fatalf("OpenBook() with canceled caller error = %v", err)
	}
	file.Close()
}

func TestListBooks_UserFilter(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	pa := uploadPayload("a.pdf", []byte("a"))
	pa.UserID = "U"
	pb := uploadPayload("b.pdf", []byte("b"))
	pb.UserID = "V"
	pc := uploadPayload("c.pdf", []byte("c"))

	for _, p := range []UploadPayload{pa, pb, pc} {
		if _, err := svc.UploadBook(ctx, p); err != nil {
			t.Fatalf("UploadBook(%s) error = %v", p.FileName, err)
		}
	}

	mine, err := svc.ListBooks(ctx, "U")
	if err != nil {
		t.Fatalf("ListBooks(U) error = %v", err)
	}
	if len(mine) != 1 || mine[0].FileName != "a.pdf" {
		t.Fatalf("ListBooks(U) = %#v, want only a.pdf", mine)
	}

	all, err := svc.ListBooks(ctx, "")
	if err != nil {
		t.Fatalf("ListBooks() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListBooks() = %d records, want 3", len(all))
	}
	// Insertion order.
	if all[0].FileName != "a.pdf" || all[2].FileName != "c.pdf" {
		t.Fatalf("listing out of insertion order: %#v", all)
	}
}

func TestRecentBooks_NewestFirstAndSliced(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"1.pdf", "2.pdf", "3.pdf", "4.pdf", "5.pdf"} {
		if _, err := svc.UploadBook(ctx, uploadPayload(name, []byte(name))); err != nil {
			t.Fatalf("UploadBook(%s) error = %v", name, err)
		}
	}

	recent, err := svc.RecentBooks(ctx, 0)
	if err != nil {
		t.Fatalf("RecentBooks() error = %v", err)
	}
	if len(recent) != 4 {
		t.Fatalf("RecentBooks() = %d records, want default 4", len(recent))
	}
	if recent[0].FileName != "5.pdf" || recent[3].FileName != "2.pdf" {
		t.Fatalf("RecentBooks() order wrong: %#v", recent)
	}
}

func TestIngestBook_DirectBinary(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()
	content := []byte("%PDF-1.4 direct upload")

	p := uploadPayload("direct.pdf", nil)
	p.PDFData = ""
	book, err := svc.IngestBook(ctx, p, content)
	if err != nil {
		t.Fatalf("IngestBook() error = %v", err)
	}
	if book.FileSize != int64(len(content)) {
		t.Fatalf("FileSize = %d, want server-measured %d", book.FileSize, len(content))
	}

	if _, err := svc.IngestBook(ctx, p, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("IngestBook(empty) error = %v, want ErrInvalidInput", err)
	}
}
