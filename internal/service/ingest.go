package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"bookstagram/internal/store"

	"github.com/google/uuid"
)

const pdfDataURIPrefix = "data:application/pdf;base64,"

// UploadPayload is the legacy JSON upload request: metadata plus a
// data-URI-encoded PDF body.
type UploadPayload struct {
	Title       string
	Author      string
	Description string
	Genre       string
	CoverImage  string
	FileName    string
	FileSize    int64
	PDFData     string
	UserID      string
}

// UploadBook decodes the payload, writes the PDF to blob storage, and
// inserts the catalog record. The blob write happens first; if the catalog
// insert then fails, the just-written blob is removed again so neither
// store ends up with a dangling half of the book.
func (s *Service) UploadBook(ctx context.Context, p UploadPayload) (store.Book, error) {
	meta := metadata{
		Title:       strings.TrimSpace(p.Title),
		Author:      strings.TrimSpace(p.Author),
		Description: strings.TrimSpace(p.Description),
		Genre:       strings.TrimSpace(p.Genre),
		CoverImage:  strings.TrimSpace(p.CoverImage),
		FileName:    strings.TrimSpace(p.FileName),
		FileSize:    p.FileSize,
		UserID:      strings.TrimSpace(p.UserID),
	}
	if err := meta.validate(); err != nil {
		return store.Book{}, err
	}

	data, err := decodePDFDataURI(p.PDFData)
	if err != nil {
		return store.Book{}, err
	}
	if meta.FileSize == 0 {
		meta.FileSize = int64(len(data))
	}

	return s.ingest(ctx, meta, data)
}

// IngestBook is the direct-binary path used by the multipart endpoint. The
// payload arrives as raw PDF bytes instead of a base64 data URI.
func (s *Service) IngestBook(ctx context.Context, p UploadPayload, data []byte) (store.Book, error) {
	meta := metadata{
		Title:       strings.TrimSpace(p.Title),
		Author:      strings.TrimSpace(p.Author),
		Description: strings.TrimSpace(p.Description),
		Genre:       strings.TrimSpace(p.Genre),
		CoverImage:  strings.TrimSpace(p.CoverImage),
		FileName:    strings.TrimSpace(p.FileName),
		FileSize:    int64(len(data)),
		UserID:      strings.TrimSpace(p.UserID),
	}
	if err := meta.validate(); err != nil {
		return store.Book{}, err
	}
	if len(data) == 0 {
		return store.Book{}, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	return s.ingest(ctx, meta, data)
}

type metadata struct {
	Title       string
	Author      string
	Description string
	Genre       string
	CoverImage  string
	FileName    string
	FileSize    int64
	UserID      string
}

func (m metadata) validate() error {
	for _, f := range []struct {
		name  string
		value string
	}{
		{"title", m.Title},
		{"author", m.Author},
		{"description", m.Description},
		{"genre", m.Genre},
		{"fileName", m.FileName},
	} {
		if f.value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, f.name)
		}
	}
	return nil
}

func (s *Service) ingest(ctx context.Context, meta metadata, data []byte) (store.Book, error) {
	pageCount, err := s.countPages(data)
	if err != nil {
		// The client only reports size, not page count, so a parse
		// failure downgrades to an unknown count rather than a reject.
		s.logger.Warn("page count failed", "fileName", meta.FileName, "error", err)
		pageCount = 0
	}

	digest, _, key, err := s.blobs.Put(ctx, bytes.NewReader(data))
	if err != nil {
		return store.Book{}, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	book := store.Book{
		ID:          uuid.New(),
		Title:       meta.Title,
		Author:      meta.Author,
		Description: meta.Description,
		Genre:       meta.Genre,
		CoverImage:  meta.CoverImage,
		FileName:    meta.FileName,
		FileSize:    meta.FileSize,
		PageCount:   pageCount,
		Digest:      digest,
		BlobKey:     key,
		UserID:      meta.UserID,
		CreatedAt:   time.Now().UTC(),
	}
	if book.CoverImage == "" {
		book.CoverImage = s.defaultCoverURL
	}

	if err := s.catalog.InsertBook(ctx, book); err != nil {
		// Compensate: without the catalog record the blob is unreachable.
		if rmErr := s.blobs.Remove(ctx, key); rmErr != nil {
			s.logger.Error("orphaned blob after failed insert",
				"blobKey", key, "insertError", err, "removeError", rmErr)
		}
		return store.Book{}, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	s.logger.Info("book ingested",
		"id", book.ID, "fileName", book.FileName,
		"size", book.FileSize, "pages", book.PageCount)
	return book, nil
}

func decodePDFDataURI(raw string) ([]byte, error) {
	if !strings.HasPrefix(raw, pdfDataURIPrefix) {
		return nil, fmt.Errorf("%w: expected %q prefix", ErrPayloadDecode, pdfDataURIPrefix)
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(raw, pdfDataURIPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadDecode, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrPayloadDecode)
	}
	return data, nil
}
