package service

import (
	"io"
	"log/slog"

	"bookstagram/internal/reader"
	"bookstagram/internal/storage"
	"bookstagram/internal/store"

	"golang.org/x/sync/singleflight"
)

// Service implements the ingestion and catalog query pipeline: decode
// upload payloads, persist bytes and metadata, list books, and resolve
// file names back to PDF streams.
type Service struct {
	catalog         store.Catalog
	blobs           storage.BlobStorage
	logger          *slog.Logger
	defaultCoverURL string

	// countPages is swappable in tests; defaults to pdfcpu-backed counting.
	countPages func([]byte) (int, error)

	resolveGroup singleflight.Group
}

type Options struct {
	Catalog         store.Catalog
	Blobs           storage.BlobStorage
	Logger          *slog.Logger
	DefaultCoverURL string

	// CountPages overrides the pdfcpu-backed page counter.
	CountPages func([]byte) (int, error)
}

func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	countPages := opts.CountPages
	if countPages == nil {
		countPages = reader.PageCount
	}
	return &Service{
		catalog:         opts.Catalog,
		blobs:           opts.Blobs,
		logger:          logger,
		defaultCoverURL: opts.DefaultCoverURL,
		countPages:      countPages,
	}
}
