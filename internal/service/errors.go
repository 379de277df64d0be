package service

import "errors"

// Sentinel errors. Handlers map these to HTTP statuses; everything else is
// a generic server error.
var (
	// ErrInvalidInput covers missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means the requested book or its file is absent.
	ErrNotFound = errors.New("not found")

	// ErrPayloadDecode means the upload payload was not a decodable
	// PDF data URI.
	ErrPayloadDecode = errors.New("payload decode failed")

	// ErrStorageWrite means the blob write failed; no catalog record
	// was created.
	ErrStorageWrite = errors.New("storage write failed")

	// ErrStorageRead means the blob could not be read back.
	ErrStorageRead = errors.New("storage read failed")

	// ErrCatalogUnavailable means the metadata store rejected or could
	// not serve the operation.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)
