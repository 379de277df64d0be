package bookclient

import (
	"context"
	"encoding/base64"
	"strings"
)

// FormFile is a file picked for upload.
type FormFile struct {
	Name string
	Type string
	Data []byte
}

// UploadForm mirrors the upload page: metadata fields plus a chosen file.
// Validate before Submit so field errors surface without a network call.
type UploadForm struct {
	Title       string
	Author      string
	Description string
	Genre       string
	CoverImage  string
	UserID      string
	File        *FormFile
}

// Validate returns field-keyed messages for every invalid input. An empty
// map means the form is ready to submit. Metadata fields must be non-empty
// after trimming. The file check is by declared content type only, the
// server verifies the payload.
func (f *UploadForm) Validate() map[string]string {
	errs := make(map[string]string)
	for field, value := range map[string]string{
		"title":       f.Title,
		"author":      f.Author,
		"description": f.Description,
		"genre":       f.Genre,
	} {
		if strings.TrimSpace(value) == "" {
			errs[field] = field + " is required"
		}
	}
	switch {
	case f.File == nil:
		errs["file"] = "a PDF file is required"
	case f.File.Type != "application/pdf":
		errs["file"] = "file must be a PDF"
	case len(f.File.Data) == 0:
		errs["file"] = "file is empty"
	}
	return errs
}

// Submit validates, uploads via the client, and resets the form on success.
// On validation failure the field errors are returned and no request is
// made. On upload failure the form keeps its values so the user can retry.
func (f *UploadForm) Submit(ctx context.Context, c *Client) (map[string]string, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return errs, nil
	}
	payload := uploadRequest{
		Title:       strings.TrimSpace(f.Title),
		Author:      strings.TrimSpace(f.Author),
		Description: strings.TrimSpace(f.Description),
		Genre:       strings.TrimSpace(f.Genre),
		CoverImage:  strings.TrimSpace(f.CoverImage),
		UserID:      strings.TrimSpace(f.UserID),
		FileName:    f.File.Name,
		FileSize:    int64(len(f.File.Data)),
		PDFData:     "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(f.File.Data),
	}
	if err := c.uploadBook(ctx, payload); err != nil {
		return nil, err
	}
	*f = UploadForm{}
	return nil, nil
}
