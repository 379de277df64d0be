package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"bookstagram/internal/service"

	"github.com/labstack/echo/v4"
)

type uploadRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
	CoverImage  string `json:"coverImage"`
	PDFData     string `json:"pdfData"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	UserID      string `json:"userId"`
}

// UploadFiles is the legacy JSON upload endpoint: metadata plus a base64
// data-URI PDF payload. Responds {"status":"ok"} on success and a
// plain-text 500 on any failure, matching the original contract.
func (h *Handler) UploadFiles(c echo.Context) error {
	var req uploadRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error("upload bind failed", "error", err)
		return c.String(http.StatusInternalServerError, "Error saving book")
	}

	_, err := h.svc.UploadBook(c.Request().Context(), service.UploadPayload{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Genre:       req.Genre,
		CoverImage:  req.CoverImage,
		FileName:    req.FileName,
		FileSize:    req.FileSize,
		PDFData:     req.PDFData,
		UserID:      req.UserID,
	})
	if err != nil {
		h.logger.Error("upload failed", "fileName", req.FileName, "error", err)
		return c.String(http.StatusInternalServerError, "Error saving book")
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GetFiles lists every catalog record in insertion order.
func (h *Handler) GetFiles(c echo.Context) error {
	books, err := h.svc.ListBooks(c.Request().Context(), "")
	if err != nil {
		h.logger.Error("list failed", "error", err)
		return c.String(http.StatusInternalServerError, "Error fetching books")
	}
	return c.JSON(http.StatusOK, books)
}

// StreamFile resolves a file name to its PDF blob and streams the raw bytes.
func (h *Handler) StreamFile(c echo.Context) error {
	fileName := strings.TrimSpace(c.Param("fileName"))

	book, file, err := h.svc.OpenBook(c.Request().Context(), fileName)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.String(http.StatusNotFound, "PDF not found")
		}
		h.logger.Error("stream failed", "fileName", fileName, "error", err)
		return c.String(http.StatusInternalServerError, "Error serving PDF")
	}
	defer file.Close()

	c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(file.Size(), 10))
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", book.FileName))
	c.Response().Header().Set("ETag", book.Digest)
	return c.Stream(http.StatusOK, "application/pdf", file)
}

// ListBooks lists records, filtered to one owner when userId is supplied.
func (h *Handler) ListBooks(c echo.Context) error {
	userID := strings.TrimSpace(c.QueryParam("userId"))
	books, err := h.svc.ListBooks(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("list failed", "userId", userID, "error", err)
		return c.String(http.StatusInternalServerError, "Error fetching books")
	}
	return c.JSON(http.StatusOK, books)
}

// Library lists all records for the public library view.
func (h *Handler) Library(c echo.Context) error {
	books, err := h.svc.ListBooks(c.Request().Context(), "")
	if err != nil {
		h.logger.Error("library list failed", "error", err)
		return c.String(http.StatusInternalServerError, "Error fetching library books")
	}
	return c.JSON(http.StatusOK, books)
}

// RecentBooks returns the newest uploads first, for the home page strip.
func (h *Handler) RecentBooks(c echo.Context) error {
	limit := queryInt(c, "limit", 4)
	books, err := h.svc.RecentBooks(c.Request().Context(), limit)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, books)
}

// UploadMultipart is the direct-binary upload path: the PDF travels as a
// multipart file part instead of a base64 data URI, sparing the client the
// double buffering. Metadata arrives as ordinary form fields.
func (h *Handler) UploadMultipart(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if ct := fileHeader.Header.Get(echo.HeaderContentType); ct != "" && ct != "application/pdf" {
		return echo.NewHTTPError(http.StatusBadRequest, "file must be a PDF")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file part")
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file part")
	}

	book, err := h.svc.IngestBook(c.Request().Context(), service.UploadPayload{
		Title:       c.FormValue("title"),
		Author:      c.FormValue("author"),
		Description: c.FormValue("description"),
		Genre:       c.FormValue("genre"),
		CoverImage:  c.FormValue("coverImage"),
		FileName:    fileHeader.Filename,
		UserID:      c.FormValue("userId"),
	}, data)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, book)
}
