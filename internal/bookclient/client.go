package bookclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bookstagram/internal/store"
)

// Client calls the book API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError carries the status and body of a failed API response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// NewClient constructs a book API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
	CoverImage  string `json:"coverImage,omitempty"`
	PDFData     string `json:"pdfData"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	UserID      string `json:"userId,omitempty"`
}

func (c *Client) uploadBook(ctx context.Context, payload uploadRequest) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-files", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	var status struct {
		Status string `json:"status"`
	}
	if err := c.do(req, &status); err != nil {
		return err
	}
	if status.Status != "ok" {
		return fmt.Errorf("unexpected upload response %q", status.Status)
	}
	return nil
}

// ListBooks returns every catalog record.
func (c *Client) ListBooks(ctx context.Context) ([]store.Book, error) {
	return c.listBooks(ctx, c.baseURL+"/get-files")
}

// BooksByOwner returns the records uploaded by one user.
func (c *Client) BooksByOwner(ctx context.Context, userID string) ([]store.Book, error) {
	return c.listBooks(ctx, c.baseURL+"/api/books?userId="+url.QueryEscape(userID))
}

// RecentBooks returns the newest records, newest first.
func (c *Client) RecentBooks(ctx context.Context, limit int) ([]store.Book, error) {
	target := c.baseURL + "/api/books/recent"
	if limit > 0 {
		target += "?limit=" + strconv.Itoa(limit)
	}
	return c.listBooks(ctx, target)
}

// FetchPDF downloads the stored PDF for a catalog file name.
func (c *Client) FetchPDF(ctx context.Context, fileName string) ([]byte, error) {
	target := c.baseURL + "/files/" + url.PathEscape(fileName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, apiError(resp)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) listBooks(ctx context.Context, target string) ([]store.Book, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	var books []store.Book
	if err := c.do(req, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// apiError wraps an error response. The legacy routes reply with plain text
// bodies, so the raw body is kept as the message.
func apiError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = resp.Status
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
