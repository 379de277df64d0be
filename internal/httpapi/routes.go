package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func (a *API) registerRoutes(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"ok":        true,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Legacy surface kept byte-compatible with the original client:
	// JSON base64 upload, plain-text error bodies.
	e.POST("/upload-files", a.handler.UploadFiles)
	e.GET("/get-files", a.handler.GetFiles)
	e.GET("/files/:fileName", a.handler.StreamFile)

	api := e.Group("/api")
	api.GET("/books", a.handler.ListBooks)
	api.GET("/books/recent", a.handler.RecentBooks)
	api.POST("/books", a.handler.UploadMultipart)
	api.GET("/library", a.handler.Library)
}
